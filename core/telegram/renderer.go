package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/steven-peralta/discord-paginationembed/core/paginate"

	tele "gopkg.in/telebot.v4"
)

// pagePayload is the rendered form of one page: the message text plus the
// inline keyboard carrying the enabled trigger keys.
type pagePayload struct {
	text   string
	markup *tele.ReplyMarkup
}

// Renderer implements paginate.RenderPort over a telebot chat. It owns the
// page-size policy and turns a page of elements into message text via the
// caller-supplied line formatter.
type Renderer[T any] struct {
	bot     *tele.Bot
	chat    *tele.Chat
	perPage int
	line    func(T) string
	header  string
}

// NewRenderer builds a renderer that shows perPage elements per page,
// formatting each through line. perPage values below 1 mean one element per
// page.
func NewRenderer[T any](bot *tele.Bot, chat *tele.Chat, perPage int, line func(T) string) *Renderer[T] {
	if perPage < 1 {
		perPage = 1
	}
	if line == nil {
		line = func(v T) string { return fmt.Sprint(v) }
	}
	return &Renderer[T]{bot: bot, chat: chat, perPage: perPage, line: line}
}

// SetHeader puts a fixed line above every rendered page.
func (r *Renderer[T]) SetHeader(header string) *Renderer[T] {
	r.header = header
	return r
}

// PageSize returns how many elements share one page.
func (r *Renderer[T]) PageSize() int { return r.perPage }

// Render builds the message text and trigger keyboard for the snapshot.
func (r *Renderer[T]) Render(_ context.Context, rc paginate.RenderContext[T], cfg paginate.RenderConfig) (paginate.Payload, error) {
	start := (rc.Page - 1) * r.perPage
	if start < 0 || start >= len(rc.Elements) {
		return nil, fmt.Errorf("telegram: page %d outside element range", rc.Page)
	}
	end := start + r.perPage
	if end > len(rc.Elements) {
		end = len(rc.Elements)
	}

	var b strings.Builder
	if r.header != "" {
		b.WriteString(r.header)
		b.WriteString("\n\n")
	}
	for _, el := range rc.Elements[start:end] {
		b.WriteString(r.line(el))
		b.WriteByte('\n')
	}
	if cfg.PageIndicator {
		fmt.Fprintf(&b, "\nPage %d/%d", rc.Page, rc.Total)
	}

	return pagePayload{
		text:   b.String(),
		markup: triggerMarkup(cfg.TriggerKeys, triggersPerRow),
	}, nil
}

// Publish sends a fresh message carrying the payload. Prepare placeholders
// go out as bare text with no keyboard.
func (r *Renderer[T]) Publish(_ context.Context, p paginate.Payload) (paginate.MessageHandle, error) {
	switch payload := p.(type) {
	case paginate.PrepareNotice:
		msg, err := r.bot.Send(r.chat, payload.Text)
		if err != nil {
			return nil, err
		}
		return msg, nil
	case pagePayload:
		msg, err := r.bot.Send(r.chat, payload.text, &tele.SendOptions{ReplyMarkup: payload.markup})
		if err != nil {
			return nil, err
		}
		return msg, nil
	default:
		return nil, errors.New("telegram: payload was not produced by this renderer")
	}
}

// Update edits the live message in place. Telegram rejects edits that leave
// the message unchanged; those are not failures for us.
func (r *Renderer[T]) Update(_ context.Context, h paginate.MessageHandle, p paginate.Payload) error {
	msg, ok := h.(*tele.Message)
	if !ok || msg == nil {
		return errNotAMessage
	}
	payload, err := asPagePayload(p)
	if err != nil {
		return err
	}
	if _, err := r.bot.Edit(msg, payload.text, &tele.SendOptions{ReplyMarkup: payload.markup}); err != nil {
		if isNotModified(err) {
			return nil
		}
		return err
	}
	return nil
}

// Remove deletes the live message.
func (r *Renderer[T]) Remove(_ context.Context, h paginate.MessageHandle) error {
	msg, ok := h.(*tele.Message)
	if !ok || msg == nil {
		return errNotAMessage
	}
	return r.bot.Delete(msg)
}

func asPagePayload(p paginate.Payload) (pagePayload, error) {
	payload, ok := p.(pagePayload)
	if !ok {
		return pagePayload{}, errors.New("telegram: payload was not produced by this renderer")
	}
	return payload, nil
}

func isNotModified(err error) bool {
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return strings.Contains(apiErr.Description, "message is not modified")
	}
	return false
}
