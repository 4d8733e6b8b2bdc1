package telegram

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/steven-peralta/discord-paginationembed/core/logger"
	"github.com/steven-peralta/discord-paginationembed/core/paginate"

	tele "gopkg.in/telebot.v4"
)

type textWaitKey struct {
	chat  int64
	actor int64
}

// Router owns the bot's callback and text endpoints and fans inbound updates
// out to per-message subscriptions. Construct exactly one Router per bot and
// share it across sessions; each paginated message registers with it through
// Attach.
type Router struct {
	bot *tele.Bot

	mu    sync.RWMutex
	subs  map[int]*subscription
	waits map[textWaitKey]chan string
}

// NewRouter installs the callback and text handlers on the bot and returns
// the router. Bots that route their own text updates can forward unclaimed
// messages to HandleText themselves instead of handing the endpoint over.
func NewRouter(bot *tele.Bot) *Router {
	r := &Router{
		bot:   bot,
		subs:  make(map[int]*subscription),
		waits: make(map[textWaitKey]chan string),
	}
	bot.Handle(tele.OnCallback, r.HandleCallback)
	bot.Handle(tele.OnText, r.HandleText)
	return r
}

// Attach registers a subscription for the message. The trigger keys are
// already rendered into the message's inline keyboard, so no further
// platform work is needed here.
func (r *Router) Attach(ctx context.Context, h paginate.MessageHandle, triggerKeys []string) (paginate.Subscription, error) {
	msg, ok := h.(*tele.Message)
	if !ok || msg == nil {
		return nil, &paginate.PlatformError{Op: "attach", Err: errNotAMessage}
	}
	sub := &subscription{
		router: r,
		msg:    msg,
		inputs: make(chan paginate.Input, 16),
	}
	r.mu.Lock()
	r.subs[msg.ID] = sub
	r.mu.Unlock()
	logger.Debug(ctx, "telegram", "sub.attach",
		slog.Int64("chat_id", msg.Chat.ID),
		slog.Int("message_id", msg.ID),
		slog.Int("count", len(triggerKeys)),
	)
	return sub, nil
}

// HandleCallback routes an inline button press to the subscription of its
// message. Presses on messages with no live session are answered and
// dropped.
func (r *Router) HandleCallback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil || cb.Sender == nil || cb.Message == nil {
		return nil
	}
	_ = c.Respond()

	key := callbackKey(cb)
	if key == "" {
		return nil
	}

	r.mu.RLock()
	sub := r.subs[cb.Message.ID]
	r.mu.RUnlock()
	if sub == nil {
		logger.Debug(context.Background(), "telegram", "callback.orphan",
			slog.Int("message_id", cb.Message.ID),
			slog.String("key", logger.SanitizeLimit(key, 32)),
		)
		return nil
	}

	in := paginate.Input{Actor: paginate.ActorID(cb.Sender.ID), Key: key}
	select {
	case sub.inputs <- in:
	default:
		// The session is mid-dispatch with a full queue; dropping here
		// beats blocking the bot's update loop.
		logger.Warn(context.Background(), "telegram", "callback.drop",
			slog.Int("message_id", cb.Message.ID),
		)
	}
	return nil
}

// HandleText delivers a plain text message to a pending jump-prompt wait for
// the same chat and actor. Messages nobody is waiting for are ignored.
func (r *Router) HandleText(c tele.Context) error {
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil {
		return nil
	}
	r.mu.RLock()
	ch := r.waits[textWaitKey{chat: chat.ID, actor: sender.ID}]
	r.mu.RUnlock()
	if ch == nil {
		return nil
	}
	select {
	case ch <- c.Text():
	default:
	}
	return nil
}

func (r *Router) detach(messageID int) {
	r.mu.Lock()
	delete(r.subs, messageID)
	r.mu.Unlock()
}

func (r *Router) registerWait(key textWaitKey) chan string {
	ch := make(chan string, 1)
	r.mu.Lock()
	r.waits[key] = ch
	r.mu.Unlock()
	return ch
}

func (r *Router) dropWait(key textWaitKey) {
	r.mu.Lock()
	delete(r.waits, key)
	r.mu.Unlock()
}

// callbackKey recovers the trigger key from a callback, whether telebot
// resolved the unique marker or left the raw "\funique|data" payload.
func callbackKey(cb *tele.Callback) string {
	if cb.Unique == triggerUnique {
		return cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	parts := strings.SplitN(raw, "|", 2)
	if parts[0] == triggerUnique && len(parts) == 2 {
		return parts[1]
	}
	if cb.Unique != "" {
		return cb.Unique
	}
	return strings.TrimSpace(cb.Data)
}
