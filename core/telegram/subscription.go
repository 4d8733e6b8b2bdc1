package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/steven-peralta/discord-paginationembed/core/logger"
	"github.com/steven-peralta/discord-paginationembed/core/paginate"

	tele "gopkg.in/telebot.v4"
)

var errNotAMessage = errors.New("telegram: handle is not a *tele.Message")

// subscription is the live attachment of one paginated message to the
// router. Inputs are buffered so reactions arriving while the session is
// dispatching queue up instead of getting lost.
type subscription struct {
	router *Router
	msg    *tele.Message
	inputs chan paginate.Input
	once   sync.Once
}

// WaitNext blocks until the next button press, the deadline, or context
// cancellation.
func (s *subscription) WaitNext(ctx context.Context, deadline time.Time) (paginate.Input, error) {
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case in := <-s.inputs:
		return in, nil
	case <-timer.C:
		return paginate.Input{}, paginate.ErrWaitTimeout
	case <-ctx.Done():
		return paginate.Input{}, ctx.Err()
	}
}

// AwaitText sends the jump prompt mentioning the actor and waits for their
// next text message in the same chat. The prompt message is removed before
// returning, whatever the outcome.
func (s *subscription) AwaitText(ctx context.Context, actor paginate.ActorID, prompt string, deadline time.Time) (string, error) {
	mention := fmt.Sprintf("[you](tg://user?id=%d)", int64(actor))
	text := replacePlaceholder(prompt, mention)

	promptMsg, err := s.router.bot.Send(s.msg.Chat, text, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
	if err != nil {
		return "", err
	}
	defer func() {
		if derr := s.router.bot.Delete(promptMsg); derr != nil {
			logger.Debug(ctx, "telegram", "prompt.delete.fail",
				slog.String("err", derr.Error()),
			)
		}
	}()

	key := textWaitKey{chat: s.msg.Chat.ID, actor: int64(actor)}
	ch := s.router.registerWait(key)
	defer s.router.dropWait(key)

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case reply := <-ch:
		return reply, nil
	case <-timer.C:
		return "", paginate.ErrWaitTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Dispose deregisters the subscription from the router. Safe to call more
// than once; buffered inputs are discarded.
func (s *subscription) Dispose() error {
	s.once.Do(func() {
		s.router.detach(s.msg.ID)
	})
	return nil
}
