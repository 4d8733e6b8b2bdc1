package paginate

import (
	"context"
	"time"
)

// ActorID identifies the external user supplying input to a session.
type ActorID int64

// RenderContext is the snapshot handed to the renderer and to action
// callbacks at each re-render: the element collection and the cursor
// position inside it.
type RenderContext[T any] struct {
	Elements []T
	Page     int
	Total    int
}

// Callback is a user-registered action trigger body. A non-nil error is
// surfaced through the error event; the session keeps running.
type Callback[T any] func(ctx context.Context, actor ActorID, rc RenderContext[T]) error

// Payload is the renderer-specific displayable form of one page. The core
// never inspects it.
type Payload any

// MessageHandle is the renderer-specific reference to the live message. The
// core holds it as an opaque non-owning token.
type MessageHandle any

// Assets are the caller-supplied text templates surrounding a session.
// Prompt may contain the "{actor}" placeholder, replaced by the adapter with
// a platform mention of the actor being prompted.
type Assets struct {
	// Prepare renders as a placeholder while the first page is published.
	Prepare string
	// Prompt asks the jumping actor for a page number.
	Prompt string
}

// PrepareNotice is the payload handed to Publish as a placeholder while the
// first page renders. Adapters show it as plain text with no triggers
// attached; the first page is edited in over it.
type PrepareNotice struct {
	Text string
}

// RenderConfig carries the per-render options the core resolves from session
// configuration. TriggerKeys lists the currently enabled trigger keys in
// presentation order so renderers that express triggers visually (buttons,
// reactions) can attach them.
type RenderConfig struct {
	PageIndicator bool
	Assets        Assets
	TriggerKeys   []string
}

// RenderPort turns (elements, page) into a displayable payload and owns the
// page-size policy. Implementations differ only in how a page becomes a
// payload; the core never branches on renderer identity.
type RenderPort[T any] interface {
	// PageSize returns how many elements share one page. Values < 1 are
	// treated as one element per page.
	PageSize() int
	// Render produces the payload for the given snapshot.
	Render(ctx context.Context, rc RenderContext[T], cfg RenderConfig) (Payload, error)
	// Publish sends a fresh message and returns its handle.
	Publish(ctx context.Context, p Payload) (MessageHandle, error)
	// Update edits the live message in place.
	Update(ctx context.Context, h MessageHandle, p Payload) error
	// Remove deletes the live message.
	Remove(ctx context.Context, h MessageHandle) error
}

// Input is one inbound actor interaction.
type Input struct {
	Actor ActorID
	Key   string
}

// Subscription is a live attachment of trigger keys to a message.
type Subscription interface {
	// WaitNext blocks until the next inbound input, the deadline, or
	// context cancellation. Deadline expiry is reported as ErrWaitTimeout.
	WaitNext(ctx context.Context, deadline time.Time) (Input, error)
	// AwaitText prompts the actor and blocks until they reply with text,
	// the deadline elapses (ErrWaitTimeout), or they cancel
	// (ErrJumpAborted). The prompt message is removed before returning.
	AwaitText(ctx context.Context, actor ActorID, prompt string, deadline time.Time) (string, error)
	// Dispose deregisters the attachment. Safe to call more than once.
	Dispose() error
}

// InputSource attaches trigger keys to a live message and yields inbound
// interactions for them.
type InputSource interface {
	Attach(ctx context.Context, h MessageHandle, triggerKeys []string) (Subscription, error)
}
