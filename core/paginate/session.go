package paginate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/steven-peralta/discord-paginationembed/core/logger"
)

// Phase is the observable lifecycle state of a session.
type Phase int

const (
	// PhaseUninitialized is the zero state before Run.
	PhaseUninitialized Phase = iota
	// PhaseReady means configuration validated, first render pending.
	PhaseReady
	// PhaseAwaiting means the session is waiting for the next input.
	PhaseAwaiting
	// PhaseDispatching means an input is being processed.
	PhaseDispatching
	// PhaseExpired is terminal: the deadline elapsed.
	PhaseExpired
	// PhaseTerminated is terminal: an actor ended the session.
	PhaseTerminated
	// PhaseFailed is terminal: the platform became unreachable.
	PhaseFailed
)

// String returns the lowercase phase name for logs.
func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseReady:
		return "ready"
	case PhaseAwaiting:
		return "awaiting"
	case PhaseDispatching:
		return "dispatching"
	case PhaseExpired:
		return "expired"
	case PhaseTerminated:
		return "terminated"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// DefaultTimeout bounds how long a session waits for input when no timeout
// is configured explicitly.
const DefaultTimeout = 30 * time.Second

const cancelWord = "cancel"

var sessionSeq atomic.Uint64

type pageRequest struct {
	jump    int
	advance Direction
	kind    int // 0 none, 1 jump, 2 advance
}

// Session renders an element collection as pages inside one live message and
// runs the reaction-style navigation loop over it. Each Session owns its
// page cursor, trigger registry, and configuration; the message itself is a
// non-owning reference and may vanish under external deletion, which fails
// the session.
type Session[T any] struct {
	mu sync.Mutex

	elements      []T
	elementsSwap  bool
	allowed       AuthFilter
	registry      *Registry[T]
	render        RenderPort[T]
	input         InputSource
	handle        MessageHandle
	assets        Assets
	timeout       time.Duration
	pageIndicator bool
	deleteOnExp   bool
	startPage     int
	pending       pageRequest

	events dispatcher
	phase  atomic.Int64
	sid    string
}

// New creates a session over the given renderer and input source with
// default navigation triggers, a 30 second timeout, and everyone authorized.
func New[T any](render RenderPort[T], input InputSource) *Session[T] {
	n := sessionSeq.Add(1)
	return &Session[T]{
		registry:  NewRegistry[T](),
		render:    render,
		input:     input,
		timeout:   DefaultTimeout,
		startPage: 1,
		assets: Assets{
			Prepare: "Preparing...",
			Prompt:  "{actor}, to what page would you like to jump? Say cancel or 0 to abort.",
		},
		sid: "s" + strconv.FormatUint(n, 36),
	}
}

// SetElements replaces the element collection. When called on a running
// session the swap takes effect at the next loop wake-up and resets the
// cursor to page 1.
func (s *Session[T]) SetElements(elements []T) *Session[T] {
	s.mu.Lock()
	s.elements = elements
	s.elementsSwap = true
	s.startPage = 1
	s.mu.Unlock()
	return s
}

// SetAuthorizedActors restricts who may trigger this session. No actors
// means everyone is permitted.
func (s *Session[T]) SetAuthorizedActors(ids ...ActorID) *Session[T] {
	s.mu.Lock()
	s.allowed = NewAuthFilter(ids...)
	s.mu.Unlock()
	return s
}

// SetAssets replaces the prepare/prompt text templates. Empty fields keep
// their defaults.
func (s *Session[T]) SetAssets(a Assets) *Session[T] {
	s.mu.Lock()
	if a.Prepare != "" {
		s.assets.Prepare = a.Prepare
	}
	if a.Prompt != "" {
		s.assets.Prompt = a.Prompt
	}
	s.mu.Unlock()
	return s
}

// SetMessage attaches the session to an existing message instead of
// publishing a fresh one on Run.
func (s *Session[T]) SetMessage(h MessageHandle) *Session[T] {
	s.mu.Lock()
	s.handle = h
	s.mu.Unlock()
	return s
}

// SetDisabledNavigation turns off the named navigation triggers. See
// Registry.Disable for the (non-additive) semantics.
func (s *Session[T]) SetDisabledNavigation(ids ...Navigation) *Session[T] {
	s.registry.Disable(ids...)
	return s
}

// SetActions registers the full action-trigger map. Registrations that
// collide with an enabled navigation key are skipped and logged, matching
// the forgiving chainable surface; use Registry().RegisterAction directly
// when the error matters.
func (s *Session[T]) SetActions(actions map[string]Callback[T]) *Session[T] {
	for key, cb := range actions {
		if err := s.registry.RegisterAction(key, cb); err != nil {
			logger.Warn(context.Background(), "paginate", "action.register.skip",
				slog.String("sid", s.sid),
				slog.String("key", key),
				slog.String("err", err.Error()),
			)
		}
	}
	return s
}

// SetNavigationKeys rebinds navigation triggers to new symbolic keys.
// Collisions are skipped and logged; use Registry().Rebind directly when the
// error matters.
func (s *Session[T]) SetNavigationKeys(keys map[Navigation]string) *Session[T] {
	if err := s.registry.Rebind(keys); err != nil {
		logger.Warn(context.Background(), "paginate", "nav.rebind.skip",
			slog.String("sid", s.sid),
			slog.String("err", err.Error()),
		)
	}
	return s
}

// SetPage requests an absolute target page. Before Run it selects the start
// page (clamped into range); on a running session it applies at the next
// loop wake-up.
func (s *Session[T]) SetPage(page int) *Session[T] {
	s.mu.Lock()
	s.startPage = page
	s.pending = pageRequest{jump: page, kind: 1}
	s.mu.Unlock()
	return s
}

// SetPageString accepts "back", "forward", or a page number. Anything else
// is ignored.
func (s *Session[T]) SetPageString(v string) *Session[T] {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "back":
		s.mu.Lock()
		s.pending = pageRequest{advance: Back, kind: 2}
		s.mu.Unlock()
	case "forward":
		s.mu.Lock()
		s.pending = pageRequest{advance: Forward, kind: 2}
		s.mu.Unlock()
	default:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return s.SetPage(n)
		}
	}
	return s
}

// SetTimeout bounds how long the session waits for the next qualifying
// input. Read fresh at each loop iteration.
func (s *Session[T]) SetTimeout(d time.Duration) *Session[T] {
	s.mu.Lock()
	s.timeout = d
	s.mu.Unlock()
	return s
}

// SetPageIndicator toggles the "Page n/m" indicator on rendered pages.
func (s *Session[T]) SetPageIndicator(on bool) *Session[T] {
	s.mu.Lock()
	s.pageIndicator = on
	s.mu.Unlock()
	return s
}

// SetDeleteOnTimeout removes the message when the session expires instead of
// leaving it on its last rendered page.
func (s *Session[T]) SetDeleteOnTimeout(on bool) *Session[T] {
	s.mu.Lock()
	s.deleteOnExp = on
	s.mu.Unlock()
	return s
}

// OnEvent subscribes an observer to session lifecycle events. Observers run
// on the session goroutine and must not block.
func (s *Session[T]) OnEvent(fn func(Event)) *Session[T] {
	s.events.subscribe(fn)
	return s
}

// Registry exposes the trigger registry for callers that need registration
// errors rather than the forgiving chainable setters.
func (s *Session[T]) Registry() *Registry[T] { return s.registry }

// Phase returns the current lifecycle state.
func (s *Session[T]) Phase() Phase { return Phase(s.phase.Load()) }

func (s *Session[T]) setPhase(p Phase) {
	s.phase.Store(int64(p))
}

// Run validates configuration, publishes the first page, and drives the
// interaction loop until the session terminates, expires, fails, or ctx is
// cancelled. Configuration errors are returned synchronously; every later
// error is also delivered through the error event.
func (s *Session[T]) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithSession(ctx, s.sid)

	s.mu.Lock()
	elements := s.elements
	startPage := s.startPage
	timeout := s.timeout
	handle := s.handle
	s.elementsSwap = false
	s.pending = pageRequest{}
	s.mu.Unlock()

	if err := s.validate(elements, timeout); err != nil {
		s.events.emit(ErrorEvent{Err: err})
		return err
	}

	ps, err := newPageState(len(elements), s.render.PageSize(), startPage)
	if err != nil {
		s.events.emit(ErrorEvent{Err: err})
		return err
	}
	s.setPhase(PhaseReady)

	handle, err = s.publishFirst(ctx, handle, elements, ps)
	if err != nil {
		return s.fail(ctx, nil, err)
	}
	s.mu.Lock()
	s.handle = handle
	s.mu.Unlock()

	sub, err := s.input.Attach(ctx, handle, s.registry.EnabledKeys())
	if err != nil {
		// Partial trigger attachment is non-fatal as long as the
		// subscription itself is usable.
		if sub == nil {
			return s.fail(ctx, nil, platformErr("attach", err))
		}
		logger.Warn(ctx, "paginate", "attach.partial",
			slog.String("err", err.Error()),
		)
	}

	s.setPhase(PhaseAwaiting)
	s.events.emit(StartEvent{})
	logger.Info(ctx, "paginate", "session.start",
		slog.Int("page", ps.Page()),
		slog.Int("pages", ps.Total()),
		slog.Duration("timeout", timeout),
	)
	deadline := time.Now().Add(timeout)

	for {
		elements, changed := s.applyPending(&ps)
		if changed {
			if err := s.rerender(ctx, handle, elements, ps); err != nil {
				return s.fail(ctx, sub, err)
			}
		}

		in, waitErr := sub.WaitNext(ctx, deadline)
		if waitErr != nil {
			switch {
			case errors.Is(waitErr, ErrWaitTimeout):
				return s.expire(ctx, sub, handle)
			case ctx.Err() != nil:
				_ = sub.Dispose()
				return ctx.Err()
			default:
				return s.fail(ctx, sub, platformErr("wait", waitErr))
			}
		}

		// Setters may have queued an element swap or page request while
		// the wait was blocked; fold them in before dispatch reads the
		// cursor.
		if els, swapped := s.applyPending(&ps); swapped {
			if err := s.rerender(ctx, handle, els, ps); err != nil {
				return s.fail(ctx, sub, err)
			}
		}

		if !s.authorized(in.Actor) {
			logger.Debug(ctx, "paginate", "input.unauthorized",
				slog.Int64("actor_id", int64(in.Actor)),
			)
			continue
		}
		res, ok := s.registry.Resolve(in.Key)
		if !ok {
			logger.Debug(ctx, "paginate", "input.unrecognized",
				slog.Int64("actor_id", int64(in.Actor)),
				slog.String("key", in.Key),
			)
			continue
		}

		s.setPhase(PhaseDispatching)
		s.events.emit(ReactEvent{Actor: in.Actor, Key: in.Key})

		done, err := s.dispatch(ctx, sub, handle, &ps, in, res)
		if done || err != nil {
			return err
		}

		s.setPhase(PhaseAwaiting)
		s.mu.Lock()
		timeout = s.timeout
		s.mu.Unlock()
		deadline = time.Now().Add(timeout)
	}
}

func (s *Session[T]) validate(elements []T, timeout time.Duration) error {
	switch {
	case s.render == nil:
		return &ConfigurationError{Reason: "render port is required"}
	case s.input == nil:
		return &ConfigurationError{Reason: "input source is required"}
	case len(elements) == 0:
		return &ConfigurationError{Reason: "element collection is empty"}
	case timeout <= 0:
		return &ConfigurationError{Reason: "timeout must be positive"}
	}
	return nil
}

// dispatch handles one resolved input. It returns done=true when the
// session reached a terminal state; err carries the fatal error, if any.
func (s *Session[T]) dispatch(ctx context.Context, sub Subscription, handle MessageHandle, ps *PageState, in Input, res Resolution[T]) (bool, error) {
	elements := s.snapshotElements()

	switch {
	case res.Nav == NavDelete:
		return true, s.terminate(ctx, sub, handle, in.Actor)

	case res.Nav == NavBack || res.Nav == NavForward:
		dir := Back
		if res.Nav == NavForward {
			dir = Forward
		}
		ps.Advance(dir)
		if err := s.rerender(ctx, handle, elements, *ps); err != nil {
			return true, s.fail(ctx, sub, err)
		}

	case res.Nav == NavJump:
		return s.dispatchJump(ctx, sub, handle, ps, in.Actor, elements)

	default:
		if err := s.invoke(ctx, res, in.Actor, RenderContext[T]{Elements: elements, Page: ps.Page(), Total: ps.Total()}); err != nil {
			derr := &DispatchError{Key: in.Key, Err: err}
			logger.Error(ctx, "paginate", "action.fail",
				slog.String("key", in.Key),
				slog.String("err", err.Error()),
			)
			s.events.emit(ErrorEvent{Err: derr})
		}
		elements = s.snapshotElements()
		if err := s.rerender(ctx, handle, elements, *ps); err != nil {
			return true, s.fail(ctx, sub, err)
		}
	}
	return false, nil
}

func (s *Session[T]) dispatchJump(ctx context.Context, sub Subscription, handle MessageHandle, ps *PageState, actor ActorID, elements []T) (bool, error) {
	s.mu.Lock()
	prompt := s.assets.Prompt
	s.mu.Unlock()

	text, err := sub.AwaitText(ctx, actor, prompt, time.Now().Add(s.currentTimeout()))
	if err != nil {
		switch {
		case errors.Is(err, ErrWaitTimeout):
			return true, s.expire(ctx, sub, handle)
		case errors.Is(err, ErrJumpAborted):
			return false, nil
		case ctx.Err() != nil:
			_ = sub.Dispose()
			return true, ctx.Err()
		default:
			return true, s.fail(ctx, sub, platformErr("await_text", err))
		}
	}

	trimmed := strings.TrimSpace(text)
	if strings.EqualFold(trimmed, cancelWord) {
		return false, nil
	}
	target, convErr := strconv.Atoi(trimmed)
	if convErr != nil || target == 0 {
		return false, nil
	}
	if err := ps.JumpTo(target); err != nil {
		logger.Debug(ctx, "paginate", "jump.rejected",
			slog.Int64("actor_id", int64(actor)),
			slog.Int("page", target),
			slog.Int("pages", ps.Total()),
		)
		return false, nil
	}
	if err := s.rerender(ctx, handle, elements, *ps); err != nil {
		return true, s.fail(ctx, sub, err)
	}
	return false, nil
}

// invoke runs a user callback with panic containment, mirroring the recover
// middleware the platform handlers use.
func (s *Session[T]) invoke(ctx context.Context, res Resolution[T], actor ActorID, rc RenderContext[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return res.Action(ctx, actor, rc)
}

// publishFirst puts the first page on screen. Fresh messages go out as the
// prepare placeholder and get the page edited in, so the actor sees feedback
// before the page render completes.
func (s *Session[T]) publishFirst(ctx context.Context, handle MessageHandle, elements []T, ps PageState) (MessageHandle, error) {
	payload, err := s.renderPage(ctx, elements, ps)
	if err != nil {
		return nil, platformErr("render", err)
	}
	if handle == nil {
		s.mu.Lock()
		prepare := s.assets.Prepare
		s.mu.Unlock()
		handle, err = s.render.Publish(ctx, PrepareNotice{Text: prepare})
		if err != nil {
			return nil, platformErr("publish", err)
		}
	}
	if err := s.render.Update(ctx, handle, payload); err != nil {
		return nil, platformErr("update", err)
	}
	return handle, nil
}

func (s *Session[T]) rerender(ctx context.Context, handle MessageHandle, elements []T, ps PageState) error {
	payload, err := s.renderPage(ctx, elements, ps)
	if err != nil {
		return platformErr("render", err)
	}
	if err := s.render.Update(ctx, handle, payload); err != nil {
		return platformErr("update", err)
	}
	logger.Debug(ctx, "paginate", "page.render",
		slog.Int("page", ps.Page()),
		slog.Int("pages", ps.Total()),
	)
	return nil
}

func (s *Session[T]) renderPage(ctx context.Context, elements []T, ps PageState) (Payload, error) {
	s.mu.Lock()
	cfg := RenderConfig{
		PageIndicator: s.pageIndicator,
		Assets:        s.assets,
		TriggerKeys:   s.registry.EnabledKeys(),
	}
	s.mu.Unlock()
	rc := RenderContext[T]{Elements: elements, Page: ps.Page(), Total: ps.Total()}
	return s.render.Render(ctx, rc, cfg)
}

// Terminal transitions deregister input handlers before anything else so no
// further dispatch can occur afterwards.

func (s *Session[T]) terminate(ctx context.Context, sub Subscription, handle MessageHandle, actor ActorID) error {
	_ = sub.Dispose()
	if err := s.render.Remove(ctx, handle); err != nil {
		logger.Warn(ctx, "paginate", "message.remove.fail",
			slog.String("err", err.Error()),
		)
	}
	s.setPhase(PhaseTerminated)
	s.events.emit(FinishEvent{Actor: actor})
	logger.Info(ctx, "paginate", "session.finish",
		slog.Int64("actor_id", int64(actor)),
	)
	return nil
}

func (s *Session[T]) expire(ctx context.Context, sub Subscription, handle MessageHandle) error {
	_ = sub.Dispose()
	s.mu.Lock()
	remove := s.deleteOnExp
	s.mu.Unlock()
	if remove {
		if err := s.render.Remove(ctx, handle); err != nil {
			logger.Warn(ctx, "paginate", "message.remove.fail",
				slog.String("err", err.Error()),
			)
		}
	}
	s.setPhase(PhaseExpired)
	s.events.emit(ExpireEvent{})
	logger.Info(ctx, "paginate", "session.expire")
	return nil
}

func (s *Session[T]) fail(ctx context.Context, sub Subscription, err error) error {
	if sub != nil {
		_ = sub.Dispose()
	}
	s.setPhase(PhaseFailed)
	s.events.emit(ErrorEvent{Err: err})
	logger.Error(ctx, "paginate", "session.fail",
		slog.String("err", err.Error()),
	)
	return err
}

func (s *Session[T]) authorized(id ActorID) bool {
	s.mu.Lock()
	f := s.allowed
	s.mu.Unlock()
	return f.Authorized(id)
}

func (s *Session[T]) snapshotElements() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elements
}

func (s *Session[T]) currentTimeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeout
}

// applyPending folds element swaps and page requests queued by setters into
// the page state. It reports whether a re-render is needed.
func (s *Session[T]) applyPending(ps *PageState) ([]T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	if s.elementsSwap {
		s.elementsSwap = false
		next, err := newPageState(len(s.elements), s.render.PageSize(), 1)
		if err == nil {
			*ps = next
			changed = true
		}
	}
	switch s.pending.kind {
	case 1:
		if err := ps.JumpTo(s.pending.jump); err == nil {
			changed = true
		}
	case 2:
		ps.Advance(s.pending.advance)
		changed = true
	}
	s.pending = pageRequest{}
	return s.elements, changed
}

func platformErr(op string, err error) error {
	var perr *PlatformError
	if errors.As(err, &perr) {
		return err
	}
	return &PlatformError{Op: op, Err: err}
}
