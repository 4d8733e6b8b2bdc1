package paginate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePayload struct {
	page  int
	total int
	keys  []string
}

type fakeRender struct {
	mu         sync.Mutex
	pageSize   int
	renders    []int
	lastKeys   []string
	published  []Payload
	updates    int
	removes    int
	publishErr error
	updateErr  error
}

func (f *fakeRender) PageSize() int { return f.pageSize }

func (f *fakeRender) Render(_ context.Context, rc RenderContext[string], cfg RenderConfig) (Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renders = append(f.renders, rc.Page)
	f.lastKeys = cfg.TriggerKeys
	return fakePayload{page: rc.Page, total: rc.Total, keys: cfg.TriggerKeys}, nil
}

func (f *fakeRender) Publish(_ context.Context, p Payload) (MessageHandle, error) {
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	f.mu.Lock()
	f.published = append(f.published, p)
	f.mu.Unlock()
	return "msg-1", nil
}

func (f *fakeRender) Update(context.Context, MessageHandle, Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	return f.updateErr
}

func (f *fakeRender) Remove(context.Context, MessageHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removes++
	return nil
}

type textReply struct {
	text string
	err  error
}

type fakeSub struct {
	inputs     chan Input
	replies    chan textReply
	beforeWait func()
	mu         sync.Mutex
	prompts    []string
	disposed   int
}

func (s *fakeSub) WaitNext(ctx context.Context, deadline time.Time) (Input, error) {
	if s.beforeWait != nil {
		fn := s.beforeWait
		s.beforeWait = nil
		fn()
	}
	select {
	case in := <-s.inputs:
		return in, nil
	default:
	}
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case in := <-s.inputs:
		return in, nil
	case <-timer.C:
		return Input{}, ErrWaitTimeout
	case <-ctx.Done():
		return Input{}, ctx.Err()
	}
}

func (s *fakeSub) AwaitText(ctx context.Context, _ ActorID, prompt string, deadline time.Time) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	select {
	case r := <-s.replies:
		return r.text, r.err
	default:
	}
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case r := <-s.replies:
		return r.text, r.err
	case <-timer.C:
		return "", ErrWaitTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *fakeSub) Dispose() error {
	s.mu.Lock()
	s.disposed++
	s.mu.Unlock()
	return nil
}

type fakeInput struct {
	sub       *fakeSub
	attachErr error
	nilSub    bool
}

func (f *fakeInput) Attach(context.Context, MessageHandle, []string) (Subscription, error) {
	if f.nilSub {
		return nil, f.attachErr
	}
	return f.sub, f.attachErr
}

func newFakes(pageSize int) (*fakeRender, *fakeInput) {
	render := &fakeRender{pageSize: pageSize}
	input := &fakeInput{sub: &fakeSub{
		inputs:  make(chan Input, 16),
		replies: make(chan textReply, 16),
	}}
	return render, input
}

func captureEvents(s *Session[string]) *[]Event {
	evs := &[]Event{}
	s.OnEvent(func(ev Event) { *evs = append(*evs, ev) })
	return evs
}

func elementsOf(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "item"
	}
	return out
}

func countEvents[E Event](evs []Event) int {
	n := 0
	for _, ev := range evs {
		if _, ok := ev.(E); ok {
			n++
		}
	}
	return n
}

func TestRunRequiresElements(t *testing.T) {
	render, input := newFakes(1)
	s := New[string](render, input)
	evs := captureEvents(s)

	err := s.Run(context.Background())
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, 1, countEvents[ErrorEvent](*evs))
	assert.Equal(t, PhaseUninitialized, s.Phase())
}

func TestRunRequiresPositiveTimeout(t *testing.T) {
	render, input := newFakes(1)
	s := New[string](render, input).
		SetElements(elementsOf(3)).
		SetTimeout(0)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, s.Run(context.Background()), &cfgErr)
}

func TestSessionExpires(t *testing.T) {
	render, input := newFakes(1)
	s := New[string](render, input).
		SetElements(elementsOf(3)).
		SetTimeout(30 * time.Millisecond)
	evs := captureEvents(s)

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, PhaseExpired, s.Phase())
	assert.Equal(t, 1, countEvents[ExpireEvent](*evs))
	assert.Equal(t, 0, countEvents[FinishEvent](*evs))
	assert.Equal(t, 0, render.removes)
	assert.Equal(t, 1, input.sub.disposed)
}

func TestExpireRemovesMessageWhenConfigured(t *testing.T) {
	render, input := newFakes(1)
	s := New[string](render, input).
		SetElements(elementsOf(3)).
		SetTimeout(30 * time.Millisecond).
		SetDeleteOnTimeout(true)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 1, render.removes)
}

func TestDeleteTerminates(t *testing.T) {
	render, input := newFakes(1)
	input.sub.inputs <- Input{Actor: 1, Key: "🗑"}
	s := New[string](render, input).
		SetElements(elementsOf(3)).
		SetTimeout(time.Second)
	evs := captureEvents(s)

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, PhaseTerminated, s.Phase())
	assert.Equal(t, 1, render.removes)
	assert.Equal(t, 1, input.sub.disposed)
	require.Equal(t, 1, countEvents[FinishEvent](*evs))
	for _, ev := range *evs {
		if fin, ok := ev.(FinishEvent); ok {
			assert.Equal(t, ActorID(1), fin.Actor)
		}
	}
	assert.Equal(t, []string{"◀", "↗", "▶", "🗑"}, render.lastKeys)
}

func TestForwardWrapsAround(t *testing.T) {
	render, input := newFakes(1)
	for i := 0; i < 3; i++ {
		input.sub.inputs <- Input{Actor: 1, Key: "▶"}
	}
	input.sub.inputs <- Input{Actor: 1, Key: "🗑"}
	s := New[string](render, input).
		SetElements(elementsOf(3)).
		SetTimeout(time.Second)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []int{1, 2, 3, 1}, render.renders)
}

func TestBackWrapsFromFirstPage(t *testing.T) {
	render, input := newFakes(1)
	input.sub.inputs <- Input{Actor: 1, Key: "◀"}
	input.sub.inputs <- Input{Actor: 1, Key: "🗑"}
	s := New[string](render, input).
		SetElements(elementsOf(3)).
		SetTimeout(time.Second)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []int{1, 3}, render.renders)
}

func TestUnauthorizedInputDiscarded(t *testing.T) {
	render, input := newFakes(1)
	input.sub.inputs <- Input{Actor: 2, Key: "▶"}
	input.sub.inputs <- Input{Actor: 1, Key: "🗑"}
	s := New[string](render, input).
		SetElements(elementsOf(3)).
		SetTimeout(time.Second).
		SetAuthorizedActors(1)
	evs := captureEvents(s)

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []int{1}, render.renders)
	require.Equal(t, 1, countEvents[ReactEvent](*evs))
	for _, ev := range *evs {
		if re, ok := ev.(ReactEvent); ok {
			assert.Equal(t, ActorID(1), re.Actor)
		}
	}
}

func TestUnrecognizedKeyDiscarded(t *testing.T) {
	render, input := newFakes(1)
	input.sub.inputs <- Input{Actor: 1, Key: "❓"}
	input.sub.inputs <- Input{Actor: 1, Key: "🗑"}
	s := New[string](render, input).
		SetElements(elementsOf(3)).
		SetTimeout(time.Second)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []int{1}, render.renders)
}

func TestJumpFlow(t *testing.T) {
	render, input := newFakes(1)
	for i := 0; i < 3; i++ {
		input.sub.inputs <- Input{Actor: 1, Key: "↗"}
	}
	input.sub.inputs <- Input{Actor: 1, Key: "🗑"}
	input.sub.replies <- textReply{text: "3"}
	input.sub.replies <- textReply{text: "cancel"}
	input.sub.replies <- textReply{text: "99"}
	s := New[string](render, input).
		SetElements(elementsOf(5)).
		SetTimeout(time.Second)

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []int{1, 3}, render.renders)
	assert.Len(t, input.sub.prompts, 3)
	assert.Equal(t, PhaseTerminated, s.Phase())
}

func TestJumpAbortReturnsToAwaiting(t *testing.T) {
	render, input := newFakes(1)
	input.sub.inputs <- Input{Actor: 1, Key: "↗"}
	input.sub.inputs <- Input{Actor: 1, Key: "▶"}
	input.sub.inputs <- Input{Actor: 1, Key: "🗑"}
	input.sub.replies <- textReply{err: ErrJumpAborted}
	s := New[string](render, input).
		SetElements(elementsOf(3)).
		SetTimeout(time.Second)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []int{1, 2}, render.renders)
}

func TestJumpPromptTimeoutExpiresSession(t *testing.T) {
	render, input := newFakes(1)
	input.sub.inputs <- Input{Actor: 1, Key: "↗"}
	s := New[string](render, input).
		SetElements(elementsOf(3)).
		SetTimeout(40 * time.Millisecond)
	evs := captureEvents(s)

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, PhaseExpired, s.Phase())
	assert.Equal(t, 1, countEvents[ExpireEvent](*evs))
}

func TestActionErrorKeepsSessionRunning(t *testing.T) {
	render, input := newFakes(1)
	input.sub.inputs <- Input{Actor: 1, Key: "⏸"}
	input.sub.inputs <- Input{Actor: 1, Key: "🗑"}
	s := New[string](render, input).
		SetElements(elementsOf(3)).
		SetTimeout(time.Second)
	require.NoError(t, s.Registry().RegisterAction("⏸", func(context.Context, ActorID, RenderContext[string]) error {
		return errors.New("boom")
	}))
	evs := captureEvents(s)

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, PhaseTerminated, s.Phase())
	require.Equal(t, 1, countEvents[ErrorEvent](*evs))
	for _, ev := range *evs {
		if ee, ok := ev.(ErrorEvent); ok {
			var derr *DispatchError
			require.ErrorAs(t, ee.Err, &derr)
			assert.Equal(t, "⏸", derr.Key)
		}
	}
	assert.Equal(t, []int{1, 1}, render.renders)
}

func TestActionPanicContained(t *testing.T) {
	render, input := newFakes(1)
	input.sub.inputs <- Input{Actor: 1, Key: "💥"}
	input.sub.inputs <- Input{Actor: 1, Key: "🗑"}
	s := New[string](render, input).
		SetElements(elementsOf(3)).
		SetTimeout(time.Second)
	require.NoError(t, s.Registry().RegisterAction("💥", func(context.Context, ActorID, RenderContext[string]) error {
		panic("kaboom")
	}))
	evs := captureEvents(s)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, PhaseTerminated, s.Phase())
	assert.Equal(t, 1, countEvents[ErrorEvent](*evs))
}

func TestAttachPartialIsNonFatal(t *testing.T) {
	render, input := newFakes(1)
	input.attachErr = errors.New("one trigger rejected")
	input.sub.inputs <- Input{Actor: 1, Key: "🗑"}
	s := New[string](render, input).
		SetElements(elementsOf(3)).
		SetTimeout(time.Second)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, PhaseTerminated, s.Phase())
}

func TestAttachWithoutSubscriptionFails(t *testing.T) {
	render, input := newFakes(1)
	input.nilSub = true
	input.attachErr = errors.New("handler registration refused")
	s := New[string](render, input).
		SetElements(elementsOf(3)).
		SetTimeout(time.Second)
	evs := captureEvents(s)

	err := s.Run(context.Background())
	var perr *PlatformError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, PhaseFailed, s.Phase())
	assert.Equal(t, 1, countEvents[ErrorEvent](*evs))
}

func TestPublishFailureFailsSession(t *testing.T) {
	render, input := newFakes(1)
	render.publishErr = errors.New("chat unreachable")
	s := New[string](render, input).
		SetElements(elementsOf(3)).
		SetTimeout(time.Second)

	var perr *PlatformError
	require.ErrorAs(t, s.Run(context.Background()), &perr)
	assert.Equal(t, "publish", perr.Op)
	assert.Equal(t, PhaseFailed, s.Phase())
}

func TestContextCancellation(t *testing.T) {
	render, input := newFakes(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New[string](render, input).
		SetElements(elementsOf(3)).
		SetTimeout(time.Second)
	evs := captureEvents(s)

	err := s.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, countEvents[ExpireEvent](*evs))
	assert.Equal(t, 0, countEvents[FinishEvent](*evs))
	assert.Equal(t, 1, input.sub.disposed)
}

func TestStartPageSelection(t *testing.T) {
	render, input := newFakes(1)
	input.sub.inputs <- Input{Actor: 1, Key: "🗑"}
	s := New[string](render, input).
		SetElements(elementsOf(3)).
		SetPage(2).
		SetTimeout(time.Second)

	require.NoError(t, s.Run(context.Background()))
	require.NotEmpty(t, render.renders)
	assert.Equal(t, 2, render.renders[0])
}

func TestElementSwapDuringWaitAppliesBeforeDispatch(t *testing.T) {
	render, input := newFakes(1)
	s := New[string](render, input).
		SetElements(elementsOf(5)).
		SetPage(3).
		SetTimeout(time.Second)
	input.sub.beforeWait = func() {
		s.SetElements(elementsOf(1))
		input.sub.inputs <- Input{Actor: 1, Key: "◀"}
		input.sub.inputs <- Input{Actor: 1, Key: "🗑"}
	}
	evs := captureEvents(s)

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, PhaseTerminated, s.Phase())
	assert.Equal(t, 0, countEvents[ErrorEvent](*evs))
	assert.Equal(t, []int{3, 1, 1}, render.renders)
}

func TestFreshPublishShowsPrepareFirst(t *testing.T) {
	render, input := newFakes(1)
	input.sub.inputs <- Input{Actor: 1, Key: "🗑"}
	s := New[string](render, input).
		SetElements(elementsOf(3)).
		SetTimeout(time.Second)

	require.NoError(t, s.Run(context.Background()))

	require.Len(t, render.published, 1)
	notice, ok := render.published[0].(PrepareNotice)
	require.True(t, ok)
	assert.Equal(t, "Preparing...", notice.Text)
	assert.Equal(t, 1, render.updates)
}

func TestExistingMessageIsUpdatedNotRepublished(t *testing.T) {
	render, input := newFakes(1)
	input.sub.inputs <- Input{Actor: 1, Key: "🗑"}
	s := New[string](render, input).
		SetElements(elementsOf(3)).
		SetMessage("existing-msg").
		SetTimeout(time.Second)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 1, render.updates)
}
