package paginate

import "sync"

// Event is the tagged variant delivered to session observers. Terminal kinds
// (FinishEvent, ExpireEvent) are delivered at most once per session.
type Event interface{ event() }

// StartEvent fires once when the session enters AWAITING for the first time.
type StartEvent struct{}

// ReactEvent fires for every authorized, recognized input before it is
// dispatched.
type ReactEvent struct {
	Actor ActorID
	Key   string
}

// FinishEvent fires when an actor terminates the session explicitly.
type FinishEvent struct {
	Actor ActorID
}

// ExpireEvent fires when the deadline elapses with no qualifying input.
type ExpireEvent struct{}

// ErrorEvent carries recovered dispatch errors and the fatal platform error
// of a failed session.
type ErrorEvent struct {
	Err error
}

func (StartEvent) event()  {}
func (ReactEvent) event()  {}
func (FinishEvent) event() {}
func (ExpireEvent) event() {}
func (ErrorEvent) event()  {}

// dispatcher fans session events out to registered observers. It is owned by
// the session; observers run on the session goroutine, so they must not
// block.
type dispatcher struct {
	mu       sync.RWMutex
	handlers []func(Event)
}

func (d *dispatcher) subscribe(fn func(Event)) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	d.handlers = append(d.handlers, fn)
	d.mu.Unlock()
}

func (d *dispatcher) emit(ev Event) {
	d.mu.RLock()
	handlers := d.handlers
	d.mu.RUnlock()
	for _, fn := range handlers {
		fn(ev)
	}
}
