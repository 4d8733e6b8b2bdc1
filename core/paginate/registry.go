package paginate

import (
	"sort"
	"sync"
)

// Navigation identifies one of the built-in navigation triggers.
type Navigation string

const (
	// NavBack moves one page back.
	NavBack Navigation = "back"
	// NavJump prompts the actor for a target page number.
	NavJump Navigation = "jump"
	// NavForward moves one page forward.
	NavForward Navigation = "forward"
	// NavDelete terminates the session and removes the message.
	NavDelete Navigation = "delete"
	// NavAll is accepted only by Disable and stands for the whole set.
	NavAll Navigation = "all"
)

// DefaultNavigationKeys returns the default symbolic key for every
// navigation trigger.
func DefaultNavigationKeys() map[Navigation]string {
	return map[Navigation]string{
		NavBack:    "◀",
		NavJump:    "↗",
		NavForward: "▶",
		NavDelete:  "🗑",
	}
}

// navOrder fixes the presentation order of navigation triggers.
var navOrder = []Navigation{NavBack, NavJump, NavForward, NavDelete}

type navBinding struct {
	key     string
	enabled bool
}

// Resolution is the outcome of resolving an inbound key. Exactly one of Nav
// or Action is set.
type Resolution[T any] struct {
	Nav    Navigation
	Action Callback[T]
	Key    string
}

// Registry owns the set of recognized triggers for one session: the four
// navigation triggers with their enabled flags and symbolic keys, plus the
// user-registered action triggers.
type Registry[T any] struct {
	mu      sync.RWMutex
	nav     map[Navigation]*navBinding
	actions map[string]Callback[T]
}

// NewRegistry creates a registry with every navigation trigger enabled at
// its default key and no action triggers.
func NewRegistry[T any]() *Registry[T] {
	r := &Registry[T]{}
	r.reset()
	return r
}

func (r *Registry[T]) reset() {
	defaults := DefaultNavigationKeys()
	r.nav = make(map[Navigation]*navBinding, len(defaults))
	for id, key := range defaults {
		r.nav[id] = &navBinding{key: key, enabled: true}
	}
	r.actions = make(map[string]Callback[T])
}

// RegisterAction binds key to a callback, overwriting any previous binding
// for the same key. Keys owned by a currently enabled navigation trigger are
// rejected with ReservedKeyError; a key owned by a disabled navigation
// trigger is allowed.
func (r *Registry[T]) RegisterAction(key string, cb Callback[T]) error {
	if key == "" || cb == nil {
		return &ConfigurationError{Reason: "action trigger needs a key and a callback"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, b := range r.nav {
		if b.enabled && b.key == key {
			return &ReservedKeyError{Key: key, Nav: id}
		}
	}
	r.actions[key] = cb
	return nil
}

// DeregisterAction removes the action bound to key. Unknown keys are a no-op.
func (r *Registry[T]) DeregisterAction(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.actions, key)
}

// ResetAll removes every action trigger and restores all navigation triggers
// to their default key and enabled state.
func (r *Registry[T]) ResetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
}

// Disable turns off the named navigation triggers. NavAll disables the
// complete set. Disabling is not additive-reset: a later call with a
// narrower set leaves previously disabled triggers off. Only ResetAll or an
// explicit Rebind of a trigger re-enables it.
func (r *Registry[T]) Disable(ids ...Navigation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if id == NavAll {
			for _, b := range r.nav {
				b.enabled = false
			}
			return
		}
		if b, ok := r.nav[id]; ok {
			b.enabled = false
		}
	}
}

// Rebind replaces the symbolic key of one or more navigation triggers and
// re-enables them. A new key that collides with another currently enabled
// trigger, navigation or action, fails with DuplicateKeyError and leaves the
// registry unchanged. New keys are checked against the current bindings, so
// swapping two keys in a single call is rejected too; rebind through a
// temporary key instead.
func (r *Registry[T]) Rebind(keys map[Navigation]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := r.nav[id]; !ok {
			continue
		}
		for other, b := range r.nav {
			if other == id {
				continue
			}
			if b.enabled && b.key == key {
				return &DuplicateKeyError{Key: key}
			}
			if pending, ok := keys[other]; ok && pending == key {
				return &DuplicateKeyError{Key: key}
			}
		}
		if _, taken := r.actions[key]; taken {
			return &DuplicateKeyError{Key: key}
		}
	}
	for id, key := range keys {
		if key == "" {
			continue
		}
		if b, ok := r.nav[id]; ok {
			b.key = key
			b.enabled = true
		}
	}
	return nil
}

// Enabled reports whether the navigation trigger is currently enabled.
func (r *Registry[T]) Enabled(id Navigation) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.nav[id]
	return ok && b.enabled
}

// Key returns the symbolic key currently bound to the navigation trigger.
func (r *Registry[T]) Key(id Navigation) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if b, ok := r.nav[id]; ok {
		return b.key
	}
	return ""
}

// Resolve maps an inbound key to its trigger among currently enabled
// triggers only. Keys owned by disabled navigation triggers and keys nobody
// owns resolve to false.
func (r *Registry[T]) Resolve(key string) (Resolution[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range navOrder {
		if b := r.nav[id]; b != nil && b.enabled && b.key == key {
			return Resolution[T]{Nav: id, Key: key}, true
		}
	}
	if cb, ok := r.actions[key]; ok {
		return Resolution[T]{Action: cb, Key: key}, true
	}
	return Resolution[T]{}, false
}

// EnabledKeys lists the keys of all enabled triggers: navigation triggers in
// presentation order followed by action keys sorted for stable output.
func (r *Registry[T]) EnabledKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.nav)+len(r.actions))
	for _, id := range navOrder {
		if b := r.nav[id]; b != nil && b.enabled {
			keys = append(keys, b.key)
		}
	}
	custom := make([]string, 0, len(r.actions))
	for k := range r.actions {
		custom = append(custom, k)
	}
	sort.Strings(custom)
	return append(keys, custom...)
}
