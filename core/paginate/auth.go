package paginate

// AuthFilter decides whether an inbound actor may trigger a session. The
// zero value permits everyone.
type AuthFilter struct {
	allowed map[ActorID]struct{}
}

// NewAuthFilter builds a filter permitting exactly the given actors. With no
// actors the filter permits everyone.
func NewAuthFilter(ids ...ActorID) AuthFilter {
	if len(ids) == 0 {
		return AuthFilter{}
	}
	allowed := make(map[ActorID]struct{}, len(ids))
	for _, id := range ids {
		allowed[id] = struct{}{}
	}
	return AuthFilter{allowed: allowed}
}

// Authorized reports whether the actor may act. An empty authorization set
// means everyone is permitted.
func (f AuthFilter) Authorized(id ActorID) bool {
	if len(f.allowed) == 0 {
		return true
	}
	_, ok := f.allowed[id]
	return ok
}
