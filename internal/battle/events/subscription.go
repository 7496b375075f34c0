package events

// Subscription describes one registration. It is immutable once created;
// equality is structural (see Equal), so the bus may hand back a fresh
// value for a registration it already holds.
type Subscription struct {
	Kind     Kind
	Handler  *Handler
	Priority Priority
	Owner    Owner
	Once     bool
}

// Equal reports whether s and other describe the same logical registration.
// Owners are compared by identity.
func (s *Subscription) Equal(other *Subscription) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.key() == other.key()
}

// dedupKey identifies a logical registration.
type dedupKey struct {
	kind     Kind
	handler  *Handler
	owner    string
	priority Priority
	once     bool
}

func (s *Subscription) key() dedupKey {
	return dedupKey{
		kind:     s.Kind,
		handler:  s.Handler,
		owner:    ownerKey(s.Owner),
		priority: s.Priority,
		once:     s.Once,
	}
}

// SubscribeOption customises a subscription.
type SubscribeOption func(*Subscription)

// WithPriority sets the dispatch priority. The default is PriorityDefault.
func WithPriority(p Priority) SubscribeOption {
	return func(s *Subscription) {
		s.Priority = p
	}
}

// WithOwner scopes the subscription to owner for bulk removal.
func WithOwner(owner Owner) SubscribeOption {
	return func(s *Subscription) {
		s.Owner = owner
	}
}

// Once retires the subscription after the first emission that invokes it.
func Once() SubscribeOption {
	return func(s *Subscription) {
		s.Once = true
	}
}
