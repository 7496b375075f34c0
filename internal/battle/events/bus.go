package events

import (
	"cmp"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// Bus dispatches battle events to subscribed handlers in priority order.
//
// One Bus belongs to one battle. Dispatch is synchronous and reentrant:
// a handler may subscribe, unsubscribe or emit while it runs. Each Emit
// walks a snapshot of the table taken before the first handler runs, so
// such calls only affect later emissions. The mutex guards the table and
// is never held while a handler runs; it does not make concurrent
// dispatch from several goroutines meaningful.
type Bus struct {
	mu       sync.Mutex
	subs     []*Subscription // sorted by descending priority, then kind rank
	keys     map[dedupKey]struct{}
	attached map[string]Owner
	logger   *zap.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		keys:     make(map[dedupKey]struct{}),
		attached: make(map[string]Owner),
		logger:   logger,
	}
}

// Subscribe registers handler for kind.
//
// The table keeps its own copy; the returned Subscription is the caller's
// and changing it does not affect the table. Registering the same (kind,
// handler, owner, priority, once) again is a no-op on the table: the call
// returns a fresh Subscription equal to the stored one and leaves ordering
// untouched.
func (bus *Bus) Subscribe(kind Kind, handler *Handler, opts ...SubscribeOption) (*Subscription, error) {
	if !kind.Valid() {
		return nil, &RegistrationError{Kind: kind, Handler: handler.Name(), Err: ErrUnknownKind}
	}
	if handler == nil || handler.fn == nil {
		return nil, &RegistrationError{Kind: kind, Handler: handler.Name(), Err: ErrNilHandler}
	}

	sub := &Subscription{Kind: kind, Handler: handler, Priority: PriorityDefault}
	for _, opt := range opts {
		if opt != nil {
			opt(sub)
		}
	}
	if sub.Owner != nil && sub.Owner.OwnerID() == "" {
		return nil, &RegistrationError{Kind: kind, Handler: handler.Name(), Err: ErrInvalidOwner}
	}

	key := sub.key()

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if _, ok := bus.keys[key]; ok {
		return sub, nil
	}

	stored := *sub
	bus.subs = append(bus.subs, &stored)
	bus.keys[key] = struct{}{}
	slices.SortStableFunc(bus.subs, compareSubscriptions)

	bus.logger.Debug("subscribed handler",
		zap.String("kind", kind.String()),
		zap.String("handler", handler.Name()),
		zap.Int("priority", int(sub.Priority)),
		zap.String("owner", ownerName(sub.Owner)),
		zap.Bool("once", sub.Once))

	return sub, nil
}

// Unsubscribe removes the stored subscription equal to sub. Unknown or nil
// subscriptions are ignored.
func (bus *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	bus.removeLocked(sub.key())
}

// UnsubscribeOwner removes every subscription registered under owner.
// An owner holding nothing is ignored.
func (bus *Bus) UnsubscribeOwner(owner Owner) {
	id := ownerKey(owner)
	if id == "" {
		return
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	remaining := make([]*Subscription, 0, len(bus.subs))
	removed := 0
	for _, sub := range bus.subs {
		if ownerKey(sub.Owner) == id {
			delete(bus.keys, sub.key())
			removed++
			continue
		}
		remaining = append(remaining, sub)
	}
	if removed == 0 {
		return
	}
	bus.subs = remaining

	bus.logger.Debug("unsubscribed owner",
		zap.String("owner", owner.Name()),
		zap.String("owner_id", id),
		zap.Int("removed", removed))
}

// Emit dispatches kind to its subscribers and returns the resulting payload.
//
// The input payload is copied and never modified. Handlers run in table
// order; each result is merged shallowly into the running payload, and a
// cancelling result ends the walk. Once subscriptions that were invoked are
// retired after the walk, including when a handler fails. A handler error
// is returned as is, with a nil payload; panics are not recovered.
func (bus *Bus) Emit(kind Kind, ctx *Context, payload Payload) (Payload, error) {
	snapshot := bus.snapshot()
	current := payload.Clone()

	var fired []*Subscription
	defer func() {
		bus.retire(fired)
	}()

	for _, sub := range snapshot {
		if sub.Kind != kind {
			continue
		}

		result, err := sub.Handler.call(ctx, current)
		if sub.Once {
			fired = append(fired, sub)
		}
		if err != nil {
			return nil, err
		}
		if result == nil {
			continue
		}

		current.Merge(result.Updated)

		if result.Cancel {
			bus.logger.Debug("emission cancelled",
				zap.String("kind", kind.String()),
				zap.String("handler", sub.Handler.Name()))
			break
		}
	}

	return current, nil
}

// Attach lets owner register its handlers. Owners that do not implement
// Registrar are only recorded. If OnRegister fails, everything the owner
// subscribed so far is rolled back. Attaching an attached owner is a no-op.
func (bus *Bus) Attach(owner Owner) error {
	if owner == nil {
		return &RegistrationError{Err: ErrNilOwner}
	}
	id := owner.OwnerID()
	if id == "" {
		return &RegistrationError{Owner: owner.Name(), Err: ErrInvalidOwner}
	}

	bus.mu.Lock()
	if _, ok := bus.attached[id]; ok {
		bus.mu.Unlock()
		return nil
	}
	bus.attached[id] = owner
	bus.mu.Unlock()

	if registrar, ok := owner.(Registrar); ok {
		if err := registrar.OnRegister(bus); err != nil {
			bus.mu.Lock()
			delete(bus.attached, id)
			bus.mu.Unlock()
			bus.UnsubscribeOwner(owner)
			return &RegistrationError{Owner: owner.Name(), Err: err}
		}
	}

	bus.logger.Debug("attached owner",
		zap.String("owner", owner.Name()),
		zap.String("owner_id", id))

	return nil
}

// Detach retires owner: OnUnregister runs for attached registrars, then
// every subscription held by owner is removed. Detaching twice is safe.
func (bus *Bus) Detach(owner Owner) {
	id := ownerKey(owner)
	if id == "" {
		return
	}

	bus.mu.Lock()
	_, wasAttached := bus.attached[id]
	delete(bus.attached, id)
	bus.mu.Unlock()

	if registrar, ok := owner.(Registrar); ok && wasAttached {
		registrar.OnUnregister(bus)
	}
	bus.UnsubscribeOwner(owner)
}

// Attached reports whether owner is currently attached.
func (bus *Bus) Attached(owner Owner) bool {
	id := ownerKey(owner)
	if id == "" {
		return false
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	_, ok := bus.attached[id]
	return ok
}

// Len returns the number of stored subscriptions.
func (bus *Bus) Len() int {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	return len(bus.subs)
}

// Count returns the number of stored subscriptions for kind.
func (bus *Bus) Count(kind Kind) int {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	n := 0
	for _, sub := range bus.subs {
		if sub.Kind == kind {
			n++
		}
	}
	return n
}

// Has reports whether a subscription equal to sub is stored.
func (bus *Bus) Has(sub *Subscription) bool {
	if sub == nil {
		return false
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	_, ok := bus.keys[sub.key()]
	return ok
}

// Subscriptions returns copies of the stored subscriptions in dispatch order.
func (bus *Bus) Subscriptions() []*Subscription {
	snapshot := bus.snapshot()
	out := make([]*Subscription, len(snapshot))
	for i, sub := range snapshot {
		c := *sub
		out[i] = &c
	}
	return out
}

func (bus *Bus) snapshot() []*Subscription {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	return slices.Clone(bus.subs)
}

// retire removes once subscriptions that fired during an emission, through
// the same path as Unsubscribe.
func (bus *Bus) retire(fired []*Subscription) {
	for _, sub := range fired {
		bus.Unsubscribe(sub)
	}
}

func (bus *Bus) removeLocked(key dedupKey) {
	if _, ok := bus.keys[key]; !ok {
		return
	}
	delete(bus.keys, key)

	idx := slices.IndexFunc(bus.subs, func(s *Subscription) bool {
		return s.key() == key
	})
	if idx >= 0 {
		bus.subs = slices.Delete(bus.subs, idx, idx+1)
	}

	bus.logger.Debug("unsubscribed handler",
		zap.String("kind", key.kind.String()),
		zap.String("handler", key.handler.Name()))
}

func compareSubscriptions(a, b *Subscription) int {
	if a.Priority != b.Priority {
		return cmp.Compare(b.Priority, a.Priority)
	}
	return cmp.Compare(a.Kind, b.Kind)
}

func ownerName(o Owner) string {
	if o == nil {
		return ""
	}
	return o.Name()
}
