package events

import (
	"maps"

	"github.com/magefree/battle-sim-go/internal/battle/action"
)

// Random is the pseudo-random source handlers draw from. Implementations
// must be deterministic for a given seed and support state save/restore so
// an emission can be replayed exactly.
type Random interface {
	// Float returns a uniform draw in [0, 1).
	Float() float64
	// IntRange returns a uniform integer in [min, max].
	IntRange(min, max int) (int, error)
	// Chance returns true with probability p in [0, 1].
	Chance(p float64) (bool, error)
	// Percent returns true with the given percentage chance in [0, 100].
	Percent(pct float64) (bool, error)
	// State returns an opaque snapshot of the generator state.
	State() ([]byte, error)
	// Restore rewinds the generator to a snapshot returned by State.
	Restore(state []byte) error
}

// Actor is the acting combatant of an emission. Only its identity is
// visible to the bus.
type Actor interface {
	ID() string
	Name() string
}

// Context is the read-only view passed to every handler of one emission.
// The emitting driver owns it; handlers must not retain it past the call.
type Context struct {
	RNG    Random
	Actor  Actor
	Target *action.Target
	Action *action.Action
}

// ActorID returns the acting combatant's ID, or "" when there is none.
func (c *Context) ActorID() string {
	if c == nil || c.Actor == nil {
		return ""
	}
	return c.Actor.ID()
}

// Payload carries intermediate results (damage, accuracy, flags) through
// the handler chain of a single emission.
type Payload map[string]any

// Clone returns a shallow copy. A nil payload clones to an empty one.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	maps.Copy(out, p)
	return out
}

// Merge writes every key of update into p, overwriting existing keys.
// The merge is shallow.
func (p Payload) Merge(update Payload) {
	maps.Copy(p, update)
}

// IntValue reads an integer value, accepting the numeric types handlers
// commonly write.
func (p Payload) IntValue(key string) (int, bool) {
	switch v := p[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// StringValue reads a string value.
func (p Payload) StringValue(key string) (string, bool) {
	v, ok := p[key].(string)
	return v, ok
}

// BoolValue reads a boolean value.
func (p Payload) BoolValue(key string) (bool, bool) {
	v, ok := p[key].(bool)
	return v, ok
}

// Result is what a handler hands back after processing an event.
// A nil *Result means the handler changed nothing.
type Result struct {
	// Cancel stops the current emission after this handler.
	Cancel bool
	// Updated is merged into the running payload.
	Updated Payload
}

// Update builds a non-cancelling result carrying the given payload fragment.
func Update(updated Payload) *Result {
	return &Result{Updated: updated}
}

// Cancel builds a cancelling result, optionally carrying a payload fragment.
func Cancel(updated Payload) *Result {
	return &Result{Cancel: true, Updated: updated}
}

// HandlerFunc processes one event. Returning an error aborts the emission.
type HandlerFunc func(ctx *Context, payload Payload) (*Result, error)

// Handler is the registration handle for a HandlerFunc. Its pointer is the
// identity the bus uses to recognise repeated registrations, so callers
// that want idempotent subscribe calls must reuse the same *Handler.
type Handler struct {
	name string
	fn   HandlerFunc
}

// NewHandler wraps fn in a handle. It returns nil if fn is nil so the
// mistake surfaces at subscribe time.
func NewHandler(name string, fn HandlerFunc) *Handler {
	if fn == nil {
		return nil
	}
	return &Handler{name: name, fn: fn}
}

// Name returns the descriptive name given at construction.
func (h *Handler) Name() string {
	if h == nil {
		return ""
	}
	return h.name
}

func (h *Handler) call(ctx *Context, payload Payload) (*Result, error) {
	return h.fn(ctx, payload)
}
