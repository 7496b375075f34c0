package events

import "github.com/google/uuid"

// Owner groups a batch of subscriptions so they can be retired together
// when the mechanic that made them leaves the battle (status cured, item
// consumed, combatant switched out or fainted).
type Owner interface {
	// OwnerID is the owner's stable identity. Two owners with the same ID
	// are the same owner as far as the bus is concerned.
	OwnerID() string
	Name() string
}

// Registrar is implemented by owners that register their own handlers.
// Bus.Attach calls OnRegister and Bus.Detach calls OnUnregister.
type Registrar interface {
	Owner
	OnRegister(bus *Bus) error
	OnUnregister(bus *Bus)
}

// NewOwnerID issues a fresh owner identity.
func NewOwnerID() string {
	return uuid.NewString()
}

// BaseOwner provides the identity half of Owner for embedding.
type BaseOwner struct {
	id   string
	name string
}

// NewBaseOwner creates an owner identity with a freshly issued ID.
func NewBaseOwner(name string) BaseOwner {
	return BaseOwner{id: NewOwnerID(), name: name}
}

// OwnerID returns the owner's identity.
func (o BaseOwner) OwnerID() string {
	return o.id
}

// Name returns the owner's display name.
func (o BaseOwner) Name() string {
	return o.name
}

// ownerKey returns the identity used in dedup keys; "" stands for "no owner".
func ownerKey(o Owner) string {
	if o == nil {
		return ""
	}
	return o.OwnerID()
}
