package mechanics

import (
	"github.com/magefree/battle-sim-go/internal/battle/events"
)

// Burn halves the physical damage its holder deals and chips the holder
// for a sixteenth of its max HP at the end of every turn.
type Burn struct {
	events.BaseOwner
	holderID string
	maxHP    int

	weaken   *events.Handler
	residual *events.Handler
}

// NewBurn creates a burn on the combatant holderID.
func NewBurn(holderID string, maxHP int) *Burn {
	b := &Burn{
		BaseOwner: events.NewBaseOwner("burn:" + holderID),
		holderID:  holderID,
		maxHP:     maxHP,
	}
	b.weaken = events.NewHandler("burn.weaken", b.onDamageCalc)
	b.residual = events.NewHandler("burn.residual", b.onTurnEnd)
	return b
}

// HolderID returns the burned combatant.
func (b *Burn) HolderID() string {
	return b.holderID
}

// ResidualDamage is the end-of-turn chip damage, never less than 1.
func (b *Burn) ResidualDamage() int {
	return max(1, b.maxHP/16)
}

// OnRegister subscribes the burn handlers at volatile priority.
func (b *Burn) OnRegister(bus *events.Bus) error {
	if _, err := bus.Subscribe(events.KindDamageCalc, b.weaken,
		events.WithOwner(b), events.WithPriority(events.PriorityVolatile)); err != nil {
		return err
	}
	_, err := bus.Subscribe(events.KindTurnEnd, b.residual,
		events.WithOwner(b), events.WithPriority(events.PriorityVolatile))
	return err
}

// OnUnregister is a no-op; the bus drops the handlers by owner.
func (b *Burn) OnUnregister(bus *events.Bus) {}

func (b *Burn) onDamageCalc(ctx *events.Context, payload events.Payload) (*events.Result, error) {
	if attacker, _ := payload.StringValue(KeyAttackerID); attacker != b.holderID {
		return nil, nil
	}
	if category, _ := payload.StringValue(KeyCategory); category != CategoryPhysical {
		return nil, nil
	}
	damage, ok := payload.IntValue(KeyDamage)
	if !ok {
		return nil, nil
	}
	return events.Update(events.Payload{KeyDamage: damage / 2}), nil
}

func (b *Burn) onTurnEnd(ctx *events.Context, payload events.Payload) (*events.Result, error) {
	if id, ok := payload.StringValue(KeyCombatantID); ok && id != b.holderID {
		return nil, nil
	}
	return events.Update(events.Payload{KeyResidualDamage: b.ResidualDamage()}), nil
}
