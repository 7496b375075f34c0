package mechanics

import (
	"fmt"

	"github.com/magefree/battle-sim-go/internal/battle/events"
)

// DamageBoost is an ability that multiplies its holder's outgoing damage
// by Factor whenever a Chance roll succeeds.
type DamageBoost struct {
	events.BaseOwner
	holderID string
	Factor   float64
	Chance   float64

	boost *events.Handler
}

// NewDamageBoost creates the ability on holderID.
func NewDamageBoost(holderID, name string, factor, chance float64) *DamageBoost {
	d := &DamageBoost{
		BaseOwner: events.NewBaseOwner(name + ":" + holderID),
		holderID:  holderID,
		Factor:    factor,
		Chance:    chance,
	}
	d.boost = events.NewHandler(name+".boost", d.onDamageCalc)
	return d
}

func (d *DamageBoost) OnRegister(bus *events.Bus) error {
	_, err := bus.Subscribe(events.KindDamageCalc, d.boost,
		events.WithOwner(d), events.WithPriority(events.PriorityAbility))
	return err
}

func (d *DamageBoost) OnUnregister(bus *events.Bus) {}

func (d *DamageBoost) onDamageCalc(ctx *events.Context, payload events.Payload) (*events.Result, error) {
	if attacker, _ := payload.StringValue(KeyAttackerID); attacker != d.holderID {
		return nil, nil
	}
	damage, ok := payload.IntValue(KeyDamage)
	if !ok {
		return nil, nil
	}
	if ctx == nil || ctx.RNG == nil {
		return nil, fmt.Errorf("%s: %w", d.Name(), ErrNoRandom)
	}

	hit, err := ctx.RNG.Chance(d.Chance)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Name(), err)
	}
	if !hit {
		return nil, nil
	}
	return events.Update(events.Payload{
		KeyDamage:  int(float64(damage) * d.Factor),
		KeyBoosted: true,
	}), nil
}
