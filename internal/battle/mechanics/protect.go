package mechanics

import (
	"github.com/magefree/battle-sim-go/internal/battle/events"
)

// Protect blocks every hit aimed at its holder until the turn ends, then
// detaches itself.
type Protect struct {
	events.BaseOwner
	holderID string
	bus      *events.Bus

	guard  *events.Handler
	expire *events.Handler
}

// NewProtect creates a protection for holderID.
func NewProtect(holderID string) *Protect {
	p := &Protect{
		BaseOwner: events.NewBaseOwner("protect:" + holderID),
		holderID:  holderID,
	}
	p.guard = events.NewHandler("protect.guard", p.onBeforeHit)
	p.expire = events.NewHandler("protect.expire", p.onTurnEnd)
	return p
}

// OnRegister subscribes the guard and a one-shot expiry at turn end.
func (p *Protect) OnRegister(bus *events.Bus) error {
	p.bus = bus
	if _, err := bus.Subscribe(events.KindBeforeHit, p.guard,
		events.WithOwner(p), events.WithPriority(events.PriorityVolatile)); err != nil {
		return err
	}
	_, err := bus.Subscribe(events.KindTurnEnd, p.expire,
		events.WithOwner(p), events.WithPriority(events.PriorityVolatile), events.Once())
	return err
}

// OnUnregister forgets the bus.
func (p *Protect) OnUnregister(bus *events.Bus) {
	p.bus = nil
}

func (p *Protect) onBeforeHit(ctx *events.Context, payload events.Payload) (*events.Result, error) {
	if defender, _ := payload.StringValue(KeyDefenderID); defender != p.holderID {
		return nil, nil
	}
	return events.Cancel(events.Payload{KeyProtected: true}), nil
}

func (p *Protect) onTurnEnd(ctx *events.Context, payload events.Payload) (*events.Result, error) {
	if p.bus != nil {
		p.bus.Detach(p)
	}
	return nil, nil
}
