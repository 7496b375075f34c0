// Package watchers holds bus owners that observe a battle without changing
// it. They subscribe at the lowest priority so they see final values.
package watchers

import (
	"maps"
	"slices"

	"github.com/magefree/battle-sim-go/internal/battle/events"
	"github.com/magefree/battle-sim-go/internal/battle/mechanics"
)

// DamageWatcher tracks damage dealt per attacker during the current turn,
// and every faint over the whole battle.
type DamageWatcher struct {
	events.BaseOwner
	dealt     map[string]int // attackerID -> damage this turn
	fainted   []string
	condition bool

	reset *events.Handler
	hit   *events.Handler
	faint *events.Handler
}

// NewDamageWatcher creates an empty watcher.
func NewDamageWatcher() *DamageWatcher {
	w := &DamageWatcher{
		BaseOwner: events.NewBaseOwner("damage-watcher"),
		dealt:     make(map[string]int),
	}
	w.reset = events.NewHandler("damage-watcher.reset", w.onTurnStart)
	w.hit = events.NewHandler("damage-watcher.hit", w.onAfterHit)
	w.faint = events.NewHandler("damage-watcher.faint", w.onFaint)
	return w
}

func (w *DamageWatcher) OnRegister(bus *events.Bus) error {
	for _, s := range []struct {
		kind    events.Kind
		handler *events.Handler
	}{
		{events.KindTurnStart, w.reset},
		{events.KindAfterHit, w.hit},
		{events.KindFaint, w.faint},
	} {
		if _, err := bus.Subscribe(s.kind, s.handler,
			events.WithOwner(w), events.WithPriority(events.PriorityDefault)); err != nil {
			return err
		}
	}
	return nil
}

func (w *DamageWatcher) OnUnregister(bus *events.Bus) {}

// Reset clears the per-turn tally. Faints are kept.
func (w *DamageWatcher) Reset() {
	w.dealt = make(map[string]int)
	w.condition = false
}

// ConditionMet reports whether any hit landed this turn.
func (w *DamageWatcher) ConditionMet() bool {
	return w.condition
}

// DamageDealt returns the damage attackerID dealt this turn.
func (w *DamageWatcher) DamageDealt(attackerID string) int {
	return w.dealt[attackerID]
}

// Fainted returns the IDs of fainted combatants in faint order.
func (w *DamageWatcher) Fainted() []string {
	return slices.Clone(w.fainted)
}

// Copy returns an independent copy sharing no state. The copy has a new
// owner identity, so it can be attached alongside the original.
func (w *DamageWatcher) Copy() *DamageWatcher {
	c := NewDamageWatcher()
	c.dealt = maps.Clone(w.dealt)
	c.fainted = slices.Clone(w.fainted)
	c.condition = w.condition
	return c
}

func (w *DamageWatcher) onTurnStart(ctx *events.Context, payload events.Payload) (*events.Result, error) {
	w.Reset()
	return nil, nil
}

func (w *DamageWatcher) onAfterHit(ctx *events.Context, payload events.Payload) (*events.Result, error) {
	attacker, ok := payload.StringValue(mechanics.KeyAttackerID)
	if !ok || attacker == "" {
		return nil, nil
	}
	damage, _ := payload.IntValue(mechanics.KeyDamage)
	w.dealt[attacker] += damage
	w.condition = true
	return nil, nil
}

func (w *DamageWatcher) onFaint(ctx *events.Context, payload events.Payload) (*events.Result, error) {
	if id, ok := payload.StringValue(mechanics.KeyCombatantID); ok && id != "" {
		w.fainted = append(w.fainted, id)
	}
	return nil, nil
}
