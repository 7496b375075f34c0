// Package exchange drives a scripted one-on-one battle through the event
// bus. It is the producer side of the bus contract: it builds one context
// per emission, threads payloads between emissions and applies what the
// handlers decide.
package exchange

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/magefree/battle-sim-go/internal/battle/action"
	"github.com/magefree/battle-sim-go/internal/battle/events"
	"github.com/magefree/battle-sim-go/internal/battle/mechanics"
	"github.com/magefree/battle-sim-go/internal/battle/replay"
	"github.com/magefree/battle-sim-go/internal/battle/rng"
	"github.com/magefree/battle-sim-go/internal/battle/watchers"
)

// Payload keys the driver writes besides the mechanics ones.
const (
	KeyTurn        = "turn"
	KeyMoveSlot    = "move_slot"
	KeyRemainingHP = "remaining_hp"
	KeySkip        = "skip"
)

// Fixed combatant IDs keep journals comparable across runs.
const (
	FirstID  = "p1-charmander"
	SecondID = "p2-pikachu"
)

// Outcome summarises a finished run.
type Outcome struct {
	Turns   int
	Winner  string // combatant ID, empty on a draw
	HP      map[string]int
	Fainted []string
}

// Exchange is one scripted battle: a bus, a seeded generator and two
// combatants trading hits.
type Exchange struct {
	logger  *zap.Logger
	bus     *events.Bus
	emitter replay.Emitter
	rng     *rng.RNG
	sides   [2]*Combatant
	owners  map[string][]events.Owner
	watcher *watchers.DamageWatcher
}

// New creates an exchange. Call Setup before running it.
func New(logger *zap.Logger, seed uint64, maxHP int) *Exchange {
	if logger == nil {
		logger = zap.NewNop()
	}
	bus := events.NewBus(logger.Named("bus"))
	return &Exchange{
		logger:  logger,
		bus:     bus,
		emitter: bus,
		rng:     rng.New(seed),
		sides: [2]*Combatant{
			NewCombatant(FirstID, "Charmander", maxHP, 30, mechanics.CategoryPhysical),
			NewCombatant(SecondID, "Pikachu", maxHP, 24, mechanics.CategorySpecial),
		},
		owners:  make(map[string][]events.Owner),
		watcher: watchers.NewDamageWatcher(),
	}
}

// Bus returns the exchange's event bus.
func (e *Exchange) Bus() *events.Bus { return e.bus }

// RNG returns the exchange's random source.
func (e *Exchange) RNG() *rng.RNG { return e.rng }

// Watcher returns the damage watcher attached by Setup.
func (e *Exchange) Watcher() *watchers.DamageWatcher { return e.watcher }

// Combatant returns the combatant on side 0 or 1.
func (e *Exchange) Combatant(side int) *Combatant { return e.sides[side] }

// Record routes every emission through a recorder writing to journal and
// stamps the journal with the combatants' max HP.
func (e *Exchange) Record(journal *replay.Journal) *replay.Recorder {
	journal.MaxHP = e.sides[0].MaxHP
	rec := replay.NewRecorder(e.logger.Named("replay"), e.bus, journal)
	e.emitter = rec
	return rec
}

// Setup attaches the scripted mechanics: the first combatant is burned,
// the second holds a damage boosting ability and opens with Protect.
func (e *Exchange) Setup() error {
	first, second := e.sides[0], e.sides[1]

	if err := e.bus.Attach(e.watcher); err != nil {
		return fmt.Errorf("failed to attach %s: %w", e.watcher.Name(), err)
	}

	attach := []struct {
		holder string
		owner  events.Owner
	}{
		{first.ID(), mechanics.NewBurn(first.ID(), first.MaxHP)},
		{second.ID(), mechanics.NewDamageBoost(second.ID(), "static-charge", 1.5, 0.3)},
		{second.ID(), mechanics.NewProtect(second.ID())},
	}
	for _, a := range attach {
		if err := e.bus.Attach(a.owner); err != nil {
			return fmt.Errorf("failed to attach %s: %w", a.owner.Name(), err)
		}
		e.owners[a.holder] = append(e.owners[a.holder], a.owner)
	}
	return nil
}

// Run plays up to turns turns and stops early when a combatant faints.
func (e *Exchange) Run(turns int) (*Outcome, error) {
	outcome := &Outcome{HP: make(map[string]int)}

	for turn := 1; turn <= turns; turn++ {
		outcome.Turns = turn
		if err := e.RunTurn(turn); err != nil {
			return nil, fmt.Errorf("turn %d: %w", turn, err)
		}
		if e.over() {
			break
		}
	}

	for _, c := range e.sides {
		outcome.HP[c.ID()] = c.HP
	}
	outcome.Fainted = e.watcher.Fainted()
	switch {
	case e.sides[0].Fainted() && !e.sides[1].Fainted():
		outcome.Winner = e.sides[1].ID()
	case e.sides[1].Fainted() && !e.sides[0].Fainted():
		outcome.Winner = e.sides[0].ID()
	}

	e.logger.Info("exchange finished",
		zap.Int("turns", outcome.Turns),
		zap.String("winner", outcome.Winner))

	return outcome, nil
}

// RunTurn plays one turn: both sides attack in order, then end-of-turn
// effects resolve.
func (e *Exchange) RunTurn(turn int) error {
	if _, err := e.emit(events.KindTurnStart, nil, nil, events.Payload{KeyTurn: turn}); err != nil {
		return err
	}

	for i, attacker := range e.sides {
		defender := e.sides[1-i]
		if err := e.attack(attacker, defender); err != nil {
			return err
		}
		if e.over() {
			return nil
		}
	}

	for _, c := range e.sides {
		e.logger.Debug("turn damage",
			zap.Int("turn", turn),
			zap.String("attacker", c.Name()),
			zap.Int("damage", e.watcher.DamageDealt(c.ID())))
	}

	for _, c := range e.sides {
		out, err := e.emit(events.KindTurnEnd, c, nil, events.Payload{
			KeyTurn:                  turn,
			mechanics.KeyCombatantID: c.ID(),
		})
		if err != nil {
			return err
		}
		if residual, ok := out.IntValue(mechanics.KeyResidualDamage); ok {
			left := c.TakeDamage(residual)
			e.logger.Debug("residual damage",
				zap.String("combatant", c.Name()),
				zap.Int("damage", residual),
				zap.Int("remaining_hp", left))
			if c.Fainted() {
				return e.faint(c)
			}
		}
	}
	return nil
}

func (e *Exchange) attack(attacker, defender *Combatant) error {
	act := action.UseMove(action.SlotFirst, action.TargetSingleOpponent)
	if err := act.Validate(); err != nil {
		return err
	}

	out, err := e.emit(events.KindBeforeAction, attacker, act, events.Payload{
		mechanics.KeyAttackerID: attacker.ID(),
		KeyMoveSlot:             int(act.Move),
	})
	if err != nil {
		return err
	}
	if skip, _ := out.BoolValue(KeySkip); skip {
		return nil
	}

	base, err := e.rng.IntRange(attacker.Power-5, attacker.Power+5)
	if err != nil {
		return err
	}
	calc, err := e.emit(events.KindDamageCalc, attacker, act, events.Payload{
		mechanics.KeyDamage:     base,
		mechanics.KeyCategory:   attacker.Category,
		mechanics.KeyAttackerID: attacker.ID(),
		mechanics.KeyDefenderID: defender.ID(),
	})
	if err != nil {
		return err
	}

	// The damage-calc result carries on into the hit check.
	hit, err := e.emit(events.KindBeforeHit, attacker, act, calc)
	if err != nil {
		return err
	}
	if protected, _ := hit.BoolValue(mechanics.KeyProtected); protected {
		e.logger.Debug("hit blocked",
			zap.String("attacker", attacker.Name()),
			zap.String("defender", defender.Name()))
		return nil
	}

	damage, _ := hit.IntValue(mechanics.KeyDamage)
	left := defender.TakeDamage(damage)
	e.logger.Debug("hit landed",
		zap.String("attacker", attacker.Name()),
		zap.String("defender", defender.Name()),
		zap.Int("damage", damage),
		zap.Int("remaining_hp", left))

	if _, err := e.emit(events.KindAfterHit, attacker, act, events.Payload{
		mechanics.KeyAttackerID: attacker.ID(),
		mechanics.KeyDefenderID: defender.ID(),
		mechanics.KeyDamage:     damage,
		KeyRemainingHP:          left,
	}); err != nil {
		return err
	}

	if defender.Fainted() {
		return e.faint(defender)
	}
	return nil
}

// faint announces c and retires every mechanic it held.
func (e *Exchange) faint(c *Combatant) error {
	if _, err := e.emit(events.KindFaint, c, nil, events.Payload{mechanics.KeyCombatantID: c.ID()}); err != nil {
		return err
	}
	for _, owner := range e.owners[c.ID()] {
		e.bus.Detach(owner)
	}
	delete(e.owners, c.ID())

	e.logger.Info("combatant fainted", zap.String("combatant", c.Name()))
	return nil
}

func (e *Exchange) emit(kind events.Kind, actor *Combatant, act *action.Action, payload events.Payload) (events.Payload, error) {
	ctx := &events.Context{RNG: e.rng, Action: act}
	if actor != nil {
		ctx.Actor = actor
	}
	if act != nil {
		ctx.Target = act.Target.Ptr()
	}
	return e.emitter.Emit(kind, ctx, payload)
}

func (e *Exchange) over() bool {
	return e.sides[0].Fainted() || e.sides[1].Fainted()
}
