package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/battle-sim-go/internal/battle/events"
	"github.com/magefree/battle-sim-go/internal/battle/replay"
)

func newExchange(t *testing.T, seed uint64, maxHP int) *Exchange {
	t.Helper()
	ex := New(zaptest.NewLogger(t), seed, maxHP)
	require.NoError(t, ex.Setup())
	return ex
}

func TestSetupAttachesMechanics(t *testing.T) {
	ex := newExchange(t, 1, 160)

	assert.Equal(t, 2, ex.Bus().Count(events.KindDamageCalc))
	assert.Equal(t, 1, ex.Bus().Count(events.KindBeforeHit))
	assert.Equal(t, 2, ex.Bus().Count(events.KindTurnEnd))
	assert.True(t, ex.Bus().Attached(ex.Watcher()))
}

func TestFirstTurnProtectAndBurn(t *testing.T) {
	ex := newExchange(t, 1, 160)
	require.NoError(t, ex.RunTurn(1))

	charmander, pikachu := ex.Combatant(0), ex.Combatant(1)
	assert.Equal(t, 160, pikachu.HP, "protect blocks the opening hit")
	assert.LessOrEqual(t, charmander.HP, 160-19-10, "hit plus burn residual")

	// Protect expired at turn end.
	assert.Equal(t, 0, ex.Bus().Count(events.KindBeforeHit))

	assert.Equal(t, 0, ex.Watcher().DamageDealt(charmander.ID()))
	assert.GreaterOrEqual(t, ex.Watcher().DamageDealt(pikachu.ID()), 19)

	require.NoError(t, ex.RunTurn(2))
	assert.Less(t, pikachu.HP, 160)
	assert.Equal(t, 160-pikachu.HP, ex.Watcher().DamageDealt(charmander.ID()))
}

func TestRunIsDeterministic(t *testing.T) {
	a, err := newExchange(t, 42, 160).Run(5)
	require.NoError(t, err)
	b, err := newExchange(t, 42, 160).Run(5)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRunStopsOnFaint(t *testing.T) {
	ex := newExchange(t, 7, 20)
	outcome, err := ex.Run(10)
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Turns)
	assert.Equal(t, SecondID, outcome.Winner)
	assert.Equal(t, 0, outcome.HP[FirstID])
	assert.Equal(t, []string{FirstID}, outcome.Fainted)
	assert.True(t, ex.Combatant(0).Fainted())

	// The burn left with its holder; only the ability still hooks damage.
	assert.Equal(t, 1, ex.Bus().Count(events.KindDamageCalc))
}

func TestRecordedRunVerifies(t *testing.T) {
	ex := newExchange(t, 42, 160)
	journal := replay.NewJournal("exchange-test", 42)
	ex.Record(journal)

	_, err := ex.Run(4)
	require.NoError(t, err)
	require.Greater(t, journal.Size(), 0)
	assert.Equal(t, 160, journal.MaxHP)

	fresh := newExchange(t, 42, 160)
	require.NoError(t, replay.Verify(journal, fresh.Bus(), fresh.RNG()))
}

func TestBeforeHitSeesAndRewritesCalculatedDamage(t *testing.T) {
	ex := newExchange(t, 1, 160)

	var seen []events.Payload
	_, err := ex.Bus().Subscribe(events.KindBeforeHit, events.NewHandler("endure",
		func(ctx *events.Context, payload events.Payload) (*events.Result, error) {
			seen = append(seen, payload.Clone())
			return events.Update(events.Payload{"damage": 1}), nil
		}), events.WithPriority(events.PrioritySystem))
	require.NoError(t, err)

	require.NoError(t, ex.RunTurn(1))
	require.NoError(t, ex.RunTurn(2))

	charmander, pikachu := ex.Combatant(0), ex.Combatant(1)
	require.Len(t, seen, 4)
	for _, p := range seen {
		assert.Contains(t, p, "damage")
		assert.Contains(t, p, "category")
		assert.Contains(t, p, "attacker_id")
		assert.Contains(t, p, "defender_id")
	}

	// Turn 1 Charmander's hit is protected; every landed hit deals 1,
	// plus 10 burn residual per turn on Charmander.
	assert.Equal(t, 159, pikachu.HP)
	assert.Equal(t, 160-1-10-1-10, charmander.HP)
	assert.Equal(t, 1, ex.Watcher().DamageDealt(charmander.ID()))
}

func TestCombatantTakeDamage(t *testing.T) {
	c := NewCombatant("x", "X", 10, 5, "")
	assert.Equal(t, "physical", c.Category)
	assert.Equal(t, 7, c.TakeDamage(3))
	assert.Equal(t, 7, c.TakeDamage(-4))
	assert.Equal(t, 0, c.TakeDamage(100))
	assert.True(t, c.Fainted())
}
