package mechanics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/battle-sim-go/internal/battle/events"
	"github.com/magefree/battle-sim-go/internal/battle/rng"
)

func newTestBus(t *testing.T) *events.Bus {
	t.Helper()
	return events.NewBus(zaptest.NewLogger(t))
}

func newTestContext() *events.Context {
	return &events.Context{RNG: rng.New(99)}
}

func TestBurnHalvesPhysicalDamageOfHolder(t *testing.T) {
	bus := newTestBus(t)
	burn := NewBurn("charmander", 160)
	require.NoError(t, bus.Attach(burn))

	out, err := bus.Emit(events.KindDamageCalc, newTestContext(), events.Payload{
		KeyDamage:     41,
		KeyCategory:   CategoryPhysical,
		KeyAttackerID: "charmander",
	})
	require.NoError(t, err)
	assert.Equal(t, 20, out[KeyDamage])
}

func TestBurnIgnoresSpecialMovesAndOtherAttackers(t *testing.T) {
	bus := newTestBus(t)
	require.NoError(t, bus.Attach(NewBurn("charmander", 160)))

	out, err := bus.Emit(events.KindDamageCalc, newTestContext(), events.Payload{
		KeyDamage:     40,
		KeyCategory:   CategorySpecial,
		KeyAttackerID: "charmander",
	})
	require.NoError(t, err)
	assert.Equal(t, 40, out[KeyDamage])

	out, err = bus.Emit(events.KindDamageCalc, newTestContext(), events.Payload{
		KeyDamage:     40,
		KeyCategory:   CategoryPhysical,
		KeyAttackerID: "squirtle",
	})
	require.NoError(t, err)
	assert.Equal(t, 40, out[KeyDamage])
}

func TestBurnResidualDamage(t *testing.T) {
	bus := newTestBus(t)
	burn := NewBurn("charmander", 160)
	require.NoError(t, bus.Attach(burn))

	out, err := bus.Emit(events.KindTurnEnd, newTestContext(), events.Payload{KeyCombatantID: "charmander"})
	require.NoError(t, err)
	assert.Equal(t, 10, out[KeyResidualDamage])

	out, err = bus.Emit(events.KindTurnEnd, newTestContext(), events.Payload{KeyCombatantID: "squirtle"})
	require.NoError(t, err)
	assert.NotContains(t, out, KeyResidualDamage)

	assert.Equal(t, 1, NewBurn("magikarp", 10).ResidualDamage())
}

func TestBurnDetachStopsEffect(t *testing.T) {
	bus := newTestBus(t)
	burn := NewBurn("charmander", 160)
	require.NoError(t, bus.Attach(burn))
	assert.Equal(t, 2, bus.Len())

	bus.Detach(burn)
	assert.Equal(t, 0, bus.Len())

	out, err := bus.Emit(events.KindTurnEnd, newTestContext(), events.Payload{KeyCombatantID: "charmander"})
	require.NoError(t, err)
	assert.NotContains(t, out, KeyResidualDamage)
}

func TestProtectBlocksHitsUntilTurnEnd(t *testing.T) {
	bus := newTestBus(t)
	protect := NewProtect("squirtle")
	require.NoError(t, bus.Attach(protect))

	var landed int
	_, err := bus.Subscribe(events.KindBeforeHit, events.NewHandler("hit", func(ctx *events.Context, payload events.Payload) (*events.Result, error) {
		landed++
		return nil, nil
	}))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		out, err := bus.Emit(events.KindBeforeHit, newTestContext(), events.Payload{KeyDefenderID: "squirtle"})
		require.NoError(t, err)
		assert.Equal(t, true, out[KeyProtected])
	}
	assert.Equal(t, 0, landed)

	// Hits on someone else go through.
	out, err := bus.Emit(events.KindBeforeHit, newTestContext(), events.Payload{KeyDefenderID: "charmander"})
	require.NoError(t, err)
	assert.NotContains(t, out, KeyProtected)
	assert.Equal(t, 1, landed)

	_, err = bus.Emit(events.KindTurnEnd, newTestContext(), events.Payload{})
	require.NoError(t, err)
	assert.False(t, bus.Attached(protect))
	assert.Equal(t, 1, bus.Len())

	out, err = bus.Emit(events.KindBeforeHit, newTestContext(), events.Payload{KeyDefenderID: "squirtle"})
	require.NoError(t, err)
	assert.NotContains(t, out, KeyProtected)
	assert.Equal(t, 2, landed)
}

func TestDamageBoost(t *testing.T) {
	bus := newTestBus(t)
	require.NoError(t, bus.Attach(NewDamageBoost("pikachu", "hustle", 1.5, 1)))

	out, err := bus.Emit(events.KindDamageCalc, newTestContext(), events.Payload{
		KeyDamage:     30,
		KeyAttackerID: "pikachu",
	})
	require.NoError(t, err)
	assert.Equal(t, 45, out[KeyDamage])
	assert.Equal(t, true, out[KeyBoosted])
}

func TestDamageBoostMissedRoll(t *testing.T) {
	bus := newTestBus(t)
	require.NoError(t, bus.Attach(NewDamageBoost("pikachu", "hustle", 1.5, 0)))

	out, err := bus.Emit(events.KindDamageCalc, newTestContext(), events.Payload{
		KeyDamage:     30,
		KeyAttackerID: "pikachu",
	})
	require.NoError(t, err)
	assert.Equal(t, 30, out[KeyDamage])
	assert.NotContains(t, out, KeyBoosted)
}

func TestDamageBoostErrors(t *testing.T) {
	bus := newTestBus(t)
	require.NoError(t, bus.Attach(NewDamageBoost("pikachu", "hustle", 1.5, 2)))

	payload := events.Payload{KeyDamage: 30, KeyAttackerID: "pikachu"}

	_, err := bus.Emit(events.KindDamageCalc, newTestContext(), payload)
	assert.ErrorIs(t, err, rng.ErrInvalidProbability)

	_, err = bus.Emit(events.KindDamageCalc, nil, payload)
	assert.ErrorIs(t, err, ErrNoRandom)
}

func TestBurnRunsBeforeAbilityBoost(t *testing.T) {
	bus := newTestBus(t)
	require.NoError(t, bus.Attach(NewDamageBoost("charmander", "guts", 2, 1)))
	require.NoError(t, bus.Attach(NewBurn("charmander", 160)))

	out, err := bus.Emit(events.KindDamageCalc, newTestContext(), events.Payload{
		KeyDamage:     41,
		KeyCategory:   CategoryPhysical,
		KeyAttackerID: "charmander",
	})
	require.NoError(t, err)
	// Volatile tier halves first (20), the ability then doubles.
	assert.Equal(t, 40, out[KeyDamage])
}
