package watchers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/battle-sim-go/internal/battle/events"
	"github.com/magefree/battle-sim-go/internal/battle/mechanics"
)

func TestDamageWatcher(t *testing.T) {
	bus := events.NewBus(zaptest.NewLogger(t))
	w := NewDamageWatcher()
	require.NoError(t, bus.Attach(w))
	assert.Equal(t, 3, bus.Len())

	emit := func(kind events.Kind, payload events.Payload) {
		t.Helper()
		_, err := bus.Emit(kind, nil, payload)
		require.NoError(t, err)
	}

	emit(events.KindTurnStart, events.Payload{})
	assert.False(t, w.ConditionMet())

	emit(events.KindAfterHit, events.Payload{mechanics.KeyAttackerID: "a", mechanics.KeyDamage: 12})
	emit(events.KindAfterHit, events.Payload{mechanics.KeyAttackerID: "a", mechanics.KeyDamage: 5})
	emit(events.KindAfterHit, events.Payload{mechanics.KeyDamage: 99})
	emit(events.KindFaint, events.Payload{mechanics.KeyCombatantID: "b"})

	assert.True(t, w.ConditionMet())
	assert.Equal(t, 17, w.DamageDealt("a"))
	assert.Equal(t, []string{"b"}, w.Fainted())

	snapshot := w.Copy()
	assert.NotEqual(t, w.OwnerID(), snapshot.OwnerID())

	emit(events.KindTurnStart, events.Payload{})
	assert.False(t, w.ConditionMet())
	assert.Equal(t, 0, w.DamageDealt("a"))
	assert.Equal(t, []string{"b"}, w.Fainted(), "faints survive the turn reset")

	assert.Equal(t, 17, snapshot.DamageDealt("a"))
	assert.True(t, snapshot.ConditionMet())
}

func TestDamageWatcherDoesNotChangePayload(t *testing.T) {
	bus := events.NewBus(zaptest.NewLogger(t))
	require.NoError(t, bus.Attach(NewDamageWatcher()))

	in := events.Payload{mechanics.KeyAttackerID: "a", mechanics.KeyDamage: 12}
	out, err := bus.Emit(events.KindAfterHit, nil, in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
