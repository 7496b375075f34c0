// Package mechanics holds battle effects that hook into the event bus:
// status conditions, volatile moves and abilities. Each mechanic is an
// events.Registrar, so attaching it registers all of its handlers under
// one owner and detaching it retires them together.
package mechanics

import "errors"

// Payload keys read and written by the mechanics in this package.
const (
	KeyDamage         = "damage"
	KeyCategory       = "category"
	KeyAttackerID     = "attacker_id"
	KeyDefenderID     = "defender_id"
	KeyCombatantID    = "combatant_id"
	KeyResidualDamage = "residual_damage"
	KeyProtected      = "protected"
	KeyBoosted        = "boosted"
)

// Move categories carried under KeyCategory.
const (
	CategoryPhysical = "physical"
	CategorySpecial  = "special"
	CategoryStatus   = "status"
)

// ErrNoRandom is returned by handlers that need to roll but were emitted
// without a random source.
var ErrNoRandom = errors.New("emission has no random source")
