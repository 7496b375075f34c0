package events

// Kind identifies a point in battle resolution at which mechanics may react.
// The set is closed; declaration order is the kind's rank when the bus
// orders subscriptions of equal priority.
type Kind int

const (
	// Turn events
	KindTurnStart Kind = iota + 1
	KindTurnEnd

	// Action phases
	KindBeforeAction
	KindActionStart
	KindActionResolve
	KindAfterAction

	// Switch phases
	KindSwitchDeclared
	KindSwitchOut
	KindSwitchIn

	// Status events
	KindStatusApply
	KindStatusRemove

	// Damage/Hit events
	KindDamageCalc
	KindBeforeHit
	KindAfterHit

	KindFaint

	kindSentinel
)

var kindNames = map[Kind]string{
	KindTurnStart:      "ON_TURN_START",
	KindTurnEnd:        "ON_TURN_END",
	KindBeforeAction:   "ON_BEFORE_ACTION",
	KindActionStart:    "ON_ACTION_START",
	KindActionResolve:  "ON_ACTION_RESOLVE",
	KindAfterAction:    "ON_AFTER_ACTION",
	KindSwitchDeclared: "ON_SWITCH_DECLARED",
	KindSwitchOut:      "ON_SWITCH_OUT",
	KindSwitchIn:       "ON_SWITCH_IN",
	KindStatusApply:    "ON_STATUS_APPLY",
	KindStatusRemove:   "ON_STATUS_REMOVE",
	KindDamageCalc:     "ON_DAMAGE_CALC",
	KindBeforeHit:      "ON_BEFORE_HIT",
	KindAfterHit:       "ON_AFTER_HIT",
	KindFaint:          "ON_FAINT",
}

// Kinds returns every valid kind in rank order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, int(kindSentinel)-1)
	for k := KindTurnStart; k < kindSentinel; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= KindTurnStart && k < kindSentinel
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}
