package events

// Priority orders subscriptions within a dispatch; larger runs first.
// Any signed value is legal. The named tiers are spaced so new tiers can be
// slotted between them without renumbering.
type Priority int

const (
	PrioritySystem   Priority = 10000
	PriorityField    Priority = 8000
	PrioritySide     Priority = 6000
	PriorityVolatile Priority = 4000
	PriorityAbility  Priority = 2000
	PriorityItem     Priority = 1000
	PriorityMove     Priority = 500
	PriorityDefault  Priority = 0
)

// String returns the tier name for named priorities and "CUSTOM" otherwise.
func (p Priority) String() string {
	switch p {
	case PrioritySystem:
		return "SYSTEM"
	case PriorityField:
		return "FIELD"
	case PrioritySide:
		return "SIDE"
	case PriorityVolatile:
		return "VOLATILE"
	case PriorityAbility:
		return "ABILITY"
	case PriorityItem:
		return "ITEM"
	case PriorityMove:
		return "MOVE"
	case PriorityDefault:
		return "DEFAULT"
	default:
		return "CUSTOM"
	}
}
