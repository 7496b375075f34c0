// Package action models what a combatant chose to do this turn and whom
// it aims at. It is the narrow slice of the battle model the event
// context carries.
package action

import (
	"errors"
	"fmt"
)

var (
	ErrMissingTarget   = errors.New("use-move action requires a target")
	ErrMissingMove     = errors.New("use-move action requires a move slot")
	ErrMissingSwitchIn = errors.New("switch action requires a combatant to switch in")
	ErrUnknownType     = errors.New("unknown action type")
)

// Type is the kind of action chosen.
type Type int

const (
	TypeUseMove Type = iota + 1
	TypeSwitch
	TypeUseItem
	TypeRun
)

// String returns the string representation of the action type.
func (t Type) String() string {
	switch t {
	case TypeUseMove:
		return "USE_MOVE"
	case TypeSwitch:
		return "SWITCH_OUT"
	case TypeUseItem:
		return "USE_ITEM"
	case TypeRun:
		return "RUN"
	default:
		return "UNKNOWN"
	}
}

// Target designates who or what an action aims at.
type Target int

const (
	TargetSingleOpponent Target = iota + 1
	TargetSelf
	TargetUserSide
	TargetOpponentSide
	TargetField
	TargetAllAdjacentEnemies
	TargetAllAdjacent
)

// String returns the string representation of the target.
func (t Target) String() string {
	switch t {
	case TargetSingleOpponent:
		return "SINGLE_OPPONENT"
	case TargetSelf:
		return "SELF"
	case TargetUserSide:
		return "USER_SIDE"
	case TargetOpponentSide:
		return "OPPONENT_SIDE"
	case TargetField:
		return "FIELD"
	case TargetAllAdjacentEnemies:
		return "ALL_ADJACENT_ENEMIES"
	case TargetAllAdjacent:
		return "ALL_ADJACENT"
	default:
		return "UNKNOWN"
	}
}

// Ptr returns a pointer to t, for optional context fields.
func (t Target) Ptr() *Target {
	return &t
}

// MoveSlot is one of the four move slots, 1-based.
type MoveSlot int

const (
	SlotNone MoveSlot = iota
	SlotFirst
	SlotSecond
	SlotThird
	SlotFourth
)

// Index returns the 0-based slot index, or -1 for SlotNone.
func (s MoveSlot) Index() int {
	if s < SlotFirst || s > SlotFourth {
		return -1
	}
	return int(s) - 1
}

// Action is one combatant's choice for the turn.
type Action struct {
	Type     Type
	Target   Target
	Move     MoveSlot
	SwitchIn string // ID of the combatant coming in, for TypeSwitch
}

// UseMove builds a move action.
func UseMove(slot MoveSlot, target Target) *Action {
	return &Action{Type: TypeUseMove, Target: target, Move: slot}
}

// Switch builds a switch action bringing in the combatant with the given ID.
func Switch(switchIn string) *Action {
	return &Action{Type: TypeSwitch, SwitchIn: switchIn}
}

// Validate checks that the fields required by the action type are present.
func (a *Action) Validate() error {
	switch a.Type {
	case TypeUseMove:
		if a.Target == 0 {
			return ErrMissingTarget
		}
		if a.Move.Index() < 0 {
			return ErrMissingMove
		}
	case TypeSwitch:
		if a.SwitchIn == "" {
			return ErrMissingSwitchIn
		}
	case TypeUseItem, TypeRun:
	default:
		return fmt.Errorf("%w: %d", ErrUnknownType, a.Type)
	}
	return nil
}
