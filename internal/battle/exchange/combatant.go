package exchange

import "github.com/magefree/battle-sim-go/internal/battle/mechanics"

// Combatant is one side's active creature in the scripted exchange.
type Combatant struct {
	id       string
	name     string
	MaxHP    int
	HP       int
	Power    int
	Category string
}

// NewCombatant creates a combatant at full HP.
func NewCombatant(id, name string, maxHP, power int, category string) *Combatant {
	if category == "" {
		category = mechanics.CategoryPhysical
	}
	return &Combatant{
		id:       id,
		name:     name,
		MaxHP:    maxHP,
		HP:       maxHP,
		Power:    power,
		Category: category,
	}
}

func (c *Combatant) ID() string   { return c.id }
func (c *Combatant) Name() string { return c.name }

// Fainted reports whether the combatant is out of HP.
func (c *Combatant) Fainted() bool {
	return c.HP <= 0
}

// TakeDamage lowers HP, flooring at zero, and returns the HP left.
func (c *Combatant) TakeDamage(amount int) int {
	if amount < 0 {
		amount = 0
	}
	c.HP = max(0, c.HP-amount)
	return c.HP
}
