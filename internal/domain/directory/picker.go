package directory

import (
	"fmt"
	"math/rand"
)

// Picker selects one active employee of a role for team assignment. It is
// an explicit dependency of the coordinator so tests can substitute a
// deterministic strategy for the production random one.
type Picker interface {
	Pick(role Role) (*Employee, error)
}

// RandomPicker picks uniformly at random from the active pool.
type RandomPicker struct {
	roster *Roster
	intn   func(n int) int
}

func NewRandomPicker(roster *Roster) *RandomPicker {
	return &RandomPicker{roster: roster, intn: rand.Intn}
}

func (p *RandomPicker) Pick(role Role) (*Employee, error) {
	pool := p.roster.ActiveByRole(role)
	if len(pool) == 0 {
		return nil, fmt.Errorf("no active %s staff", role)
	}
	return pool[p.intn(len(pool))], nil
}
