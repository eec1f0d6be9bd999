package world

import "craftstream.ai/internal/sim/vocab"

// Vec is a 2D tile coordinate.
type Vec struct{ X, Y int }

func (v Vec) add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

const maxStat = 9

// Player is the single survival agent. Achievements is the monotonic counter
// map read by the task engine; it is cleared only on world reset.
type Player struct {
	Pos    Vec
	Facing Vec

	HP     int
	Food   int
	Drink  int
	Energy int

	Sleeping bool

	Inventory    map[string]int
	Achievements map[string]int

	hungerClock int
	thirstClock int
	tireClock   int
	healClock   int
	decayClock  int
}

func newPlayer(pos Vec) *Player {
	p := &Player{
		Pos:          pos,
		Facing:       Vec{0, 1},
		HP:           maxStat,
		Food:         maxStat,
		Drink:        maxStat,
		Energy:       maxStat,
		Inventory:    map[string]int{},
		Achievements: make(map[string]int, len(vocab.Achievements)),
	}
	for _, a := range vocab.Achievements {
		p.Achievements[a] = 0
	}
	return p
}

func (p *Player) achieve(name string) { p.Achievements[name]++ }

// CopyInventory returns a value copy, safe to hold across a world reset.
func (p *Player) CopyInventory() map[string]int {
	out := make(map[string]int, len(p.Inventory))
	for k, v := range p.Inventory {
		out[k] = v
	}
	return out
}

// pickaxeTier: 0 none, 1 wood, 2 stone, 3 iron.
func (p *Player) pickaxeTier() int {
	switch {
	case p.Inventory["iron_pickaxe"] > 0:
		return 3
	case p.Inventory["stone_pickaxe"] > 0:
		return 2
	case p.Inventory["wood_pickaxe"] > 0:
		return 1
	}
	return 0
}

func (p *Player) attackDamage() int {
	switch {
	case p.Inventory["iron_sword"] > 0:
		return 5
	case p.Inventory["stone_sword"] > 0:
		return 3
	case p.Inventory["wood_sword"] > 0:
		return 2
	}
	return 1
}

// updateVitals advances hunger/thirst/fatigue and the resulting HP changes.
// Called once per step after the action was applied.
func (p *Player) updateVitals() {
	p.hungerClock++
	if p.hungerClock >= 30 {
		p.hungerClock = 0
		if p.Food > 0 {
			p.Food--
		}
	}
	p.thirstClock++
	if p.thirstClock >= 25 {
		p.thirstClock = 0
		if p.Drink > 0 {
			p.Drink--
		}
	}
	if !p.Sleeping {
		p.tireClock++
		if p.tireClock >= 40 {
			p.tireClock = 0
			if p.Energy > 0 {
				p.Energy--
			}
		}
	}

	if p.Food <= 0 || p.Drink <= 0 || p.Energy <= 0 {
		p.decayClock++
		if p.decayClock >= 10 {
			p.decayClock = 0
			p.HP--
		}
		return
	}
	p.decayClock = 0
	p.healClock++
	if p.healClock >= 50 {
		p.healClock = 0
		if p.HP < maxStat {
			p.HP++
		}
	}
}
