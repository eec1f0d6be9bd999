package world

import "fmt"

// Action is one discrete player action per step.
type Action int

const (
	Noop Action = iota
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
	Do
	Sleep
	PlaceStone
	PlaceTable
	PlaceFurnace
	PlacePlant
	MakeWoodPickaxe
	MakeStonePickaxe
	MakeIronPickaxe
	MakeWoodSword
	MakeStoneSword
	MakeIronSword

	actionCount
)

var actionNames = [...]string{
	Noop:             "noop",
	MoveLeft:         "move_left",
	MoveRight:        "move_right",
	MoveUp:           "move_up",
	MoveDown:         "move_down",
	Do:               "do",
	Sleep:            "sleep",
	PlaceStone:       "place_stone",
	PlaceTable:       "place_table",
	PlaceFurnace:     "place_furnace",
	PlacePlant:       "place_plant",
	MakeWoodPickaxe:  "make_wood_pickaxe",
	MakeStonePickaxe: "make_stone_pickaxe",
	MakeIronPickaxe:  "make_iron_pickaxe",
	MakeWoodSword:    "make_wood_sword",
	MakeStoneSword:   "make_stone_sword",
	MakeIronSword:    "make_iron_sword",
}

// Actions lists every action name in id order, for protocol catalogs.
func Actions() []string {
	out := make([]string, actionCount)
	copy(out, actionNames[:])
	return out
}

func (a Action) String() string {
	if a >= 0 && int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// ParseAction maps a protocol action name onto an Action id.
func ParseAction(name string) (Action, error) {
	for i, n := range actionNames {
		if n == name {
			return Action(i), nil
		}
	}
	return Noop, fmt.Errorf("world: unknown action %q", name)
}
