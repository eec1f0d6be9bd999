// Package world is a small deterministic grid-world survival simulation: a
// tilemap with collectable resources, craft stations, day/night, and a few
// hostile or edible creatures. It exists to drive the achievement counters
// the task engine rewards against.
package world

import "math/rand"

type Config struct {
	Width      int
	Height     int
	ViewRadius int
	DayLength  int
	Seed       int64
}

func (c *Config) applyDefaults() {
	if c.Width <= 0 {
		c.Width = 64
	}
	if c.Height <= 0 {
		c.Height = 64
	}
	if c.ViewRadius <= 0 {
		c.ViewRadius = 4
	}
	if c.DayLength <= 0 {
		c.DayLength = 300
	}
}

// World owns the tilemap, the player, and the creatures for one episode.
// Everything is single-threaded: Step runs to completion per call.
type World struct {
	cfg Config

	tiles     []Tile
	player    *Player
	creatures []*creature
	planted   map[Vec]int

	tick int
	seed int64
	rng  *rand.Rand
}

func New(cfg Config) *World {
	cfg.applyDefaults()
	w := &World{cfg: cfg}
	w.Reset(cfg.Seed)
	return w
}

// Reset regenerates the map from seed and replaces the player, clearing all
// achievement counters and inventory.
func (w *World) Reset(seed int64) {
	w.seed = seed
	w.rng = rand.New(rand.NewSource(seed))
	w.tick = 0
	w.creatures = nil
	w.planted = map[Vec]int{}
	w.tiles = make([]Tile, w.cfg.Width*w.cfg.Height)
	w.generate()
	w.player = newPlayer(Vec{w.cfg.Width / 2, w.cfg.Height / 2})
}

func (w *World) Player() *Player { return w.player }
func (w *World) Tick() int       { return w.tick }

// IsNight reports the dark half of the day cycle.
func (w *World) IsNight() bool {
	return w.tick%w.cfg.DayLength >= w.cfg.DayLength/2
}

func (w *World) inBounds(p Vec) bool {
	return p.X >= 0 && p.X < w.cfg.Width && p.Y >= 0 && p.Y < w.cfg.Height
}

// TileAt returns the tile at p, Water for out-of-bounds coordinates.
func (w *World) TileAt(p Vec) Tile {
	if !w.inBounds(p) {
		return Water
	}
	return w.tiles[p.Y*w.cfg.Width+p.X]
}

// SetTile overwrites a cell. Used by tools and tests to stage scenarios.
func (w *World) SetTile(p Vec, t Tile) {
	if w.inBounds(p) {
		w.tiles[p.Y*w.cfg.Width+p.X] = t
	}
}

// Step applies one player action and advances the simulation: creatures act,
// plants ripen, vitals tick, spawns roll.
func (w *World) Step(a Action) {
	p := w.player
	if p.HP <= 0 {
		return
	}

	if p.Sleeping {
		if p.Energy < maxStat {
			p.Energy++
		}
		if p.Energy >= maxStat {
			p.Sleeping = false
			p.achieve("wake_up")
		}
	} else {
		w.apply(a)
	}

	w.updateCreatures()
	w.updatePlants()
	p.updateVitals()
	w.spawn()
	w.tick++
}

func (w *World) apply(a Action) {
	p := w.player
	switch a {
	case Noop:
	case MoveLeft:
		w.move(Vec{-1, 0})
	case MoveRight:
		w.move(Vec{1, 0})
	case MoveUp:
		w.move(Vec{0, -1})
	case MoveDown:
		w.move(Vec{0, 1})
	case Do:
		w.doAction()
	case Sleep:
		if p.Energy < maxStat {
			p.Sleeping = true
		}
	case PlaceStone:
		w.place(Stone, "stone", 1, "place_stone", true)
	case PlaceTable:
		w.place(Table, "wood", 2, "place_table", false)
	case PlaceFurnace:
		w.place(Furnace, "stone", 2, "place_furnace", false)
	case PlacePlant:
		w.placePlant()
	case MakeWoodPickaxe:
		w.craft("wood_pickaxe", map[string]int{"wood": 1}, false, "make_wood_pickaxe")
	case MakeStonePickaxe:
		w.craft("stone_pickaxe", map[string]int{"wood": 1, "stone": 1}, false, "make_stone_pickaxe")
	case MakeIronPickaxe:
		w.craft("iron_pickaxe", map[string]int{"wood": 1, "coal": 1, "iron": 1}, true, "make_iron_pickaxe")
	case MakeWoodSword:
		w.craft("wood_sword", map[string]int{"wood": 1}, false, "make_wood_sword")
	case MakeStoneSword:
		w.craft("stone_sword", map[string]int{"wood": 1, "stone": 1}, false, "make_stone_sword")
	case MakeIronSword:
		w.craft("iron_sword", map[string]int{"wood": 1, "coal": 1, "iron": 1}, true, "make_iron_sword")
	}
}

func (w *World) move(d Vec) {
	p := w.player
	p.Facing = d
	target := p.Pos.add(d)
	if !w.TileAt(target).walkable() {
		return
	}
	if w.creatureAt(target) != nil {
		return
	}
	p.Pos = target
}

func (w *World) doAction() {
	p := w.player
	target := p.Pos.add(p.Facing)

	if c := w.creatureAt(target); c != nil {
		c.hp -= p.attackDamage()
		if c.hp <= 0 {
			w.removeCreature(c)
			switch c.kind {
			case zombie:
				p.achieve("defeat_zombie")
			case skeleton:
				p.achieve("defeat_skeleton")
			case cow:
				p.Food = min(maxStat, p.Food+6)
				p.achieve("eat_cow")
			}
		}
		return
	}

	switch w.TileAt(target) {
	case Tree:
		p.Inventory["wood"]++
		p.achieve("collect_wood")
	case Stone:
		if p.pickaxeTier() >= 1 {
			p.Inventory["stone"]++
			p.achieve("collect_stone")
			w.SetTile(target, Path)
		}
	case Coal:
		if p.pickaxeTier() >= 1 {
			p.Inventory["coal"]++
			p.achieve("collect_coal")
			w.SetTile(target, Path)
		}
	case Iron:
		if p.pickaxeTier() >= 2 {
			p.Inventory["iron"]++
			p.achieve("collect_iron")
			w.SetTile(target, Path)
		}
	case Diamond:
		if p.pickaxeTier() >= 3 {
			p.Inventory["diamond"]++
			p.achieve("collect_diamond")
			w.SetTile(target, Path)
		}
	case Water:
		p.Drink = min(maxStat, p.Drink+1)
		p.achieve("collect_drink")
	case Grass:
		if w.rng.Intn(10) == 0 {
			p.Inventory["sapling"]++
			p.achieve("collect_sapling")
		}
	case RipePlant:
		p.Food = min(maxStat, p.Food+4)
		p.achieve("eat_plant")
		w.SetTile(target, Grass)
	}
}

// place puts a structure tile in front of the player if the cost is covered.
// onWater additionally allows placing over water (stone bridges).
func (w *World) place(t Tile, costItem string, costN int, achievement string, onWater bool) {
	p := w.player
	target := p.Pos.add(p.Facing)
	if !w.inBounds(target) || w.creatureAt(target) != nil {
		return
	}
	if !w.TileAt(target).walkable() && !(onWater && w.TileAt(target) == Water) {
		return
	}
	if p.Inventory[costItem] < costN {
		return
	}
	p.Inventory[costItem] -= costN
	w.SetTile(target, t)
	p.achieve(achievement)
}

func (w *World) placePlant() {
	p := w.player
	target := p.Pos.add(p.Facing)
	if w.TileAt(target) != Grass || p.Inventory["sapling"] < 1 {
		return
	}
	p.Inventory["sapling"]--
	w.SetTile(target, Plant)
	w.planted[target] = w.tick
	p.achieve("place_plant")
}

func (w *World) craft(item string, cost map[string]int, needFurnace bool, achievement string) {
	p := w.player
	if !w.nearby(Table, 2) {
		return
	}
	if needFurnace && !w.nearby(Furnace, 2) {
		return
	}
	for it, n := range cost {
		if p.Inventory[it] < n {
			return
		}
	}
	for it, n := range cost {
		p.Inventory[it] -= n
	}
	p.Inventory[item]++
	p.achieve(achievement)
}

// nearby reports whether a tile of kind t lies within chebyshev distance r
// of the player.
func (w *World) nearby(t Tile, r int) bool {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if w.TileAt(w.player.Pos.add(Vec{dx, dy})) == t {
				return true
			}
		}
	}
	return false
}

func (w *World) updatePlants() {
	for pos, t := range w.planted {
		if w.TileAt(pos) != Plant {
			delete(w.planted, pos)
			continue
		}
		if w.tick-t >= 100 {
			w.SetTile(pos, RipePlant)
			delete(w.planted, pos)
		}
	}
}
