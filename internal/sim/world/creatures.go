package world

type creatureKind uint8

const (
	zombie creatureKind = iota
	skeleton
	cow
)

type creature struct {
	kind creatureKind
	pos  Vec
	hp   int
}

func (w *World) creatureAt(p Vec) *creature {
	for _, c := range w.creatures {
		if c.pos == p {
			return c
		}
	}
	return nil
}

func (w *World) removeCreature(dead *creature) {
	out := w.creatures[:0]
	for _, c := range w.creatures {
		if c != dead {
			out = append(out, c)
		}
	}
	w.creatures = out
}

func (w *World) countKind(k creatureKind) int {
	n := 0
	for _, c := range w.creatures {
		if c.kind == k {
			n++
		}
	}
	return n
}

var moveDirs = [4]Vec{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

func (w *World) updateCreatures() {
	p := w.player
	for _, c := range w.creatures {
		// Adjacent hostiles bite before moving.
		if dist(c.pos, p.Pos) == 1 {
			switch c.kind {
			case zombie:
				if w.rng.Intn(100) < 30 {
					p.HP -= 2
				}
				continue
			case skeleton:
				if w.rng.Intn(100) < 30 {
					p.HP--
				}
				continue
			}
		}
		if w.rng.Intn(2) == 0 {
			continue
		}
		d := moveDirs[w.rng.Intn(4)]
		if c.kind == zombie && w.IsNight() && dist(c.pos, p.Pos) <= 6 {
			d = stepToward(c.pos, p.Pos)
		}
		next := c.pos.add(d)
		if w.TileAt(next).walkable() && w.creatureAt(next) == nil && next != p.Pos {
			c.pos = next
		}
	}
}

// spawn rolls new creatures near the player: zombies at night, cows by day,
// skeletons around exposed rock.
func (w *World) spawn() {
	p := w.player.Pos
	roll := func(permille int) bool { return w.rng.Intn(1000) < permille }
	pick := func() Vec {
		return Vec{p.X + w.rng.Intn(21) - 10, p.Y + w.rng.Intn(21) - 10}
	}

	if w.IsNight() && w.countKind(zombie) < 3 && roll(50) {
		if at := pick(); w.TileAt(at).walkable() && dist(at, p) > 3 && w.creatureAt(at) == nil {
			w.creatures = append(w.creatures, &creature{kind: zombie, pos: at, hp: 5})
		}
	}
	if !w.IsNight() && w.countKind(cow) < 3 && roll(30) {
		if at := pick(); w.TileAt(at) == Grass && dist(at, p) > 2 && w.creatureAt(at) == nil {
			w.creatures = append(w.creatures, &creature{kind: cow, pos: at, hp: 3})
		}
	}
	if w.countKind(skeleton) < 2 && roll(20) {
		if at := pick(); w.TileAt(at) == Path && dist(at, p) > 3 && w.creatureAt(at) == nil {
			w.creatures = append(w.creatures, &creature{kind: skeleton, pos: at, hp: 3})
		}
	}
}

// SpawnForTest drops a creature of the named kind at p. Tooling/test hook.
func (w *World) SpawnForTest(kind string, p Vec) bool {
	var k creatureKind
	var hp int
	switch kind {
	case "zombie":
		k, hp = zombie, 5
	case "skeleton":
		k, hp = skeleton, 3
	case "cow":
		k, hp = cow, 3
	default:
		return false
	}
	if w.creatureAt(p) != nil {
		return false
	}
	w.creatures = append(w.creatures, &creature{kind: k, pos: p, hp: hp})
	return true
}

func dist(a, b Vec) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

func stepToward(from, to Vec) Vec {
	dx, dy := to.X-from.X, to.Y-from.Y
	if dx != 0 && (dy == 0 || abs(dx) >= abs(dy)) {
		if dx > 0 {
			return Vec{1, 0}
		}
		return Vec{-1, 0}
	}
	if dy > 0 {
		return Vec{0, 1}
	}
	return Vec{0, -1}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
