package world

// Worldgen is a pure function of (seed, x, y): coordinate hashing picks a
// coarse biome per region, then per-tile rolls sprinkle resources. The same
// seed always yields the same map.

const biomeRegionSize = 24

func splitmix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func hashAt(seed int64, x, y int) uint64 {
	return splitmix(uint64(seed)*0x9e3779b97f4a7c15 ^ splitmix(uint64(int64(x))<<32|uint64(uint32(int32(y)))))
}

// permille rolls a 0..999 bucket for the tile.
func permille(seed int64, x, y int) int {
	return int(hashAt(seed, x, y) % 1000)
}

type biome uint8

const (
	biomePlains biome = iota
	biomeForest
	biomeMountain
	biomeLake
)

func biomeAt(seed int64, x, y int) biome {
	h := int(hashAt(seed+1, x/biomeRegionSize, y/biomeRegionSize) % 100)
	switch {
	case h < 12:
		return biomeLake
	case h < 36:
		return biomeMountain
	case h < 66:
		return biomeForest
	default:
		return biomePlains
	}
}

func genTile(seed int64, x, y int) Tile {
	r := permille(seed+2, x, y)
	switch biomeAt(seed, x, y) {
	case biomeLake:
		if r < 150 {
			return Sand
		}
		return Water
	case biomeMountain:
		switch {
		case r < 12:
			return Diamond
		case r < 50:
			return Iron
		case r < 130:
			return Coal
		case r < 140:
			return Lava
		case r < 180:
			return Path
		default:
			return Stone
		}
	case biomeForest:
		if r < 350 {
			return Tree
		}
		return Grass
	default:
		switch {
		case r < 60:
			return Tree
		case r < 80:
			return Water
		default:
			return Grass
		}
	}
}

const spawnClearRadius = 3

func (w *World) generate() {
	cx, cy := w.cfg.Width/2, w.cfg.Height/2
	for y := 0; y < w.cfg.Height; y++ {
		for x := 0; x < w.cfg.Width; x++ {
			t := genTile(w.seed, x, y)
			dx, dy := x-cx, y-cy
			if dx >= -spawnClearRadius && dx <= spawnClearRadius &&
				dy >= -spawnClearRadius && dy <= spawnClearRadius {
				t = Grass
			}
			w.tiles[y*w.cfg.Width+x] = t
		}
	}
	// A guaranteed tree and water edge next to the clearing keeps the first
	// tasks of an episode achievable on any seed.
	w.tiles[(cy-spawnClearRadius-1+w.cfg.Height)%w.cfg.Height*w.cfg.Width+cx] = Tree
	w.tiles[(cy+spawnClearRadius+1)%w.cfg.Height*w.cfg.Width+cx] = Water
}
