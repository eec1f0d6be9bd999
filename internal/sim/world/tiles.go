package world

// Tile is a terrain/structure cell of the map.
type Tile uint8

const (
	Grass Tile = iota
	Sand
	Water
	Tree
	Stone
	Path
	Coal
	Iron
	Diamond
	Lava
	Table
	Furnace
	Plant
	RipePlant

	tileCount
)

// Overlay ids used only in observations: entities drawn on top of tiles.
// They extend the tile palette so one uint16 per cell covers both.
const (
	ViewPlayer uint16 = uint16(tileCount) + iota
	ViewZombie
	ViewSkeleton
	ViewCow
)

var tileNames = [...]string{
	Grass:     "grass",
	Sand:      "sand",
	Water:     "water",
	Tree:      "tree",
	Stone:     "stone",
	Path:      "path",
	Coal:      "coal",
	Iron:      "iron",
	Diamond:   "diamond",
	Lava:      "lava",
	Table:     "table",
	Furnace:   "furnace",
	Plant:     "plant",
	RipePlant: "ripe_plant",
}

// Palette returns the observation palette: tiles first, then entity overlays.
// Index positions are stable; clients cache this against its digest.
func Palette() []string {
	out := make([]string, 0, int(tileCount)+4)
	out = append(out, tileNames[:]...)
	out = append(out, "player", "zombie", "skeleton", "cow")
	return out
}

func (t Tile) String() string {
	if int(t) < len(tileNames) {
		return tileNames[t]
	}
	return "unknown"
}

func (t Tile) walkable() bool {
	switch t {
	case Grass, Sand, Path:
		return true
	}
	return false
}
