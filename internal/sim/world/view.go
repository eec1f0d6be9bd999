package world

// View renders the semantic observation: a square window of palette ids
// centered on the player, with creature and player overlays drawn on top of
// the terrain. The window side is 2*ViewRadius+1.
func (w *World) View() []uint16 {
	r := w.cfg.ViewRadius
	side := 2*r + 1
	out := make([]uint16, side*side)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			at := w.player.Pos.add(Vec{dx, dy})
			id := uint16(w.TileAt(at))
			if c := w.creatureAt(at); c != nil {
				switch c.kind {
				case zombie:
					id = ViewZombie
				case skeleton:
					id = ViewSkeleton
				case cow:
					id = ViewCow
				}
			}
			out[(dy+r)*side+(dx+r)] = id
		}
	}
	out[r*side+r] = ViewPlayer
	return out
}

// ViewSide is the edge length of the observation window.
func (w *World) ViewSide() int { return 2*w.cfg.ViewRadius + 1 }
