package world

import "testing"

func testWorld() *World {
	return New(Config{Width: 32, Height: 32, ViewRadius: 4, DayLength: 300, Seed: 42})
}

func TestReset_DeterministicUnderSeed(t *testing.T) {
	a := testWorld()
	b := testWorld()
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if a.TileAt(Vec{x, y}) != b.TileAt(Vec{x, y}) {
				t.Fatalf("tile (%d,%d) differs between same-seed worlds", x, y)
			}
		}
	}
	a.Reset(43)
	diff := 0
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if a.TileAt(Vec{x, y}) != b.TileAt(Vec{x, y}) {
				diff++
			}
		}
	}
	if diff == 0 {
		t.Fatalf("different seeds produced identical maps")
	}
}

func TestReset_ClearsAchievementsAndInventory(t *testing.T) {
	w := testWorld()
	w.Player().Inventory["wood"] = 5
	w.Player().Achievements["collect_wood"] = 3
	w.Reset(42)
	if w.Player().Inventory["wood"] != 0 {
		t.Fatalf("inventory survived reset")
	}
	if w.Player().Achievements["collect_wood"] != 0 {
		t.Fatalf("achievements survived reset")
	}
	if _, ok := w.Player().Achievements["place_table"]; !ok {
		t.Fatalf("achievement counters must be pre-seeded with zeros")
	}
}

func TestDo_CollectWood(t *testing.T) {
	w := testWorld()
	p := w.Player()
	w.SetTile(p.Pos.add(Vec{0, 1}), Tree)
	p.Facing = Vec{0, 1}

	w.Step(Do)
	if p.Inventory["wood"] != 1 {
		t.Fatalf("wood: got %d want 1", p.Inventory["wood"])
	}
	if p.Achievements["collect_wood"] != 1 {
		t.Fatalf("collect_wood: got %d want 1", p.Achievements["collect_wood"])
	}
	// Trees are renewable: repeated collection keeps working.
	w.Step(Do)
	if p.Inventory["wood"] != 2 {
		t.Fatalf("wood after second collect: got %d want 2", p.Inventory["wood"])
	}
}

func TestDo_StoneNeedsPickaxe(t *testing.T) {
	w := testWorld()
	p := w.Player()
	w.SetTile(p.Pos.add(Vec{0, 1}), Stone)
	p.Facing = Vec{0, 1}

	w.Step(Do)
	if p.Achievements["collect_stone"] != 0 {
		t.Fatalf("collected stone without a pickaxe")
	}
	p.Inventory["wood_pickaxe"] = 1
	w.Step(Do)
	if p.Achievements["collect_stone"] != 1 || p.Inventory["stone"] != 1 {
		t.Fatalf("collect_stone=%d stone=%d", p.Achievements["collect_stone"], p.Inventory["stone"])
	}
	if w.TileAt(p.Pos.add(Vec{0, 1})) != Path {
		t.Fatalf("mined stone should leave a path tile")
	}
}

func TestPlaceAndCraftChain(t *testing.T) {
	w := testWorld()
	p := w.Player()
	p.Facing = Vec{0, 1}
	p.Inventory["wood"] = 3

	w.Step(PlaceTable)
	if p.Achievements["place_table"] != 1 {
		t.Fatalf("place_table: got %d want 1", p.Achievements["place_table"])
	}
	if w.TileAt(p.Pos.add(Vec{0, 1})) != Table {
		t.Fatalf("table tile missing")
	}

	w.Step(MakeWoodPickaxe)
	if p.Achievements["make_wood_pickaxe"] != 1 || p.Inventory["wood_pickaxe"] != 1 {
		t.Fatalf("make_wood_pickaxe failed: ach=%d inv=%d",
			p.Achievements["make_wood_pickaxe"], p.Inventory["wood_pickaxe"])
	}

	// Iron tools need a furnace as well.
	p.Inventory["wood"] = 1
	p.Inventory["coal"] = 1
	p.Inventory["iron"] = 1
	w.Step(MakeIronSword)
	if p.Achievements["make_iron_sword"] != 0 {
		t.Fatalf("iron sword crafted without furnace")
	}
	p.Inventory["stone"] = 2
	p.Facing = Vec{1, 0}
	w.Step(PlaceFurnace)
	if p.Achievements["place_furnace"] != 1 {
		t.Fatalf("place_furnace failed")
	}
	w.Step(MakeIronSword)
	if p.Achievements["make_iron_sword"] != 1 {
		t.Fatalf("make_iron_sword failed with table+furnace nearby")
	}
}

func TestDo_DrinkWater(t *testing.T) {
	w := testWorld()
	p := w.Player()
	w.SetTile(p.Pos.add(Vec{1, 0}), Water)
	p.Facing = Vec{1, 0}
	p.Drink = 3

	w.Step(Do)
	if p.Achievements["collect_drink"] != 1 || p.Drink != 4 {
		t.Fatalf("drink: ach=%d stat=%d", p.Achievements["collect_drink"], p.Drink)
	}
}

func TestPlant_RipensAndFeeds(t *testing.T) {
	w := testWorld()
	p := w.Player()
	p.Facing = Vec{0, 1}
	p.Inventory["sapling"] = 1
	w.SetTile(p.Pos.add(Vec{0, 1}), Grass)

	w.Step(PlacePlant)
	if p.Achievements["place_plant"] != 1 {
		t.Fatalf("place_plant failed")
	}
	for i := 0; i < 101; i++ {
		w.Step(Noop)
	}
	if w.TileAt(p.Pos.add(Vec{0, 1})) != RipePlant {
		t.Fatalf("plant did not ripen: %v", w.TileAt(p.Pos.add(Vec{0, 1})))
	}
	p.Food = 3
	w.Step(Do)
	if p.Achievements["eat_plant"] != 1 || p.Food <= 3 {
		t.Fatalf("eat_plant: ach=%d food=%d", p.Achievements["eat_plant"], p.Food)
	}
}

func TestDefeatZombie(t *testing.T) {
	w := testWorld()
	p := w.Player()
	p.Facing = Vec{0, 1}
	p.Inventory["iron_sword"] = 1
	if !w.SpawnForTest("zombie", p.Pos.add(Vec{0, 1})) {
		t.Fatalf("spawn failed")
	}

	w.Step(Do)
	if p.Achievements["defeat_zombie"] != 1 {
		t.Fatalf("defeat_zombie: got %d want 1", p.Achievements["defeat_zombie"])
	}
	if w.creatureAt(p.Pos.add(Vec{0, 1})) != nil {
		t.Fatalf("dead zombie still present")
	}
}

func TestSleep_WakeUpAchievement(t *testing.T) {
	w := testWorld()
	p := w.Player()
	p.Energy = 5

	w.Step(Sleep)
	if !p.Sleeping {
		t.Fatalf("player should be sleeping")
	}
	for i := 0; i < 10 && p.Sleeping; i++ {
		w.Step(Noop)
	}
	if p.Sleeping {
		t.Fatalf("player never woke up")
	}
	if p.Achievements["wake_up"] != 1 {
		t.Fatalf("wake_up: got %d want 1", p.Achievements["wake_up"])
	}
}

func TestView_CenterIsPlayer(t *testing.T) {
	w := testWorld()
	view := w.View()
	side := w.ViewSide()
	if len(view) != side*side {
		t.Fatalf("view size: got %d want %d", len(view), side*side)
	}
	if view[side/2*side+side/2] != ViewPlayer {
		t.Fatalf("center of view is not the player overlay")
	}
}

func TestActions_ParseRoundTrip(t *testing.T) {
	for _, name := range Actions() {
		a, err := ParseAction(name)
		if err != nil {
			t.Fatalf("ParseAction(%q): %v", name, err)
		}
		if a.String() != name {
			t.Fatalf("round trip: %q -> %q", name, a.String())
		}
	}
	if _, err := ParseAction("fly"); err == nil {
		t.Fatalf("expected error for unknown action")
	}
}
