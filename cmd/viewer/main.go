// Command viewer is a local debug TUI: it runs a session in-process and
// lets a human play the task stream with the keyboard.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"craftstream.ai/internal/sim/session"
	"craftstream.ai/internal/sim/task"
	"craftstream.ai/internal/sim/vocab"
	"craftstream.ai/internal/sim/world"
)

func main() {
	var (
		seed    = flag.Int64("seed", 1337, "base world seed")
		synPath = flag.String("synonyms", "./configs/synonyms.json", "path to synonyms.json")
		radius  = flag.Int("radius", 4, "view radius")
	)
	flag.Parse()

	syn, _, err := vocab.LoadSynonyms(*synPath)
	if err != nil {
		log.Fatalf("load synonyms: %v", err)
	}
	tasks, err := vocab.BuildTasks(syn)
	if err != nil {
		log.Fatalf("build tasks: %v", err)
	}
	set, err := task.NewSet(tasks, vocab.EncodingOrder(syn), vocab.DummyBits)
	if err != nil {
		log.Fatalf("task set: %v", err)
	}

	sess := session.New(session.Config{
		Area:       [2]int{64, 64},
		ViewRadius: *radius,
		Seed:       *seed,
	}, set, rand.New(rand.NewSource(*seed)))

	m := model{sess: sess}
	m.obs = sess.Reset()
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type model struct {
	sess *session.Session
	obs  session.Observation

	lastReward float64
	lastErr    string
}

func (m model) Init() tea.Cmd { return nil }

var keyActions = map[string]world.Action{
	"up":    world.MoveUp,
	"down":  world.MoveDown,
	"left":  world.MoveLeft,
	"right": world.MoveRight,
	" ":     world.Do,
	"z":     world.Sleep,
	"1":     world.PlaceStone,
	"2":     world.PlaceTable,
	"3":     world.PlaceFurnace,
	"4":     world.PlacePlant,
	"t":     world.MakeWoodPickaxe,
	"y":     world.MakeStonePickaxe,
	"u":     world.MakeIronPickaxe,
	"g":     world.MakeWoodSword,
	"h":     world.MakeStoneSword,
	"j":     world.MakeIronSword,
	".":     world.Noop,
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.obs = m.sess.Reset()
		m.lastReward = 0
		m.lastErr = ""
		return m, nil
	}

	a, ok := keyActions[key.String()]
	if !ok {
		return m, nil
	}
	if m.sess.Done() {
		m.lastErr = "episode done, press r to reset"
		return m, nil
	}
	res, err := m.sess.Step(a)
	if err != nil {
		m.lastErr = err.Error()
		return m, nil
	}
	m.obs = res.Obs
	m.lastReward = res.Reward
	m.lastErr = ""
	return m, nil
}

var (
	styleTask   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	styleReward = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	styleErr    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// One background color per palette id; overlays get a glyph as well.
var cellStyles = map[uint16]lipgloss.Style{
	uint16(world.Grass):     lipgloss.NewStyle().Background(lipgloss.Color("28")),
	uint16(world.Sand):      lipgloss.NewStyle().Background(lipgloss.Color("222")),
	uint16(world.Water):     lipgloss.NewStyle().Background(lipgloss.Color("27")),
	uint16(world.Tree):      lipgloss.NewStyle().Background(lipgloss.Color("22")),
	uint16(world.Stone):     lipgloss.NewStyle().Background(lipgloss.Color("244")),
	uint16(world.Path):      lipgloss.NewStyle().Background(lipgloss.Color("180")),
	uint16(world.Coal):      lipgloss.NewStyle().Background(lipgloss.Color("236")),
	uint16(world.Iron):      lipgloss.NewStyle().Background(lipgloss.Color("251")),
	uint16(world.Diamond):   lipgloss.NewStyle().Background(lipgloss.Color("51")),
	uint16(world.Lava):      lipgloss.NewStyle().Background(lipgloss.Color("202")),
	uint16(world.Table):     lipgloss.NewStyle().Background(lipgloss.Color("130")),
	uint16(world.Furnace):   lipgloss.NewStyle().Background(lipgloss.Color("94")),
	uint16(world.Plant):     lipgloss.NewStyle().Background(lipgloss.Color("40")),
	uint16(world.RipePlant): lipgloss.NewStyle().Background(lipgloss.Color("118")),
}

var cellGlyphs = map[uint16]string{
	world.ViewPlayer:   "@",
	world.ViewZombie:   "Z",
	world.ViewSkeleton: "S",
	world.ViewCow:      "C",
}

func renderCell(id uint16) string {
	if g, ok := cellGlyphs[id]; ok {
		return lipgloss.NewStyle().Bold(true).Render(g + " ")
	}
	if st, ok := cellStyles[id]; ok {
		return st.Render("  ")
	}
	return "??"
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(styleTask.Render("task: "+m.sess.DecodeActiveTask()) + "\n")
	fmt.Fprintf(&b, "episode %d  step %d  return %.1f  progress %.2f\n\n",
		m.sess.Episode(), m.sess.StepCount(), m.sess.Return(), m.sess.Progress())

	side := m.obs.ViewSide
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			b.WriteString(renderCell(m.obs.View[y*side+x]))
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	p := m.sess.World().Player()
	fmt.Fprintf(&b, "hp %d  food %d  drink %d  energy %d\n", p.HP, p.Food, p.Drink, p.Energy)
	b.WriteString("inventory: " + formatInventory(p.Inventory) + "\n")

	if m.lastReward > 0 {
		b.WriteString(styleReward.Render(fmt.Sprintf("reward +%.1f", m.lastReward)) + "\n")
	}
	if m.lastErr != "" {
		b.WriteString(styleErr.Render(m.lastErr) + "\n")
	}

	b.WriteString(styleDim.Render("\narrows move  space do  z sleep  1-4 place  t/y/u pickaxes  g/h/j swords  . wait  r reset  q quit\n"))
	return b.String()
}

func formatInventory(inv map[string]int) string {
	if len(inv) == 0 {
		return "(empty)"
	}
	keys := make([]string, 0, len(inv))
	for k, v := range inv {
		if v > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, inv[k]))
	}
	return strings.Join(parts, " ")
}
