package session

import (
	"math/rand"
	"testing"

	"craftstream.ai/internal/sim/task"
	"craftstream.ai/internal/sim/vocab"
	"craftstream.ai/internal/sim/world"
)

func fullSet(t *testing.T) *task.Set {
	t.Helper()
	syn := vocab.Synonyms{
		"collect": {"gather", "obtain"},
		"make":    {"craft", "construct"},
		"place":   {"put", "set"},
		"defeat":  {"beat"},
		"eat":     {"consume"},
		"wake":    {"awaken"},
	}
	tl, err := vocab.BuildTasks(syn)
	if err != nil {
		t.Fatalf("BuildTasks: %v", err)
	}
	s, err := task.NewSet(tl, vocab.EncodingOrder(syn), vocab.DummyBits)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	return s
}

// woodOnlySet has a single real task, so the evaluation selector always
// assigns collect_wood and scenarios become deterministic.
func woodOnlySet(t *testing.T) *task.Set {
	t.Helper()
	s, err := task.NewSet(vocab.TaskList{
		Surface:  []string{"collect_wood"},
		Base:     []string{"collect_wood"},
		IsRepeat: []bool{false},
	}, []string{"collect", "wood"}, 1)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	return s
}

func testConfig() Config {
	return Config{Area: [2]int{32, 32}, ViewRadius: 4, EpisodeLength: 50, TimeoutSteps: 300, Seed: 7}
}

func TestReset_SeedsFirstTask(t *testing.T) {
	set := fullSet(t)
	s := New(testConfig(), set, rand.New(rand.NewSource(1)))

	obs := s.Reset()
	if len(obs.TaskEnc) != set.Width() {
		t.Fatalf("task encoding width: got %d want %d", len(obs.TaskEnc), set.Width())
	}
	if len(obs.View) != obs.ViewSide*obs.ViewSide {
		t.Fatalf("view size mismatch")
	}

	res, err := s.Step(world.Noop)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	total := 0
	for _, v := range res.Given {
		total += v
	}
	if total != 1 {
		t.Fatalf("exactly one task should be assigned after reset, got %d", total)
	}
}

func TestStep_BeforeResetFails(t *testing.T) {
	s := New(testConfig(), fullSet(t), rand.New(rand.NewSource(1)))
	if _, err := s.Step(world.Noop); err == nil {
		t.Fatalf("expected error stepping before reset")
	}
}

func TestStep_RewardOnTaskCompletion(t *testing.T) {
	cfg := testConfig()
	s := New(cfg, woodOnlySet(t), rand.New(rand.NewSource(1)))
	s.SetCurriculum(false) // eval: the only real task is always assigned
	s.Reset()

	p := s.World().Player()
	s.World().SetTile(world.Vec{X: p.Pos.X, Y: p.Pos.Y + 1}, world.Tree)
	p.Facing = world.Vec{X: 0, Y: 1}

	res, err := s.Step(world.Do)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if res.Reward != 1.0 {
		t.Fatalf("reward: got %v want 1.0", res.Reward)
	}
	if res.Follow["collect_wood"] != 1 {
		t.Fatalf("follow count: got %d", res.Follow["collect_wood"])
	}
	if s.Return() != 1.0 {
		t.Fatalf("return: got %v", s.Return())
	}
}

func TestInventoryCarryOver(t *testing.T) {
	cfg := testConfig()
	cfg.CarryOverProb = 1.0
	s := New(cfg, fullSet(t), rand.New(rand.NewSource(1)))

	s.Reset()
	s.World().Player().Inventory["wood"] = 7
	s.Reset()
	if got := s.World().Player().Inventory["wood"]; got != 7 {
		t.Fatalf("inventory should carry over with prob 1, got wood=%d", got)
	}

	// Achievements never carry over.
	s.World().Player().Achievements["collect_wood"] = 3
	s.Reset()
	if got := s.World().Player().Achievements["collect_wood"]; got != 0 {
		t.Fatalf("achievements must reset, got %d", got)
	}
}

func TestInventoryCarryOver_NeverOnFirstEpisodeOrEval(t *testing.T) {
	cfg := testConfig()
	cfg.CarryOverProb = 1.0
	s := New(cfg, fullSet(t), rand.New(rand.NewSource(1)))

	s.Reset()
	if got := s.World().Player().Inventory["wood"]; got != 0 {
		t.Fatalf("first episode cannot inherit inventory, got wood=%d", got)
	}

	s.World().Player().Inventory["wood"] = 7
	s.SetCurriculum(false)
	s.Reset()
	if got := s.World().Player().Inventory["wood"]; got != 0 {
		t.Fatalf("evaluation episodes must not inherit inventory, got wood=%d", got)
	}
}

func TestEpisodeEndsAtLengthBudget(t *testing.T) {
	cfg := testConfig()
	cfg.EpisodeLength = 5
	s := New(cfg, fullSet(t), rand.New(rand.NewSource(1)))
	s.Reset()

	var last Result
	for i := 0; i < 5; i++ {
		var err error
		last, err = s.Step(world.Noop)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if !last.Done {
		t.Fatalf("episode should be done after the length budget")
	}
	if _, err := s.Step(world.Noop); err == nil {
		t.Fatalf("expected error stepping a finished episode")
	}
	s.Reset()
	if _, err := s.Step(world.Noop); err != nil {
		t.Fatalf("step after reset: %v", err)
	}
}

func TestPushEvalFeedback_LengthChecked(t *testing.T) {
	set := fullSet(t)
	s := New(testConfig(), set, rand.New(rand.NewSource(1)))
	if err := s.PushEvalFeedback(make([]float64, set.Len()+1)); err == nil {
		t.Fatalf("expected error for wrong feedback length")
	}
	tsr := make([]float64, set.Len())
	tsr[0] = 0.5
	if err := s.PushEvalFeedback(tsr); err != nil {
		t.Fatalf("PushEvalFeedback: %v", err)
	}
	if got := s.EvalFeedback(); got[0] != 0.5 {
		t.Fatalf("feedback not stored")
	}
}

func TestLogEntry_SnapshotsEpisode(t *testing.T) {
	s := New(testConfig(), fullSet(t), rand.New(rand.NewSource(1)))
	s.Reset()
	if _, err := s.Step(world.Noop); err != nil {
		t.Fatalf("step: %v", err)
	}
	e := s.LogEntry("ep-1")
	if e.EpisodeID != "ep-1" || e.Episode != 1 || e.Steps != 1 || e.Mode != "train" {
		t.Fatalf("log entry: %+v", e)
	}
	if e.GivenAchs == nil || e.FollowAchs == nil {
		t.Fatalf("log entry missing count maps")
	}
}
