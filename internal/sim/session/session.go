// Package session orchestrates episodes: it owns one world, one task engine,
// and the per-episode bookkeeping, and exposes the reset/step surface the
// transport layer drives.
package session

import (
	"fmt"
	"math/rand"

	"craftstream.ai/internal/sim/task"
	"craftstream.ai/internal/sim/world"
)

type Config struct {
	Area          [2]int
	ViewRadius    int
	DayLength     int
	EpisodeLength int
	TimeoutSteps  int
	CarryOverProb float64
	Seed          int64
}

func (c *Config) applyDefaults() {
	if c.Area[0] <= 0 || c.Area[1] <= 0 {
		c.Area = [2]int{64, 64}
	}
	if c.EpisodeLength <= 0 {
		c.EpisodeLength = 1500
	}
	if c.TimeoutSteps <= 0 {
		c.TimeoutSteps = 300
	}
	if c.CarryOverProb < 0 || c.CarryOverProb > 1 {
		c.CarryOverProb = 0.5
	}
}

// Observation is what the agent sees: the semantic view and the task
// encoding. The encoding is the only task-identifying signal exposed.
type Observation struct {
	View     []uint16
	ViewSide int
	TaskEnc  task.Encoding
}

// Result is one step outcome, including the given/follow bookkeeping
// snapshots attached to every step.
type Result struct {
	Obs    Observation
	Reward float64
	Done   bool
	Given  map[string]int
	Follow map[string]int
}

// Session is single-threaded: the caller drives Reset/Step strictly in turn.
type Session struct {
	cfg Config
	rng *rand.Rand

	world   *world.World
	set     *task.Set
	encoder *task.Encoder
	engine  *task.Engine

	evalMode bool
	episode  int
	epSeed   int64
	step     int
	done     bool
	ret      float64

	evalTSR []float64
}

// New builds a session in curriculum (training) mode. The RNG drives task
// sampling, decoy bits, and the inventory carry-over coin; world internals
// use their own per-episode seed derived from cfg.Seed.
func New(cfg Config, set *task.Set, rng *rand.Rand) *Session {
	cfg.applyDefaults()
	s := &Session{
		cfg: cfg,
		rng: rng,
		set: set,
		world: world.New(world.Config{
			Width:      cfg.Area[0],
			Height:     cfg.Area[1],
			ViewRadius: cfg.ViewRadius,
			DayLength:  cfg.DayLength,
			Seed:       cfg.Seed,
		}),
	}
	s.encoder = task.NewEncoder(set, rng)
	s.engine = task.NewEngine(set, s.encoder, task.NewCurriculumSelector(set, rng), cfg.TimeoutSteps)
	return s
}

// Reset starts a new episode: fresh world (with the optional inventory
// carry-over), fresh task state, first task assigned.
func (s *Session) Reset() Observation {
	var carried map[string]int
	if !s.evalMode && s.episode > 0 && s.rng.Float64() < s.cfg.CarryOverProb {
		carried = s.world.Player().CopyInventory()
	}

	s.episode++
	s.epSeed = episodeSeed(s.cfg.Seed, s.episode)
	s.world.Reset(s.epSeed)
	if carried != nil {
		s.world.Player().Inventory = carried
	}

	s.engine.Reset(s.world.Player().Achievements)
	s.step = 0
	s.done = false
	s.ret = 0
	return s.observe()
}

// Step advances the world by one action, then evaluates the task engine
// against the updated achievement counters.
func (s *Session) Step(a world.Action) (Result, error) {
	if s.episode == 0 {
		return Result{}, fmt.Errorf("session: Step before Reset")
	}
	if s.done {
		return Result{}, fmt.Errorf("session: episode %d is done; Reset required", s.episode)
	}

	s.world.Step(a)
	s.step++
	reward, err := s.engine.Step(s.world.Player().Achievements)
	if err != nil {
		return Result{}, err
	}
	s.ret += reward
	s.done = s.world.Player().HP <= 0 || s.step >= s.cfg.EpisodeLength

	return Result{
		Obs:    s.observe(),
		Reward: reward,
		Done:   s.done,
		Given:  s.engine.Given(),
		Follow: s.engine.Follow(),
	}, nil
}

func (s *Session) observe() Observation {
	return Observation{
		View:     s.world.View(),
		ViewSide: s.world.ViewSide(),
		TaskEnc:  s.engine.ActiveEncoding(),
	}
}

// SetCurriculum selects the sampling strategy for subsequent episodes:
// curriculum-random when train is true, the evaluation cycle otherwise.
// Re-selecting the current mode is a no-op, so the evaluation cursor
// keeps cycling across episodes. Inventory carry-over is disabled in
// evaluation mode.
func (s *Session) SetCurriculum(train bool) {
	if s.evalMode == !train && s.episode > 0 {
		return
	}
	s.evalMode = !train
	if train {
		s.engine.SetSelector(task.NewCurriculumSelector(s.set, s.rng))
	} else {
		s.engine.SetSelector(task.NewEvalSelector(s.set, s.rng))
	}
}

// PushEvalFeedback stores externally computed per-task success rates. The
// values are surfaced for reporting only and never feed back into rewards.
func (s *Session) PushEvalFeedback(tsr []float64) error {
	if len(tsr) != s.set.Len() {
		return fmt.Errorf("session: feedback length %d, want %d", len(tsr), s.set.Len())
	}
	s.evalTSR = append(s.evalTSR[:0], tsr...)
	return nil
}

// EvalFeedback returns the last pushed success-rate summary (may be nil).
func (s *Session) EvalFeedback() []float64 { return s.evalTSR }

// DecodeActiveTask renders the active task encoding as display text. The
// reconstruction is lossy and meant for debug overlays only.
func (s *Session) DecodeActiveTask() string {
	return s.encoder.Decode(s.engine.ActiveEncoding())
}

// Progress is the fractional completion of the active repeat task.
func (s *Session) Progress() float64 { return s.engine.Progress() }

func (s *Session) World() *world.World { return s.world }
func (s *Session) Episode() int        { return s.episode }
func (s *Session) StepCount() int      { return s.step }
func (s *Session) Return() float64     { return s.ret }
func (s *Session) Done() bool          { return s.done }
func (s *Session) EvalMode() bool      { return s.evalMode }
func (s *Session) Seed() int64         { return s.epSeed }

// Mode is the wire name of the sampling strategy.
func (s *Session) Mode() string {
	if s.evalMode {
		return "eval"
	}
	return "train"
}

// episodeSeed derives a stable per-episode world seed from the base seed,
// clamped to 31 bits like the rest of the seed plumbing.
func episodeSeed(seed int64, episode int) int64 {
	h := uint64(seed)*0x9e3779b97f4a7c15 + uint64(episode)
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return int64(h % (1<<31 - 1))
}
