package task

import "fmt"

// Engine is the per-episode reward and progress state machine. It owns the
// mutable task state for one episode: the active task, fractional repeat
// progress, the steps-since-assignment counter, and the previous-step
// achievement snapshot used for delta detection.
type Engine struct {
	set     *Set
	enc     *Encoder
	sel     Selector
	timeout int

	active    Ref
	activeEnc Encoding
	steps     int
	progress  float64

	prev     map[string]int
	unlocked map[string]bool

	given  map[string]int
	follow map[string]int
}

// NewEngine wires the state machine to a task set, an encoder, and the
// selector active for the upcoming episode. timeoutSteps is the abandonment
// threshold: a task held longer than this without resolving is reassigned
// with no reward.
func NewEngine(set *Set, enc *Encoder, sel Selector, timeoutSteps int) *Engine {
	if timeoutSteps <= 0 {
		timeoutSteps = 300
	}
	return &Engine{set: set, enc: enc, sel: sel, timeout: timeoutSteps}
}

// SetSelector swaps the sampling strategy. Only meaningful between episodes.
func (e *Engine) SetSelector(sel Selector) { e.sel = sel }

// Reset discards all per-episode state, snapshots the fresh achievement
// counters, and assigns the first task of the episode.
func (e *Engine) Reset(counters map[string]int) {
	e.prev = copyCounters(counters)
	e.unlocked = map[string]bool{}
	e.given = make(map[string]int, e.set.Slots())
	e.follow = make(map[string]int, e.set.Len())
	for i := 0; i < e.set.Len(); i++ {
		key := e.set.Surface[i]
		e.given[key] = 0
		e.follow[key] = 0
	}
	for i := 0; i < e.set.DummySlots(); i++ {
		e.given[fmt.Sprintf("dummy%d", i)] = 0
	}
	e.progress = 0
	e.assign()
}

// assign consumes the next task from the selector and resets the per-task
// state. Every assignment, whatever its cause, counts toward given.
func (e *Engine) assign() {
	e.active = e.sel.Next()
	e.activeEnc = e.enc.Encode(e.active)
	e.steps = 0
	e.progress = 0
	e.given[e.set.Key(e.active)]++
}

// Step evaluates one environment step. counters is the live achievement
// counter map after the simulation advanced; deltas are measured against the
// snapshot taken at the end of the previous step. The returned reward is
// always exactly 0.0 or 1.0.
func (e *Engine) Step(counters map[string]int) (float64, error) {
	if e.prev == nil {
		return 0, fmt.Errorf("task: Step before Reset")
	}
	for name, count := range counters {
		if count > 0 && !e.unlocked[name] {
			e.unlocked[name] = true
		}
	}

	reward := 0.0
	resolved := false
	if e.active.IsReal() {
		key := e.set.CounterKey(e.active)
		cur, ok := counters[key]
		if !ok {
			return 0, fmt.Errorf("task: achievement counter %q missing (vocabulary mismatch)", key)
		}
		delta := cur - e.prev[key]
		if n := e.set.RepeatCount(e.active); n > 0 {
			if delta > 0 {
				e.progress += 1.0 / float64(n)
			}
			if e.progress >= 1.0 {
				reward = 1.0
				e.follow[e.set.Key(e.active)]++
				e.assign()
				resolved = true
			}
		} else if delta > 0 {
			reward = 1.0
			e.follow[e.set.Key(e.active)]++
			e.assign()
			resolved = true
		}
	}

	if !resolved {
		e.steps++
		if e.steps > e.timeout {
			e.assign()
		}
	}

	e.prev = copyCounters(counters)
	return reward, nil
}

// Active returns the current task ref.
func (e *Engine) Active() Ref { return e.active }

// ActiveEncoding returns the observation encoding of the current task.
func (e *Engine) ActiveEncoding() Encoding { return e.activeEnc.Clone() }

// Progress is the fractional completion of the active repeat task.
func (e *Engine) Progress() float64 { return e.progress }

// StepsSinceAssigned counts unresolved steps under the active task.
func (e *Engine) StepsSinceAssigned() int { return e.steps }

// Given returns a copy of the per-task assignment counts for this episode.
func (e *Engine) Given() map[string]int { return copyCounters(e.given) }

// Follow returns a copy of the per-task completion counts for this episode.
func (e *Engine) Follow() map[string]int { return copyCounters(e.follow) }

// Unlocked reports how many distinct achievements became positive so far
// this episode.
func (e *Engine) Unlocked() int { return len(e.unlocked) }

func copyCounters(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
