package task

import (
	"math/rand"
	"testing"
)

// scriptSelector returns a fixed sequence of refs, cycling when exhausted.
type scriptSelector struct {
	refs []Ref
	i    int
}

func (s *scriptSelector) Next() Ref {
	r := s.refs[s.i%len(s.refs)]
	s.i++
	return r
}

func newTestEngine(t *testing.T, refs ...Ref) (*Engine, *Set, map[string]int) {
	t.Helper()
	s := newTestSet(t)
	enc := NewEncoder(s, rand.New(rand.NewSource(1)))
	eng := NewEngine(s, enc, &scriptSelector{refs: refs}, 300)
	counters := map[string]int{"collect_wood": 0, "place_table": 0}
	eng.Reset(counters)
	return eng, s, counters
}

func TestEngine_RepeatTaskRewardsOnFinalDelta(t *testing.T) {
	// collect_wood_5 first, then place_table after completion.
	s := newTestSet(t)
	eng, _, counters := newTestEngine(t, s.Real(3), s.Real(2))

	var rewards []float64
	for i := 0; i < 5; i++ {
		counters["collect_wood"]++
		r, err := eng.Step(counters)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		rewards = append(rewards, r)
	}
	want := []float64{0, 0, 0, 0, 1}
	for i := range want {
		if rewards[i] != want[i] {
			t.Fatalf("reward sequence: got %v want %v", rewards, want)
		}
	}
	if got := eng.Follow()["collect_wood_5"]; got != 1 {
		t.Fatalf("follow count: got %d want 1", got)
	}
	if eng.Progress() != 0 {
		t.Fatalf("progress should reset after firing, got %v", eng.Progress())
	}
	if !eng.Active().IsReal() || eng.Active().Index() != 2 {
		t.Fatalf("expected reassignment to place_table")
	}
}

func TestEngine_SingleShotRewardsSameStep(t *testing.T) {
	s := newTestSet(t)
	eng, _, counters := newTestEngine(t, s.Real(2), s.Real(0))

	counters["place_table"] = 1
	r, err := eng.Step(counters)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if r != 1.0 {
		t.Fatalf("reward: got %v want 1.0", r)
	}
	if got := eng.Follow()["place_table"]; got != 1 {
		t.Fatalf("follow count: got %d want 1", got)
	}
	// Completion triggers immediate reassignment with a fresh given count.
	if got := eng.Given()["collect_wood"]; got != 1 {
		t.Fatalf("given count for reassigned task: got %d want 1", got)
	}
	if eng.StepsSinceAssigned() != 0 {
		t.Fatalf("steps since assigned should reset, got %d", eng.StepsSinceAssigned())
	}
}

func TestEngine_TimeoutReassignsWithoutReward(t *testing.T) {
	s := newTestSet(t)
	eng, _, counters := newTestEngine(t, s.Real(0), s.Real(2))

	for i := 0; i < 301; i++ {
		r, err := eng.Step(counters)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if r != 0 {
			t.Fatalf("step %d: unexpected reward %v", i, r)
		}
	}
	if !eng.Active().IsReal() || eng.Active().Index() != 2 {
		t.Fatalf("expected reassignment after timeout")
	}
	// The abandoned task was given once (at reset), never again.
	if got := eng.Given()["collect_wood"]; got != 1 {
		t.Fatalf("given count for abandoned task: got %d want 1", got)
	}
	if got := eng.Given()["place_table"]; got != 1 {
		t.Fatalf("given count for new task: got %d want 1", got)
	}
	if got := eng.Follow()["collect_wood"]; got != 0 {
		t.Fatalf("abandonment must not count as completion, got %d", got)
	}
}

func TestEngine_TimeoutNotBeforeThreshold(t *testing.T) {
	s := newTestSet(t)
	eng, _, counters := newTestEngine(t, s.Real(0), s.Real(2))

	for i := 0; i < 300; i++ {
		if _, err := eng.Step(counters); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if eng.Active().Index() != 0 {
		t.Fatalf("task reassigned at step 300; threshold is exclusive")
	}
}

func TestEngine_DecoyNeverRewards(t *testing.T) {
	s := newTestSet(t)
	eng, _, counters := newTestEngine(t, s.Ref(s.Len()+2), s.Real(0))

	for i := 0; i < 10; i++ {
		counters["collect_wood"]++
		counters["place_table"]++
		r, err := eng.Step(counters)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if r != 0 {
			t.Fatalf("decoy task produced reward %v", r)
		}
	}
	if got := eng.Given()["dummy2"]; got != 1 {
		t.Fatalf("decoy given count: got %d want 1", got)
	}
	// Decoys still time out.
	for i := 10; i < 301; i++ {
		if _, err := eng.Step(counters); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if !eng.Active().IsReal() {
		t.Fatalf("expected decoy to be abandoned after timeout")
	}
}

func TestEngine_SnapshotCarriesAcrossReassignment(t *testing.T) {
	// Completing place_table while collect_wood also increments must not
	// pre-credit the newly assigned collect_wood task.
	s := newTestSet(t)
	eng, _, counters := newTestEngine(t, s.Real(2), s.Real(0))

	counters["place_table"] = 1
	counters["collect_wood"] = 1
	r, err := eng.Step(counters)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if r != 1.0 {
		t.Fatalf("reward: got %v", r)
	}

	// No new delta: the wood collected during the previous step is part of
	// the refreshed snapshot and must not resolve the new task.
	r, err = eng.Step(counters)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if r != 0 {
		t.Fatalf("stale delta credited to new task: reward %v", r)
	}
}

func TestEngine_MissingCounterKeyIsFatal(t *testing.T) {
	s := newTestSet(t)
	eng, _, _ := newTestEngine(t, s.Real(0), s.Real(0))

	if _, err := eng.Step(map[string]int{"place_table": 0}); err == nil {
		t.Fatalf("expected error for missing achievement counter")
	}
}

func TestEngine_ResetZeroesBookkeeping(t *testing.T) {
	s := newTestSet(t)
	eng, _, counters := newTestEngine(t, s.Real(0), s.Real(2))

	counters["collect_wood"] = 3
	if _, err := eng.Step(counters); err != nil {
		t.Fatalf("step: %v", err)
	}
	eng.Reset(map[string]int{"collect_wood": 0, "place_table": 0})
	given := eng.Given()
	total := 0
	for _, v := range given {
		total += v
	}
	if total != 1 {
		t.Fatalf("fresh episode should have exactly the initial assignment, got %d", total)
	}
	if eng.Unlocked() != 0 {
		t.Fatalf("unlocked set should reset, got %d", eng.Unlocked())
	}
}
