package task

import "math/rand"

// Selector picks the next task whenever the engine resolves the current one
// (success, timeout, or episode reset). The two implementations are mutually
// exclusive and swapped between episodes.
type Selector interface {
	Next() Ref
}

// CurriculumSelector samples uniformly over the full slot range, real tasks
// and decoys alike, with replacement. Used during training.
type CurriculumSelector struct {
	set *Set
	rng *rand.Rand
}

func NewCurriculumSelector(set *Set, rng *rand.Rand) *CurriculumSelector {
	return &CurriculumSelector{set: set, rng: rng}
}

func (c *CurriculumSelector) Next() Ref {
	return c.set.Ref(c.rng.Intn(c.set.Slots()))
}

// EvalSelector walks a shuffled permutation of the real task indices, so each
// pass visits every real task exactly once. Decoys are never evaluated. The
// permutation is reshuffled when the cursor wraps.
type EvalSelector struct {
	set    *Set
	rng    *rand.Rand
	perm   []int
	cursor int
}

func NewEvalSelector(set *Set, rng *rand.Rand) *EvalSelector {
	s := &EvalSelector{set: set, rng: rng, perm: make([]int, set.Len())}
	for i := range s.perm {
		s.perm[i] = i
	}
	s.rng.Shuffle(len(s.perm), func(i, j int) { s.perm[i], s.perm[j] = s.perm[j], s.perm[i] })
	return s
}

func (s *EvalSelector) Next() Ref {
	r := s.set.Real(s.perm[s.cursor])
	s.cursor++
	if s.cursor >= len(s.perm) {
		s.cursor = 0
		s.rng.Shuffle(len(s.perm), func(i, j int) { s.perm[i], s.perm[j] = s.perm[j], s.perm[i] })
	}
	return r
}
