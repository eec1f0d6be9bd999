// Package task implements the goal-conditioned task stream: the task set and
// its bit-vector encoding, the curriculum/evaluation selectors, and the
// per-step reward engine that tracks achievement deltas.
package task

import (
	"fmt"
	"strconv"
	"strings"

	"craftstream.ai/internal/sim/vocab"
)

// Ref identifies either a real task (index into the task set) or a decoy
// slot. The explicit tag keeps real/decoy dispatch exhaustive instead of
// relying on an index threshold.
type Ref struct {
	real bool
	i    int
}

func (r Ref) IsReal() bool { return r.real }

// Index returns the real-task index; panics on a decoy ref.
func (r Ref) Index() int {
	if !r.real {
		panic("task: Index on decoy ref")
	}
	return r.i
}

// Slot returns the decoy slot; panics on a real-task ref.
func (r Ref) Slot() int {
	if r.real {
		panic("task: Slot on real ref")
	}
	return r.i
}

// Set is the immutable task space: parallel surface/base descriptor lists
// with repeat flags, the encoding vocabulary, and the decoy slot count.
type Set struct {
	Surface  []string
	Base     []string
	IsRepeat []bool

	Vocab     []string
	DummyBits int

	wordBit map[string]int
	// Precomputed per task: the achievement-counter key (base descriptor with
	// any repeat suffix stripped) and the repeat count (0 for single-shot).
	counterKey []string
	repeatN    []int
}

// NewSet validates the task list against the encoding vocabulary and
// precomputes per-task counter keys and repeat counts. List inconsistencies
// are configuration errors and abort construction.
func NewSet(tl vocab.TaskList, encOrder []string, dummyBits int) (*Set, error) {
	if len(tl.Surface) != len(tl.Base) || len(tl.Surface) != len(tl.IsRepeat) {
		return nil, fmt.Errorf("task: mismatched task lists: surface=%d base=%d repeat=%d",
			len(tl.Surface), len(tl.Base), len(tl.IsRepeat))
	}
	if len(tl.Surface) == 0 {
		return nil, fmt.Errorf("task: empty task list")
	}
	if dummyBits < 1 {
		return nil, fmt.Errorf("task: dummy bits must be >= 1, got %d", dummyBits)
	}
	s := &Set{
		Surface:    tl.Surface,
		Base:       tl.Base,
		IsRepeat:   tl.IsRepeat,
		Vocab:      encOrder,
		DummyBits:  dummyBits,
		wordBit:    make(map[string]int, len(encOrder)),
		counterKey: make([]string, len(tl.Surface)),
		repeatN:    make([]int, len(tl.Surface)),
	}
	for i, w := range encOrder {
		if _, dup := s.wordBit[w]; dup {
			return nil, fmt.Errorf("task: duplicate vocabulary word %q", w)
		}
		s.wordBit[w] = i
	}
	for i := range tl.Surface {
		if !tl.IsRepeat[i] {
			s.counterKey[i] = tl.Base[i]
			continue
		}
		sw := strings.Split(tl.Surface[i], "_")
		bw := strings.Split(tl.Base[i], "_")
		if len(sw) < 2 || len(bw) < 2 {
			return nil, fmt.Errorf("task: repeat task %q has no count token", tl.Surface[i])
		}
		n, err := strconv.Atoi(sw[len(sw)-1])
		if err != nil || n < 2 {
			return nil, fmt.Errorf("task: repeat task %q has bad count token %q", tl.Surface[i], sw[len(sw)-1])
		}
		if bw[len(bw)-1] != sw[len(sw)-1] {
			return nil, fmt.Errorf("task: repeat task %q count differs from base %q", tl.Surface[i], tl.Base[i])
		}
		s.counterKey[i] = strings.Join(bw[:len(bw)-1], "_")
		s.repeatN[i] = n
	}
	return s, nil
}

// Len is the number of real tasks.
func (s *Set) Len() int { return len(s.Surface) }

// DummySlots is the number of decoy task slots (2^DummyBits - 1).
func (s *Set) DummySlots() int { return 1<<s.DummyBits - 1 }

// Slots is the full sampling range: real tasks followed by decoys.
func (s *Set) Slots() int { return s.Len() + s.DummySlots() }

// Width is the task-encoding bit width.
func (s *Set) Width() int { return len(s.Vocab) + s.DummyBits }

// Ref maps a flat sampling index onto a tagged task ref. An index outside
// [0, Slots()) is a programming error.
func (s *Set) Ref(i int) Ref {
	switch {
	case i < 0 || i >= s.Slots():
		panic(fmt.Sprintf("task: index %d out of range [0,%d)", i, s.Slots()))
	case i < s.Len():
		return Ref{real: true, i: i}
	default:
		return Ref{real: false, i: i - s.Len()}
	}
}

// Real returns the ref for real task index i.
func (s *Set) Real(i int) Ref {
	if i < 0 || i >= s.Len() {
		panic(fmt.Sprintf("task: real index %d out of range [0,%d)", i, s.Len()))
	}
	return Ref{real: true, i: i}
}

// Key is the bookkeeping key for a ref: the surface descriptor for real
// tasks, "dummyN" for decoy slots.
func (s *Set) Key(r Ref) string {
	if r.real {
		return s.Surface[r.i]
	}
	return fmt.Sprintf("dummy%d", r.i)
}

// CounterKey returns the achievement-counter key for a real task (repeat
// suffix stripped for repeat tasks).
func (s *Set) CounterKey(r Ref) string { return s.counterKey[r.Index()] }

// RepeatCount returns the repeat count for a real repeat task, 0 otherwise.
func (s *Set) RepeatCount(r Ref) int { return s.repeatN[r.Index()] }
