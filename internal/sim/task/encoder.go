package task

import (
	"math/rand"
	"strings"
)

// Encoding is a fixed-width bit vector: one leading bit per vocabulary word,
// plus DummyBits trailing decoy bits. Real tasks never touch the trailing
// bits; decoys never touch the leading ones, so decoding is unambiguous.
type Encoding []uint8

func (e Encoding) Clone() Encoding {
	out := make(Encoding, len(e))
	copy(out, e)
	return out
}

// Encoder turns task refs into observation encodings. Decoy bits come from
// the explicit RNG so tests can reproduce them.
type Encoder struct {
	set *Set
	rng *rand.Rand
}

func NewEncoder(set *Set, rng *rand.Rand) *Encoder {
	return &Encoder{set: set, rng: rng}
}

// Encode produces the bag-of-words encoding for a real task, or a random
// nonzero pattern confined to the trailing decoy bits for a decoy slot.
func (e *Encoder) Encode(r Ref) Encoding {
	enc := make(Encoding, e.set.Width())
	if r.IsReal() {
		for _, w := range strings.Split(e.set.Surface[r.Index()], "_") {
			if bit, ok := e.set.wordBit[w]; ok {
				enc[bit] = 1
			}
		}
		return enc
	}
	off := len(e.set.Vocab)
	for i := 0; i < e.set.DummyBits; i++ {
		enc[off+i] = uint8(e.rng.Intn(2))
	}
	// At least one decoy bit must be set so the vector cannot read as a real
	// task or as "no task".
	enc[off+e.rng.Intn(e.set.DummyBits)] = 1
	return enc
}

// Decode reconstructs a display string from an encoding. Any set decoy bit
// wins; otherwise the set vocabulary words are joined in vocabulary order,
// which is lossy with respect to the original phrase order. Debug use only.
func (e *Encoder) Decode(enc Encoding) string {
	off := len(e.set.Vocab)
	for i := off; i < len(enc); i++ {
		if enc[i] != 0 {
			return "dummy task"
		}
	}
	var words []string
	for i := 0; i < off && i < len(enc); i++ {
		if enc[i] != 0 {
			words = append(words, e.set.Vocab[i])
		}
	}
	return strings.Join(words, " ")
}
