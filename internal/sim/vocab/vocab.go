// Package vocab builds the goal vocabulary for the task stream: the canonical
// achievement list, synonym-expanded surface forms, repeat variants, and the
// fixed word order used by the bag-of-words task encoding.
package vocab

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Achievements is the canonical achievement list, in fixed order. The world
// simulation exposes one monotonic counter per entry.
var Achievements = []string{
	"collect_coal",
	"collect_diamond",
	"collect_drink",
	"collect_iron",
	"collect_sapling",
	"collect_stone",
	"collect_wood",
	"defeat_skeleton",
	"defeat_zombie",
	"eat_cow",
	"eat_plant",
	"make_iron_pickaxe",
	"make_iron_sword",
	"make_stone_pickaxe",
	"make_stone_sword",
	"make_wood_pickaxe",
	"make_wood_sword",
	"place_furnace",
	"place_plant",
	"place_stone",
	"place_table",
	"wake_up",
}

// Word groups appearing in task descriptors, in encoding order.
var (
	Objects   = []string{"table", "furnace"}
	Materials = []string{"wood", "stone", "coal", "iron", "diamond", "drink"}
	Tools     = []string{"sword", "pickaxe"}
)

// DummyBits is the width of the trailing decoy subspace of the task encoding.
// There are 2^DummyBits - 1 decoy slots (the all-zero pattern is excluded).
const DummyBits = 10

// DummySlots returns the number of decoy task slots.
func DummySlots() int { return 1<<DummyBits - 1 }

// Synonyms maps a canonical instruction word to its accepted rewordings.
type Synonyms map[string][]string

// LoadSynonyms reads the synonym catalog and returns it with a sha256 digest
// of the raw file (sent to clients so they can detect vocabulary drift).
func LoadSynonyms(path string) (Synonyms, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	sum := sha256.Sum256(raw)
	var syn Synonyms
	if err := json.Unmarshal(raw, &syn); err != nil {
		return nil, "", fmt.Errorf("synonyms.json: %w", err)
	}
	for word, alts := range syn {
		if word == "" {
			return nil, "", fmt.Errorf("synonyms.json: empty instruction word")
		}
		for _, a := range alts {
			if a == "" || strings.Contains(a, "_") {
				return nil, "", fmt.Errorf("synonyms.json: bad synonym %q for %q", a, word)
			}
		}
	}
	return syn, hex.EncodeToString(sum[:]), nil
}

// TaskList holds the parallel descriptor sequences consumed by the task
// engine. Surface forms may carry a synonym substitution and/or a trailing
// repeat-count token; Base keeps the canonical achievement wording so the
// engine can match counter keys.
type TaskList struct {
	Surface  []string
	Base     []string
	IsRepeat []bool
}

// SynonymTasks expands each achievement into its canonical form plus one
// surface variant per synonym of its leading instruction word. The base form
// is repeated unchanged for every variant.
func SynonymTasks(achievements []string, syn Synonyms) (surface, base []string) {
	for _, ach := range achievements {
		surface = append(surface, ach)
		base = append(base, ach)
	}
	for _, ach := range achievements {
		words := strings.SplitN(ach, "_", 2)
		alts := syn[words[0]]
		for _, alt := range alts {
			reworded := alt
			if len(words) == 2 {
				reworded = alt + "_" + words[1]
			}
			surface = append(surface, reworded)
			base = append(base, ach)
		}
	}
	return surface, base
}

// RepeatCounts returns the default repeat count per task: collection tasks
// repeat ten times, everything else five.
func RepeatCounts(base []string) []int {
	counts := make([]int, len(base))
	for i, b := range base {
		if strings.Contains(b, "collect") {
			counts[i] = 10
		} else {
			counts[i] = 5
		}
	}
	return counts
}

// RepeatTasks appends a "_N" repeat variant for every task. The returned list
// keeps the single-shot tasks first, then the repeat variants, with parallel
// IsRepeat flags. Mismatched input lengths are a configuration error.
func RepeatTasks(surface, base []string, counts []int) (TaskList, error) {
	if len(surface) != len(base) || len(surface) != len(counts) {
		return TaskList{}, fmt.Errorf("vocab: mismatched task lists: surface=%d base=%d counts=%d",
			len(surface), len(base), len(counts))
	}
	var tl TaskList
	tl.Surface = append(tl.Surface, surface...)
	tl.Base = append(tl.Base, base...)
	tl.IsRepeat = make([]bool, len(surface), 2*len(surface))
	for i := range surface {
		if counts[i] < 2 {
			return TaskList{}, fmt.Errorf("vocab: repeat count for %q must be >= 2, got %d", surface[i], counts[i])
		}
		tl.Surface = append(tl.Surface, fmt.Sprintf("%s_%d", surface[i], counts[i]))
		tl.Base = append(tl.Base, fmt.Sprintf("%s_%d", base[i], counts[i]))
		tl.IsRepeat = append(tl.IsRepeat, true)
	}
	return tl, nil
}

// EncodingOrder returns the deduplicated word vocabulary backing the
// bag-of-words encoding: instruction words (canonical first, then sorted
// synonyms), objects, materials, tools, and the count tokens "2".."10".
func EncodingOrder(syn Synonyms) []string {
	seen := map[string]bool{}
	var order []string
	add := func(w string) {
		if !seen[w] {
			seen[w] = true
			order = append(order, w)
		}
	}
	for _, ach := range Achievements {
		add(strings.SplitN(ach, "_", 2)[0])
	}
	var alts []string
	for _, list := range syn {
		alts = append(alts, list...)
	}
	sort.Strings(alts)
	for _, a := range alts {
		add(a)
	}
	for _, w := range Objects {
		add(w)
	}
	for _, w := range Materials {
		add(w)
	}
	for _, w := range Tools {
		add(w)
	}
	for n := 2; n <= 10; n++ {
		add(fmt.Sprintf("%d", n))
	}
	return order
}

// BuildTasks is the standard construction used by the server and tools:
// synonym expansion, default repeat counts, repeat expansion.
func BuildTasks(syn Synonyms) (TaskList, error) {
	surface, base := SynonymTasks(Achievements, syn)
	return RepeatTasks(surface, base, RepeatCounts(base))
}
