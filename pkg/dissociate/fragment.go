package dissociate

import (
	"maps"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
)

// Rand is the source of randomness used when picking neighbors and start
// fragments. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// globalRand uses the goroutine-safe top level functions of math/rand/v2.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Fragment is a single node of the model: a group of one or more tokens fused
// by the join separator, the fragments observed around it, and the positions
// it occupied within sentences.
//
// Neighbor lists keep duplicates. A neighbor seen three times is three times
// as likely to be picked as one seen once.
type Fragment struct {
	Value     string
	next      []string
	prev      []string
	positions map[int]int
}

func newFragment(value string) *Fragment {
	return &Fragment{
		Value:     value,
		positions: make(map[int]int),
	}
}

// AddNext records value as following this fragment.
func (f *Fragment) AddNext(value string) {
	f.next = append(f.next, value)
}

// AddPrev records value as preceding this fragment.
func (f *Fragment) AddPrev(value string) {
	f.prev = append(f.prev, value)
}

// RandomNext picks one of the following fragments, weighted by how often it
// was observed. The empty string is a valid result and means the sentence
// ended there. ErrEmptyNeighbors is returned if nothing ever followed.
func (f *Fragment) RandomNext(r Rand) (string, error) {
	return pick(f.next, r)
}

// RandomPrev is the backward counterpart of RandomNext.
func (f *Fragment) RandomPrev(r Rand) (string, error) {
	return pick(f.prev, r)
}

func pick(values []string, r Rand) (string, error) {
	if len(values) == 0 {
		return "", ErrEmptyNeighbors
	}
	if r == nil {
		r = globalRand{}
	}
	return values[r.IntN(len(values))], nil
}

// RecordPosition counts one more occurrence of the fragment at the given
// 0-based index within a sentence.
func (f *Fragment) RecordPosition(position int) {
	f.positions[position]++
}

// Next returns a copy of the following fragments in the order they were seen.
func (f *Fragment) Next() []string {
	return slices.Clone(f.next)
}

// Prev returns a copy of the preceding fragments in the order they were seen.
func (f *Fragment) Prev() []string {
	return slices.Clone(f.prev)
}

// Positions returns a copy of the position -> occurrence count map.
func (f *Fragment) Positions() map[int]int {
	return maps.Clone(f.positions)
}

// Count returns how often the fragment occurred at position.
func (f *Fragment) Count(position int) int {
	return f.positions[position]
}

// HasPosition reports whether the fragment ever occurred at position.
func (f *Fragment) HasPosition(position int) bool {
	_, ok := f.positions[position]
	return ok
}

// String renders the value followed by the sorted positions it was seen at,
// which is handy in debug logs.
func (f *Fragment) String() string {
	keys := slices.Sorted(maps.Keys(f.positions))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = strconv.Itoa(k)
	}
	return f.Value + "[" + strings.Join(parts, " ") + "]"
}
