package dissociate

import (
	"strings"
	"testing"
)

// scriptedRand returns the scripted values in order, each reduced modulo n.
// Once the script is exhausted it keeps returning 0.
type scriptedRand struct {
	values []int
	calls  int
}

func (r *scriptedRand) IntN(n int) int {
	if r.calls >= len(r.values) {
		r.calls++
		return 0
	}
	v := r.values[r.calls] % n
	r.calls++
	return v
}

// setupModel creates a model and ingests every sentence with the given options.
func setupModel(t *testing.T, sentences []string, opts ...IngestOption) *Model {
	t.Helper()
	m := NewModel()
	for _, s := range sentences {
		if err := m.Ingest(s, opts...); err != nil {
			t.Fatalf("setup: Ingest(%q) failed: %v", s, err)
		}
	}
	return m
}

// mustFragment fetches a fragment or fails the test.
func mustFragment(t *testing.T, m *Model, value string) *Fragment {
	t.Helper()
	f, err := m.Fragment(value)
	if err != nil {
		t.Fatalf("Fragment(%q) failed: %v", value, err)
	}
	return f
}

// catDogCorpus is the two-sentence corpus used throughout the tests.
var catDogCorpus = []string{"the cat sat", "the dog ran"}

// benchmarkCorpus builds a few hundred sentences out of a small vocabulary.
func benchmarkCorpus() []string {
	words := strings.Fields("the quick brown fox jumps over a lazy dog while my cat sat on the mat and ran away")
	sentences := make([]string, 0, 500)
	for i := 0; i < 500; i++ {
		n := 4 + i%9
		parts := make([]string, n)
		for j := range parts {
			parts[j] = words[(i*7+j*3)%len(words)]
		}
		sentences = append(sentences, strings.Join(parts, " "))
	}
	return sentences
}
