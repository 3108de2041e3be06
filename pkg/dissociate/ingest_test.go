package dissociate

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestIngestCatDog(t *testing.T) {
	m := setupModel(t, catDogCorpus)

	the := mustFragment(t, m, "the")
	if got, want := the.Next(), []string{"cat", "dog"}; !reflect.DeepEqual(got, want) {
		t.Errorf(`"the" next = %v, want %v`, got, want)
	}
	if got, want := the.Positions(), map[int]int{0: 2}; !reflect.DeepEqual(got, want) {
		t.Errorf(`"the" positions = %v, want %v`, got, want)
	}
	if len(the.Prev()) != 0 {
		t.Errorf(`"the" prev = %v, want none`, the.Prev())
	}

	sat := mustFragment(t, m, "sat")
	if got, want := sat.Prev(), []string{"cat"}; !reflect.DeepEqual(got, want) {
		t.Errorf(`"sat" prev = %v, want %v`, got, want)
	}
	if got, want := sat.Next(), []string{""}; !reflect.DeepEqual(got, want) {
		t.Errorf(`"sat" next = %v, want the sentinel only`, got)
	}
}

func TestIngestGrouping(t *testing.T) {
	testCases := []struct {
		name      string
		text      string
		opts      []IngestOption
		wantOrder []string // fragment values in sentence order
	}{
		{
			name:      "Single tokens get a trailing sentinel",
			text:      "a b c",
			wantOrder: []string{"a", "b", "c", ""},
		},
		{
			name:      "Pairs with a partial last group",
			text:      "a b c",
			opts:      []IngestOption{WithGroupSize(2)},
			wantOrder: []string{"a b", "c"},
		},
		{
			name:      "Pairs already aligned",
			text:      "a b c d",
			opts:      []IngestOption{WithGroupSize(2)},
			wantOrder: []string{"a b", "c d", ""},
		},
		{
			name:      "Aligned without trailing sentinel",
			text:      "a b c d",
			opts:      []IngestOption{WithGroupSize(2), WithTrailingSentinel(false)},
			wantOrder: []string{"a b", "c d"},
		},
		{
			name:      "Triples with one leftover",
			text:      "a b c d",
			opts:      []IngestOption{WithGroupSize(3)},
			wantOrder: []string{"a b c", "d"},
		},
		{
			name:      "Custom separator leaves no padding artifacts",
			text:      "a-b-c",
			opts:      []IngestOption{WithGroupSize(2), WithJoinSeparator("-")},
			wantOrder: []string{"a-b", "c"},
		},
		{
			name:      "Leading separator produces a sentinel start",
			text:      " x",
			wantOrder: []string{"", "x", ""},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := setupModel(t, []string{tc.text}, tc.opts...)

			for i, value := range tc.wantOrder {
				f := mustFragment(t, m, value)
				if !f.HasPosition(i) {
					t.Errorf("fragment %q missing position %d, has %v", value, i, f.Positions())
				}
				var wantNext []string
				if i+1 < len(tc.wantOrder) {
					wantNext = []string{tc.wantOrder[i+1]}
				}
				if value != "" && !reflect.DeepEqual(f.Next(), wantNext) {
					t.Errorf("fragment %q next = %v, want %v", value, f.Next(), wantNext)
				}
			}
		})
	}
}

func TestIngestTwiceDoublesEverything(t *testing.T) {
	sentence := "a b a c b"
	once := setupModel(t, []string{sentence})
	twice := setupModel(t, []string{sentence, sentence})

	if once.Len() != twice.Len() {
		t.Fatalf("fragment count changed: once %d, twice %d", once.Len(), twice.Len())
	}
	for value, f1 := range once.fragments {
		f2 := mustFragment(t, twice, value)
		if len(f2.Next()) != 2*len(f1.Next()) {
			t.Errorf("%q next: once %d, twice %d", value, len(f1.Next()), len(f2.Next()))
		}
		if len(f2.Prev()) != 2*len(f1.Prev()) {
			t.Errorf("%q prev: once %d, twice %d", value, len(f1.Prev()), len(f2.Prev()))
		}
		for position, count := range f1.Positions() {
			if f2.Count(position) != 2*count {
				t.Errorf("%q position %d: once %d, twice %d", value, position, count, f2.Count(position))
			}
		}
	}
}

func TestIngestPositionCoverage(t *testing.T) {
	sentences := []string{"to be or not to be", "be quick", "not now or never"}
	m := setupModel(t, sentences)

	for _, s := range sentences {
		for i, token := range strings.Split(s, " ") {
			if !mustFragment(t, m, token).HasPosition(i) {
				t.Errorf("token %q of %q missing position %d", token, s, i)
			}
		}
	}
}

func TestIngestNeighborsStayInsideSentence(t *testing.T) {
	m := setupModel(t, []string{"a b", "c d e"})

	for value, f := range m.fragments {
		for _, next := range f.Next() {
			if _, ok := m.fragments[next]; !ok {
				t.Errorf("%q has next neighbor %q that is not in the model", value, next)
			}
		}
		for _, prev := range f.Prev() {
			if _, ok := m.fragments[prev]; !ok {
				t.Errorf("%q has prev neighbor %q that is not in the model", value, prev)
			}
		}
	}

	// The last real fragment of each sentence only points at the sentinel,
	// and the sentinel itself leads nowhere.
	for _, last := range []string{"b", "e"} {
		if got := mustFragment(t, m, last).Next(); !reflect.DeepEqual(got, []string{""}) {
			t.Errorf("%q next = %v, want the sentinel only", last, got)
		}
	}
	if got := mustFragment(t, m, "").Next(); len(got) != 0 {
		t.Errorf("sentinel next = %v, want none", got)
	}
}

func TestIngestEmptyText(t *testing.T) {
	m := setupModel(t, []string{""})
	if m.Len() > 1 {
		t.Errorf("expected at most the sentinel after ingesting \"\", got %d fragments", m.Len())
	}
	if m.Len() == 1 {
		if _, err := m.Fragment(""); err != nil {
			t.Errorf("the only fragment should be the sentinel: %v", err)
		}
	}
}

func TestIngestInvalidOptions(t *testing.T) {
	m := NewModel()

	if err := m.Ingest("a b", WithGroupSize(0)); !errors.Is(err, ErrInvalidGroupSize) {
		t.Errorf("expected ErrInvalidGroupSize, got %v", err)
	}
	if err := m.Ingest("a b", WithJoinSeparator("")); !errors.Is(err, ErrEmptySeparator) {
		t.Errorf("expected ErrEmptySeparator, got %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("rejected ingests must not touch the model, got %d fragments", m.Len())
	}
}

func TestTrain(t *testing.T) {
	m := NewModel()
	ctx := context.Background()

	n, err := m.Train(ctx, strings.NewReader("the cat sat. the dog ran\n"), NewDefaultSplitter())
	if err != nil {
		t.Fatalf("Train() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 sentences, got %d", n)
	}
	if got, want := mustFragment(t, m, "the").Next(), []string{"cat", "dog"}; !reflect.DeepEqual(got, want) {
		t.Errorf(`"the" next = %v, want %v`, got, want)
	}
}

func TestTrainCancelled(t *testing.T) {
	m := NewModel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := m.Train(ctx, strings.NewReader("a b. c d"), NewDefaultSplitter())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if n != 0 || m.Len() != 0 {
		t.Errorf("nothing should be ingested after cancellation, got %d sentences and %d fragments", n, m.Len())
	}
}

func TestTrainInvalidOptions(t *testing.T) {
	m := NewModel()
	_, err := m.Train(context.Background(), strings.NewReader("a b"), NewDefaultSplitter(), WithGroupSize(-1))
	if !errors.Is(err, ErrInvalidGroupSize) {
		t.Errorf("expected ErrInvalidGroupSize, got %v", err)
	}
}

func BenchmarkIngest(b *testing.B) {
	corpus := benchmarkCorpus()
	for _, size := range []int{1, 2, 3} {
		b.Run(strings.Repeat("N", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				m := NewModel()
				for _, s := range corpus {
					_ = m.Ingest(s, WithGroupSize(size))
				}
			}
		})
	}
}
