package dissociate

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

func collectSentences(t *testing.T, s Splitter, input string) []string {
	t.Helper()
	stream := s.NewStream(strings.NewReader(input))
	var sentences []string
	for {
		sentence, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next() failed: %v", err)
		}
		sentences = append(sentences, sentence)
	}
	return sentences
}

func TestDefaultSplitter(t *testing.T) {
	input := "one fish. two fish. red fish\r\nblue fish.\n\nlast line"

	testCases := []struct {
		name     string
		opts     []SplitterOption
		expected []string
	}{
		{
			name:     "Default delimiter",
			expected: []string{"one fish", "two fish", "red fish", "blue fish.", "last line"},
		},
		{
			name:     "Stop on blank line",
			opts:     []SplitterOption{WithStopOnBlank(true)},
			expected: []string{"one fish", "two fish", "red fish", "blue fish."},
		},
		{
			name:     "No delimiter keeps whole lines",
			opts:     []SplitterOption{WithDelimiter("")},
			expected: []string{"one fish. two fish. red fish", "blue fish.", "last line"},
		},
		{
			name:     "Custom delimiter",
			opts:     []SplitterOption{WithDelimiter(" fish")},
			expected: []string{"one", ". two", ". red", "blue", ".", "last line"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := collectSentences(t, NewDefaultSplitter(tc.opts...), input)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("got %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestDefaultSplitterEOF(t *testing.T) {
	stream := NewDefaultSplitter(WithStopOnBlank(true)).NewStream(strings.NewReader("\nafter blank"))
	for i := 0; i < 2; i++ {
		if _, err := stream.Next(); !errors.Is(err, io.EOF) {
			t.Fatalf("call %d: expected io.EOF, got %v", i, err)
		}
	}
}

func TestDefaultSplitterLineTooLong(t *testing.T) {
	s := NewDefaultSplitter(WithMaxLineSize(16))
	stream := s.NewStream(strings.NewReader(strings.Repeat("x", 64)))
	if _, err := stream.Next(); err == nil || errors.Is(err, io.EOF) {
		t.Errorf("expected a scanner error for an oversized line, got %v", err)
	}
}
