package dissociate

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
)

var (
	// ErrEmptyNeighbors is returned when a random neighbor is requested from a
	// fragment that has none in that direction.
	ErrEmptyNeighbors = errors.New("fragment has no neighbors in that direction")
	// ErrNoStartCandidate is returned by Generate when no start fragment was
	// given and no fragment has ever begun a sentence.
	ErrNoStartCandidate = errors.New("no fragment has ever started a sentence")
	// ErrUnknownFragment is returned when a fragment value is not in the model.
	ErrUnknownFragment = errors.New("unknown fragment")
	// ErrInvalidGroupSize is returned by Ingest for a group size below 1.
	ErrInvalidGroupSize = errors.New("group size must be at least 1")
	// ErrEmptySeparator is returned by Ingest when the join separator is empty.
	ErrEmptySeparator = errors.New("join separator must not be empty")
	// ErrInvalidMaxSteps is returned by Generate for a negative step bound.
	ErrInvalidMaxSteps = errors.New("max steps must not be negative")
)

// Model maps fragment values to their Fragment records. A Model is filled
// with Ingest or Train and then queried with Generate.
//
// Ingestion must not run concurrently with anything else. Once it has
// completed, Generate and the read accessors may be called from several
// goroutines.
type Model struct {
	fragments map[string]*Fragment
	// starters holds the non-sentinel values seen at position 0, in the order
	// they were first seen there.
	starters []string
	logger   *slog.Logger
}

// NewModel returns an empty model. Logging is discarded until SetLogger is
// called.
func NewModel() *Model {
	return &Model{
		fragments: make(map[string]*Fragment),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger for the Model. By default, all logs are discarded.
func (m *Model) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Fragment returns the record stored for value. The returned Fragment is
// owned by the model and must not be modified.
func (m *Model) Fragment(value string) (*Fragment, error) {
	f, ok := m.fragments[value]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFragment, value)
	}
	return f, nil
}

// Len returns the number of fragments in the model, the sentinel included.
func (m *Model) Len() int {
	return len(m.fragments)
}

// FragmentsAtPosition returns, sorted, every value that ever occurred at the
// given sentence index.
func (m *Model) FragmentsAtPosition(position int) []string {
	var values []string
	for value, f := range m.fragments {
		if f.HasPosition(position) {
			values = append(values, value)
		}
	}
	sort.Strings(values)
	return values
}

// getOrCreate returns the fragment for value, adding it when missing.
func (m *Model) getOrCreate(value string) *Fragment {
	f, ok := m.fragments[value]
	if !ok {
		f = newFragment(value)
		m.fragments[value] = f
	}
	return f
}
