package dissociate

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Direction selects which way Generate walks from the start fragment.
type Direction int

const (
	// Forward appends following fragments.
	Forward Direction = 1 << iota
	// Backward prepends preceding fragments.
	Backward
	// Both walks backward first, then forward from the start fragment.
	Both = Forward | Backward
)

// String returns the lowercase name of the direction.
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection converts "forward", "backward" or "both" into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forward", "next":
		return Forward, nil
	case "backward", "prev":
		return Backward, nil
	case "both":
		return Both, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// generateOptions Is used by Generate to configure default options.
type generateOptions struct {
	direction Direction
	separator string
	start     string
	maxSteps  int
	rand      Rand
}

// GenerateOption is a function that configures generation parameters.
type GenerateOption func(*generateOptions)

// WithDirection sets which way the walk goes.
// Default: Forward
func WithDirection(d Direction) GenerateOption {
	return func(o *generateOptions) { o.direction = d }
}

// WithSeparator sets the string placed between fragments in the output.
// Default: " "
func WithSeparator(sep string) GenerateOption {
	return func(o *generateOptions) { o.separator = sep }
}

// WithStart sets the fragment the walk starts from. An empty value means a
// random fragment that has begun a sentence before.
func WithStart(value string) GenerateOption {
	return func(o *generateOptions) { o.start = value }
}

// WithMaxSteps bounds the number of fragments added in each direction.
// Default: 255
func WithMaxSteps(n int) GenerateOption {
	return func(o *generateOptions) { o.maxSteps = n }
}

// WithRand sets the source used for every random choice of the call. A
// *rand.Rand is not safe for concurrent use, so concurrent callers should
// each pass their own.
// Default: the global source of math/rand/v2
func WithRand(r Rand) GenerateOption {
	return func(o *generateOptions) {
		if r != nil {
			o.rand = r
		}
	}
}

// Generate associates a new sentence out of the model by walking the
// fragment graph from a start fragment. A walk in one direction ends when
// it picks the empty sentinel, when the current fragment has no neighbors
// that way, or after max steps. Generate never modifies the model.
func (m *Model) Generate(opts ...GenerateOption) (string, error) {
	options := &generateOptions{
		direction: Forward,
		separator: " ",
		maxSteps:  255,
		rand:      globalRand{},
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.maxSteps < 0 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidMaxSteps, options.maxSteps)
	}

	entry, err := m.startFragment(options)
	if err != nil {
		return "", err
	}

	var before, after []string
	if options.direction&Backward != 0 {
		before = m.walk(entry, options, (*Fragment).RandomPrev)
	}
	if options.direction&Forward != 0 {
		after = m.walk(entry, options, (*Fragment).RandomNext)
	}

	parts := make([]string, 0, len(before)+1+len(after))
	for i := len(before) - 1; i >= 0; i-- {
		parts = append(parts, before[i])
	}
	parts = append(parts, entry)
	parts = append(parts, after...)

	m.logger.Debug("Sentence associated",
		slog.String("start", entry),
		slog.String("direction", options.direction.String()),
		slog.Int("prepended", len(before)),
		slog.Int("appended", len(after)),
	)

	return strings.Join(parts, options.separator), nil
}

// startFragment resolves the entry point of a walk.
func (m *Model) startFragment(options *generateOptions) (string, error) {
	if options.start != "" {
		if _, ok := m.fragments[options.start]; !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownFragment, options.start)
		}
		return options.start, nil
	}
	if len(m.starters) == 0 {
		return "", ErrNoStartCandidate
	}
	return m.starters[options.rand.IntN(len(m.starters))], nil
}

// walk collects up to options.maxSteps fragments reached from entry through
// step, nearest first.
func (m *Model) walk(entry string, options *generateOptions, step func(*Fragment, Rand) (string, error)) []string {
	var visited []string
	current := entry
	for range options.maxSteps {
		f, ok := m.fragments[current]
		if !ok || current == "" {
			break
		}
		value, err := step(f, options.rand)
		if err != nil {
			if errors.Is(err, ErrEmptyNeighbors) {
				m.logger.Debug("Walk stopped at fragment without neighbors",
					slog.String("fragment", current),
					slog.Int("steps", len(visited)),
				)
			}
			break
		}
		if value == "" {
			break
		}
		visited = append(visited, value)
		current = value
	}
	return visited
}
