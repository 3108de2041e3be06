package dissociate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ingestOptions Is used by Ingest and Train to configure default options.
type ingestOptions struct {
	groupSize        int
	separator        string
	trailingSentinel bool
}

// IngestOption is a function that configures how a sentence is broken into
// fragments.
type IngestOption func(*ingestOptions)

// WithGroupSize sets how many tokens are fused into one fragment.
// Default: 1
func WithGroupSize(n int) IngestOption {
	return func(o *ingestOptions) { o.groupSize = n }
}

// WithJoinSeparator sets the string the sentence is split on, which is also
// used to join tokens back into a fragment.
// Default: " "
func WithJoinSeparator(sep string) IngestOption {
	return func(o *ingestOptions) { o.separator = sep }
}

// WithTrailingSentinel controls what happens when the token count is already
// a multiple of the group size. When enabled, a whole group of padding is
// still appended; it becomes the empty sentinel fragment and is recorded as
// the next neighbor of the last real fragment. When disabled, the last real
// fragment gets no next neighbor at all.
// Default: true
func WithTrailingSentinel(enabled bool) IngestOption {
	return func(o *ingestOptions) { o.trailingSentinel = enabled }
}

func newIngestOptions(opts []IngestOption) (*ingestOptions, error) {
	options := &ingestOptions{
		groupSize:        1,
		separator:        " ",
		trailingSentinel: true,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.groupSize < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidGroupSize, options.groupSize)
	}
	if options.separator == "" {
		return nil, ErrEmptySeparator
	}
	return options, nil
}

// Ingest dissociates one sentence into the model. The text is split on the
// join separator, padded to a whole number of groups and fused into
// fragments; each fragment then learns its neighbors and its position.
// Values seen before accumulate onto their existing Fragment.
//
// Ingesting the empty string leaves the model unchanged.
func (m *Model) Ingest(text string, opts ...IngestOption) error {
	options, err := newIngestOptions(opts)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}

	groups := fuse(strings.Split(text, options.separator), options)

	for i, value := range groups {
		f := m.getOrCreate(value)

		var prev, next string
		if i > 0 {
			prev = groups[i-1]
			f.AddPrev(prev)
		}
		if i+1 < len(groups) {
			next = groups[i+1]
			f.AddNext(next)
		}

		if i == 0 && value != "" && !f.HasPosition(0) {
			m.starters = append(m.starters, value)
		}
		f.RecordPosition(i)

		m.logger.Debug("Fragment dissociated",
			slog.String("prev", prev),
			slog.String("fragment", value),
			slog.Int("position", i),
			slog.String("next", next),
			slog.Bool("start", i == 0),
			slog.Bool("end", i+1 == len(groups)),
		)
	}
	return nil
}

// fuse groups tokens into fragments of options.groupSize tokens each. Padding
// is never joined into a value, so the last group carries no trailing
// separators and a group made only of padding becomes the sentinel "".
func fuse(tokens []string, options *ingestOptions) []string {
	n := options.groupSize
	pad := n - len(tokens)%n
	if pad == n && !options.trailingSentinel {
		pad = 0
	}

	total := len(tokens) + pad
	groups := make([]string, 0, total/n)
	for start := 0; start < total; start += n {
		end := min(start+n, len(tokens))
		if start >= end {
			groups = append(groups, "")
			continue
		}
		groups = append(groups, strings.Join(tokens[start:end], options.separator))
	}
	return groups
}

// Train reads sentences from data using the splitter and ingests each of
// them. It returns the number of sentences ingested. Cancelling ctx stops
// training between two sentences; what was ingested so far stays in the
// model.
func (m *Model) Train(ctx context.Context, data io.Reader, splitter Splitter, opts ...IngestOption) (int, error) {
	if _, err := newIngestOptions(opts); err != nil {
		return 0, err
	}

	stream := splitter.NewStream(data)
	var sentenceCount int
	for {
		if err := ctx.Err(); err != nil {
			return sentenceCount, err
		}

		sentence, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return sentenceCount, fmt.Errorf("splitter error: %w", err)
		}

		if err = m.Ingest(sentence, opts...); err != nil {
			return sentenceCount, fmt.Errorf("failed to ingest sentence %d: %w", sentenceCount, err)
		}
		sentenceCount++
	}

	m.logger.InfoContext(ctx, "Training completed",
		slog.Int("sentences_processed", sentenceCount),
		slog.Int("fragments", len(m.fragments)),
	)
	return sentenceCount, nil
}
