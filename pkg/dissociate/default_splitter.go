package dissociate

import (
	"bufio"
	"io"
	"strings"
)

// DefaultSplitter is a default implementation of the Splitter interface. It
// reads the input line by line and cuts every line on a delimiter, ". " by
// default. Trailing carriage returns are dropped and empty sentences are
// skipped. Its behavior can be customized with functional options.
type DefaultSplitter struct {
	delimiter   string
	stopOnBlank bool
	maxLineSize int
}

// SplitterOption Is a function that configures a DefaultSplitter.
type SplitterOption func(*DefaultSplitter)

// WithDelimiter sets the string lines are cut on. An empty delimiter makes
// every line a single sentence.
// Default: ". "
func WithDelimiter(delim string) SplitterOption {
	return func(s *DefaultSplitter) {
		s.delimiter = delim
	}
}

// WithStopOnBlank makes the stream end at the first blank line, the way an
// interactive session signals that input is over.
// Default: false
func WithStopOnBlank(stop bool) SplitterOption {
	return func(s *DefaultSplitter) {
		s.stopOnBlank = stop
	}
}

// WithMaxLineSize sets the longest line the scanner accepts, in bytes.
// Default: 1 MiB
func WithMaxLineSize(n int) SplitterOption {
	return func(s *DefaultSplitter) {
		if n > 0 {
			s.maxLineSize = n
		}
	}
}

// NewDefaultSplitter creates a new splitter with default settings, which can
// be overridden by providing one or more SplitterOption functions.
func NewDefaultSplitter(opts ...SplitterOption) *DefaultSplitter {
	s := &DefaultSplitter{
		delimiter:   ". ",
		maxLineSize: 1024 * 1024,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split cuts a single line into its sentences.
func (s *DefaultSplitter) Split(line string) []string {
	line = strings.TrimRight(line, "\r\n")
	var parts []string
	if s.delimiter == "" {
		parts = []string{line}
	} else {
		parts = strings.Split(line, s.delimiter)
	}
	sentences := parts[:0]
	for _, p := range parts {
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// NewStream Returns the stream processor.
func (s *DefaultSplitter) NewStream(r io.Reader) SentenceStream {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(64*1024, s.maxLineSize)), s.maxLineSize)
	return &DefaultSentenceStream{
		splitter: s,
		scanner:  scanner,
	}
}

// DefaultSentenceStream is the default implementation of the SentenceStream
// interface.
type DefaultSentenceStream struct {
	splitter *DefaultSplitter
	scanner  *bufio.Scanner
	buffer   []string
	done     bool
}

// Next returns the next sentence from the stream. When the stream is
// exhausted, or a blank line is read with WithStopOnBlank set, it returns
// io.EOF. Any other error comes from reading the underlying stream.
func (s *DefaultSentenceStream) Next() (string, error) {
	for len(s.buffer) == 0 { // Loop until we have sentences
		if s.done || !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		line := s.scanner.Text()
		if s.splitter.stopOnBlank && strings.TrimRight(line, "\r") == "" {
			s.done = true
			return "", io.EOF
		}
		s.buffer = s.splitter.Split(line)
	}

	sentence := s.buffer[0]
	s.buffer = s.buffer[1:]
	return sentence, nil
}
