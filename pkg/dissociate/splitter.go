package dissociate

import "io"

// Splitter is an interface that defines the contract for breaking input text
// into sentences. This keeps the model independent of how the surrounding
// program decides where one sentence ends and the next begins.
type Splitter interface {
	// NewStream returns a stateful SentenceStream for processing an io.Reader.
	NewStream(io.Reader) SentenceStream
}

// SentenceStream is an interface for a stateful splitter that processes a
// stream of data, returning one sentence at a time.
type SentenceStream interface {
	// Next returns the next sentence from the stream. It returns io.EOF as
	// the error when the stream is fully consumed.
	Next() (string, error)
}
