package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CTAG07/dispress/pkg/corpus"
	"github.com/CTAG07/dispress/pkg/dissociate"
)

const (
	bannerStart = "=== Dissociated Press ==="
	bannerEnd   = "=== Enough! ==="
)

// errNothingNew is returned when every attempt in a row reproduced a sentence
// that is already part of the input.
var errNothingNew = errors.New("model only reproduces input sentences")

// App wires a model to its corpus store and to the console.
type App struct {
	config *Config
	logger *slog.Logger
	db     *sql.DB
	store  *corpus.Store
	model  *dissociate.Model
	rand   dissociate.Rand
}

// NewApp opens the corpus database named in the config and creates an empty
// model. A seed of 0 keeps the global random source.
func NewApp(config *Config, logger *slog.Logger, seed uint64) (*App, error) {
	db, err := initDB(config.App.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err = corpus.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup corpus schema: %w", err)
	}

	store, err := corpus.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error creating corpus store: %w", err)
	}
	store.SetLogger(logger)

	model := dissociate.NewModel()
	model.SetLogger(logger)

	app := &App{
		config: config,
		logger: logger,
		db:     db,
		store:  store,
		model:  model,
	}
	if seed != 0 {
		app.rand = rand.New(rand.NewPCG(seed, seed))
	}
	return app, nil
}

// initDB opens the SQLite database, creating its directory when needed. An
// in-memory database is pinned to a single connection so that every query
// sees the same data.
func initDB(path string) (*sql.DB, error) {
	if strings.HasPrefix(path, ":memory:") {
		db, err := openDB(path)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1)
		return db, nil
	}

	file, _, _ := strings.Cut(strings.TrimPrefix(path, "file:"), "?")
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return openDB(path)
}

// Close releases the store and the database.
func (a *App) Close() error {
	a.store.Close()
	return a.db.Close()
}

// Replay feeds every sentence stored by earlier runs into the model.
func (a *App) Replay(ctx context.Context) (int, error) {
	return a.store.Replay(ctx, a.model, a.config.IngestOptions()...)
}

// Ingest reads sentences from r, trains the model on them and records them in
// the corpus. With stopOnBlank, a blank line ends the input. Cancelling ctx
// ends the input too, even while a read from r is blocked.
func (a *App) Ingest(ctx context.Context, r io.Reader, stopOnBlank bool) (int, error) {
	splitter := &recordingSplitter{
		inner: dissociate.NewDefaultSplitter(
			dissociate.WithDelimiter(a.config.Ingest.SentenceDelimiter),
			dissociate.WithStopOnBlank(stopOnBlank),
		),
	}

	n, err := a.model.Train(ctx, newContextReader(ctx, r), splitter, a.config.IngestOptions()...)

	// Sentences that reached the model are recorded even when training
	// stopped early, so a later replay rebuilds the same model.
	if recErr := a.store.AddAll(context.WithoutCancel(ctx), splitter.sentences); recErr != nil {
		return n, errors.Join(err, fmt.Errorf("failed to record input: %w", recErr))
	}
	return n, err
}

// Next generates sentences until one is not part of the input, giving up
// after the configured number of attempts.
func (a *App) Next(ctx context.Context) (string, error) {
	opts := a.config.GenerateOptions()
	if a.rand != nil {
		opts = append(opts, dissociate.WithRand(a.rand))
	}

	for attempt := 0; attempt < a.config.Generate.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		sentence, err := a.model.Generate(opts...)
		if err != nil {
			return "", fmt.Errorf("failed to generate sentence: %w", err)
		}
		seen, err := a.store.Contains(ctx, sentence)
		if err != nil {
			return "", err
		}
		if !seen {
			return sentence, nil
		}
		a.logger.Debug("Discarding copy of input", "sentence", sentence, "attempt", attempt)
	}
	return "", errNothingNew
}

// Press prints up to count new sentences to w, or until ctx is cancelled when
// count is 0, waiting pace between them. With banner set, the output is framed
// the way the interactive program always did.
func (a *App) Press(ctx context.Context, w io.Writer, count int, pace time.Duration, banner bool) error {
	if banner {
		_, _ = fmt.Fprintln(w, bannerStart)
	}

	var err error
	printed := 0
	for count == 0 || printed < count {
		var sentence string
		sentence, err = a.Next(ctx)
		if err != nil {
			break
		}
		if _, err = fmt.Fprintln(w, sentence); err != nil {
			break
		}
		printed++
		if count != 0 && printed == count {
			break
		}
		if err = sleepContext(ctx, pace); err != nil {
			break
		}
	}

	// Interruption is the normal way to stop an endless run.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if banner {
		_, _ = fmt.Fprintln(w, bannerEnd)
	}
	a.logger.Debug("Press finished", "printed", printed)
	return err
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// recordingSplitter remembers every sentence its streams hand out.
type recordingSplitter struct {
	inner     dissociate.Splitter
	sentences []string
}

func (s *recordingSplitter) NewStream(r io.Reader) dissociate.SentenceStream {
	return &recordingStream{inner: s.inner.NewStream(r), splitter: s}
}

type recordingStream struct {
	inner    dissociate.SentenceStream
	splitter *recordingSplitter
}

func (s *recordingStream) Next() (string, error) {
	sentence, err := s.inner.Next()
	if err == nil {
		s.splitter.sentences = append(s.splitter.sentences, sentence)
	}
	return sentence, err
}

// contextReader stops reading once ctx is done. A read blocked on the inner
// reader is abandoned, so the reader must not be used after cancellation.
type contextReader struct {
	ctx   context.Context
	inner io.Reader
}

type readResult struct {
	data []byte
	err  error
}

func newContextReader(ctx context.Context, r io.Reader) io.Reader {
	if ctx.Done() == nil {
		return r
	}
	return &contextReader{ctx: ctx, inner: r}
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	results := make(chan readResult, 1)
	buf := make([]byte, len(p))
	go func() {
		n, err := c.inner.Read(buf)
		results <- readResult{data: buf[:n], err: err}
	}()

	select {
	case <-c.ctx.Done():
		return 0, c.ctx.Err()
	case res := <-results:
		return copy(p, res.data), res.err
	}
}
