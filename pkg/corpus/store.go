package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/CTAG07/dispress/pkg/dissociate"
)

// SetupSchema initializes the corpus table in the provided database. It is
// idempotent and safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {
	const schemaSentences = `
CREATE TABLE IF NOT EXISTS corpus_sentences (
    sentence_id INTEGER PRIMARY KEY,
    sentence_text TEXT NOT NULL UNIQUE,
    occurrences INTEGER NOT NULL DEFAULT 1
);
`
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaSentences); err != nil {
		return fmt.Errorf("could not create schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// Store records input sentences. It holds prepared statements for the
// operations it runs often.
type Store struct {
	db            *sql.DB
	stmtAdd       *sql.Stmt
	stmtContains  *sql.Stmt
	stmtCount     *sql.Stmt
	stmtSentences *sql.Stmt
	logger        *slog.Logger
}

// NewStore creates a Store on a database prepared with SetupSchema.
func NewStore(db *sql.DB) (*Store, error) {
	stmtAdd, err := db.Prepare(`INSERT INTO corpus_sentences (sentence_text) VALUES (?) ON CONFLICT(sentence_text) DO UPDATE SET occurrences = occurrences + 1;`)
	if err != nil {
		return nil, err
	}

	stmtContains, err := db.Prepare(`SELECT 1 FROM corpus_sentences WHERE sentence_text = ?;`)
	if err != nil {
		return nil, err
	}

	stmtCount, err := db.Prepare(`SELECT COUNT(*) FROM corpus_sentences;`)
	if err != nil {
		return nil, err
	}

	stmtSentences, err := db.Prepare(`SELECT sentence_text, occurrences FROM corpus_sentences ORDER BY sentence_id;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:            db,
		stmtAdd:       stmtAdd,
		stmtContains:  stmtContains,
		stmtCount:     stmtCount,
		stmtSentences: stmtSentences,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases the prepared statements. The database stays open.
func (s *Store) Close() {
	_ = s.stmtAdd.Close()
	_ = s.stmtContains.Close()
	_ = s.stmtCount.Close()
	_ = s.stmtSentences.Close()
}

// SetLogger sets the logger for the Store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Add records one sentence, or counts one more occurrence of it.
func (s *Store) Add(ctx context.Context, sentence string) error {
	if _, err := s.stmtAdd.ExecContext(ctx, sentence); err != nil {
		return fmt.Errorf("could not add sentence: %w", err)
	}
	return nil
}

// AddAll records several sentences in one transaction.
func (s *Store) AddAll(ctx context.Context, sentences []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	stmtAdd := tx.StmtContext(ctx, s.stmtAdd)
	for _, sentence := range sentences {
		if _, err = stmtAdd.ExecContext(ctx, sentence); err != nil {
			return fmt.Errorf("could not add sentence %q: %w", sentence, err)
		}
	}

	s.logger.DebugContext(ctx, "Sentences recorded",
		slog.Int("sentences", len(sentences)),
	)
	return tx.Commit()
}

// Contains reports whether the exact sentence was ever recorded.
func (s *Store) Contains(ctx context.Context, sentence string) (bool, error) {
	var one int
	err := s.stmtContains.QueryRowContext(ctx, sentence).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("could not look up sentence: %w", err)
	}
	return true, nil
}

// Count returns the number of distinct recorded sentences.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.stmtCount.QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Replay ingests every recorded sentence into model, as many times as it was
// recorded, in the order the sentences were first seen. It returns the
// number of ingest calls made.
func (s *Store) Replay(ctx context.Context, model *dissociate.Model, opts ...dissociate.IngestOption) (int, error) {
	rows, err := s.stmtSentences.QueryContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not query sentences: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var ingested int
	for rows.Next() {
		var sentence string
		var occurrences int
		if err = rows.Scan(&sentence, &occurrences); err != nil {
			return ingested, err
		}
		for range occurrences {
			if err = model.Ingest(sentence, opts...); err != nil {
				return ingested, fmt.Errorf("could not replay sentence %q: %w", sentence, err)
			}
			ingested++
		}
	}
	if err = rows.Err(); err != nil {
		return ingested, err
	}

	s.logger.InfoContext(ctx, "Corpus replayed",
		slog.Int("sentences_ingested", ingested),
		slog.Int("fragments", model.Len()),
	)
	return ingested, nil
}

// Clear removes every recorded sentence.
func (s *Store) Clear(ctx context.Context) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM corpus_sentences")
	if err != nil {
		return fmt.Errorf("could not clear corpus: %w", err)
	}
	removed, _ := res.RowsAffected()
	s.logger.InfoContext(ctx, "Corpus cleared",
		slog.Int64("sentences_removed", removed),
	)
	return nil
}
