package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// pressFlags are the flags shared by the commands that print sentences.
type pressFlags struct {
	count  int
	replay bool
	seed   uint64
}

func (f *pressFlags) register(cmd *cobra.Command, defaultCount int) {
	cmd.Flags().IntVarP(&f.count, "count", "n", defaultCount, "stop after printing this many sentences (0 = until interrupted)")
	cmd.Flags().BoolVar(&f.replay, "replay", false, "ingest the sentences stored by earlier runs first")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "seed for a reproducible run (0 = random)")
}

// withApp opens the App for the duration of fn.
func (s *cliState) withApp(seed uint64, fn func(app *App) error) error {
	app, err := NewApp(s.config, s.logger, seed)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			s.logger.Error("Failed to close database", "error", err)
		}
	}()
	return fn(app)
}

// ingestInputs trains the app on every named file, or on the command's input
// when there are none.
func ingestInputs(ctx context.Context, cmd *cobra.Command, app *App, files []string) (int, error) {
	if len(files) == 0 {
		return app.Ingest(ctx, cmd.InOrStdin(), false)
	}

	var total int
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return total, fmt.Errorf("failed to open input: %w", err)
		}
		n, err := app.Ingest(ctx, f, false)
		_ = f.Close()
		total += n
		if err != nil {
			return total, fmt.Errorf("failed to ingest %s: %w", path, err)
		}
	}
	return total, nil
}

func newRunCmd(state *cliState) *cobra.Command {
	var opts pressFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Read sentences until an empty line, then press new ones until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPress(cmd, state, opts)
		},
	}
	opts.register(cmd, 0)
	return cmd
}

func runPress(cmd *cobra.Command, state *cliState, opts pressFlags) error {
	ctx := cmd.Context()
	return state.withApp(opts.seed, func(app *App) error {
		if opts.replay {
			n, err := app.Replay(ctx)
			if err != nil {
				return fmt.Errorf("failed to replay corpus: %w", err)
			}
			state.logger.Info("Corpus replayed", "sentences", n)
		}

		in := cmd.InOrStdin()
		if isTerminal(in) {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Enter text, one or more sentences per line. Finish with an empty line.")
		}
		n, err := app.Ingest(ctx, in, true)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
		state.logger.Info("Input read", "sentences", n)

		return app.Press(ctx, cmd.OutOrStdout(), opts.count, state.config.Pace(), true)
	})
}

func newGenerateCmd(state *cliState) *cobra.Command {
	var opts pressFlags
	cmd := &cobra.Command{
		Use:   "generate [file...]",
		Short: "Ingest files (or standard input) and print new sentences without pacing",
		Example: `  dispress generate book.txt -n 5
  echo "the cat sat. the dog ran" | dispress generate --seed 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return state.withApp(opts.seed, func(app *App) error {
				if opts.replay {
					if _, err := app.Replay(ctx); err != nil {
						return fmt.Errorf("failed to replay corpus: %w", err)
					}
				}
				if _, err := ingestInputs(ctx, cmd, app, args); err != nil {
					return err
				}
				return app.Press(ctx, cmd.OutOrStdout(), opts.count, 0, false)
			})
		},
	}
	opts.register(cmd, 10)
	return cmd
}

func newStatsCmd(state *cliState) *cobra.Command {
	var replay bool
	cmd := &cobra.Command{
		Use:   "stats [file...]",
		Short: "Ingest files (or standard input) and print model statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return state.withApp(0, func(app *App) error {
				if replay {
					if _, err := app.Replay(ctx); err != nil {
						return fmt.Errorf("failed to replay corpus: %w", err)
					}
				}
				sentences, err := ingestInputs(ctx, cmd, app, args)
				if err != nil {
					return err
				}
				stored, err := app.store.Count(ctx)
				if err != nil {
					return fmt.Errorf("failed to count corpus: %w", err)
				}

				stats := app.model.Stats()
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "sentences ingested: %d\n", sentences)
				_, _ = fmt.Fprintf(out, "fragments:          %d\n", stats.Fragments)
				_, _ = fmt.Fprintf(out, "start candidates:   %d\n", stats.StartCandidates)
				_, _ = fmt.Fprintf(out, "next links:         %d\n", stats.NextLinks)
				_, _ = fmt.Fprintf(out, "prev links:         %d\n", stats.PrevLinks)
				_, _ = fmt.Fprintf(out, "max position:       %d\n", stats.MaxPosition)
				_, _ = fmt.Fprintf(out, "corpus sentences:   %d\n", stored)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&replay, "replay", false, "ingest the sentences stored by earlier runs first")
	return cmd
}

func newCorpusCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Inspect or clear the stored input sentences",
	}

	countCmd := &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored sentences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.withApp(0, func(app *App) error {
				n, err := app.store.Count(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget every stored sentence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.withApp(0, func(app *App) error {
				return app.store.Clear(cmd.Context())
			})
		},
	}

	cmd.AddCommand(countCmd, clearCmd)
	return cmd
}
