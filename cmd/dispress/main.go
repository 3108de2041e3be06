// Command dispress reads text, dissociates it into fragments and presses new
// sentences out of them.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Build information, set with -ldflags at release time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// cliState is shared by every command of one invocation.
type cliState struct {
	configPath string
	logLevel   string
	config     *Config
	logger     *slog.Logger
	closeLog   func() error
}

func newRootCmd(state *cliState) *cobra.Command {
	var opts pressFlags

	root := &cobra.Command{
		Use:   "dispress",
		Short: "Dissociated Press: scramble text into new sentences",
		Long: `Dispress cuts the text it reads into fragments, remembers which fragments
followed and preceded each other, and then walks those links at random to
produce sentences that were never written.

Without a subcommand it behaves like "dispress run": type some sentences,
finish with an empty line, and watch it press until interrupted.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env file is fine.
			_ = godotenv.Load()

			config, err := LoadConfig(state.configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if state.logLevel != "" {
				config.App.LogLevel = state.logLevel
			}
			state.config = config
			state.logger, state.closeLog = setupLogger(cmd.ErrOrStderr(), config.App.LogFile, parseLogLevel(config.App.LogLevel))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPress(cmd, state, opts)
		},
	}

	root.PersistentFlags().StringVarP(&state.configPath, "config", "c", "./config.json", "path to the JSON config file")
	root.PersistentFlags().StringVar(&state.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
	opts.register(root, 0)

	root.AddCommand(newRunCmd(state))
	root.AddCommand(newGenerateCmd(state))
	root.AddCommand(newStatsCmd(state))
	root.AddCommand(newCorpusCmd(state))
	return root
}

// execute runs the command line in args and releases the log file afterwards.
func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	state := &cliState{}
	root := newRootCmd(state)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if state.closeLog != nil {
		_ = state.closeLog()
	}
	return err
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// The first interrupt cancels ctx; a second one kills the process.
	context.AfterFunc(ctx, stop)

	if err := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
