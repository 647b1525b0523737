package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mmynk/paypals/internal/command"
	"github.com/mmynk/paypals/internal/config"
	"github.com/mmynk/paypals/internal/ledger"
	"github.com/mmynk/paypals/internal/session"
	"github.com/mmynk/paypals/internal/storage/sqlite"
	"github.com/mmynk/paypals/pkg/logging"
)

// app carries what every subcommand needs once the root has started.
type app struct {
	cfg     *config.Config
	envFile string
	group   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "paypals",
		Short:         "Track shared expenses and work out who pays whom.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if a.envFile != "" {
				files = append(files, a.envFile)
			}
			cfg, err := config.Load(files...)
			if err != nil {
				return err
			}
			if a.group != "" {
				cfg.Group = a.group
			}
			a.cfg = cfg
			logging.Setup(cfg.Level())
			return nil
		},
		// Without a subcommand the interactive shell starts.
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runREPL(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "dotenv file to load (default .env)")
	root.PersistentFlags().StringVarP(&a.group, "group", "g", "", "group to open (overrides PAYPALS_GROUP)")

	root.AddCommand(
		&cobra.Command{
			Use:   "repl",
			Short: "Start the interactive shell",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runREPL(cmd.Context())
			},
		},
		newServeCmd(a),
		newSplitCmd(a),
		newExportCmd(a),
	)
	return root
}

// open loads the configured group from the SQLite database. The returned
// function closes the store.
func (a *app) open(ctx context.Context) (*session.Session, func(), error) {
	store, err := sqlite.New(a.cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	slog.Debug("Storage initialized", "database", a.cfg.DBPath)

	opts := ledger.Options{MaxActivities: a.cfg.MaxActivities, AmountLimit: a.cfg.Limit()}
	s, err := session.Open(ctx, store, a.cfg.Group, opts)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return s, func() { store.Close() }, nil
}

func (a *app) runREPL(ctx context.Context) error {
	s, closeStore, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer closeStore()
	return command.Run(ctx, s, os.Stdin, os.Stdout)
}
