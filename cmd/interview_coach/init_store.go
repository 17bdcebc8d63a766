package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-coach/internal/store"
)

var prune bool

var initStoreCmd = &cobra.Command{
	Use:   "init-store",
	Short: "Create the sessions table for the configured backend",
	Long: `Create the sessions table if it does not exist. Running it again is a no-op.
With --prune, sessions whose expiry marker has passed are deleted afterwards.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		fmt.Fprintf(os.Stdout, "Sessions store ready (%s, table %s)\n", cfg.StoreBackend, cfg.SessionsTable)
		if !prune {
			return nil
		}
		return runPrune(cmd.Context(), s, time.Now().UTC(), os.Stdout)
	},
}

func init() {
	initStoreCmd.Flags().BoolVar(&prune, "prune", false, "Delete sessions past their expiry marker")
	rootCmd.AddCommand(initStoreCmd)
}

func runPrune(ctx context.Context, s store.Store, cutoff time.Time, out io.Writer) error {
	p, ok := s.(store.Pruner)
	if !ok {
		return fmt.Errorf("store backend does not support pruning")
	}
	n, err := p.DeleteExpired(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune sessions: %w", err)
	}
	fmt.Fprintf(out, "Deleted %d expired sessions\n", n)
	return nil
}
