package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"discscore/internal/config"
	"discscore/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "discscore-cli",
		Short:         "Score rater discrepancies and size back-check audits",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")
	rootCmd.PersistentFlags().Bool("ledger", false, "Record runs in the DATABASE_URL ledger")

	rootCmd.AddCommand(
		newScoreCmd(),
		newResampleCmd("bootstrap", "Bootstrap distribution of the discrepancy score"),
		newResampleCmd("shuffle", "Shuffle test of the discrepancy score"),
		newSolveCmd(),
		newRunsCmd(),
		newMigrateCmd(),
	)

	return rootCmd
}

// loadContainer reads the environment and builds the services. The ledger
// is attached only when asked for, so one-off scoring needs no database.
func loadContainer(cmd *cobra.Command, withLedger bool) (*container.Container, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}

	ledger, _ := cmd.Flags().GetBool("ledger")
	if !withLedger && !ledger {
		return c, nil
	}
	if !cfg.Database.Enabled() {
		return nil, fmt.Errorf("DATABASE_URL is required for the run ledger")
	}
	db, err := container.OpenDatabase(cmd.Context(), cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := c.InitWithDatabase(db); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func closeContainer(c *container.Container) {
	if err := c.Shutdown(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

// printJSON writes v indented when --json is set and reports whether it did
func printJSON(cmd *cobra.Command, v interface{}) (bool, error) {
	asJSON, _ := cmd.Flags().GetBool("json")
	if !asJSON {
		return false, nil
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return true, enc.Encode(v)
}
