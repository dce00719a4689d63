package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"edascope/adapters/excel"
	"edascope/adapters/stats/engine"
	"edascope/internal/migration"
	"edascope/internal/report"
	"edascope/internal/session"
	"edascope/internal/testkit"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "edascope-dev",
		Short: "edascope development tools",
	}
	rootCmd.SetOut(out)

	rootCmd.AddCommand(
		newSeedCmd(),
		newSmokeTestCmd(),
		newDeterminismTestCmd(),
		newMigrateCmd(),
	)
	return rootCmd
}

func newSeedCmd() *cobra.Command {
	cfg := testkit.DefaultCustomerConfig()
	var outPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the synthetic customer dataset as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateSeedData(cmd.OutOrStdout(), cfg, outPath)
		},
	}
	cmd.Flags().IntVar(&cfg.CustomerCount, "rows", cfg.CustomerCount, "Number of customers")
	cmd.Flags().Float64Var(&cfg.MissingRate, "missing-rate", cfg.MissingRate, "Share of blank income cells")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed for deterministic output")
	cmd.Flags().StringVarP(&outPath, "out", "o", "customers.csv", "Output CSV path")
	return cmd
}

func newSmokeTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "smoke",
		Short: "Run smoke tests over the synthetic dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmokeTests(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func newDeterminismTestCmd() *cobra.Command {
	var seed int64
	cmd := &cobra.Command{
		Use:   "determinism",
		Short: "Check that generation and reports are reproducible for a seed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return testDeterminism(cmd.OutOrStdout(), seed)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the dataset catalog schema in a local SQLite file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrateDatabase(cmd.Context(), cmd.OutOrStdout(), path)
		},
	}
	cmd.Flags().StringVar(&path, "db", "edascope.db", "SQLite database path")
	return cmd
}

func generateSeedData(out io.Writer, cfg testkit.CustomerGeneratorConfig, path string) error {
	table, err := testkit.NewCustomerDataGenerator(cfg).Generate()
	if err != nil {
		return errors.Wrap(err, "failed to generate customers")
	}
	if err := os.WriteFile(path, testkit.CSV(table), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	fmt.Fprintf(out, "Wrote %d rows x %d columns to %s (fingerprint %s)\n",
		table.RowCount(), table.ColumnCount(), path, table.Fingerprint().Short())
	return nil
}

func runSmokeTests(ctx context.Context, out io.Writer) error {
	fmt.Fprintln(out, "Running smoke tests...")

	eng := engine.NewStatsEngine(engine.DefaultConfig())
	table := testkit.Customers()

	tests := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"csv_round_trip", func(ctx context.Context) error {
			loaded, err := excel.NewDataReader("customers.csv").LoadReader("customers.csv", bytes.NewReader(testkit.CSV(table)))
			if err != nil {
				return err
			}
			if loaded.RowCount() != table.RowCount() {
				return errors.Newf("row count %d, want %d", loaded.RowCount(), table.RowCount())
			}
			return nil
		}},
		{"numeric_target_report", func(ctx context.Context) error {
			s, err := session.New(eng, table, "lifetime_value")
			if err != nil {
				return err
			}
			_, err = report.Generate(s, report.DefaultOptions())
			return err
		}},
		{"categorical_target_report", func(ctx context.Context) error {
			s, err := session.New(eng, table, "churned")
			if err != nil {
				return err
			}
			_, err = report.Generate(s, report.DefaultOptions())
			return err
		}},
		{"redundant_pair_found", func(ctx context.Context) error {
			s, err := session.New(eng, table, "churned")
			if err != nil {
				return err
			}
			r, err := s.RedundantPairs(0.8)
			if err != nil {
				return err
			}
			if len(r.Pairs) == 0 {
				return errors.New("income and monthly_spend should be redundant")
			}
			return nil
		}},
	}

	passed := 0
	for _, test := range tests {
		fmt.Fprintf(out, "  Running %s...", test.name)
		if err := test.fn(ctx); err != nil {
			fmt.Fprintf(out, " FAILED: %v\n", err)
		} else {
			fmt.Fprintln(out, " PASSED")
			passed++
		}
	}

	fmt.Fprintf(out, "\nSmoke tests: %d/%d passed\n", passed, len(tests))
	if passed < len(tests) {
		return errors.New("some smoke tests failed")
	}
	return nil
}

func testDeterminism(out io.Writer, seed int64) error {
	fmt.Fprintf(out, "Testing determinism for seed %d...\n", seed)

	cfg := testkit.DefaultCustomerConfig()
	cfg.Seed = seed
	eng := engine.NewStatsEngine(engine.DefaultConfig())

	var fingerprints [2]string
	var reports [2][]byte
	for i := range fingerprints {
		table, err := testkit.NewCustomerDataGenerator(cfg).Generate()
		if err != nil {
			return errors.Wrap(err, "failed to generate customers")
		}
		s, err := session.New(eng, table, "lifetime_value")
		if err != nil {
			return err
		}
		md, err := report.Generate(s, report.DefaultOptions())
		if err != nil {
			return err
		}
		fingerprints[i] = table.Fingerprint().String()
		reports[i] = md
	}

	if fingerprints[0] != fingerprints[1] {
		return errors.Newf("fingerprints differ: %s vs %s", fingerprints[0], fingerprints[1])
	}
	if !bytes.Equal(reports[0], reports[1]) {
		return errors.New("reports differ between identical generations")
	}
	fmt.Fprintf(out, "Determinism verified (fingerprint %s)\n", fingerprints[0][:12])
	return nil
}

func migrateDatabase(ctx context.Context, out io.Writer, path string) error {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", path)
	}
	defer db.Close()

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		return err
	}
	fmt.Fprintf(out, "Catalog schema %s applied to %s\n", runner.Version(), path)
	return nil
}
