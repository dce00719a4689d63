package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"edascope/adapters/excel"
	"edascope/adapters/stats/engine"
	"edascope/internal"
	"edascope/internal/config"
	"edascope/internal/report"
	"edascope/internal/session"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every subcommand
type options struct {
	file            string
	sheet           string
	target          string
	maxRows         int
	parseTimestamps bool
	cfg             *config.Config
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "edascope",
		Short:         "Exploratory data analysis over CSV and Excel datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			internal.DefaultLogger = internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))

			if opts.file == "" {
				opts.file = cfg.Data.File
			}
			if opts.sheet == "" {
				opts.sheet = cfg.Data.Sheet
			}
			if !cmd.Flags().Changed("max-rows") {
				opts.maxRows = cfg.Data.MaxRows
			}
			if !cmd.Flags().Changed("parse-timestamps") {
				opts.parseTimestamps = cfg.Data.ParseTimestamps
			}
			return nil
		},
	}
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.file, "file", "f", "", "CSV or xlsx dataset (default EDA_DATA_FILE)")
	flags.StringVar(&opts.sheet, "sheet", "", "xlsx sheet name (default: first sheet)")
	flags.StringVarP(&opts.target, "target", "t", "", "Target column")
	flags.IntVar(&opts.maxRows, "max-rows", 0, "Read at most this many data rows (0 = all)")
	flags.BoolVar(&opts.parseTimestamps, "parse-timestamps", false, "Detect datetime columns")

	rootCmd.AddCommand(
		newClassifyCmd(opts),
		newProfileCmd(opts),
		newRelateCmd(opts),
		newCorrelateCmd(opts),
		newMatrixCmd(opts),
		newRedundancyCmd(opts),
		newPairCmd(opts),
		newImpactCmd(opts),
		newCrosstabCmd(opts),
		newClassesCmd(opts),
		newReportCmd(opts),
	)
	return rootCmd
}

// open loads the dataset and opens a session on the target
func (o *options) open() (*session.Session, error) {
	if o.file == "" {
		return nil, errors.New("no dataset: pass --file or set EDA_DATA_FILE")
	}
	if o.target == "" {
		return nil, errors.New("no target: pass --target")
	}

	readerCfg := excel.DefaultExcelConfig()
	readerCfg.FilePath = o.file
	readerCfg.Sheet = o.sheet
	readerCfg.MaxRows = o.maxRows
	readerCfg.CoercionConfig.ParseTimestamps = o.parseTimestamps
	if o.cfg.Data.NumericRatio > 0 {
		readerCfg.CoercionConfig.NumericThreshold = o.cfg.Data.NumericRatio
	}

	table, err := excel.NewDataReaderWithConfig(readerCfg).Load()
	if err != nil {
		return nil, err
	}
	eng := engine.NewStatsEngine(engine.Config{
		HistogramBins:       o.cfg.Engine.HistogramBins,
		RedundancyThreshold: o.cfg.Engine.RedundancyThreshold,
	})
	return session.New(eng, table, o.target)
}

// run opens a session and prints the query result as indented JSON
func run[T any](o *options, cmd *cobra.Command, query func(*session.Session) (T, error)) error {
	s, err := o.open()
	if err != nil {
		return err
	}
	result, err := query(s)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func newClassifyCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Show the dataset overview and the feature schema for the target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o, cmd, func(s *session.Session) (session.Overview, error) {
				return s.Overview(), nil
			})
		},
	}
}

func newProfileCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "profile COLUMN",
		Short: "Summarize one column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o, cmd, func(s *session.Session) (any, error) {
				return s.Profile(args[0])
			})
		},
	}
}

func newRelateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "relate FEATURE",
		Short: "Relate a numeric feature to the target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o, cmd, func(s *session.Session) (any, error) {
				return s.Relate(args[0])
			})
		},
	}
}

func newCorrelateCmd(o *options) *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "correlate",
		Short: "Rank numeric features by Pearson correlation with a numeric target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o, cmd, func(s *session.Session) (any, error) {
				return s.TopKCorrelated(o.cfg.Engine.ClampK(k))
			})
		},
	}
	cmd.Flags().IntVar(&k, "k", 0, "Number of features (clamped to the configured range; 0 = default)")
	return cmd
}

func newMatrixCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "matrix",
		Short: "Print the correlation matrix of the numeric features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o, cmd, func(s *session.Session) (any, error) {
				return s.CorrelationMatrix()
			})
		},
	}
}

func newRedundancyCmd(o *options) *cobra.Command {
	var threshold float64
	cmd := &cobra.Command{
		Use:   "redundancy",
		Short: "List numeric feature pairs above the redundancy threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("threshold") {
				threshold = o.cfg.Engine.RedundancyThreshold
			}
			return run(o, cmd, func(s *session.Session) (any, error) {
				return s.RedundantPairs(threshold)
			})
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 0.8, "Absolute correlation threshold in [0, 1)")
	return cmd
}

func newPairCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "pair A B",
		Short: "Correlate two numeric features",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o, cmd, func(s *session.Session) (any, error) {
				return s.PairCorrelation(args[0], args[1])
			})
		},
	}
}

func newImpactCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "impact FEATURE",
		Short: "Median and spread of a numeric target per category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o, cmd, func(s *session.Session) (any, error) {
				return s.Impact(args[0])
			})
		},
	}
}

func newCrosstabCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "crosstab FEATURE",
		Short: "Row-normalized contingency table against a categorical target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o, cmd, func(s *session.Session) (any, error) {
				return s.Crosstab(args[0])
			})
		},
	}
}

func newClassesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "Class distribution of a categorical target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o, cmd, func(s *session.Session) (any, error) {
				return s.ClassDistribution()
			})
		},
	}
}

func newReportCmd(o *options) *cobra.Command {
	var asHTML bool
	var outPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run every analysis suited to the target and write a markdown report",
		Long: `Run the analyses that apply to the target kind and render a report.

Example: edascope report -f customers.csv -t churned --html --out report.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open()
			if err != nil {
				return err
			}
			reportOpts := report.DefaultOptions()
			reportOpts.TopK = o.cfg.Engine.TopKDefault
			reportOpts.Threshold = o.cfg.Engine.RedundancyThreshold

			md, err := report.Generate(s, reportOpts)
			if err != nil {
				return err
			}
			if asHTML {
				md = report.ToHTML(md)
			}
			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(md)
				return err
			}
			if err := os.WriteFile(outPath, md, 0o644); err != nil {
				return errors.Wrapf(err, "failed to write %s", outPath)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "Render HTML instead of markdown")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the report to a file")
	return cmd
}
