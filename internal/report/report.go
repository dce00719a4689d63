package report

import (
	"fmt"
	"math"
	"strings"

	"edascope/domain/eda"
	"edascope/internal/session"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Options tunes the analysis battery run for a report
type Options struct {
	TopK      int
	Threshold float64
	// MaxCategorical caps the categorical features given an impact or crosstab section
	MaxCategorical int
}

// DefaultOptions returns the report defaults
func DefaultOptions() Options {
	return Options{TopK: 10, Threshold: 0.8, MaxCategorical: 10}
}

// Generate runs the battery of analyses suited to the session's target and
// renders the results as markdown. Recoverable conditions are written into
// the report; request errors abort it.
func Generate(s *session.Session, opts Options) ([]byte, error) {
	if opts.TopK < 1 {
		opts.TopK = DefaultOptions().TopK
	}
	if opts.MaxCategorical < 1 {
		opts.MaxCategorical = DefaultOptions().MaxCategorical
	}

	var b strings.Builder
	ov := s.Overview()

	fmt.Fprintf(&b, "# EDA report: %s\n\n", ov.Name)
	fmt.Fprintf(&b, "Target `%s` (%s). %d rows, %d columns, %d missing cells.\n\n",
		ov.Schema.Target, ov.Schema.TargetKind, ov.Rows, ov.Columns, ov.MissingCells)

	writeSchema(&b, ov.Schema)
	if err := writeProfiles(&b, s, ov.ColumnNames); err != nil {
		return nil, err
	}

	var err error
	switch s.Kind() {
	case eda.TargetNumeric:
		err = writeNumericTarget(&b, s, opts)
	case eda.TargetCategorical:
		err = writeCategoricalTarget(&b, s, opts)
	}
	if err != nil {
		return nil, err
	}

	report, err := s.RedundantPairs(opts.Threshold)
	if err != nil {
		return nil, err
	}
	writeRedundancy(&b, report)

	return []byte(b.String()), nil
}

// ToHTML converts a markdown report into an HTML fragment
func ToHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(md)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return markdown.Render(doc, renderer)
}

func writeSchema(b *strings.Builder, schema eda.Schema) {
	b.WriteString("## Schema\n\n")
	fmt.Fprintf(b, "- Numeric features: %s\n", list(schema.NumericFeatures))
	fmt.Fprintf(b, "- Categorical features: %s\n", list(schema.CategoricalFeatures))
	if len(schema.Excluded) > 0 {
		fmt.Fprintf(b, "- Excluded: %s\n", list(schema.Excluded))
	}
	b.WriteString("\n")
}

func writeProfiles(b *strings.Builder, s *session.Session, columns []string) error {
	b.WriteString("## Columns\n\n")
	b.WriteString("| Column | Kind | Missing | Mean | Std | Median | Outliers | Distinct |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---:|---:|\n")
	for _, name := range columns {
		p, err := s.Profile(name)
		if err != nil {
			return err
		}
		median := "-"
		if p.Quartiles != nil {
			median = num(p.Quartiles.Median)
		}
		distinct := "-"
		if !p.Kind.IsNumeric() {
			distinct = fmt.Sprintf("%d", p.Distinct)
		}
		mean, std := "-", "-"
		if p.Kind.IsNumeric() {
			mean, std = num(p.Mean), num(p.StdDev)
		}
		fmt.Fprintf(b, "| %s | %s | %d | %s | %s | %s | %d | %s |\n",
			name, p.Kind, p.MissingCount, mean, std, median, p.OutlierCount, distinct)
	}
	b.WriteString("\n")
	return nil
}

func writeNumericTarget(b *strings.Builder, s *session.Session, opts Options) error {
	k := opts.TopK
	if n := len(s.Schema.NumericFeatures); n > 0 && k > n {
		k = n
	}
	if len(s.Schema.NumericFeatures) > 0 {
		top, err := s.TopKCorrelated(k)
		if err != nil {
			return err
		}
		b.WriteString("## Correlation with target\n\n")
		b.WriteString("| Feature | r | n | Slope | R² |\n|---|---:|---:|---:|---:|\n")
		for _, entry := range top {
			rel, err := s.Relate(entry.Feature)
			if err != nil {
				return err
			}
			slope, r2 := "n/a", "n/a"
			if rel.Trend != nil {
				slope, r2 = num(rel.Trend.Slope), num(rel.Trend.RSquared)
			}
			fmt.Fprintf(b, "| %s | %s | %d | %s | %s |\n", entry.Feature, num(entry.Coefficient), entry.N, slope, r2)
		}
		b.WriteString("\n")
	}

	for i, feature := range s.Schema.CategoricalFeatures {
		if i >= opts.MaxCategorical {
			break
		}
		impact, err := s.Impact(feature)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "## Impact of %s\n\n", feature)
		b.WriteString("| Category | Median | Std | Count |\n|---|---:|---:|---:|\n")
		for _, g := range impact.Groups {
			fmt.Fprintf(b, "| %s | %s | %s | %d |\n", g.Category, num(g.Median), num(g.StdDev), g.Count)
		}
		b.WriteString("\n")
	}
	return nil
}

func writeCategoricalTarget(b *strings.Builder, s *session.Session, opts Options) error {
	classes, err := s.ClassDistribution()
	if err != nil {
		return err
	}
	b.WriteString("## Class distribution\n\n")
	b.WriteString("| Class | Count | Share |\n|---|---:|---:|\n")
	for _, c := range classes {
		fmt.Fprintf(b, "| %s | %d | %s |\n", c.Class, c.Count, pct(c.Share))
	}
	b.WriteString("\n")

	if len(s.Schema.NumericFeatures) > 0 {
		b.WriteString("## Numeric features by class\n\n")
		b.WriteString("| Feature | Class | Count | Median | IQR | Outliers |\n|---|---|---:|---:|---:|---:|\n")
		for _, feature := range s.Schema.NumericFeatures {
			rel, err := s.Relate(feature)
			if err != nil {
				return err
			}
			for _, g := range rel.Groups {
				fmt.Fprintf(b, "| %s | %s | %d | %s | %s | %d |\n",
					feature, g.Class, g.Count, num(g.Median), num(float64(g.Q3)-float64(g.Q1)), len(g.Outliers))
			}
		}
		b.WriteString("\n")
	}

	for i, feature := range s.Schema.CategoricalFeatures {
		if i >= opts.MaxCategorical {
			break
		}
		ct, err := s.Crosstab(feature)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "## %s by %s\n\n", s.Target(), feature)
		fmt.Fprintf(b, "| %s | %s |\n", feature, strings.Join(ct.Columns, " | "))
		b.WriteString("|---" + strings.Repeat("|---:", len(ct.Columns)) + "|\n")
		for r, row := range ct.Rows {
			cells := make([]string, len(ct.Columns))
			for c := range ct.Columns {
				cells[c] = pct(ct.Proportions[r][c])
			}
			fmt.Fprintf(b, "| %s | %s |\n", row, strings.Join(cells, " | "))
		}
		a := ct.Association
		fmt.Fprintf(b, "\nChi-square %s (df %d), p = %s, Cramér's V = %s.\n\n",
			num(a.ChiSquare), a.DegreesOfFreedom, num(a.PValue), num(a.CramersV))
	}
	return nil
}

func writeRedundancy(b *strings.Builder, report *eda.RedundancyReport) {
	fmt.Fprintf(b, "## Redundant features (|r| > %.2f)\n\n", report.Threshold)
	switch {
	case !report.Applicable:
		fmt.Fprintf(b, "Not applicable: %s.\n", report.Reason.Err)
	case len(report.Pairs) == 0:
		b.WriteString("No redundant pairs.\n")
	default:
		b.WriteString("| A | B | r |\n|---|---|---:|\n")
		for _, p := range report.Pairs {
			fmt.Fprintf(b, "| %s | %s | %s |\n", p.A, p.B, num(p.Coefficient))
		}
	}
}

func list(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return "`" + strings.Join(names, "`, `") + "`"
}

func num[T ~float64](v T) string {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.4g", f)
}

func pct(v eda.Float) string {
	if v.IsNaN() {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", float64(v)*100)
}
