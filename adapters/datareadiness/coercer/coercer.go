package coercer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"edascope/domain/dataset"
)

// TypeCoercer handles deterministic type coercion of raw cell text
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold   float64 `json:"numeric_threshold"`   // % of values that must parse as numbers
	BooleanThreshold   float64 `json:"boolean_threshold"`   // % of values that must parse as booleans
	TimestampThreshold float64 `json:"timestamp_threshold"` // % of values that must parse as timestamps
	ParseTimestamps    bool    `json:"parse_timestamps"`    // Whether datetime columns are detected at all
	NormalizeStrings   bool    `json:"normalize_strings"`   // Whether to lower-case category labels
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   0.8, // 80% must parse as numbers
		BooleanThreshold:   1.0, // every value must be a boolean literal
		TimestampThreshold: 0.8, // 80% must parse as timestamps
		ParseTimestamps:    false,
		NormalizeStrings:   false,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int                `json:"total_count"`
	ValidCount      int                `json:"valid_count"`
	NumericCount    int                `json:"numeric_count"`
	BooleanCount    int                `json:"boolean_count"`
	TimestampCount  int                `json:"timestamp_count"`
	NumericRatio    float64            `json:"numeric_ratio"`
	BooleanRatio    float64            `json:"boolean_ratio"`
	TimestampRatio  float64            `json:"timestamp_ratio"`
	RecommendedKind dataset.ColumnKind `json:"recommended_kind"`
}

// AnalyzeTypeDistribution counts how many non-empty values parse as each kind
// and recommends a column kind. Empty strings are missing.
func (c *TypeCoercer) AnalyzeTypeDistribution(values []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}

	for _, raw := range values {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		analysis.ValidCount++
		if _, ok := c.ParseNumeric(val); ok {
			analysis.NumericCount++
		}
		if _, ok := c.ParseBoolean(val); ok {
			analysis.BooleanCount++
		}
		if c.config.ParseTimestamps {
			if _, ok := c.ParseTimestamp(val); ok {
				analysis.TimestampCount++
			}
		}
	}

	if analysis.ValidCount > 0 {
		valid := float64(analysis.ValidCount)
		analysis.NumericRatio = float64(analysis.NumericCount) / valid
		analysis.BooleanRatio = float64(analysis.BooleanCount) / valid
		analysis.TimestampRatio = float64(analysis.TimestampCount) / valid
	}
	analysis.RecommendedKind = c.determineRecommendedKind(analysis)
	return analysis
}

// determineRecommendedKind chooses the best kind based on analysis
func (c *TypeCoercer) determineRecommendedKind(analysis TypeAnalysis) dataset.ColumnKind {
	// An entirely empty column carries no evidence; treat it as numeric so it
	// reads as all-missing rather than as a category set with no members.
	if analysis.ValidCount == 0 {
		return dataset.KindNumeric
	}
	if analysis.NumericRatio >= c.config.NumericThreshold {
		return dataset.KindNumeric
	}
	if analysis.BooleanRatio >= c.config.BooleanThreshold {
		return dataset.KindBoolean
	}
	if c.config.ParseTimestamps && analysis.TimestampRatio >= c.config.TimestampThreshold {
		return dataset.KindDatetime
	}
	return dataset.KindCategorical
}

// CoerceColumn infers a kind for the raw values and builds the typed column.
// Cells that do not parse under the chosen kind become missing.
func (c *TypeCoercer) CoerceColumn(name string, values []string) dataset.Column {
	kind := c.AnalyzeTypeDistribution(values).RecommendedKind
	return c.CoerceAs(name, kind, values)
}

// CoerceAs builds a column of the given kind from raw values
func (c *TypeCoercer) CoerceAs(name string, kind dataset.ColumnKind, values []string) dataset.Column {
	switch kind {
	case dataset.KindNumeric:
		nums := make([]float64, len(values))
		for i, raw := range values {
			v, ok := c.ParseNumeric(raw)
			if !ok {
				v = math.NaN()
			}
			nums[i] = v
		}
		return dataset.NewNumericColumn(name, nums)
	case dataset.KindBoolean:
		labels := make([]string, len(values))
		for i, raw := range values {
			if b, ok := c.ParseBoolean(raw); ok {
				labels[i] = strconv.FormatBool(b)
			}
		}
		return dataset.NewLabelColumn(name, kind, labels)
	case dataset.KindDatetime:
		labels := make([]string, len(values))
		for i, raw := range values {
			if t, ok := c.ParseTimestamp(raw); ok {
				labels[i] = t.Format(time.RFC3339)
			}
		}
		return dataset.NewLabelColumn(name, kind, labels)
	default:
		labels := make([]string, len(values))
		for i, raw := range values {
			labels[i] = c.normalizeLabel(raw)
		}
		return dataset.NewCategoricalColumn(name, labels)
	}
}

// ParseNumeric attempts to parse as numeric with strict rules.
// Handles parentheses for negatives, currency symbols, percent signs,
// thousands separators and European decimal commas.
func (c *TypeCoercer) ParseNumeric(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}

	// Handle parentheses for negative numbers: (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY", "%"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		// 1.234,56 or 1 234,56 when the comma comes last; 1,234.56 otherwise
		if strings.LastIndex(cleanVal, ",") > strings.LastIndex(cleanVal, ".") {
			cleanVal = strings.NewReplacer(".", "", " ", "", ",", ".").Replace(cleanVal)
		} else {
			cleanVal = strings.NewReplacer(",", "", " ", "").Replace(cleanVal)
		}
	case hasComma:
		// 1,234 is a thousands group; 3,5 is a decimal comma
		idx := strings.LastIndex(cleanVal, ",")
		if strings.Count(cleanVal, ",") > 1 || len(cleanVal)-idx-1 == 3 {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		}
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// ParseBoolean accepts only the literals true and false, in any case.
// Encodings such as 0/1 or yes/no stay numeric or categorical.
func (c *TypeCoercer) ParseBoolean(strVal string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(strVal)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// ParseTimestamp attempts to parse as timestamp with multiple formats
func (c *TypeCoercer) ParseTimestamp(strVal string) (time.Time, bool) {
	strVal = strings.TrimSpace(strVal)
	if strVal == "" {
		return time.Time{}, false
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"01/02/2006",
		"2006/01/02",
		"02-Jan-2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, strVal); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeLabel trims a category label and optionally lower-cases it
func (c *TypeCoercer) normalizeLabel(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
	if c.config.NormalizeStrings {
		s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	}
	return s
}
