package coercer

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"dataview/domain/table"
)

// TypeCoercer infers column types from loosely typed cells and converts the
// cells to table values.
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold   float64  `json:"numeric_threshold" koanf:"numeric_threshold"`     // share of present values that must parse as numbers
	BooleanThreshold   float64  `json:"boolean_threshold" koanf:"boolean_threshold"`     // share of present values that must parse as booleans
	TimestampThreshold float64  `json:"timestamp_threshold" koanf:"timestamp_threshold"` // share of present values that must parse as timestamps
	FactorLevels       int      `json:"factor_levels" koanf:"factor_levels"`             // text columns with at most this many distinct values become factors; 0 disables
	NormalizeStrings   bool     `json:"normalize_strings" koanf:"normalize_strings"`     // collapse whitespace in text cells
	MissingTokens      []string `json:"missing_tokens" koanf:"missing_tokens"`           // cells read as missing
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   0.8,
		BooleanThreshold:   0.9,
		TimestampThreshold: 0.8,
		NormalizeStrings:   true,
		MissingTokens:      []string{"NA", "N/A", "NULL", "null", "NaN"},
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int            `json:"total_count"`
	ValidCount      int            `json:"valid_count"`
	NumericCount    int            `json:"numeric_count"`
	IntegralCount   int            `json:"integral_count"`
	BooleanCount    int            `json:"boolean_count"`
	TimestampCount  int            `json:"timestamp_count"`
	DateOnlyCount   int            `json:"date_only_count"`
	NumericRatio    float64        `json:"numeric_ratio"`
	BooleanRatio    float64        `json:"boolean_ratio"`
	TimestampRatio  float64        `json:"timestamp_ratio"`
	RecommendedType table.DataType `json:"recommended_type"`
}

// AnalyzeTypeDistribution counts how many values parse as each type and picks
// the type a column of these values should take.
func (c *TypeCoercer) AnalyzeTypeDistribution(values []any) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}

	for _, val := range values {
		val = unwrap(val)
		if c.isMissing(val) || isBlank(val) {
			continue
		}
		analysis.ValidCount++

		if f, ok := c.tryParseNumeric(val); ok {
			analysis.NumericCount++
			if f == math.Trunc(f) && math.Abs(f) < 1<<31 {
				analysis.IntegralCount++
			}
		}
		if _, ok := c.tryParseBoolean(val); ok {
			analysis.BooleanCount++
		}
		if t, ok := c.tryParseTimestamp(val); ok {
			analysis.TimestampCount++
			if isDateOnly(t) {
				analysis.DateOnlyCount++
			}
		}
	}

	if analysis.ValidCount > 0 {
		n := float64(analysis.ValidCount)
		analysis.NumericRatio = float64(analysis.NumericCount) / n
		analysis.BooleanRatio = float64(analysis.BooleanCount) / n
		analysis.TimestampRatio = float64(analysis.TimestampCount) / n
	}
	analysis.RecommendedType = c.determineRecommendedType(analysis)
	return analysis
}

// determineRecommendedType chooses the best type based on analysis
func (c *TypeCoercer) determineRecommendedType(a TypeAnalysis) table.DataType {
	switch {
	case a.ValidCount == 0:
		return table.Boolean
	case a.BooleanRatio >= c.config.BooleanThreshold && a.BooleanCount >= a.NumericCount:
		return table.Boolean
	case a.NumericRatio >= c.config.NumericThreshold:
		if a.IntegralCount == a.NumericCount {
			return table.Integer
		}
		return table.Double
	case a.TimestampRatio >= c.config.TimestampThreshold:
		if a.DateOnlyCount == a.TimestampCount {
			return table.Date
		}
		return table.Datetime
	}
	return table.String
}

// InferColumn builds a typed column from raw cells. Cells that do not fit the
// inferred type become missing; blank cells stay empty strings in text
// columns.
func (c *TypeCoercer) InferColumn(name string, values []any) table.Column {
	typ := c.AnalyzeTypeDistribution(values).RecommendedType
	if typ.Kind == table.TypeString && c.config.FactorLevels > 0 {
		typ = c.factorType(values, typ)
	}

	out := make([]table.ColumnValue, len(values))
	for i, v := range values {
		out[i] = c.CoerceValue(v, typ)
	}
	return table.NewColumn(name, typ, out...)
}

// CoerceValue converts a raw cell to a value of the given type.
func (c *TypeCoercer) CoerceValue(raw any, typ table.DataType) table.ColumnValue {
	raw = unwrap(raw)
	if c.isMissing(raw) {
		return table.Missing()
	}

	switch typ.Kind {
	case table.TypeDouble, table.TypeInteger:
		if f, ok := c.tryParseNumeric(raw); ok {
			return table.Number(f)
		}
	case table.TypeBoolean:
		if b, ok := c.tryParseBoolean(raw); ok {
			return table.Bool(b)
		}
	case table.TypeDate, table.TypeDatetime:
		if t, ok := c.tryParseTimestamp(raw); ok {
			return table.Temporal(t)
		}
	case table.TypeString:
		return table.Text(c.coerceToString(raw))
	case table.TypeFactor:
		if s := c.coerceToString(raw); typ.LevelIndex(s) >= 0 {
			return table.Text(s)
		}
	}
	return table.Missing()
}

func (c *TypeCoercer) factorType(values []any, fallback table.DataType) table.DataType {
	seen := make(map[string]bool)
	for _, v := range values {
		v = unwrap(v)
		if c.isMissing(v) || isBlank(v) {
			continue
		}
		seen[c.coerceToString(v)] = true
		if len(seen) > c.config.FactorLevels {
			return fallback
		}
	}
	if len(seen) == 0 || len(seen) == len(values) {
		return fallback
	}

	levels := make([]string, 0, len(seen))
	for s := range seen {
		levels = append(levels, s)
	}
	slices.Sort(levels)
	return table.Factor(levels...)
}

func (c *TypeCoercer) isMissing(val any) bool {
	switch v := val.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(v)
	case string:
		return slices.Contains(c.config.MissingTokens, strings.TrimSpace(v))
	}
	return false
}

func isBlank(val any) bool {
	s, ok := val.(string)
	return ok && strings.TrimSpace(s) == ""
}

// unwrap turns driver byte slices into text.
func unwrap(val any) any {
	if b, ok := val.([]byte); ok {
		return string(b)
	}
	return val
}

// coerceToString converts to normalized string value
func (c *TypeCoercer) coerceToString(val any) string {
	s := c.toString(val)
	if c.config.NormalizeStrings {
		s = c.normalizeString(s)
	}
	return s
}

// tryParseNumeric parses native numbers and numeric text. Text may carry
// parentheses for negatives, currency symbols, a percent sign, and either
// English or European separators.
func (c *TypeCoercer) tryParseNumeric(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool, time.Time:
		return 0, false
	}

	cleanVal := strings.TrimSpace(c.toString(val))
	if cleanVal == "" {
		return 0, false
	}

	// (123) -> -123
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
		// 1.234,56 and 1 234,56 use a decimal comma; 1,234.56 does not
		if strings.LastIndex(cleanVal, ",") > strings.LastIndex(cleanVal, ".") {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		}
	case hasComma:
		if thousandsGrouped.MatchString(cleanVal) {
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

	f, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

var thousandsGrouped = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+$`)

// tryParseBoolean accepts native booleans and common spellings
func (c *TypeCoercer) tryParseBoolean(val any) (bool, bool) {
	if b, ok := val.(bool); ok {
		return b, true
	}
	s, ok := val.(string)
	if !ok {
		return false, false
	}

	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y":
		return true, true
	case "false", "f", "no", "n":
		return false, true
	}
	return false, false
}

var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
}

// tryParseTimestamp accepts native times and the layouts above
func (c *TypeCoercer) tryParseTimestamp(val any) (time.Time, bool) {
	if t, ok := val.(time.Time); ok {
		return t, true
	}
	s, ok := val.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isDateOnly(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// normalizeString trims, collapses whitespace and strips control characters
func (c *TypeCoercer) normalizeString(s string) string {
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

// toString converts a raw cell to text
func (c *TypeCoercer) toString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}
