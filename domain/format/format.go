// Package format renders column values for display and export.
package format

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"dataview/domain/table"
)

const (
	dateLayout     = "2006-01-02"
	datetimeLayout = "2006-01-02 15:04:05"
)

// Options controls numeric and text rendering.
type Options struct {
	LargeNumDigits    int    `json:"large_num_digits" koanf:"large_num_digits"`
	SmallNumDigits    int    `json:"small_num_digits" koanf:"small_num_digits"`
	MaxIntegralDigits int    `json:"max_integral_digits" koanf:"max_integral_digits"`
	MaxValueLength    int    `json:"max_value_length" koanf:"max_value_length"`
	ThousandsSep      string `json:"thousands_sep,omitempty" koanf:"thousands_sep"`
}

// DefaultOptions returns the options used when a request omits them.
func DefaultOptions() Options {
	return Options{
		LargeNumDigits:    2,
		SmallNumDigits:    4,
		MaxIntegralDigits: 7,
		MaxValueLength:    100,
		ThousandsSep:      ",",
	}
}

// Validate rejects options that cannot be rendered.
func (o Options) Validate() error {
	if o.LargeNumDigits < 0 || o.SmallNumDigits < 0 {
		return fmt.Errorf("digit counts must be non-negative")
	}
	if o.MaxIntegralDigits < 1 {
		return fmt.Errorf("max_integral_digits must be at least 1")
	}
	if o.MaxValueLength < 1 {
		return fmt.Errorf("max_value_length must be at least 1")
	}
	return nil
}

// Cell is a formatted value or a special value code. It encodes as a JSON
// string or integer respectively.
type Cell struct {
	Text    string
	Special bool
	Code    table.SpecialCode
}

// Formatted wraps rendered text.
func Formatted(s string) Cell { return Cell{Text: s} }

// SpecialCell wraps a special value code.
func SpecialCell(code table.SpecialCode) Cell { return Cell{Special: true, Code: code} }

// String renders the cell for export.
func (c Cell) String() string {
	if c.Special {
		return c.Code.String()
	}
	return c.Text
}

func (c Cell) MarshalJSON() ([]byte, error) {
	if c.Special {
		return json.Marshal(int(c.Code))
	}
	return json.Marshal(c.Text)
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	var code int
	if err := json.Unmarshal(data, &code); err == nil {
		*c = SpecialCell(table.SpecialCode(code))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("cell must be a string or integer code: %w", err)
	}
	*c = Formatted(s)
	return nil
}

// Value formats a single cell of a column with the given declared type.
func Value(v table.ColumnValue, typ table.DataType, o Options) Cell {
	switch v.Kind {
	case table.KindMissing, table.KindSpecial:
		return SpecialCell(v.Code)
	case table.KindNumber:
		if typ.Kind == table.TypeInteger {
			return Formatted(Integer(v.Num, o))
		}
		return Formatted(Double(v.Num, o))
	case table.KindText:
		return Formatted(Truncate(v.Str, o.MaxValueLength))
	case table.KindBoolean:
		return Formatted(strconv.FormatBool(v.Bool))
	case table.KindTemporal:
		if typ.Kind == table.TypeDate {
			return Formatted(v.Time.Format(dateLayout))
		}
		return Formatted(v.Time.Format(datetimeLayout))
	}
	return SpecialCell(table.SpecialNA)
}

// Column formats the given rows of a column.
func Column(c table.Column, rows []int, o Options) []Cell {
	out := make([]Cell, len(rows))
	for i, r := range rows {
		out[i] = Value(c.Value(r), c.Type, o)
	}
	return out
}

// Double renders a floating point number.
func Double(f float64, o Options) string {
	switch {
	case math.IsNaN(f):
		return table.SpecialNaN.String()
	case math.IsInf(f, 1):
		return table.SpecialInf.String()
	case math.IsInf(f, -1):
		return table.SpecialNegInf.String()
	}

	abs := math.Abs(f)
	switch {
	case abs == 0:
		return strconv.FormatFloat(0, 'f', o.LargeNumDigits, 64)
	case abs >= math.Pow10(o.MaxIntegralDigits):
		return strconv.FormatFloat(f, 'e', o.LargeNumDigits, 64)
	case abs >= 1:
		return groupThousands(strconv.FormatFloat(f, 'f', o.LargeNumDigits, 64), o.ThousandsSep)
	case abs < math.Pow10(-o.SmallNumDigits):
		return strconv.FormatFloat(f, 'e', o.SmallNumDigits, 64)
	}
	return strconv.FormatFloat(f, 'f', o.SmallNumDigits, 64)
}

// Integer renders a whole number with the thousands separator.
func Integer(f float64, o Options) string {
	if math.Abs(f) >= math.Pow10(o.MaxIntegralDigits) {
		return strconv.FormatFloat(f, 'e', o.LargeNumDigits, 64)
	}
	return groupThousands(strconv.FormatFloat(math.Round(f), 'f', 0, 64), o.ThousandsSep)
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func groupThousands(s, sep string) string {
	if sep == "" {
		return s
	}
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}
