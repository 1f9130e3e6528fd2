package table

import (
	"math"
	"strconv"
	"time"
)

// ValueKind tags the variant held by a ColumnValue.
type ValueKind int

const (
	KindMissing ValueKind = iota
	KindNumber
	KindText
	KindBoolean
	KindTemporal
	KindSpecial
)

// SpecialCode identifies values that cannot be shown as formatted text.
type SpecialCode int

const (
	SpecialNull   SpecialCode = 0
	SpecialNA     SpecialCode = 1
	SpecialNaN    SpecialCode = 2
	SpecialInf    SpecialCode = 10
	SpecialNegInf SpecialCode = 11
)

// String returns the export rendering of the code.
func (c SpecialCode) String() string {
	switch c {
	case SpecialNull:
		return "NULL"
	case SpecialNA:
		return "NA"
	case SpecialNaN:
		return "NaN"
	case SpecialInf:
		return "Inf"
	case SpecialNegInf:
		return "-Inf"
	}
	return "NA"
}

// ColumnValue is a single cell supplied by the host runtime.
// Missing values carry SpecialNA or SpecialNull in Code; non-finite numbers
// are KindSpecial.
type ColumnValue struct {
	Kind ValueKind
	Num  float64
	Str  string
	Bool bool
	Time time.Time
	Code SpecialCode
}

// Missing returns an NA value.
func Missing() ColumnValue { return ColumnValue{Kind: KindMissing, Code: SpecialNA} }

// Null returns a NULL value, used for absent elements of list columns.
func Null() ColumnValue { return ColumnValue{Kind: KindMissing, Code: SpecialNull} }

// Number wraps a float. NaN and infinities become special values.
func Number(f float64) ColumnValue {
	switch {
	case math.IsNaN(f):
		return ColumnValue{Kind: KindSpecial, Code: SpecialNaN, Num: f}
	case math.IsInf(f, 1):
		return ColumnValue{Kind: KindSpecial, Code: SpecialInf, Num: f}
	case math.IsInf(f, -1):
		return ColumnValue{Kind: KindSpecial, Code: SpecialNegInf, Num: f}
	}
	return ColumnValue{Kind: KindNumber, Num: f}
}

// Text wraps a string.
func Text(s string) ColumnValue { return ColumnValue{Kind: KindText, Str: s} }

// Bool wraps a boolean.
func Bool(b bool) ColumnValue { return ColumnValue{Kind: KindBoolean, Bool: b} }

// Temporal wraps a date or datetime.
func Temporal(t time.Time) ColumnValue { return ColumnValue{Kind: KindTemporal, Time: t} }

// Numbers builds a value slice from floats.
func Numbers(xs ...float64) []ColumnValue {
	out := make([]ColumnValue, len(xs))
	for i, x := range xs {
		out[i] = Number(x)
	}
	return out
}

// Texts builds a value slice from strings.
func Texts(xs ...string) []ColumnValue {
	out := make([]ColumnValue, len(xs))
	for i, x := range xs {
		out[i] = Text(x)
	}
	return out
}

// IsMissing reports whether the value counts as missing. NaN is missing.
func (v ColumnValue) IsMissing() bool {
	return v.Kind == KindMissing || (v.Kind == KindSpecial && v.Code == SpecialNaN)
}

// Float returns the numeric value of numbers and infinities.
func (v ColumnValue) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, true
	case KindSpecial:
		switch v.Code {
		case SpecialInf:
			return math.Inf(1), true
		case SpecialNegInf:
			return math.Inf(-1), true
		}
	}
	return 0, false
}

// Equal reports whether two values are identical, treating NaN as equal to NaN.
func (v ColumnValue) Equal(o ColumnValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindMissing, KindSpecial:
		return v.Code == o.Code
	case KindNumber:
		return v.Num == o.Num
	case KindText:
		return v.Str == o.Str
	case KindBoolean:
		return v.Bool == o.Bool
	case KindTemporal:
		return v.Time.Equal(o.Time)
	}
	return false
}

// Key maps equal values to equal strings.
func (v ColumnValue) Key() string {
	if f, ok := v.Float(); ok {
		if math.IsInf(f, 0) {
			return "f:" + v.Code.String()
		}
		return "f:" + strconv.FormatFloat(f, 'g', -1, 64)
	}
	switch v.Kind {
	case KindText:
		return "s:" + v.Str
	case KindBoolean:
		return "b:" + strconv.FormatBool(v.Bool)
	case KindTemporal:
		return "t:" + strconv.FormatInt(v.Time.UnixNano(), 10)
	}
	return "m:" + v.Code.String()
}
