package table

import "fmt"

// TypeKind is the declared storage type of a column.
type TypeKind int

const (
	TypeUnknown TypeKind = iota
	TypeDouble
	TypeInteger
	TypeString
	TypeFactor
	TypeBoolean
	TypeDate
	TypeDatetime
	TypeObject
)

// DisplayType is the coarse type family shown to clients.
type DisplayType string

const (
	DisplayNumber   DisplayType = "number"
	DisplayString   DisplayType = "string"
	DisplayBoolean  DisplayType = "boolean"
	DisplayDate     DisplayType = "date"
	DisplayDatetime DisplayType = "datetime"
	DisplayObject   DisplayType = "object"
	DisplayUnknown  DisplayType = "unknown"
)

// DataType describes a column's declared type. Levels is set for factors only.
type DataType struct {
	Kind   TypeKind
	Levels []string
}

var (
	Double   = DataType{Kind: TypeDouble}
	Integer  = DataType{Kind: TypeInteger}
	String   = DataType{Kind: TypeString}
	Boolean  = DataType{Kind: TypeBoolean}
	Date     = DataType{Kind: TypeDate}
	Datetime = DataType{Kind: TypeDatetime}
	Object   = DataType{Kind: TypeObject}
)

// Factor declares a categorical column with ordered levels.
func Factor(levels ...string) DataType {
	return DataType{Kind: TypeFactor, Levels: levels}
}

// Display maps the declared type to its display family.
func (t DataType) Display() DisplayType {
	switch t.Kind {
	case TypeDouble, TypeInteger:
		return DisplayNumber
	case TypeString, TypeFactor:
		return DisplayString
	case TypeBoolean:
		return DisplayBoolean
	case TypeDate:
		return DisplayDate
	case TypeDatetime:
		return DisplayDatetime
	case TypeObject:
		return DisplayObject
	}
	return DisplayUnknown
}

// Label is the short type name shown in column headers.
func (t DataType) Label() string {
	switch t.Kind {
	case TypeDouble:
		return "dbl"
	case TypeInteger:
		return "int"
	case TypeString:
		return "str"
	case TypeFactor:
		return fmt.Sprintf("fct(%d)", len(t.Levels))
	case TypeBoolean:
		return "lgl"
	case TypeDate:
		return "Date"
	case TypeDatetime:
		return "POSIXct"
	case TypeObject:
		return "list"
	}
	return "unknown"
}

// IsNumeric reports whether the type holds numbers.
func (t DataType) IsNumeric() bool {
	return t.Kind == TypeDouble || t.Kind == TypeInteger
}

// IsTextual reports whether the type holds strings.
func (t DataType) IsTextual() bool {
	return t.Kind == TypeString || t.Kind == TypeFactor
}

// IsTemporal reports whether the type holds dates or datetimes.
func (t DataType) IsTemporal() bool {
	return t.Kind == TypeDate || t.Kind == TypeDatetime
}

// LevelIndex returns the position of s in the factor levels, or -1.
func (t DataType) LevelIndex(s string) int {
	for i, l := range t.Levels {
		if l == s {
			return i
		}
	}
	return -1
}
