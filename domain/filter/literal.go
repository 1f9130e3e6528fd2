package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"dataview/domain/table"
)

var temporalLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseLiteral converts a client-supplied literal into a value of the
// column's type.
func ParseLiteral(raw string, typ table.DataType) (table.ColumnValue, error) {
	s := strings.TrimSpace(raw)
	switch {
	case typ.IsNumeric():
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return table.ColumnValue{}, fmt.Errorf("'%s' is not a valid number", raw)
		}
		return table.Number(f), nil
	case typ.IsTextual():
		return table.Text(raw), nil
	case typ.Kind == table.TypeBoolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return table.ColumnValue{}, fmt.Errorf("'%s' is not a valid boolean", raw)
		}
		return table.Bool(b), nil
	case typ.IsTemporal():
		for _, layout := range temporalLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return table.Temporal(t), nil
			}
		}
		return table.ColumnValue{}, fmt.Errorf("'%s' is not a valid %s", raw, typ.Display())
	}
	return table.ColumnValue{}, fmt.Errorf("cannot compare %s columns", typ.Display())
}
