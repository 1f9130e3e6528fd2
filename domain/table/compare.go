package table

import (
	"cmp"
	"strings"
)

// CompareValues orders two non-missing values of the same column.
// Factors order by level position; everything else by native order.
func CompareValues(typ DataType, a, b ColumnValue) int {
	if af, ok := a.Float(); ok {
		if bf, ok := b.Float(); ok {
			return cmp.Compare(af, bf)
		}
	}
	switch {
	case a.Kind == KindText && b.Kind == KindText:
		if typ.Kind == TypeFactor {
			ai, bi := typ.LevelIndex(a.Str), typ.LevelIndex(b.Str)
			if ai >= 0 && bi >= 0 {
				return cmp.Compare(ai, bi)
			}
		}
		return strings.Compare(a.Str, b.Str)
	case a.Kind == KindBoolean && b.Kind == KindBoolean:
		return cmp.Compare(boolRank(a.Bool), boolRank(b.Bool))
	case a.Kind == KindTemporal && b.Kind == KindTemporal:
		return a.Time.Compare(b.Time)
	}
	return cmp.Compare(a.Kind, b.Kind)
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
