package filter

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"dataview/domain/table"
)

type predicate func(v table.ColumnValue) bool

func newPredicate(f *RowFilter, typ table.DataType) (predicate, error) {
	switch f.Kind {
	case KindNotNull:
		return func(v table.ColumnValue) bool { return !v.IsMissing() }, nil
	case KindIsNull:
		return table.ColumnValue.IsMissing, nil
	case KindIsEmpty:
		return func(v table.ColumnValue) bool { return v.Kind == table.KindText && v.Str == "" }, nil
	case KindIsTrue:
		return func(v table.ColumnValue) bool { return v.Kind == table.KindBoolean && v.Bool }, nil
	case KindIsFalse:
		return func(v table.ColumnValue) bool { return v.Kind == table.KindBoolean && !v.Bool }, nil
	case KindCompare:
		if f.Compare == nil {
			return nil, fmt.Errorf("compare filter requires compare_params")
		}
		return comparePredicate(*f.Compare, typ)
	case KindSearch:
		if f.Search == nil {
			return nil, fmt.Errorf("search filter requires search_params")
		}
		return searchPredicate(*f.Search)
	case KindSetMembership:
		if f.SetMembership == nil {
			return nil, fmt.Errorf("set_membership filter requires set_membership_params")
		}
		return membershipPredicate(*f.SetMembership, typ)
	}
	return nil, fmt.Errorf("unknown filter type '%s'", f.Kind)
}

func comparePredicate(p CompareParams, typ table.DataType) (predicate, error) {
	lit, err := ParseLiteral(p.Value, typ)
	if err != nil {
		return nil, err
	}

	var accept func(c int) bool
	switch p.Op {
	case OpLess:
		accept = func(c int) bool { return c < 0 }
	case OpLessEqual:
		accept = func(c int) bool { return c <= 0 }
	case OpGreater:
		accept = func(c int) bool { return c > 0 }
	case OpGreaterEqual:
		accept = func(c int) bool { return c >= 0 }
	case OpEqual:
		accept = func(c int) bool { return c == 0 }
	case OpNotEqual:
		accept = func(c int) bool { return c != 0 }
	default:
		return nil, fmt.Errorf("unknown comparison operator '%s'", p.Op)
	}

	return func(v table.ColumnValue) bool {
		if v.IsMissing() {
			return false
		}
		return accept(table.CompareValues(typ, v, lit))
	}, nil
}

func searchPredicate(p SearchParams) (predicate, error) {
	if p.Mode == SearchRegex {
		expr := p.Term
		if !p.CaseSensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid regular expression '%s': %w", p.Term, err)
		}
		return func(v table.ColumnValue) bool {
			return v.Kind == table.KindText && re.MatchString(v.Str)
		}, nil
	}

	var match func(s, term string) bool
	switch p.Mode {
	case SearchContains:
		match = strings.Contains
	case SearchStartsWith:
		match = strings.HasPrefix
	case SearchEndsWith:
		match = strings.HasSuffix
	default:
		return nil, fmt.Errorf("unknown search type '%s'", p.Mode)
	}

	if p.CaseSensitive {
		return func(v table.ColumnValue) bool {
			return v.Kind == table.KindText && match(v.Str, p.Term)
		}, nil
	}
	folder := cases.Fold()
	term := folder.String(p.Term)
	return func(v table.ColumnValue) bool {
		return v.Kind == table.KindText && match(folder.String(v.Str), term)
	}, nil
}

func membershipPredicate(p SetMembershipParams, typ table.DataType) (predicate, error) {
	set := make(map[string]struct{}, len(p.Values))
	for _, raw := range p.Values {
		lit, err := ParseLiteral(raw, typ)
		if err != nil {
			return nil, err
		}
		set[lit.Key()] = struct{}{}
	}
	return func(v table.ColumnValue) bool {
		if v.IsMissing() {
			return false
		}
		_, found := set[v.Key()]
		return found == p.Inclusive
	}, nil
}
