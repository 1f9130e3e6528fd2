// Package filter evaluates row filters into selection masks.
package filter

import (
	"dataview/domain/table"
)

// Condition combines a filter with the mask built by the filters before it.
type Condition string

const (
	ConditionAnd Condition = "and"
	ConditionOr  Condition = "or"
)

// Kind is the closed set of filter predicates.
type Kind string

const (
	KindCompare       Kind = "compare"
	KindNotNull       Kind = "not_null"
	KindIsNull        Kind = "is_null"
	KindIsEmpty       Kind = "is_empty"
	KindIsTrue        Kind = "is_true"
	KindIsFalse       Kind = "is_false"
	KindSearch        Kind = "search"
	KindSetMembership Kind = "set_membership"
)

// SupportedKinds lists every filter kind in display order.
func SupportedKinds() []Kind {
	return []Kind{
		KindCompare, KindNotNull, KindIsNull, KindIsEmpty,
		KindIsTrue, KindIsFalse, KindSearch, KindSetMembership,
	}
}

// CompareOp is a comparison operator.
type CompareOp string

const (
	OpLess         CompareOp = "lt"
	OpLessEqual    CompareOp = "lte"
	OpGreater      CompareOp = "gt"
	OpGreaterEqual CompareOp = "gte"
	OpEqual        CompareOp = "eq"
	OpNotEqual     CompareOp = "neq"
)

// SearchMode selects how a text search term is matched.
type SearchMode string

const (
	SearchContains   SearchMode = "contains"
	SearchStartsWith SearchMode = "starts_with"
	SearchEndsWith   SearchMode = "ends_with"
	SearchRegex      SearchMode = "regex"
)

type CompareParams struct {
	Op    CompareOp `json:"op"`
	Value string    `json:"value"`
}

type SearchParams struct {
	Mode          SearchMode `json:"search_type"`
	Term          string     `json:"term"`
	CaseSensitive bool       `json:"case_sensitive"`
}

type SetMembershipParams struct {
	Values    []string `json:"values"`
	Inclusive bool     `json:"inclusive"`
}

// RowFilter is one client-declared predicate. Column records the column the
// filter was created against; IsValid and ErrorMessage are recomputed on
// every evaluation.
type RowFilter struct {
	ID            string               `json:"filter_id"`
	Column        table.ColumnSchema   `json:"column_schema"`
	Kind          Kind                 `json:"filter_type"`
	Condition     Condition            `json:"condition"`
	Compare       *CompareParams       `json:"compare_params,omitempty"`
	Search        *SearchParams        `json:"search_params,omitempty"`
	SetMembership *SetMembershipParams `json:"set_membership_params,omitempty"`
	IsValid       bool                 `json:"is_valid"`
	ErrorMessage  string               `json:"error_message,omitempty"`
}
