package models

import "time"

// ConstraintOp is the closed set of boolean/predicate node types the search
// index is expected to support.
type ConstraintOp string

const (
	OpAnd       ConstraintOp = "and"
	OpOr        ConstraintOp = "or"
	OpNot       ConstraintOp = "not"
	OpTerm      ConstraintOp = "term"
	OpTerms     ConstraintOp = "terms"
	OpBool      ConstraintOp = "bool"
	OpRange     ConstraintOp = "range"
	OpDateRange ConstraintOp = "date_range"
	OpExists    ConstraintOp = "exists"
	OpScript    ConstraintOp = "script"
	OpMatchNone ConstraintOp = "match_none"
)

// ScriptID names a computed predicate evaluated index-side.
type ScriptID string

// ScriptOnSale is true when a document's compare-at price exceeds its price.
const ScriptOnSale ScriptID = "on_sale"

// Constraint is one node of the boolean filter tree sent to the search index.
// Non-leaf ops (and/or/not) use Children; leaf ops use the field-specific
// members.
type Constraint struct {
	Op       ConstraintOp `json:"op"`
	Field    string       `json:"field,omitempty"`
	Value    string       `json:"value,omitempty"`
	Values   []string     `json:"values,omitempty"`
	Bool     bool         `json:"bool,omitempty"`
	Min      *float64     `json:"min,omitempty"`
	Max      *float64     `json:"max,omitempty"`
	After    *time.Time   `json:"after,omitempty"`
	Before   *time.Time   `json:"before,omitempty"`
	Script   ScriptID     `json:"script,omitempty"`
	Children []Constraint `json:"children,omitempty"`
}

// FreeTextClause is the three-strategy relevance disjunction for a search
// term: exact SKU match boosted highest, then fuzzy title match, then title
// prefix. A document must satisfy at least one strategy.
type FreeTextClause struct {
	Term        string  `json:"term"`
	SKUField    string  `json:"sku_field"`
	TitleField  string  `json:"title_field"`
	SKUBoost    float64 `json:"sku_boost"`
	FuzzyBoost  float64 `json:"fuzzy_boost"`
	PrefixBoost float64 `json:"prefix_boost"`
	Fuzziness   int     `json:"fuzziness"`
}

// AggKind selects the aggregation shape requested per filter.
type AggKind string

const (
	AggTerms  AggKind = "terms"
	AggMinMax AggKind = "min_max"
)

// AggregationRequest asks the index for one facet's buckets. Field and
// RuntimeField are mutually exclusive; RuntimeField names a derived field the
// index must evaluate (or have materialized) before bucketing.
type AggregationRequest struct {
	Name         string  `json:"name"`
	Kind         AggKind `json:"kind"`
	Field        string  `json:"field,omitempty"`
	RuntimeField string  `json:"runtime_field,omitempty"`
	Size         int     `json:"size"`
}

// SortKind is one stage type of a sort expression.
type SortKind string

const (
	SortByRelevance SortKind = "relevance"
	SortByField     SortKind = "field"
	// SortByPreferred is the scripted business-priority stage: 0 when the
	// document belongs to any listed collection, else 1, ascending.
	SortByPreferred SortKind = "preferred"
)

// SortClause is one stage of the compiled sort order; stages earlier in the
// slice take precedence.
type SortClause struct {
	Kind        SortKind `json:"kind"`
	Field       string   `json:"field,omitempty"`
	Desc        bool     `json:"desc,omitempty"`
	Collections []string `json:"collections,omitempty"`
}

// QueryDocument is the complete compiled query shipped to the search index in
// one round trip: filter tree, optional relevance clause, runtime-field
// declarations, batched aggregation requests, sort stages and pagination.
type QueryDocument struct {
	Constraints   []Constraint         `json:"constraints"` // AND-combined
	FreeText      *FreeTextClause      `json:"free_text,omitempty"`
	RuntimeFields []string             `json:"runtime_fields,omitempty"`
	Aggregations  []AggregationRequest `json:"aggregations,omitempty"`
	Sort          []SortClause         `json:"sort"`
	From          int                  `json:"from"`
	Size          int                  `json:"size"`
}
