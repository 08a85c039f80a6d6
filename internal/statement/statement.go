// Package statement tokenizes and validates the four supported SQL-like
// verbs against a loaded catalog, producing a tagged Statement bound to
// one resolved table.
package statement

import (
	"flatdb/internal/column"
	"flatdb/internal/table"
)

// Op is a WHERE comparison operator.
type Op int

const (
	OpEq Op = iota
	OpNeq
	OpGt
	OpLt
	OpGte
	OpLte
)

// WhereClause is a single column OP literal predicate.
type WhereClause struct {
	Column  column.Definition
	Op      Op
	Literal []byte
}

// Kind tags which verb a Statement carries.
type Kind int

const (
	KindInsert Kind = iota
	KindSelect
	KindUpdate
	KindDelete
)

// Insert carries a fully prepared row buffer ready to copy into a table.
type Insert struct {
	Row []byte
}

// Select carries an optional column projection (nil means "*") and an
// optional filter.
type Select struct {
	Projection []column.Definition
	Where      *WhereClause
}

// Update carries the single supported SET assignment and its mandatory
// filter.
type Update struct {
	Target column.Definition
	Value  []byte
	Where  WhereClause
}

// Delete carries a mandatory filter.
type Delete struct {
	Where WhereClause
}

// Statement is a tagged variant over the four verbs, each bound to the
// one resolved table it targets. The table reference is borrowed from
// the catalog, which outlives every statement.
type Statement struct {
	Kind  Kind
	Table *table.Table

	Insert *Insert
	Select *Select
	Update *Update
	Delete *Delete
}
