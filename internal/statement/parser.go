package statement

import (
	"strconv"
	"strings"

	"flatdb/internal/catalog"
	"flatdb/internal/column"
	"flatdb/internal/errcode"
	"flatdb/internal/table"
)

// Parse classifies line by its first token and dispatches to the
// matching verb handler. Each handler resolves its table against cat
// and validates the statement fully before returning it: a Statement
// that Parse returns is always safe to execute as-is.
func Parse(line string, cat *catalog.Catalog) (*Statement, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, errcode.New(errcode.SyntaxError, line)
	}

	fields := strings.Fields(trimmed)
	verb := strings.ToLower(fields[0])

	switch verb {
	case "insert":
		return parseInsert(trimmed, cat)
	case "select":
		return parseSelect(trimmed, cat)
	case "update":
		return parseUpdate(trimmed, cat)
	case "delete":
		return parseDelete(trimmed, cat)
	default:
		return nil, errcode.New(errcode.UnrecognizedStatement, line)
	}
}

// parseInsert handles "insert into <name> values (<v1>, <v2>, ...)".
// INSERT accepts a VARCHAR literal either bare or single-quoted, unlike
// WHERE/UPDATE which require quotes; either form stores the same bytes.
func parseInsert(line string, cat *catalog.Catalog) (*Statement, error) {
	lower := strings.ToLower(line)

	idxInto := strings.Index(lower, "into ")
	idxValues := strings.Index(lower, " values ")
	if idxInto == -1 || idxValues == -1 || idxValues < idxInto {
		return nil, errcode.New(errcode.SyntaxError, line)
	}

	name := strings.TrimSpace(line[idxInto+len("into ") : idxValues])
	if name == "" {
		return nil, errcode.New(errcode.SyntaxError, line)
	}

	tbl, ok := cat.Table(name)
	if !ok {
		return nil, errcode.New(errcode.TableNotFound, line)
	}

	rest := strings.TrimSpace(line[idxValues+len(" values "):])
	open := strings.Index(rest, "(")
	closeIdx := strings.LastIndex(rest, ")")
	if open == -1 || closeIdx == -1 || closeIdx < open {
		return nil, errcode.New(errcode.SyntaxError, line)
	}

	rawVals := splitCommaSeparated(rest[open+1 : closeIdx])
	cols := tbl.Layout.Columns
	if len(rawVals) != len(cols) {
		return nil, errcode.New(errcode.SyntaxError, line)
	}

	row := make([]byte, tbl.Layout.RowSize)
	for i, c := range cols {
		raw := rawVals[i]

		if c.Type == column.Int && strings.EqualFold(c.Name, "id") {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, errcode.New(errcode.SyntaxError, line)
			}
			if n <= 0 {
				return nil, errcode.New(errcode.NegativeID, line)
			}
		}

		if c.Type == column.Varchar && len(unquoteOptional(raw)) > int(c.Size) {
			return nil, errcode.New(errcode.StringTooLong, line)
		}

		if err := encodeValue(table.ColumnSlice(row, c), c, raw, false); err != nil {
			return nil, errcode.New(errcode.SyntaxError, line)
		}
	}

	return &Statement{
		Kind:   KindInsert,
		Table:  tbl,
		Insert: &Insert{Row: row},
	}, nil
}

// parseSelect handles "select <proj> from <name> [where <c> <op> <lit>]".
func parseSelect(line string, cat *catalog.Catalog) (*Statement, error) {
	lower := strings.ToLower(line)

	idxFrom := strings.Index(lower, " from ")
	if idxFrom == -1 {
		return nil, errcode.New(errcode.SyntaxError, line)
	}

	projPart := strings.TrimSpace(line[len("select") : idxFrom])
	if projPart == "" {
		return nil, errcode.New(errcode.SyntaxError, line)
	}

	rest := strings.TrimSpace(line[idxFrom+len(" from "):])
	if rest == "" {
		return nil, errcode.New(errcode.SyntaxError, line)
	}

	fields := strings.Fields(rest)
	name := fields[0]
	tbl, ok := cat.Table(name)
	if !ok {
		return nil, errcode.New(errcode.TableNotFound, line)
	}

	var projection []column.Definition
	if projPart != "*" {
		names := splitCommaSeparated(projPart)
		for _, n := range names {
			c, ok := tbl.Layout.Column(n)
			if !ok {
				return nil, errcode.New(errcode.SyntaxError, line)
			}
			projection = append(projection, c)
		}
	}

	tail := strings.TrimSpace(rest[len(name):])

	var where *WhereClause
	if tail != "" {
		lowerTail := strings.ToLower(tail)
		if !strings.HasPrefix(lowerTail, "where ") {
			return nil, errcode.New(errcode.SyntaxError, line)
		}
		w, err := parseWhere(strings.TrimSpace(tail[len("where "):]), tbl, line)
		if err != nil {
			return nil, err
		}
		where = w
	}

	return &Statement{
		Kind:  KindSelect,
		Table: tbl,
		Select: &Select{
			Projection: projection,
			Where:      where,
		},
	}, nil
}

// parseUpdate handles "update <name> set <col> = <lit> where <c> <op> <lit>".
// Exactly one SET assignment is supported, and WHERE is mandatory.
func parseUpdate(line string, cat *catalog.Catalog) (*Statement, error) {
	lower := strings.ToLower(line)

	idxSet := strings.Index(lower, " set ")
	idxWhere := strings.Index(lower, " where ")
	if idxSet == -1 || idxWhere == -1 || idxWhere < idxSet {
		return nil, errcode.New(errcode.SyntaxError, line)
	}

	name := strings.TrimSpace(line[len("update"):idxSet])
	if name == "" {
		return nil, errcode.New(errcode.SyntaxError, line)
	}

	tbl, ok := cat.Table(name)
	if !ok {
		return nil, errcode.New(errcode.TableNotFound, line)
	}

	assignment := strings.TrimSpace(line[idxSet+len(" set ") : idxWhere])
	eqIdx := strings.Index(assignment, "=")
	if eqIdx == -1 {
		return nil, errcode.New(errcode.SyntaxError, line)
	}

	colName := strings.TrimSpace(assignment[:eqIdx])
	literal := strings.TrimSpace(assignment[eqIdx+1:])

	target, ok := tbl.Layout.Column(colName)
	if !ok {
		return nil, errcode.New(errcode.SyntaxError, line)
	}

	value := make([]byte, target.Size)
	if err := encodeValue(value, target, literal, true); err != nil {
		return nil, errcode.New(errcode.SyntaxError, line)
	}

	wherePart := strings.TrimSpace(line[idxWhere+len(" where "):])
	where, err := parseWhere(wherePart, tbl, line)
	if err != nil {
		return nil, err
	}

	return &Statement{
		Kind:  KindUpdate,
		Table: tbl,
		Update: &Update{
			Target: target,
			Value:  value,
			Where:  *where,
		},
	}, nil
}

// parseDelete handles "delete from <name> where <c> <op> <lit>". WHERE
// is mandatory.
func parseDelete(line string, cat *catalog.Catalog) (*Statement, error) {
	lower := strings.ToLower(line)

	idxFrom := strings.Index(lower, " from ")
	idxWhere := strings.Index(lower, " where ")
	if idxFrom == -1 || idxWhere == -1 || idxWhere < idxFrom {
		return nil, errcode.New(errcode.SyntaxError, line)
	}

	name := strings.TrimSpace(line[idxFrom+len(" from ") : idxWhere])
	if name == "" {
		return nil, errcode.New(errcode.SyntaxError, line)
	}

	tbl, ok := cat.Table(name)
	if !ok {
		return nil, errcode.New(errcode.TableNotFound, line)
	}

	wherePart := strings.TrimSpace(line[idxWhere+len(" where "):])
	where, err := parseWhere(wherePart, tbl, line)
	if err != nil {
		return nil, err
	}

	return &Statement{
		Kind:  KindDelete,
		Table: tbl,
		Delete: &Delete{
			Where: *where,
		},
	}, nil
}

// parseWhere parses "<column> <op> <literal>" into a WhereClause bound
// to tbl's schema. VARCHAR ordering operators are rejected here: the
// column's type is already known from the schema, so this is the
// earliest point the rejection can happen.
func parseWhere(s string, tbl *table.Table, line string) (*WhereClause, error) {
	ops := []struct {
		token string
		op    Op
	}{
		{">=", OpGte},
		{"<=", OpLte},
		{"!=", OpNeq},
		{"=", OpEq},
		{">", OpGt},
		{"<", OpLt},
	}

	var matched string
	var op Op
	idx := -1
	for _, candidate := range ops {
		if i := strings.Index(s, candidate.token); i != -1 {
			matched = candidate.token
			op = candidate.op
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, errcode.New(errcode.SyntaxError, line)
	}

	colName := strings.TrimSpace(s[:idx])
	literal := strings.TrimSpace(s[idx+len(matched):])
	if colName == "" || literal == "" {
		return nil, errcode.New(errcode.SyntaxError, line)
	}

	col, ok := tbl.Layout.Column(colName)
	if !ok {
		return nil, errcode.New(errcode.SyntaxError, line)
	}

	if col.Type == column.Varchar && op != OpEq && op != OpNeq {
		return nil, errcode.New(errcode.SyntaxError, line)
	}

	litBytes := make([]byte, col.Size)
	if err := encodeValue(litBytes, col, literal, true); err != nil {
		return nil, errcode.New(errcode.SyntaxError, line)
	}

	return &WhereClause{Column: col, Op: op, Literal: litBytes}, nil
}

// encodeValue writes raw into dst per c's type. requireQuotes controls
// whether a VARCHAR literal must be single-quote delimited (true for
// WHERE/UPDATE) or taken as the raw token (false for INSERT, per the
// documented asymmetry).
func encodeValue(dst []byte, c column.Definition, raw string, requireQuotes bool) error {
	switch c.Type {
	case column.Int:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		table.WriteInt(dst, int32(n))
		return nil
	case column.Real:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		return table.WriteReal(dst, f)
	case column.Varchar:
		text := raw
		if requireQuotes {
			if len(raw) < 2 || raw[0] != '\'' || raw[len(raw)-1] != '\'' {
				return strconv.ErrSyntax
			}
			text = raw[1 : len(raw)-1]
		} else {
			text = unquoteOptional(raw)
		}
		return table.WriteVarchar(dst, text)
	default:
		return strconv.ErrSyntax
	}
}

// unquoteOptional strips one layer of surrounding single quotes from raw
// if present, otherwise returns raw unchanged. INSERT accepts a VARCHAR
// literal either quoted or bare, so that a value quoted on insert and
// filtered on by WHERE (which requires quotes) agree on the stored bytes.
func unquoteOptional(raw string) string {
	if len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		return raw[1 : len(raw)-1]
	}
	return raw
}

// splitCommaSeparated splits s by commas and trims each piece. It does
// not respect quoting: a VARCHAR literal containing a comma will split
// incorrectly, a documented limitation rather than a bug.
func splitCommaSeparated(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
