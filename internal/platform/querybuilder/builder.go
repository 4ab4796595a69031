package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// ConflictAction decides what an INSERT does when the conflict target already exists.
type ConflictAction int

const (
	ConflictNone ConflictAction = iota
	ConflictDoNothing
	ConflictDoUpdate
)

type InsertBuilder struct {
	table           string
	columns         []string
	rows            [][]any
	conflictColumns []string
	conflictAction  ConflictAction
	updateColumns   []string
	returning       []string
	suffix          string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// OnConflictDoNothing renders ON CONFLICT (cols) DO NOTHING.
func (b *InsertBuilder) OnConflictDoNothing(columns ...string) *InsertBuilder {
	b.conflictColumns = append([]string(nil), columns...)
	b.conflictAction = ConflictDoNothing
	return b
}

// OnConflictDoUpdate renders ON CONFLICT (cols) DO UPDATE SET c = EXCLUDED.c for
// every inserted column outside the conflict target.
func (b *InsertBuilder) OnConflictDoUpdate(columns ...string) *InsertBuilder {
	b.conflictColumns = append([]string(nil), columns...)
	b.conflictAction = ConflictDoUpdate
	return b
}

func (b *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	b.returning = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}
	if b.conflictAction != ConflictNone && len(b.conflictColumns) == 0 {
		return "", nil, fmt.Errorf("conflict target is required")
	}

	var buf strings.Builder
	buf.WriteString("INSERT INTO ")
	buf.WriteString(b.table)
	buf.WriteString(" (")
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(") VALUES ")

	args := make([]any, 0, len(b.rows)*len(b.columns))
	argIndex := 1
	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(placeholder(argIndex))
			args = append(args, value)
			argIndex++
		}
		buf.WriteString(")")
	}

	appendConflictClause(&buf, b.columns, b.conflictColumns, b.conflictAction)
	if len(b.returning) > 0 {
		buf.WriteString(" RETURNING ")
		buf.WriteString(strings.Join(b.returning, ", "))
	}
	if b.suffix != "" {
		buf.WriteString(" ")
		buf.WriteString(b.suffix)
	}

	return buf.String(), args, nil
}

func appendConflictClause(buf *strings.Builder, columns, target []string, action ConflictAction) {
	if action == ConflictNone {
		return
	}
	buf.WriteString(" ON CONFLICT (")
	buf.WriteString(strings.Join(target, ", "))
	buf.WriteString(")")

	if action == ConflictDoUpdate {
		inTarget := make(map[string]struct{}, len(target))
		for _, col := range target {
			inTarget[col] = struct{}{}
		}
		sets := make([]string, 0, len(columns))
		for _, col := range columns {
			if _, ok := inTarget[col]; ok {
				continue
			}
			sets = append(sets, col+" = EXCLUDED."+col)
		}
		if len(sets) > 0 {
			buf.WriteString(" DO UPDATE SET ")
			buf.WriteString(strings.Join(sets, ", "))
			return
		}
	}
	buf.WriteString(" DO NOTHING")
}

func placeholder(i int) string {
	return "$" + strconv.Itoa(i)
}
