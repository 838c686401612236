// Package querybuilder assembles postgres statements with $n placeholders.
// It covers the shapes the repositories need, list selects and upserts, and
// nothing more; fixed statements stay as raw SQL next to their callers.
package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

type Condition interface {
	appendSQL(buf *strings.Builder, args *[]any, argIndex *int)
}

type eqCondition struct {
	column string
	value  any
}

func Eq(column string, value any) Condition {
	return eqCondition{column: column, value: value}
}

func (c eqCondition) appendSQL(buf *strings.Builder, args *[]any, argIndex *int) {
	buf.WriteString(c.column)
	buf.WriteString(" = ")
	buf.WriteString(placeholder(*argIndex))
	*args = append(*args, c.value)
	*argIndex++
}

type inCondition struct {
	column string
	values []any
}

func In(column string, values []any) Condition {
	return inCondition{column: column, values: values}
}

func (c inCondition) appendSQL(buf *strings.Builder, args *[]any, argIndex *int) {
	if len(c.values) == 0 {
		// An empty IN list matches nothing.
		buf.WriteString("1=0")
		return
	}

	buf.WriteString(c.column)
	buf.WriteString(" IN (")
	for i, v := range c.values {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(placeholder(*argIndex))
		*args = append(*args, v)
		*argIndex++
	}
	buf.WriteString(")")
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

// Where conditions are joined with AND.
func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

// Limit values of zero or below leave the statement unbounded.
func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var buf strings.Builder
	buf.WriteString("SELECT ")
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(" FROM ")
	buf.WriteString(b.table)

	args := make([]any, 0, len(b.where))
	argIndex := 1
	if len(b.where) > 0 {
		buf.WriteString(" WHERE ")
		for i, c := range b.where {
			if i > 0 {
				buf.WriteString(" AND ")
			}
			c.appendSQL(&buf, &args, &argIndex)
		}
	}
	if len(b.orderBy) > 0 {
		buf.WriteString(" ORDER BY ")
		buf.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		buf.WriteString(" LIMIT ")
		buf.WriteString(strconv.Itoa(b.limit))
	}

	return buf.String(), args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
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

// Suffix appends trailing SQL verbatim, e.g. an ON CONFLICT clause or a
// RETURNING list. It must not contain placeholders of its own.
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

	if b.suffix != "" {
		buf.WriteString(" ")
		buf.WriteString(b.suffix)
	}

	return buf.String(), args, nil
}

func placeholder(i int) string {
	return "$" + strconv.Itoa(i)
}
