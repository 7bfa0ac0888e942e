// Package query constructs SQL queries using a fluent builder over
// projection maps that translate API field names to database columns.
package query

import (
	"fmt"
	"sort"
	"strings"
)

// ProjectionMap maps API-facing field names to qualified database columns
// for a single table.
type ProjectionMap struct {
	schema string
	table  string
	alias  string
	fields map[string]string
	order  []string
}

// NewProjectionMap creates a ProjectionMap for the given table.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema: schema,
		table:  table,
		alias:  alias,
		fields: make(map[string]string),
	}
}

// Project registers a column under the given field name. Registration
// order determines SELECT column order.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	p.fields[field] = fmt.Sprintf("%s.%s", p.alias, column)
	p.order = append(p.order, field)
	return p
}

// Table returns the qualified, aliased table reference.
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Column returns the qualified column for a field name. Unknown fields
// panic: they indicate a programming error, not runtime input.
func (p *ProjectionMap) Column(field string) string {
	col, ok := p.fields[field]
	if !ok {
		panic(fmt.Sprintf("query: unknown field %q on %s", field, p.table))
	}
	return col
}

// Columns returns the comma-separated SELECT column list in registration order.
func (p *ProjectionMap) Columns() string {
	cols := make([]string, len(p.order))
	for i, field := range p.order {
		cols[i] = p.fields[field]
	}
	return strings.Join(cols, ", ")
}

// Fields returns the registered field names, sorted.
func (p *ProjectionMap) Fields() []string {
	fields := make([]string, 0, len(p.fields))
	for f := range p.fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// SortField pairs a field name with a sort direction.
type SortField struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending"`
}

// ParseSortFields parses a comma-separated sort expression where a "-"
// prefix denotes descending order, e.g. "-CreatedAt,Name".
func ParseSortFields(expr string) []SortField {
	if expr == "" {
		return nil
	}

	var fields []SortField
	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "-") {
			fields = append(fields, SortField{Field: part[1:], Descending: true})
		} else {
			fields = append(fields, SortField{Field: part})
		}
	}
	return fields
}
