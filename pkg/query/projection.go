// Package query builds parameterized SELECT statements from a projection of
// view property names onto table columns.
package query

import "strings"

// ProjectionMap maps view property names to alias-qualified columns of one
// table. Only projected names can be selected, searched, or sorted on.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	key     string
	columns map[string]string
	order   []string
}

// NewProjectionMap creates an empty projection of schema.table under alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:  schema,
		table:   table,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project maps column to viewName. Columns are selected in projection order.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := p.alias + "." + column
	if _, ok := p.columns[viewName]; !ok {
		p.order = append(p.order, qualified)
	}
	p.columns[viewName] = qualified
	return p
}

// WithKey marks viewName as the unique key used to break sort ties.
func (p *ProjectionMap) WithKey(viewName string) *ProjectionMap {
	p.key = viewName
	return p
}

// Key returns the tie-break view name, or "" when none is set.
func (p *ProjectionMap) Key() string {
	return p.key
}

// Alias returns the table alias.
func (p *ProjectionMap) Alias() string {
	return p.alias
}

// From returns "schema.table alias".
func (p *ProjectionMap) From() string {
	return p.schema + "." + p.table + " " + p.alias
}

// Has reports whether viewName is projected.
func (p *ProjectionMap) Has(viewName string) bool {
	_, ok := p.columns[viewName]
	return ok
}

// Column returns the qualified column for viewName, or viewName itself when
// it is not projected.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.columns[viewName]; ok {
		return col
	}
	return viewName
}

// Columns returns the select list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.order, ", ")
}
