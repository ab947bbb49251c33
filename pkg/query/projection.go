// Package query provides SQL query building utilities with projection mapping.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view property names to qualified column references (alias.column).
// It defines the table, alias, and column mappings for SQL query construction.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	columns map[string]string
	order   []string
}

// NewProjectionMap creates a ProjectionMap for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:  schema,
		table:   table,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project adds a column mapping from database column to view property name.
// Projection order is the SELECT column order, which scan functions rely on.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := fmt.Sprintf("%s.%s", p.alias, column)
	p.columns[viewName] = qualified
	p.order = append(p.order, qualified)
	return p
}

// Alias returns the table alias.
func (p *ProjectionMap) Alias() string {
	return p.alias
}

// From returns the FROM clause target (schema.table alias).
func (p *ProjectionMap) From() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Has reports whether viewName is a projected property.
func (p *ProjectionMap) Has(viewName string) bool {
	_, ok := p.columns[viewName]
	return ok
}

// Column returns the qualified column for a view property name, or the input if not mapped.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.columns[viewName]; ok {
		return col
	}
	return viewName
}

// Columns returns all mapped columns as a comma-separated string.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.order, ", ")
}
