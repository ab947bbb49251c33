package query

import (
	"fmt"
	"reflect"
	"strings"
)

const placeholder = "$%d"

type condition struct {
	clause string
	args   []any
}

// SortField represents a single column in an ORDER BY clause.
// Field is the logical field name (mapped via ProjectionMap).
// Descending controls sort direction (false = ASC, true = DESC).
type SortField struct {
	Field      string
	Descending bool
}

// Builder constructs SQL queries using a fluent API with automatic parameter numbering.
// Condition methods are no-ops for nil values so optional filters chain directly.
type Builder struct {
	projection  *ProjectionMap
	conditions  []condition
	orderBy     []SortField
	defaultSort []SortField
}

// NewBuilder creates a Builder for the given projection with optional default sort fields.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:  projection,
		defaultSort: defaultSort,
	}
}

// ParseSortFields parses a comma-separated sort string into a SortField slice.
// Fields prefixed with "-" are descending. Example: "CandidateName,-StartTime".
// Returns nil for empty input.
func ParseSortFields(s string) []SortField {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	fields := make([]SortField, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		field, desc := strings.CutPrefix(part, "-")
		fields = append(fields, SortField{Field: field, Descending: desc})
	}

	return fields
}

// Build returns a SELECT query with the current conditions and ordering.
func (b *Builder) Build() (string, []any) {
	where, args := b.buildWhere()
	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s",
		b.projection.Columns(),
		b.projection.From(),
		where,
		b.buildOrderBy(),
	)
	return sql, args
}

// BuildCount returns a COUNT(*) query with the current conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.buildWhere()
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", b.projection.From(), where), args
}

// BuildPage returns a paginated SELECT query with ordering, limit, and offset.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	sql, args := b.Build()
	offset := (page - 1) * pageSize
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", sql, pageSize, offset), args
}

// BuildSingle returns a SELECT query for a single record by ID.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		b.projection.Columns(),
		b.projection.From(),
		b.projection.Column(idField),
	)
	return sql, []any{id}
}

// OrderByFields sets the sort order, overriding default sort fields.
// Fields not present in the projection are ignored.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.orderBy = fields
	return b
}

// WhereEquals adds an equality condition.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	return b.compare(field, "=", value)
}

// WhereAtLeast adds a >= condition.
func (b *Builder) WhereAtLeast(field string, value any) *Builder {
	return b.compare(field, ">=", value)
}

// WhereAtMost adds a <= condition.
func (b *Builder) WhereAtMost(field string, value any) *Builder {
	return b.compare(field, "<=", value)
}

// WhereContains adds a case-insensitive ILIKE condition. No-op for nil or empty values.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	return b.add(
		fmt.Sprintf("%s ILIKE %s", b.projection.Column(field), placeholder),
		"%"+*value+"%",
	)
}

// WhereIn adds an IN condition for multiple values. No-op for empty slices.
func (b *Builder) WhereIn(field string, values []any) *Builder {
	if len(values) == 0 {
		return b
	}
	placeholders := strings.TrimSuffix(strings.Repeat(placeholder+", ", len(values)), ", ")
	return b.add(
		fmt.Sprintf("%s IN (%s)", b.projection.Column(field), placeholders),
		values...,
	)
}

// WhereNull adds IS NULL when null is true and IS NOT NULL when false.
// No-op when null is nil.
func (b *Builder) WhereNull(field string, null *bool) *Builder {
	if null == nil {
		return b
	}
	op := "IS NOT NULL"
	if *null {
		op = "IS NULL"
	}
	return b.add(fmt.Sprintf("%s %s", b.projection.Column(field), op))
}

// WhereSearch adds an OR condition across multiple fields with ILIKE. No-op for nil or empty search.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}

	clauses := make([]string, len(fields))
	args := make([]any, len(fields))
	pattern := "%" + *search + "%"

	for i, field := range fields {
		clauses[i] = fmt.Sprintf("%s ILIKE %s", b.projection.Column(field), placeholder)
		args[i] = pattern
	}

	return b.add("("+strings.Join(clauses, " OR ")+")", args...)
}

func (b *Builder) compare(field, op string, value any) *Builder {
	if isNil(value) {
		return b
	}
	return b.add(fmt.Sprintf("%s %s %s", b.projection.Column(field), op, placeholder), value)
}

func (b *Builder) add(clause string, args ...any) *Builder {
	b.conditions = append(b.conditions, condition{clause: clause, args: args})
	return b
}

func (b *Builder) buildOrderBy() string {
	fields := b.orderBy
	if len(fields) == 0 {
		fields = b.defaultSort
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if !b.projection.Has(f.Field) {
			continue
		}
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		parts = append(parts, fmt.Sprintf("%s %s", b.projection.Column(f.Field), dir))
	}

	if len(parts) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func (b *Builder) buildWhere() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(b.conditions))
	var args []any
	idx := 1

	for _, cond := range b.conditions {
		clause := cond.clause
		for _, arg := range cond.args {
			clause = strings.Replace(clause, placeholder, fmt.Sprintf("$%d", idx), 1)
			args = append(args, arg)
			idx++
		}
		clauses = append(clauses, clause)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}

	return false
}
