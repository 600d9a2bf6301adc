package query

import (
	"fmt"
	"math"
	"strings"
)

// SortField is one ORDER BY term, named by projected view property.
type SortField struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending"`
}

// condition renders a WHERE clause, asking param for a placeholder for each
// argument it binds.
type condition func(param func(arg any) string) string

// Builder assembles SELECT statements over a ProjectionMap. Sort fields that
// are not projected are dropped, so client-supplied sort strings never reach
// the SQL text, and search terms are always bound as parameters.
type Builder struct {
	projection  *ProjectionMap
	conditions  []condition
	sort        []SortField
	defaultSort []SortField
}

// NewBuilder creates a Builder for projection. defaultSort applies when no
// requested sort field is usable.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:  projection,
		defaultSort: defaultSort,
	}
}

// ParseSortFields parses "title,-created_at" style input; a leading "-"
// means descending. Empty input yields nil.
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

		if after, ok := strings.CutPrefix(part, "-"); ok {
			fields = append(fields, SortField{Field: after, Descending: true})
		} else {
			fields = append(fields, SortField{Field: part})
		}
	}

	return fields
}

// OrderByFields sets the requested sort order.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.sort = fields
	return b
}

// WhereSearch matches search as a case-insensitive substring of any of
// fields. LIKE wildcards in search match literally. No-op for a nil or
// empty search.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}

	pattern := "%" + EscapeLike(*search) + "%"
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = b.projection.Column(f)
	}

	b.conditions = append(b.conditions, func(param func(any) string) string {
		clauses := make([]string, len(cols))
		for i, col := range cols {
			clauses[i] = fmt.Sprintf("%s ILIKE %s", col, param(pattern))
		}
		return "(" + strings.Join(clauses, " OR ") + ")"
	})
	return b
}

// BuildCount returns a COUNT(*) query over the current conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.buildWhere()
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", b.projection.From(), where), args
}

// BuildPage returns the SELECT for one page. page is 1-based.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	where, args := b.buildWhere()

	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s LIMIT %d OFFSET %d",
		b.projection.Columns(),
		b.projection.From(),
		where,
		b.buildOrderBy(),
		pageSize,
		offset(page, pageSize),
	)
	return sql, args
}

// offset saturates instead of wrapping when page is out of range.
func offset(page, pageSize int) int {
	if page < 1 || pageSize < 1 {
		return 0
	}
	if page-1 > math.MaxInt/pageSize {
		return (math.MaxInt / pageSize) * pageSize
	}
	return (page - 1) * pageSize
}

// BuildSingle returns the SELECT for the row whose idField equals id.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		b.projection.Columns(),
		b.projection.From(),
		b.projection.Column(idField),
	)
	return sql, []any{id}
}

// buildOrderBy renders the requested sort, falling back to the default, and
// appends the projection key so rows with equal sort values page stably.
func (b *Builder) buildOrderBy() string {
	fields := b.usable(b.sort)
	if len(fields) == 0 {
		fields = b.usable(b.defaultSort)
	}

	if key := b.projection.Key(); key != "" && !containsField(fields, key) {
		fields = append(fields, SortField{Field: key})
	}

	if len(fields) == 0 {
		return ""
	}

	parts := make([]string, len(fields))
	for i, f := range fields {
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		parts[i] = b.projection.Column(f.Field) + " " + dir
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func (b *Builder) usable(fields []SortField) []SortField {
	out := make([]SortField, 0, len(fields))
	for _, f := range fields {
		if b.projection.Has(f.Field) && !containsField(out, f.Field) {
			out = append(out, f)
		}
	}
	return out
}

func (b *Builder) buildWhere() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	var args []any
	param := func(arg any) string {
		args = append(args, arg)
		return fmt.Sprintf("$%d", len(args))
	}

	clauses := make([]string, len(b.conditions))
	for i, cond := range b.conditions {
		clauses[i] = cond(param)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func containsField(fields []SortField, name string) bool {
	for _, f := range fields {
		if f.Field == name {
			return true
		}
	}
	return false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE metacharacters using PostgreSQL's default escape
// character.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
