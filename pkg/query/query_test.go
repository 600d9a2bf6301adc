package query_test

import (
	"math"
	"strings"
	"testing"

	"github.com/JaimeStill/storybook/pkg/query"
)

func testProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "storybooks", "sb").
		Project("id", "id").
		Project("title", "title").
		Project("created_at", "created_at")
}

func ptr(s string) *string { return &s }

func TestProjectionMap(t *testing.T) {
	p := testProjection()

	if got := p.From(); got != "public.storybooks sb" {
		t.Errorf("From() = %q, want %q", got, "public.storybooks sb")
	}
	if got := p.Alias(); got != "sb" {
		t.Errorf("Alias() = %q, want sb", got)
	}
	if got := p.Columns(); got != "sb.id, sb.title, sb.created_at" {
		t.Errorf("Columns() = %q", got)
	}
	if got := p.Column("title"); got != "sb.title" {
		t.Errorf("Column(title) = %q, want sb.title", got)
	}
	if got := p.Column("unknown"); got != "unknown" {
		t.Errorf("Column(unknown) = %q, want passthrough", got)
	}
	if !p.Has("created_at") || p.Has("password") {
		t.Error("Has() should report projected fields only")
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []query.SortField
	}{
		{"empty", "", nil},
		{"single ascending", "title", []query.SortField{{Field: "title"}}},
		{"single descending", "-created_at", []query.SortField{{Field: "created_at", Descending: true}}},
		{
			"multiple with spaces",
			"title, -created_at",
			[]query.SortField{{Field: "title"}, {Field: "created_at", Descending: true}},
		},
		{"skips blanks", "title,,", []query.SortField{{Field: "title"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := query.ParseSortFields(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuildPageDefaultSort(t *testing.T) {
	b := query.NewBuilder(testProjection(), query.SortField{Field: "created_at", Descending: true})

	sql, args := b.BuildPage(2, 10)
	want := "SELECT sb.id, sb.title, sb.created_at FROM public.storybooks sb ORDER BY sb.created_at DESC LIMIT 10 OFFSET 10"
	if sql != want {
		t.Errorf("sql:\n got %s\nwant %s", sql, want)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestBuildPageOffsetSaturates(t *testing.T) {
	b := query.NewBuilder(testProjection(), query.SortField{Field: "created_at", Descending: true})

	tests := []struct {
		name string
		page int
		want string
	}{
		{"huge page", math.MaxInt, "OFFSET 9223372036854775800"},
		{"zero page", 0, "OFFSET 0"},
		{"negative page", -3, "OFFSET 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, _ := b.BuildPage(tt.page, 20)
			if !strings.HasSuffix(sql, tt.want) {
				t.Errorf("sql = %s, want suffix %q", sql, tt.want)
			}
		})
	}
}

func TestBuildPageSearchAndSort(t *testing.T) {
	b := query.NewBuilder(testProjection(), query.SortField{Field: "created_at", Descending: true}).
		WhereSearch(ptr("dragon"), "title").
		OrderByFields(query.ParseSortFields("title"))

	sql, args := b.BuildPage(1, 20)
	want := "SELECT sb.id, sb.title, sb.created_at FROM public.storybooks sb WHERE (sb.title ILIKE $1) ORDER BY sb.title ASC LIMIT 20 OFFSET 0"
	if sql != want {
		t.Errorf("sql:\n got %s\nwant %s", sql, want)
	}
	if len(args) != 1 || args[0] != "%dragon%" {
		t.Errorf("args = %v, want [%%dragon%%]", args)
	}

	count, countArgs := b.BuildCount()
	if count != "SELECT COUNT(*) FROM public.storybooks sb WHERE (sb.title ILIKE $1)" {
		t.Errorf("count sql: %s", count)
	}
	if len(countArgs) != 1 {
		t.Errorf("count args = %v", countArgs)
	}
}

func TestBuildPageIgnoresUnknownSortFields(t *testing.T) {
	b := query.NewBuilder(testProjection(), query.SortField{Field: "created_at", Descending: true}).
		OrderByFields(query.ParseSortFields("1; DROP TABLE storybooks"))

	sql, _ := b.BuildPage(1, 5)
	want := "SELECT sb.id, sb.title, sb.created_at FROM public.storybooks sb ORDER BY sb.created_at DESC LIMIT 5 OFFSET 0"
	if sql != want {
		t.Errorf("sql:\n got %s\nwant %s", sql, want)
	}
}

func TestWhereSearchNoop(t *testing.T) {
	for _, search := range []*string{nil, ptr("")} {
		b := query.NewBuilder(testProjection()).WhereSearch(search, "title")
		sql, args := b.BuildCount()
		if sql != "SELECT COUNT(*) FROM public.storybooks sb" || len(args) != 0 {
			t.Errorf("expected no WHERE clause: %s %v", sql, args)
		}
	}
}

func TestBuildSingle(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).BuildSingle("id", "abc")
	want := "SELECT sb.id, sb.title, sb.created_at FROM public.storybooks sb WHERE sb.id = $1"
	if sql != want {
		t.Errorf("sql:\n got %s\nwant %s", sql, want)
	}
	if len(args) != 1 || args[0] != "abc" {
		t.Errorf("args = %v", args)
	}
}

func TestBuildPageKeyBreaksTies(t *testing.T) {
	p := testProjection().WithKey("id")

	tests := []struct {
		name string
		sort string
		want string
	}{
		{"key appended", "title", " ORDER BY sb.title ASC, sb.id ASC "},
		{"key already sorted", "-id", " ORDER BY sb.id DESC "},
		{"duplicate fields collapse", "title,-title", " ORDER BY sb.title ASC, sb.id ASC "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, _ := query.NewBuilder(p).OrderByFields(query.ParseSortFields(tt.sort)).BuildPage(1, 10)
			if !strings.Contains(sql, tt.want) {
				t.Errorf("sql %q missing %q", sql, tt.want)
			}
		})
	}
}

func TestWhereSearchMultipleFields(t *testing.T) {
	p := testProjection().Project("summary", "summary")

	sql, args := query.NewBuilder(p).WhereSearch(ptr("owl"), "title", "summary").BuildCount()
	want := "SELECT COUNT(*) FROM public.storybooks sb WHERE (sb.title ILIKE $1 OR sb.summary ILIKE $2)"
	if sql != want {
		t.Errorf("sql:\n got %s\nwant %s", sql, want)
	}
	if len(args) != 2 {
		t.Errorf("args = %v", args)
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"100%", `100\%`},
		{"snake_case", `snake\_case`},
		{`back\slash`, `back\\slash`},
	}

	for _, tt := range tests {
		if got := query.EscapeLike(tt.in); got != tt.want {
			t.Errorf("EscapeLike(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	_, args := query.NewBuilder(testProjection()).WhereSearch(ptr("50%"), "title").BuildCount()
	if len(args) != 1 || args[0] != `%50\%%` {
		t.Errorf("args = %v", args)
	}
}
