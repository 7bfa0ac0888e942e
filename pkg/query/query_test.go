package query

import (
	"strings"
	"testing"
)

func testProjection() *ProjectionMap {
	return NewProjectionMap("public", "widgets", "w").
		Project("id", "Id").
		Project("name", "Name").
		Project("status", "Status").
		Project("created_at", "CreatedAt")
}

func TestProjectionColumns(t *testing.T) {
	p := testProjection()

	if got := p.Table(); got != "public.widgets w" {
		t.Errorf("Table() = %q", got)
	}
	if got := p.Columns(); got != "w.id, w.name, w.status, w.created_at" {
		t.Errorf("Columns() = %q", got)
	}
	if got := p.Column("Name"); got != "w.name" {
		t.Errorf("Column(Name) = %q", got)
	}
}

func TestProjectionUnknownFieldPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown field")
		}
	}()
	testProjection().Column("Nope")
}

func TestBuildSingle(t *testing.T) {
	sql, args := NewBuilder(testProjection(), SortField{Field: "CreatedAt"}).
		BuildSingle("Id", 42)

	want := "SELECT w.id, w.name, w.status, w.created_at FROM public.widgets w WHERE w.id = $1"
	if sql != want {
		t.Errorf("BuildSingle() sql = %q, want %q", sql, want)
	}
	if len(args) != 1 || args[0] != 42 {
		t.Errorf("BuildSingle() args = %v", args)
	}
}

func TestBuildPageNumbersParameters(t *testing.T) {
	search := "report"
	b := NewBuilder(testProjection(), SortField{Field: "CreatedAt", Descending: true}).
		WhereEquals("Status", "PENDING").
		WhereContains("Name", &search)

	sql, args := b.BuildPage(2, 10)

	if !strings.Contains(sql, "w.status = $1") {
		t.Errorf("missing first condition: %q", sql)
	}
	if !strings.Contains(sql, "w.name ILIKE $2") {
		t.Errorf("missing second condition: %q", sql)
	}
	if !strings.Contains(sql, "ORDER BY w.created_at DESC") {
		t.Errorf("missing default sort: %q", sql)
	}
	if !strings.Contains(sql, "LIMIT 10 OFFSET 10") {
		t.Errorf("wrong pagination: %q", sql)
	}
	if len(args) != 2 || args[0] != "PENDING" || args[1] != "%report%" {
		t.Errorf("args = %v", args)
	}
}

func TestWhereSearchSpansFields(t *testing.T) {
	search := "scan"
	sql, args := NewBuilder(testProjection(), SortField{Field: "CreatedAt"}).
		WhereSearch(&search, "Name", "Status").
		BuildCount()

	if !strings.Contains(sql, "(w.name ILIKE $1 OR w.status ILIKE $2)") {
		t.Errorf("BuildCount() sql = %q", sql)
	}
	if len(args) != 2 {
		t.Errorf("args = %v", args)
	}
}

func TestNilFiltersIgnored(t *testing.T) {
	sql, args := NewBuilder(testProjection(), SortField{Field: "CreatedAt"}).
		WhereContains("Name", nil).
		WhereSearch(nil, "Name").
		BuildCount()

	if sql != "SELECT COUNT(*) FROM public.widgets w" {
		t.Errorf("BuildCount() sql = %q", sql)
	}
	if len(args) != 0 {
		t.Errorf("args = %v", args)
	}
}

func TestOrderByFieldsOverridesDefault(t *testing.T) {
	sql, _ := NewBuilder(testProjection(), SortField{Field: "CreatedAt", Descending: true}).
		OrderByFields([]SortField{{Field: "Name"}, {Field: "Status", Descending: true}}).
		BuildAll()

	if !strings.Contains(sql, "ORDER BY w.name ASC, w.status DESC") {
		t.Errorf("BuildAll() sql = %q", sql)
	}
}

func TestParseSortFields(t *testing.T) {
	fields := ParseSortFields("-CreatedAt, Name,")

	if len(fields) != 2 {
		t.Fatalf("ParseSortFields() = %v", fields)
	}
	if fields[0] != (SortField{Field: "CreatedAt", Descending: true}) {
		t.Errorf("first = %+v", fields[0])
	}
	if fields[1] != (SortField{Field: "Name"}) {
		t.Errorf("second = %+v", fields[1])
	}
}
