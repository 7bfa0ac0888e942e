package pagination

import (
	"net/url"
	"testing"
)

var testConfig = Config{DefaultPageSize: 20, MaxPageSize: 100}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{name: "zero values get defaults", page: 0, pageSize: 0, wantPage: 1, wantPageSize: 20},
		{name: "negative page clamped", page: -3, pageSize: 10, wantPage: 1, wantPageSize: 10},
		{name: "oversized page size capped", page: 2, pageSize: 500, wantPage: 2, wantPageSize: 100},
		{name: "valid values unchanged", page: 3, pageSize: 50, wantPage: 3, wantPageSize: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := PageRequest{Page: tt.page, PageSize: tt.pageSize}
			req.Normalize(testConfig)

			if req.Page != tt.wantPage || req.PageSize != tt.wantPageSize {
				t.Errorf("Normalize() = page %d size %d, want page %d size %d",
					req.Page, req.PageSize, tt.wantPage, tt.wantPageSize)
			}
		})
	}
}

func TestFromQuery(t *testing.T) {
	values := url.Values{}
	values.Set("page", "2")
	values.Set("page_size", "25")
	values.Set("search", "invoice")
	values.Set("sort", "-CreatedAt,Name")

	req := FromQuery(values, testConfig)

	if req.Page != 2 || req.PageSize != 25 {
		t.Errorf("page = %d, size = %d", req.Page, req.PageSize)
	}
	if req.Search == nil || *req.Search != "invoice" {
		t.Errorf("search = %v", req.Search)
	}
	if len(req.Sort) != 2 || req.Sort[0].Field != "CreatedAt" || !req.Sort[0].Descending {
		t.Errorf("sort = %+v", req.Sort)
	}
	if req.Offset() != 25 {
		t.Errorf("Offset() = %d", req.Offset())
	}
}

func TestFromQueryEmptyNormalizes(t *testing.T) {
	req := FromQuery(url.Values{}, testConfig)

	if req.Page != 1 || req.PageSize != testConfig.DefaultPageSize {
		t.Errorf("page = %d, size = %d", req.Page, req.PageSize)
	}
	if req.Search != nil {
		t.Errorf("search = %v", req.Search)
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		pageSize       int
		wantTotalPages int
	}{
		{name: "even division", total: 40, pageSize: 20, wantTotalPages: 2},
		{name: "remainder rounds up", total: 41, pageSize: 20, wantTotalPages: 3},
		{name: "empty result has one page", total: 0, pageSize: 20, wantTotalPages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewPageResult([]int{}, tt.total, 1, tt.pageSize)
			if result.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d", result.TotalPages, tt.wantTotalPages)
			}
		})
	}
}

func TestNewPageResultNilData(t *testing.T) {
	result := NewPageResult[string](nil, 0, 1, 20)
	if result.Data == nil {
		t.Error("nil data not replaced with empty slice")
	}
}

func TestConfigFinalize(t *testing.T) {
	var cfg Config
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if cfg.DefaultPageSize != 20 || cfg.MaxPageSize != 100 {
		t.Errorf("defaults = %+v", cfg)
	}

	bad := Config{DefaultPageSize: 200, MaxPageSize: 100}
	if err := bad.Finalize(); err == nil {
		t.Error("expected error when default exceeds max")
	}
}
