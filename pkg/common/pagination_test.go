package common

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPaginationParams(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		page     int
		pageSize int
	}{
		{"defaults", "/flows", 1, 20},
		{"explicit", "/flows?page=3&page_size=50", 3, 50},
		{"capped page size", "/flows?page_size=5000", 1, 100},
		{"negative values ignored", "/flows?page=-1&page_size=-5", 1, 20},
		{"garbage ignored", "/flows?page=abc&page_size=xyz", 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			params := ExtractPaginationParams(r)
			assert.Equal(t, tt.page, params.Page)
			assert.Equal(t, tt.pageSize, params.PageSize)
		})
	}
}

func TestNormalize(t *testing.T) {
	p := PaginationParams{Page: 0, PageSize: 0}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PageSize)

	p = PaginationParams{Page: 2, PageSize: 500}
	p.Normalize()
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 100, p.PageSize)
}

func TestSliceClampsToTotal(t *testing.T) {
	p := PaginationParams{Page: 1, PageSize: 10}
	start, end := p.Slice(25)
	assert.Equal(t, 0, start)
	assert.Equal(t, 10, end)

	p = PaginationParams{Page: 3, PageSize: 10}
	start, end = p.Slice(25)
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)

	p = PaginationParams{Page: 9, PageSize: 10}
	start, end = p.Slice(25)
	assert.Equal(t, 25, start)
	assert.Equal(t, 25, end)
}
