package pagination

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/JaimeStill/proctor/pkg/query"
)

// SortFields wraps []query.SortField with flexible JSON unmarshaling.
// Accepts either a string ("CandidateName,-StartTime") or an array of SortField objects.
type SortFields []query.SortField

// UnmarshalJSON supports unmarshaling from a comma-separated string or array format.
func (s *SortFields) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = query.ParseSortFields(str)
		return nil
	}

	var fields []query.SortField
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*s = fields
	return nil
}

// PageRequest represents a client request for a page of data with optional search and sorting.
type PageRequest struct {
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	Search   *string    `json:"search,omitempty"`
	Sort     SortFields `json:"sort,omitempty"`
}

// Normalize clamps the request into the bounds allowed by cfg.
func (r *PageRequest) Normalize(cfg Config) {
	r.Page = max(r.Page, 1)
	if r.PageSize < 1 {
		r.PageSize = cfg.DefaultPageSize
	}
	r.PageSize = min(r.PageSize, cfg.MaxPageSize)
}

// Offset calculates the number of records to skip based on page and page size.
func (r *PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// PageRequestFromQuery parses pagination parameters from URL query values.
// Supported parameters: page, page_size, search, sort.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	page, _ := strconv.Atoi(values.Get("page"))
	pageSize, _ := strconv.Atoi(values.Get("page_size"))

	req := PageRequest{
		Page:     page,
		PageSize: pageSize,
		Sort:     query.ParseSortFields(values.Get("sort")),
	}
	if s := values.Get("search"); s != "" {
		req.Search = &s
	}

	req.Normalize(cfg)
	return req
}

// PageResult holds a page of data along with pagination metadata.
type PageResult[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// NewPageResult creates a PageResult with calculated total pages.
// A nil data slice is returned as empty, and TotalPages is at least 1.
func NewPageResult[T any](data []T, total, page, pageSize int) PageResult[T] {
	totalPages := 1
	if pageSize > 0 {
		totalPages = max((total+pageSize-1)/pageSize, 1)
	}

	if data == nil {
		data = []T{}
	}

	return PageResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
