package client

import (
	"net/url"
	"slices"
	"strconv"
)

// FilterKeys are the catalog listing filters besides paging and sorting.
// ListState drops any other filter key.
var FilterKeys = []string{"section", "category", "genre", "rating", "year", "language", "quality", "resolution", "status", "query"}

// BuildQuery encodes params with keys sorted. Keys with an empty value are
// left out; every other value is sent as given.
func BuildQuery(params map[string]string) string {
	v := url.Values{}
	for key, val := range params {
		if val == "" {
			continue
		}
		v.Set(key, val)
	}
	return v.Encode()
}

// ListState is the paging and filter state behind one content grid.
type ListState struct {
	Type      string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Filters   map[string]string
}

func NewListState(kind string, limit int) *ListState {
	return &ListState{Type: kind, Page: 1, Limit: limit, Filters: map[string]string{}}
}

// SetFilter changes one filter and goes back to the first page. An empty
// value clears the filter. Keys outside FilterKeys are ignored.
func (s *ListState) SetFilter(key, value string) {
	if !slices.Contains(FilterKeys, key) {
		return
	}
	if s.Filters == nil {
		s.Filters = map[string]string{}
	}
	if value == "" {
		delete(s.Filters, key)
	} else {
		s.Filters[key] = value
	}
	s.Page = 1
}

func (s *ListState) SetSort(by, order string) {
	s.SortBy = by
	s.SortOrder = order
	s.Page = 1
}

func (s *ListState) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.Page = page
}

func (s *ListState) Params() map[string]string {
	p := make(map[string]string, len(s.Filters)+5)
	for k, v := range s.Filters {
		if slices.Contains(FilterKeys, k) {
			p[k] = v
		}
	}
	p["type"] = s.Type
	p["sortBy"] = s.SortBy
	p["sortOrder"] = s.SortOrder
	if s.Page > 0 {
		p["page"] = strconv.Itoa(s.Page)
	}
	if s.Limit > 0 {
		p["limit"] = strconv.Itoa(s.Limit)
	}
	return p
}

// Query is the query string for the current state.
func (s *ListState) Query() string {
	return BuildQuery(s.Params())
}
