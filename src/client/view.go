package client

import (
	"cmp"
	"sort"
	"strings"

	models "yemenflix/src/modules/content/models"
)

// SortContent orders items in place. Unknown keys leave the order as is.
// Ties keep ascending id order regardless of direction.
func SortContent(items []models.Content, key, order string) {
	less, ok := sortKeys[key]
	if !ok {
		return
	}
	desc := order == "desc"
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		if c := less(a, b); c != 0 {
			if desc {
				return c > 0
			}
			return c < 0
		}
		return a.ID < b.ID
	})
}

type compareFunc func(a, b *models.Content) int

var sortKeys = map[string]compareFunc{
	"title": func(a, b *models.Content) int {
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	},
	"releaseDate": func(a, b *models.Content) int {
		return strings.Compare(a.ReleaseDate, b.ReleaseDate)
	},
	"year":   func(a, b *models.Content) int { return cmp.Compare(a.Year, b.Year) },
	"rating": func(a, b *models.Content) int { return cmp.Compare(a.Rating, b.Rating) },
	"views":  func(a, b *models.Content) int { return cmp.Compare(a.ViewCount, b.ViewCount) },
	"createdAt": func(a, b *models.Content) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	},
}

const maxVisiblePages = 10

// Pager is the page strip under a grid.
type Pager struct {
	Pages   []int
	HasPrev bool
	HasNext bool
}

// PageWindow returns at most ten page numbers centred on current.
func PageWindow(current, total int) Pager {
	if total < 1 {
		return Pager{}
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}
	start := current - maxVisiblePages/2
	if start < 1 {
		start = 1
	}
	end := start + maxVisiblePages - 1
	if end > total {
		end = total
		start = end - maxVisiblePages + 1
		if start < 1 {
			start = 1
		}
	}
	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return Pager{Pages: pages, HasPrev: current > 1, HasNext: current < total}
}

type State int

const (
	Loading State = iota
	Empty
	Error
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Empty:
		return "empty"
	case Error:
		return "error"
	default:
		return "ready"
	}
}

type Layout string

const (
	LayoutGrid    Layout = "grid"
	LayoutCompact Layout = "compact"
)

// SkeletonCount is how many placeholders a layout shows while loading.
func SkeletonCount(l Layout) int {
	if l == LayoutCompact {
		return 6
	}
	return 12
}

// ListResult is what a grid renders: placeholders, a message or items.
type ListResult struct {
	State   State
	Items   []models.Content
	Total   int64
	Pager   Pager
	Message string
}

// NewListResult derives the state from a finished (or pending) fetch.
func NewListResult(page *ContentPage, err error, currentPage int) ListResult {
	switch {
	case err != nil:
		return ListResult{State: Error, Message: ErrorMessage(err)}
	case page == nil:
		return ListResult{State: Loading}
	case len(page.Content) == 0:
		return ListResult{State: Empty, Total: page.Total}
	}
	totalPages := page.Pagination.TotalPages
	return ListResult{
		State: Ready,
		Items: page.Content,
		Total: page.Total,
		Pager: PageWindow(currentPage, totalPages),
	}
}
