package query

import "strings"

// Kind selects the collection a query runs against.
type Kind string

const (
	KindBooks      Kind = "books"
	KindAuthors    Kind = "authors"
	KindGenres     Kind = "genres"
	KindSeries     Kind = "series"
	KindPublishers Kind = "publishers"
	KindLanguages  Kind = "languages"
	KindYears      Kind = "years"
)

// Params is the filter, sort and paging bag shared by every kind. Filters a
// kind does not understand are ignored.
type Params struct {
	Search     string `form:"search"`
	StartsWith string `form:"starts_with"`
	EndsWith   string `form:"ends_with"`
	ExactName  string `form:"exact"`
	Read       *bool  `form:"-"`
	ID         uint   `form:"id"`
	Sort       string `form:"sort"`
	Order      string `form:"order"`
	Page       int    `form:"page"`
}

func (p Params) descending() bool {
	return strings.EqualFold(p.Order, "desc")
}

// MaxPage bounds the requested page so its offset cannot overflow.
const MaxPage = 1 << 20

func (p Params) page() int {
	switch {
	case p.Page < 1:
		return 1
	case p.Page > MaxPage:
		return MaxPage
	}
	return p.Page
}

// Page is one window of results.
type Page[T any] struct {
	Items      []T      `json:"items"`
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
	GroupIndex []string `json:"group_index,omitempty"`
}

func totalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// ParseReadStatus maps the usual truthy and falsy spellings to a read
// filter. Anything else means "no filter".
func ParseReadStatus(s string) *bool {
	var v bool
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "y", "yes":
		v = true
	case "0", "false", "f", "n", "no":
		v = false
	default:
		return nil
	}
	return &v
}
