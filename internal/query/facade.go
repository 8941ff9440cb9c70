// Package query serves filtered, sorted and paginated views of every catalog
// collection through one shared set of specs, plus the group index used for
// jump-to navigation.
package query

import (
	"context"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/librium/internal/config"
)

// Reader opens read-only transactions; *database.Database implements it.
type Reader interface {
	ReadTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Facade is the read path over the catalog.
type Facade struct {
	db    Reader
	sizes config.Pagination
}

// NewFacade creates a facade. Zero page sizes fall back to the defaults.
func NewFacade(db Reader, sizes config.Pagination) *Facade {
	defaults := config.DefaultPagination()
	fill := func(v *int, d int) {
		if *v <= 0 {
			*v = d
		}
	}
	fill(&sizes.Books, defaults.Books)
	fill(&sizes.Authors, defaults.Authors)
	fill(&sizes.Genres, defaults.Genres)
	fill(&sizes.Series, defaults.Series)
	fill(&sizes.Publishers, defaults.Publishers)
	fill(&sizes.Languages, defaults.Languages)
	fill(&sizes.Years, defaults.Years)
	return &Facade{db: db, sizes: sizes}
}

// PageSize reports the page size used for kind.
func (f *Facade) PageSize(kind Kind) int {
	switch kind {
	case KindBooks:
		return f.sizes.Books
	case KindAuthors:
		return f.sizes.Authors
	case KindGenres:
		return f.sizes.Genres
	case KindSeries:
		return f.sizes.Series
	case KindPublishers:
		return f.sizes.Publishers
	case KindLanguages:
		return f.sizes.Languages
	case KindYears:
		return f.sizes.Years
	}
	return config.DefaultPagination().Books
}

// sortTable maps sort names to columns. Unknown names use fallback.
type sortTable struct {
	fallback string
	columns  map[string]clause.Column
}

func (s sortTable) apply(db *gorm.DB, table string, p Params) *gorm.DB {
	column, ok := s.columns[strings.ToLower(strings.TrimSpace(p.Sort))]
	if !ok {
		column = s.columns[s.fallback]
	}
	return db.
		Order(clause.OrderByColumn{Column: column, Desc: p.descending()}).
		Order(clause.OrderByColumn{Column: clause.Column{Table: table, Name: "id"}})
}

// collection describes how one kind is stored, filtered and sorted.
type collection[T any] struct {
	table string
	// base is always applied to the page. The group index ignores it.
	base []Spec[T]
	// filters builds the caller's filters from params.
	filters func(Params) []Spec[T]
	sorts   sortTable
	// group is the column whose initials form the group index.
	group string
	// preload attaches associations to the final item query.
	preload func(*gorm.DB) *gorm.DB
}

func run[T any](tx *gorm.DB, c collection[T], p Params, size int) (*Page[T], error) {
	base := All(c.base...).Scope(tx.Model(new(T))).Session(&gorm.Session{})

	page := &Page[T]{Items: []T{}, Page: p.page(), PageSize: size}

	if c.group != "" {
		index, err := initials(tx.Model(new(T)), c.group)
		if err != nil {
			return nil, err
		}
		page.GroupIndex = index
	}

	var q *gorm.DB
	if p.ID != 0 {
		// A direct id lookup ignores every other filter.
		q = base.Where(clause.Eq{Column: clause.Column{Table: c.table, Name: "id"}, Value: p.ID})
		page.Page = 1
	} else {
		q = All(c.filters(p)...).Scope(base)
	}
	q = q.Session(&gorm.Session{})

	if err := q.Count(&page.Total).Error; err != nil {
		return nil, err
	}
	page.TotalPages = totalPages(page.Total, size)
	if p.ID != 0 && page.Total > 0 {
		page.TotalPages = 1
	}

	items := c.sorts.apply(q, c.table, p)
	if c.preload != nil {
		items = c.preload(items)
	}
	if p.ID == 0 {
		items = items.Offset((page.Page - 1) * size).Limit(size)
	}
	if err := items.Find(&page.Items).Error; err != nil {
		return nil, err
	}
	return page, nil
}

// initials returns the sorted distinct lowercase first letters of column.
func initials(db *gorm.DB, column string) ([]string, error) {
	var values []string
	if err := db.Distinct().Pluck(column, &values).Error; err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(v)
		seen[string(unicode.ToLower(r))] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
