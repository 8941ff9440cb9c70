package query

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mrlokans/librium/internal/database/books"
	"github.com/mrlokans/librium/internal/database/lookup"
	"github.com/mrlokans/librium/internal/entities"
)

// YearGroup is one release year and its live books, sorted by title.
type YearGroup struct {
	Year  int             `json:"year"`
	Books []entities.Book `json:"books"`
}

// SeriesEntry is a book at its position within a series.
type SeriesEntry struct {
	Book     entities.Book   `json:"book"`
	Position decimal.Decimal `json:"position"`
	Display  string          `json:"display"`
}

// Years pages through distinct release years. The group index lists every
// year that has a live book. ExactName, when numeric, selects a single year.
// A year has no row of its own, so Params.ID is ignored.
func (f *Facade) Years(ctx context.Context, p Params) (*Page[YearGroup], error) {
	size := f.PageSize(KindYears)
	out := &Page[YearGroup]{Items: []YearGroup{}, Page: p.page(), PageSize: size}

	err := f.db.ReadTx(ctx, func(tx *gorm.DB) error {
		dated := tx.Model(&entities.Book{}).Where("books.released IS NOT NULL").Session(&gorm.Session{})

		var all []int
		if err := dated.Distinct().Order("books.released ASC").Pluck("books.released", &all).Error; err != nil {
			return err
		}
		out.GroupIndex = make([]string, 0, len(all))
		for _, y := range all {
			out.GroupIndex = append(out.GroupIndex, strconv.Itoa(y))
		}

		var specs []Spec[entities.Book]
		if p.Read != nil {
			specs = append(specs, ReadSpec(*p.Read))
		}
		if year, err := strconv.Atoi(strings.TrimSpace(p.ExactName)); err == nil {
			specs = append(specs, releasedIn(year))
		}
		filter := All(specs...)
		filtered := filter.Scope(dated).Session(&gorm.Session{})

		if err := filtered.Distinct("books.released").Count(&out.Total).Error; err != nil {
			return err
		}
		out.TotalPages = totalPages(out.Total, size)

		direction := "ASC"
		if p.descending() {
			direction = "DESC"
		}
		var years []int
		err := filtered.Distinct().
			Order("books.released "+direction).
			Offset((out.Page-1)*size).
			Limit(size).
			Pluck("books.released", &years).Error
		if err != nil || len(years) == 0 {
			return err
		}

		var list []entities.Book
		err = filter.Scope(books.WithAssociations(tx)).
			Where("books.released IN ?", years).
			Order("books.title ASC").Order("books.id ASC").
			Find(&list).Error
		if err != nil {
			return err
		}

		byYear := make(map[int][]entities.Book, len(years))
		for _, b := range list {
			byYear[*b.Released] = append(byYear[*b.Released], b)
		}
		for _, y := range years {
			out.Items = append(out.Items, YearGroup{Year: y, Books: byYear[y]})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func releasedIn(year int) Spec[entities.Book] {
	return Spec[entities.Book]{
		Name: "released in " + strconv.Itoa(year),
		Scope: func(db *gorm.DB) *gorm.DB {
			return db.Where("books.released = ?", year)
		},
		Match: func(b entities.Book) bool {
			return b.Released != nil && *b.Released == year
		},
	}
}

// BooksInSeries lists a series' live books ordered by raw position.
func (f *Facade) BooksInSeries(ctx context.Context, seriesID uint, read *bool) ([]SeriesEntry, error) {
	var entries []SeriesEntry
	err := f.db.ReadTx(ctx, func(tx *gorm.DB) error {
		if _, err := lookup.NewResolver(tx).Series(seriesID); err != nil {
			return err
		}

		var links []entities.SeriesIndex
		err := tx.Where("series_id = ?", seriesID).
			Where("book_id IN (SELECT id FROM books WHERE deleted_at IS NULL)").
			Order("idx ASC").
			Find(&links).Error
		if err != nil {
			return err
		}
		if len(links) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(links))
		for _, l := range links {
			ids = append(ids, l.BookID)
		}
		list, err := findBooks(tx, read, "books.id IN ?", ids)
		if err != nil {
			return err
		}
		byID := make(map[uint]entities.Book, len(list))
		for _, b := range list {
			byID[b.ID] = b
		}

		for _, l := range links {
			book, ok := byID[l.BookID]
			if !ok {
				continue
			}
			entries = append(entries, SeriesEntry{Book: book, Position: l.Idx, Display: l.Position()})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			if !entries[i].Position.Equal(entries[j].Position) {
				return entries[i].Position.LessThan(entries[j].Position)
			}
			return entries[i].Book.Title < entries[j].Book.Title
		})
		return nil
	})
	return entries, err
}

// BooksInGenre lists a genre's live books by title.
func (f *Facade) BooksInGenre(ctx context.Context, genreID uint, read *bool) ([]entities.Book, error) {
	var list []entities.Book
	err := f.db.ReadTx(ctx, func(tx *gorm.DB) error {
		if _, err := lookup.NewResolver(tx).Genre(genreID); err != nil {
			return err
		}
		var err error
		list, err = findBooks(tx, read, "books.id IN (SELECT book_id FROM book_genres WHERE genre_id = ?)", genreID)
		return err
	})
	return list, err
}

// BooksByAuthor lists an author's live books by title.
func (f *Facade) BooksByAuthor(ctx context.Context, authorID uint, read *bool) ([]entities.Book, error) {
	var list []entities.Book
	err := f.db.ReadTx(ctx, func(tx *gorm.DB) error {
		if _, err := lookup.NewResolver(tx).Author(authorID); err != nil {
			return err
		}
		var err error
		list, err = findBooks(tx, read, "books.id IN (SELECT book_id FROM book_authors WHERE author_id = ?)", authorID)
		return err
	})
	return list, err
}

// BooksInYear lists the live books released in year by title.
func (f *Facade) BooksInYear(ctx context.Context, year int, read *bool) ([]entities.Book, error) {
	var list []entities.Book
	err := f.db.ReadTx(ctx, func(tx *gorm.DB) error {
		var err error
		list, err = findBooks(tx, read, "books.released = ?", year)
		return err
	})
	return list, err
}

func findBooks(tx *gorm.DB, read *bool, cond string, args ...interface{}) ([]entities.Book, error) {
	q := books.WithAssociations(tx).Where(cond, args...)
	if read != nil {
		q = ReadSpec(*read).Scope(q)
	}
	list := []entities.Book{}
	err := q.Order("books.title ASC").Order("books.id ASC").Find(&list).Error
	return list, err
}
