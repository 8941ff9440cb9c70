package query

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/librium/internal/database/books"
	"github.com/mrlokans/librium/internal/entities"
)

func col(table, name string) clause.Column {
	return clause.Column{Table: table, Name: name}
}

// BookSpecs builds the book filters for p.
func BookSpecs(p Params) []Spec[entities.Book] {
	title := func(b entities.Book) string { return b.Title }
	var specs []Spec[entities.Book]
	if p.Search != "" {
		specs = append(specs, textSpec("books.title", contains, p.Search, title))
	}
	if p.StartsWith != "" {
		specs = append(specs, textSpec("books.title", startsWith, p.StartsWith, title))
	}
	if p.EndsWith != "" {
		specs = append(specs, textSpec("books.title", endsWith, p.EndsWith, title))
	}
	if p.ExactName != "" {
		specs = append(specs, textSpec("books.title", equals, p.ExactName, title))
	}
	if p.Read != nil {
		specs = append(specs, ReadSpec(*p.Read))
	}
	return specs
}

// ReadSpec matches books by read flag.
func ReadSpec(read bool) Spec[entities.Book] {
	return Spec[entities.Book]{
		Name: "read",
		Scope: func(db *gorm.DB) *gorm.DB {
			return db.Where("books.read = ?", read)
		},
		Match: func(b entities.Book) bool {
			return b.Read == read
		},
	}
}

var bookCollection = collection[entities.Book]{
	table:   "books",
	filters: BookSpecs,
	sorts: sortTable{
		fallback: "title",
		columns: map[string]clause.Column{
			"title":      col("books", "title"),
			"released":   col("books", "released"),
			"price":      col("books", "price"),
			"page_count": col("books", "page_count"),
			"read":       col("books", "read"),
			"created":    col("books", "created_at"),
		},
	},
	group:   "books.title",
	preload: books.WithAssociations,
}

// AuthorSpecs builds the author filters for p. Starts-with looks at the last
// name, the other text filters at the display name.
func AuthorSpecs(p Params) []Spec[entities.Author] {
	name := func(a entities.Author) string { return a.Name }
	last := func(a entities.Author) string { return a.LastName }
	var specs []Spec[entities.Author]
	if p.Search != "" {
		specs = append(specs, textSpec("authors.name", contains, p.Search, name))
	}
	if p.StartsWith != "" {
		specs = append(specs, textSpec("authors.last_name", startsWith, p.StartsWith, last))
	}
	if p.EndsWith != "" {
		specs = append(specs, textSpec("authors.name", endsWith, p.EndsWith, name))
	}
	if p.ExactName != "" {
		specs = append(specs, textSpec("authors.name", equals, p.ExactName, name))
	}
	if p.Read != nil {
		specs = append(specs, existsSpec[entities.Author]("authors", "book_authors", "author_id", p.Read))
	}
	return specs
}

var authorCollection = collection[entities.Author]{
	table:   "authors",
	base:    []Spec[entities.Author]{existsSpec[entities.Author]("authors", "book_authors", "author_id", nil)},
	filters: AuthorSpecs,
	sorts: sortTable{
		fallback: "last_name",
		columns: map[string]clause.Column{
			"last_name":  col("authors", "last_name"),
			"first_name": col("authors", "first_name"),
			"name":       col("authors", "name"),
		},
	},
	group: "authors.last_name",
}

// namedSpecs builds the filters shared by every kind identified by a name.
func namedSpecs[T any](table, joinTable, fkColumn string, name func(T) string) func(Params) []Spec[T] {
	column := table + ".name"
	return func(p Params) []Spec[T] {
		var specs []Spec[T]
		if p.Search != "" {
			specs = append(specs, textSpec(column, contains, p.Search, name))
		}
		if p.StartsWith != "" {
			specs = append(specs, textSpec(column, startsWith, p.StartsWith, name))
		}
		if p.EndsWith != "" {
			specs = append(specs, textSpec(column, endsWith, p.EndsWith, name))
		}
		if p.ExactName != "" {
			specs = append(specs, textSpec(column, equals, p.ExactName, name))
		}
		if p.Read != nil {
			specs = append(specs, existsSpec[T](table, joinTable, fkColumn, p.Read))
		}
		return specs
	}
}

func namedCollection[T any](table, joinTable, fkColumn string, name func(T) string) collection[T] {
	return collection[T]{
		table:   table,
		filters: namedSpecs(table, joinTable, fkColumn, name),
		sorts: sortTable{
			fallback: "name",
			columns: map[string]clause.Column{
				"name":    col(table, "name"),
				"created": col(table, "created_at"),
			},
		},
		group: table + ".name",
	}
}

var (
	genreCollection = namedCollection("genres", "book_genres", "genre_id",
		func(g entities.Genre) string { return g.Name })
	publisherCollection = namedCollection("publishers", "book_publishers", "publisher_id",
		func(p entities.Publisher) string { return p.Name })
	languageCollection = namedCollection("languages", "book_languages", "language_id",
		func(l entities.Language) string { return l.Name })
	seriesCollection = namedCollection("series", "series_index", "series_id",
		func(s entities.Series) string { return s.Name })
)

func fetch[T any](ctx context.Context, f *Facade, kind Kind, c collection[T], p Params) (*Page[T], error) {
	var out *Page[T]
	err := f.db.ReadTx(ctx, func(tx *gorm.DB) error {
		var err error
		out, err = run(tx, c, p, f.PageSize(kind))
		return err
	})
	return out, err
}

// Books pages through live books.
func (f *Facade) Books(ctx context.Context, p Params) (*Page[entities.Book], error) {
	return fetch(ctx, f, KindBooks, bookCollection, p)
}

// Authors pages through live authors that have at least one live book.
func (f *Facade) Authors(ctx context.Context, p Params) (*Page[entities.Author], error) {
	return fetch(ctx, f, KindAuthors, authorCollection, p)
}

func (f *Facade) Genres(ctx context.Context, p Params) (*Page[entities.Genre], error) {
	return fetch(ctx, f, KindGenres, genreCollection, p)
}

func (f *Facade) Publishers(ctx context.Context, p Params) (*Page[entities.Publisher], error) {
	return fetch(ctx, f, KindPublishers, publisherCollection, p)
}

func (f *Facade) Languages(ctx context.Context, p Params) (*Page[entities.Language], error) {
	return fetch(ctx, f, KindLanguages, languageCollection, p)
}

func (f *Facade) Series(ctx context.Context, p Params) (*Page[entities.Series], error) {
	return fetch(ctx, f, KindSeries, seriesCollection, p)
}
