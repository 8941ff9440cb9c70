// Package exporters turns live catalog books into flat files: one row per book.
package exporters

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mrlokans/librium/internal/entities"
)

// ListSeparator joins multi-valued columns.
const ListSeparator = "; "

type BookExporter interface {
	Export(w io.Writer, books []entities.Book) (ExportResult, error)
	ContentType() string
	Extension() string
}

type ExportResult struct {
	BooksProcessed int `json:"books_processed"`
}

// New returns the exporter for a format name: csv, json, xlsx or md.
func New(format string) (BookExporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVExporter{}, nil
	case "json":
		return JSONExporter{Indent: true}, nil
	case "xlsx", "excel":
		return XLSXExporter{}, nil
	case "md", "markdown":
		return MarkdownExporter{}, nil
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

// Columns is the header shared by the tabular formats.
var Columns = []string{
	"title", "authors", "series", "genres", "publishers", "languages",
	"format", "isbn", "released", "pages", "price", "read", "uuid",
}

// Row is one book flattened for export.
type Row struct {
	Title      string `json:"title"`
	Authors    string `json:"authors"`
	Series     string `json:"series"`
	Genres     string `json:"genres"`
	Publishers string `json:"publishers"`
	Languages  string `json:"languages"`
	Format     string `json:"format"`
	ISBN       string `json:"isbn"`
	Released   *int   `json:"released"`
	Pages      *int   `json:"pages"`
	Price      string `json:"price"`
	Read       bool   `json:"read"`
	UUID       string `json:"uuid"`
}

// NewRow flattens a book whose associations are preloaded. Authors keep their
// sequence order and series memberships render as "name #position".
func NewRow(b entities.Book) Row {
	row := Row{
		Title:    b.Title,
		Authors:  strings.Join(b.AuthorNames(), ListSeparator),
		Format:   b.Format.Name,
		Released: b.Released,
		Pages:    b.PageCount,
		Price:    b.PriceDisplay(),
		Read:     b.Read,
		UUID:     b.UUID,
	}
	if b.ISBN != nil {
		row.ISBN = *b.ISBN
	}

	series := make([]entities.SeriesIndex, len(b.Series))
	copy(series, b.Series)
	entities.SortSeriesIndexes(series)
	parts := make([]string, 0, len(series))
	for _, s := range series {
		parts = append(parts, fmt.Sprintf("%s #%s", s.Series.Name, s.Position()))
	}
	row.Series = strings.Join(parts, ListSeparator)

	row.Genres = joinNames(b.Genres, func(g entities.Genre) string { return g.Name })
	row.Publishers = joinNames(b.Publishers, func(p entities.Publisher) string { return p.Name })
	row.Languages = joinNames(b.Languages, func(l entities.Language) string { return l.Name })
	return row
}

// Strings renders the row in Columns order.
func (r Row) Strings() []string {
	return []string{
		r.Title, r.Authors, r.Series, r.Genres, r.Publishers, r.Languages,
		r.Format, r.ISBN, optionalInt(r.Released), optionalInt(r.Pages), r.Price,
		strconv.FormatBool(r.Read), r.UUID,
	}
}

func joinNames[T any](items []T, name func(T) string) string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, name(item))
	}
	return strings.Join(names, ListSeparator)
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
