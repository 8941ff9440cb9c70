package services

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librium/internal/config"
	"github.com/mrlokans/librium/internal/database"
	"github.com/mrlokans/librium/internal/database/books"
	"github.com/mrlokans/librium/internal/database/lookup"
	"github.com/mrlokans/librium/internal/entities"
)

type fixture struct {
	db         *database.Database
	reconciler *Reconciler
	books      *BookService
	catalog    *CatalogService
}

func setupTestDB(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewDatabase(config.Database{Path: filepath.Join(t.TempDir(), "services.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &fixture{
		db:         db,
		reconciler: NewReconciler(db),
		books:      NewBookService(db),
		catalog:    NewCatalogService(db),
	}
}

func (f *fixture) book(t *testing.T, title string) *entities.Book {
	t.Helper()
	book, err := f.books.Create(context.Background(), NewBookRequest{NewBook: books.NewBook{Title: title, FormatID: 1}})
	require.NoError(t, err)
	return book
}

func (f *fixture) author(t *testing.T, first, last string) uint {
	t.Helper()
	author, err := f.catalog.ResolveAuthor(context.Background(), entities.NameParts{First: first, Last: last})
	require.NoError(t, err)
	return author.ID
}

func (f *fixture) named(t *testing.T, kind lookup.Kind, name string) uint {
	t.Helper()
	v, err := f.catalog.Resolve(context.Background(), kind, name)
	require.NoError(t, err)
	return v.ID
}

type snapshot struct {
	authors    []entities.BookAuthor
	series     []entities.SeriesIndex
	genres     []uint
	publishers []uint
	languages  []uint
}

func (f *fixture) snapshot(t *testing.T, bookID uint) snapshot {
	t.Helper()
	var s snapshot
	require.NoError(t, f.db.DB.Where("book_id = ?", bookID).Order("idx").Find(&s.authors).Error)
	require.NoError(t, f.db.DB.Where("book_id = ?", bookID).Order("idx").Find(&s.series).Error)
	require.NoError(t, f.db.DB.Table("book_genres").Where("book_id = ?", bookID).Order("genre_id").Pluck("genre_id", &s.genres).Error)
	require.NoError(t, f.db.DB.Table("book_publishers").Where("book_id = ?", bookID).Order("publisher_id").Pluck("publisher_id", &s.publishers).Error)
	require.NoError(t, f.db.DB.Table("book_languages").Where("book_id = ?", bookID).Order("language_id").Pluck("language_id", &s.languages).Error)
	return s
}

func ptr[T any](v T) *T { return &v }

func TestReconcile_Idempotent(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	book := f.book(t, "Good Omens")

	state := DesiredState{
		Update: books.Update{Title: ptr("Good Omens"), Read: ptr(true)},
		Links: Links{
			Authors:    []uint{f.author(t, "Terry", "Pratchett"), f.author(t, "Neil", "Gaiman")},
			Series:     []SeriesRef{{SeriesID: f.named(t, lookup.KindSeries, "Standalones"), Position: decimal.RequireFromString("2.5")}},
			Genres:     []uint{f.named(t, lookup.KindGenre, "Fantasy"), f.named(t, lookup.KindGenre, "Comedy")},
			Publishers: []uint{f.named(t, lookup.KindPublisher, "Gollancz")},
			Languages:  []uint{f.named(t, lookup.KindLanguage, "English")},
		},
	}

	_, err := f.reconciler.Reconcile(ctx, book.ID, state)
	require.NoError(t, err)
	first := f.snapshot(t, book.ID)

	_, err = f.reconciler.Reconcile(ctx, book.ID, state)
	require.NoError(t, err)
	second := f.snapshot(t, book.ID)

	require.Len(t, first.authors, 2)
	require.Len(t, first.series, 1)
	assert.Equal(t, first.genres, second.genres)
	assert.Equal(t, first.publishers, second.publishers)
	assert.Equal(t, first.languages, second.languages)
	require.Len(t, second.authors, 2)
	for i := range first.authors {
		assert.Equal(t, first.authors[i].AuthorID, second.authors[i].AuthorID)
		assert.Equal(t, first.authors[i].Idx, second.authors[i].Idx)
	}
	require.Len(t, second.series, 1)
	assert.True(t, first.series[0].Idx.Equal(second.series[0].Idx))
}

func TestReconcile_AuthorOrder(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	book := f.book(t, "Anthology")

	a := f.author(t, "Ann", "Alpha")
	b := f.author(t, "Bob", "Beta")
	c := f.author(t, "Cy", "Gamma")

	got, err := f.reconciler.Reconcile(ctx, book.ID, DesiredState{Links: Links{Authors: []uint{a, b, c}}})
	require.NoError(t, err)
	require.Len(t, got.Authors, 3)
	for i, want := range []uint{a, b, c} {
		assert.Equal(t, want, got.Authors[i].AuthorID)
		assert.Equal(t, i+1, got.Authors[i].Idx)
	}

	got, err = f.reconciler.Reconcile(ctx, book.ID, DesiredState{Links: Links{Authors: []uint{c, b, a}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cy Gamma", "Bob Beta", "Ann Alpha"}, got.AuthorNames())
	for i := range got.Authors {
		assert.Equal(t, i+1, got.Authors[i].Idx)
	}
}

func TestReconcile_AuthorIndicesStayContiguousWhenSkipping(t *testing.T) {
	f := setupTestDB(t)
	a := f.author(t, "Ann", "Alpha")
	b := f.author(t, "Bob", "Beta")
	book := f.book(t, "Gaps")

	got, err := f.reconciler.Reconcile(context.Background(), book.ID, DesiredState{Links: Links{Authors: []uint{a, 9999, a, b}}})
	require.NoError(t, err)

	require.Len(t, got.Authors, 2)
	assert.Equal(t, 1, got.Authors[0].Idx)
	assert.Equal(t, 2, got.Authors[1].Idx)
	assert.Equal(t, b, got.Authors[1].AuthorID)
}

func TestReconcile_FractionalSeriesInsertion(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	series := f.named(t, lookup.KindSeries, "Discworld")

	place := func(title, position string) *entities.Book {
		book := f.book(t, title)
		_, err := f.reconciler.Reconcile(ctx, book.ID, DesiredState{Links: Links{
			Series: []SeriesRef{{SeriesID: series, Position: decimal.RequireFromString(position)}},
		}})
		require.NoError(t, err)
		return book
	}
	first := place("The Colour of Magic", "1")
	second := place("The Light Fantastic", "2")
	place("Interlude", "1.5")

	var rows []entities.SeriesIndex
	require.NoError(t, f.db.DB.Where("series_id = ?", series).Order("idx ASC").Find(&rows).Error)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "1.5", "2"}, []string{rows[0].Position(), rows[1].Position(), rows[2].Position()})
	assert.Equal(t, first.ID, rows[0].BookID)
	assert.Equal(t, second.ID, rows[2].BookID)
	assert.True(t, rows[0].Idx.Equal(decimal.NewFromInt(1)))
	assert.True(t, rows[2].Idx.Equal(decimal.NewFromInt(2)))
}

func TestReconcile_SeriesAlwaysRewritten(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	series := f.named(t, lookup.KindSeries, "Culture")
	book := f.book(t, "Excession")

	_, err := f.reconciler.Reconcile(ctx, book.ID, DesiredState{Links: Links{
		Series: []SeriesRef{{SeriesID: series, Position: decimal.NewFromInt(5)}},
	}})
	require.NoError(t, err)

	got, err := f.reconciler.Reconcile(ctx, book.ID, DesiredState{Update: books.Update{Read: ptr(true)}})
	require.NoError(t, err)
	assert.Empty(t, got.Series)
}

func TestReconcile_PartialUpdateKeepsAuthors(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	book := f.book(t, "Dune")
	author := f.author(t, "Frank", "Herbert")
	genre := f.named(t, lookup.KindGenre, "Science Fiction")

	_, err := f.reconciler.Reconcile(ctx, book.ID, DesiredState{Links: Links{Authors: []uint{author}, Genres: []uint{genre}}})
	require.NoError(t, err)

	got, err := f.reconciler.Reconcile(ctx, book.ID, DesiredState{Update: books.Update{Title: ptr("Dune Messiah"), PageCount: ptr(256)}})
	require.NoError(t, err)

	assert.Equal(t, "Dune Messiah", got.Title)
	require.NotNil(t, got.PageCount)
	assert.Equal(t, 256, *got.PageCount)
	assert.Equal(t, []string{"Frank Herbert"}, got.AuthorNames())
	assert.Len(t, got.Genres, 1)

	got, err = f.reconciler.Reconcile(ctx, book.ID, DesiredState{Links: Links{Authors: []uint{}}})
	require.NoError(t, err)
	assert.Empty(t, got.Authors)
}

func TestReconcile_SoftReferenceSkip(t *testing.T) {
	f := setupTestDB(t)
	book := f.book(t, "Neuromancer")
	genre := f.named(t, lookup.KindGenre, "Cyberpunk")

	got, err := f.reconciler.Reconcile(context.Background(), book.ID, DesiredState{Links: Links{
		Genres: []uint{genre, 4242},
		Series: []SeriesRef{{SeriesID: 777, Position: decimal.NewFromInt(1)}},
	}})

	require.NoError(t, err)
	require.Len(t, got.Genres, 1)
	assert.Equal(t, genre, got.Genres[0].ID)
	assert.Empty(t, got.Series)
}

func TestReconcile_SoftDeletedReferenceIsSkipped(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	book := f.book(t, "Hyperion")
	live := f.named(t, lookup.KindLanguage, "English")
	dead := f.named(t, lookup.KindLanguage, "Klingon")
	require.NoError(t, f.catalog.Delete(ctx, lookup.KindLanguage, dead))

	got, err := f.reconciler.Reconcile(ctx, book.ID, DesiredState{Links: Links{Languages: []uint{dead, live}}})
	require.NoError(t, err)
	require.Len(t, got.Languages, 1)
	assert.Equal(t, "English", got.Languages[0].Name)
}

func TestReconcile_PriceFromJSON(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	book := f.book(t, "Priced")

	var state DesiredState
	require.NoError(t, json.Unmarshal([]byte(`{"price": "9.50"}`), &state))
	got, err := f.reconciler.Reconcile(ctx, book.ID, state)
	require.NoError(t, err)
	require.True(t, got.Price.Valid)
	assert.Equal(t, "9.5", got.PriceDisplay())

	state = DesiredState{}
	require.NoError(t, json.Unmarshal([]byte(`{"title": "Still priced"}`), &state))
	got, err = f.reconciler.Reconcile(ctx, book.ID, state)
	require.NoError(t, err)
	assert.True(t, got.Price.Valid)

	state = DesiredState{}
	require.NoError(t, json.Unmarshal([]byte(`{"price": null}`), &state))
	got, err = f.reconciler.Reconcile(ctx, book.ID, state)
	require.NoError(t, err)
	assert.False(t, got.Price.Valid)
	assert.Equal(t, "Still priced", got.Title)
}

func TestReconcile_ValidationBeforeMutation(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	book := f.book(t, "Original")

	tests := []struct {
		name  string
		state DesiredState
	}{
		{"empty title", DesiredState{Update: books.Update{Title: ptr("")}}},
		{"bad isbn", DesiredState{Update: books.Update{Title: ptr("Changed"), ISBN: ptr("9781234567890")}}},
		{"implausible year", DesiredState{Update: books.Update{Title: ptr("Changed"), Released: ptr(42)}}},
		{"negative pages", DesiredState{Update: books.Update{Title: ptr("Changed"), PageCount: ptr(-3)}}},
		{"negative price", DesiredState{Update: books.Update{Title: ptr("Changed"), Price: books.SetPrice(decimal.NewNullDecimal(decimal.NewFromInt(-1)))}}},
		{"negative position", DesiredState{Update: books.Update{Title: ptr("Changed")}, Links: Links{
			Series: []SeriesRef{{SeriesID: 1, Position: decimal.NewFromInt(-1)}},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.reconciler.Reconcile(ctx, book.ID, tt.state)
			assert.ErrorIs(t, err, entities.ErrValidation)

			current, err := f.books.Get(ctx, book.ID)
			require.NoError(t, err)
			assert.Equal(t, "Original", current.Title)
		})
	}
}

func TestReconcile_MissingFormatRollsBack(t *testing.T) {
	f := setupTestDB(t)
	ctx := context.Background()
	book := f.book(t, "Before")
	author := f.author(t, "Iain", "Banks")
	genre := f.named(t, lookup.KindGenre, "Space Opera")

	_, err := f.reconciler.Reconcile(ctx, book.ID, DesiredState{Links: Links{Authors: []uint{author}, Genres: []uint{genre}}})
	require.NoError(t, err)
	before := f.snapshot(t, book.ID)

	other := f.named(t, lookup.KindGenre, "Thriller")
	_, err = f.reconciler.Reconcile(ctx, book.ID, DesiredState{
		Update: books.Update{Title: ptr("After"), FormatID: ptr(uint(999))},
		Links:  Links{Authors: []uint{}, Genres: []uint{other}},
	})
	var refErr *entities.InvalidReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "format", refErr.Field)

	current, err := f.books.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Before", current.Title)
	assert.Equal(t, uint(1), current.FormatID)
	after := f.snapshot(t, book.ID)
	assert.Equal(t, before.genres, after.genres)
	require.Len(t, after.authors, 1)
	assert.Equal(t, author, after.authors[0].AuthorID)
}

func TestReconcile_UnknownBook(t *testing.T) {
	f := setupTestDB(t)

	_, err := f.reconciler.Reconcile(context.Background(), 12345, DesiredState{Update: books.Update{Read: ptr(true)}})
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestReconcile_ChangesFormat(t *testing.T) {
	f := setupTestDB(t)
	book := f.book(t, "Snow Crash")

	got, err := f.reconciler.Reconcile(context.Background(), book.ID, DesiredState{Update: books.Update{FormatID: ptr(uint(3))}})
	require.NoError(t, err)
	assert.Equal(t, "Ebook", got.Format.Name)
}
