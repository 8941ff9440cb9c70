package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librium/internal/entities"
)

func TestSpec_FilterInMemory(t *testing.T) {
	list := []entities.Book{
		{Title: "Mort", Read: true},
		{Title: "Maskerade"},
		{Title: "Jingo", Read: true},
	}

	spec := All(BookSpecs(Params{StartsWith: "m", Read: boolPtr(true)})...)
	got, err := Filter(list, spec)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Mort", got[0].Title)
	assert.Contains(t, spec.Name, "starts with")
}

func TestSpec_TextModes(t *testing.T) {
	title := func(b entities.Book) string { return b.Title }
	book := entities.Book{Title: "The Truth"}

	assert.True(t, textSpec("books.title", contains, "TRU", title).Match(book))
	assert.True(t, textSpec("books.title", startsWith, "the", title).Match(book))
	assert.True(t, textSpec("books.title", endsWith, "truth", title).Match(book))
	assert.False(t, textSpec("books.title", equals, "the truth", title).Match(book))
	assert.True(t, textSpec("books.title", equals, "The Truth", title).Match(book))
}

func TestSpec_StorageOnlyCannotFilterInMemory(t *testing.T) {
	specs := AuthorSpecs(Params{Read: boolPtr(false)})

	_, err := Filter([]entities.Author{{Name: "x"}}, All(specs...))
	assert.ErrorIs(t, err, ErrNotInMemory)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_sale\\`, escapeLike(`50% off_sale\`))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 30))
	assert.Equal(t, 1, totalPages(30, 30))
	assert.Equal(t, 2, totalPages(31, 30))
	assert.Equal(t, 0, totalPages(5, 0))
}
