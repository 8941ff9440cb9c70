package exporters

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mrlokans/librium/internal/entities"
)

func sampleBook() entities.Book {
	isbn := "9781234567897"
	released := 1990
	pages := 412
	return entities.Book{
		UUID:      "0b6f0f6e-1d8a-4d57-9d2e-6c1c0b7a6f10",
		Title:     "Good Omens",
		ISBN:      &isbn,
		Released:  &released,
		PageCount: &pages,
		Price:     decimal.NewNullDecimal(decimal.RequireFromString("12.50")),
		Read:      true,
		Format:    entities.Format{Name: "Paperback"},
		Authors: []entities.BookAuthor{
			{Idx: 2, Author: entities.Author{Name: "Neil Gaiman"}},
			{Idx: 1, Author: entities.Author{Name: "Terry Pratchett"}},
		},
		Series: []entities.SeriesIndex{
			{Idx: decimal.RequireFromString("3.0"), Series: entities.Series{Name: "Collabs"}},
			{Idx: decimal.RequireFromString("1.5"), Series: entities.Series{Name: "Apocalypses"}},
		},
		Genres:    []entities.Genre{{Name: "Fantasy"}, {Name: "Comedy"}},
		Languages: []entities.Language{{Name: "English"}},
	}
}

func TestNewRow(t *testing.T) {
	row := NewRow(sampleBook())

	assert.Equal(t, "Terry Pratchett; Neil Gaiman", row.Authors)
	assert.Equal(t, "Apocalypses #1.5; Collabs #3", row.Series)
	assert.Equal(t, "Fantasy; Comedy", row.Genres)
	assert.Equal(t, "", row.Publishers)
	assert.Equal(t, "12.5", row.Price)
	assert.Len(t, row.Strings(), len(Columns))
}

func TestCSVExporter(t *testing.T) {
	var buf bytes.Buffer
	result, err := CSVExporter{}.Export(&buf, []entities.Book{sampleBook(), {Title: "Bare"}})
	require.NoError(t, err)
	assert.Equal(t, 2, result.BooksProcessed)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Columns, records[0])
	assert.Equal(t, "Good Omens", records[1][0])
	assert.Equal(t, "1990", records[1][8])
	assert.Equal(t, "", records[2][8])
}

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	result, err := JSONExporter{}.Export(&buf, []entities.Book{sampleBook()})
	require.NoError(t, err)
	assert.Equal(t, 1, result.BooksProcessed)

	var rows []Row
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Good Omens", rows[0].Title)
	require.NotNil(t, rows[0].Pages)
	assert.Equal(t, 412, *rows[0].Pages)
}

func TestXLSXExporter(t *testing.T) {
	var buf bytes.Buffer
	result, err := XLSXExporter{}.Export(&buf, []entities.Book{sampleBook()})
	require.NoError(t, err)
	assert.Equal(t, 1, result.BooksProcessed)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "title", rows[0][0])
	assert.Equal(t, "Good Omens", rows[1][0])
	assert.Equal(t, "412", rows[1][9])
}

func TestMarkdownExporter(t *testing.T) {
	var buf bytes.Buffer
	_, err := MarkdownExporter{}.Export(&buf, []entities.Book{sampleBook()})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "## Good Omens")
	assert.Contains(t, out, "- **Authors:** Terry Pratchett; Neil Gaiman")
	assert.NotContains(t, out, "Publishers")
}

func TestNew(t *testing.T) {
	for _, format := range []string{"csv", "JSON", "xlsx", "md"} {
		exp, err := New(format)
		require.NoError(t, err, format)
		assert.NotEmpty(t, exp.Extension())
	}

	_, err := New("pdf")
	assert.Error(t, err)
}
