package exporters

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/mrlokans/librium/internal/entities"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONExporter writes a single JSON array of rows.
type JSONExporter struct {
	Indent bool
}

func (JSONExporter) ContentType() string { return "application/json; charset=utf-8" }
func (JSONExporter) Extension() string   { return ".json" }

func (e JSONExporter) Export(w io.Writer, books []entities.Book) (ExportResult, error) {
	rows := make([]Row, 0, len(books))
	for _, b := range books {
		rows = append(rows, NewRow(b))
	}

	enc := json.NewEncoder(w)
	if e.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(rows); err != nil {
		return ExportResult{}, err
	}
	return ExportResult{BooksProcessed: len(rows)}, nil
}
