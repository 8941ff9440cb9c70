package exporters

import (
	"encoding/csv"
	"io"

	"github.com/mrlokans/librium/internal/entities"
)

// CSVExporter writes RFC 4180 CSV with a header row.
type CSVExporter struct{}

func (CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }
func (CSVExporter) Extension() string   { return ".csv" }

func (CSVExporter) Export(w io.Writer, books []entities.Book) (ExportResult, error) {
	result := ExportResult{}
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return result, err
	}
	for _, b := range books {
		if err := cw.Write(NewRow(b).Strings()); err != nil {
			return result, err
		}
		result.BooksProcessed++
	}
	cw.Flush()
	return result, cw.Error()
}
