package exporters

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mrlokans/librium/internal/entities"
)

const sheetName = "Books"

// XLSXExporter writes one worksheet with a bold header row.
type XLSXExporter struct{}

func (XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (XLSXExporter) Extension() string { return ".xlsx" }

func (XLSXExporter) Export(w io.Writer, books []entities.Book) (ExportResult, error) {
	result := ExportResult{}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return result, err
	}

	header := make([]interface{}, 0, len(Columns))
	for _, c := range Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return result, err
	}

	lastCol, err := excelize.ColumnNumberToName(len(Columns))
	if err != nil {
		return result, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return result, err
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return result, err
	}

	for i, b := range books {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return result, err
		}
		values := cellValues(NewRow(b))
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return result, fmt.Errorf("write row for %q: %w", b.Title, err)
		}
		result.BooksProcessed++
	}

	if _, err := f.WriteTo(w); err != nil {
		return result, err
	}
	return result, nil
}

// cellValues keeps numbers numeric so spreadsheets can sort them.
func cellValues(r Row) []interface{} {
	values := make([]interface{}, 0, len(Columns))
	for i, s := range r.Strings() {
		switch Columns[i] {
		case "released":
			values = append(values, intOrNil(r.Released))
		case "pages":
			values = append(values, intOrNil(r.Pages))
		case "read":
			values = append(values, r.Read)
		default:
			values = append(values, s)
		}
	}
	return values
}

func intOrNil(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
