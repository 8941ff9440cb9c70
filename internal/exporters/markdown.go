package exporters

import (
	"fmt"
	"io"
	"strings"

	"github.com/mrlokans/librium/internal/entities"
)

// MarkdownExporter writes one section per book with a bullet list of its
// metadata, suitable for dropping into a notes vault.
type MarkdownExporter struct{}

func (MarkdownExporter) ContentType() string { return "text/markdown; charset=utf-8" }
func (MarkdownExporter) Extension() string   { return ".md" }

func (MarkdownExporter) Export(w io.Writer, books []entities.Book) (ExportResult, error) {
	result := ExportResult{}
	if _, err := io.WriteString(w, "# Catalog\n"); err != nil {
		return result, err
	}
	for _, b := range books {
		if _, err := io.WriteString(w, "\n"+GenerateMarkdown(b)); err != nil {
			return result, err
		}
		result.BooksProcessed++
	}
	return result, nil
}

// GenerateMarkdown renders a single book. Empty fields are left out.
func GenerateMarkdown(b entities.Book) string {
	row := NewRow(b)
	var sb strings.Builder

	fmt.Fprintf(&sb, "## %s\n\n", row.Title)
	item := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "- **%s:** %s\n", label, value)
		}
	}
	item("Authors", row.Authors)
	item("Series", row.Series)
	item("Genres", row.Genres)
	item("Publishers", row.Publishers)
	item("Languages", row.Languages)
	item("Format", row.Format)
	item("ISBN", row.ISBN)
	item("Released", optionalInt(row.Released))
	item("Pages", optionalInt(row.Pages))
	item("Price", row.Price)
	if row.Read {
		item("Read", "yes")
	} else {
		item("Read", "no")
	}
	return sb.String()
}
