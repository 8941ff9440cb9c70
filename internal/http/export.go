package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/librium/internal/exporters"
)

type ExportController struct {
	books BookStore
}

func NewExportController(books BookStore) *ExportController {
	return &ExportController{books: books}
}

// Export handles GET /api/export?format=csv|json|xlsx|md and returns every
// live book as a downloadable file.
func (ec *ExportController) Export(c *gin.Context) {
	exporter, err := exporters.New(c.DefaultQuery("format", "csv"))
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	books, err := ec.books.All(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "books")
		return
	}

	var buf bytes.Buffer
	result, err := exporter.Export(&buf, books)
	if err != nil {
		respondInternalError(c, err, "export")
		return
	}

	filename := fmt.Sprintf("librium-%s%s", time.Now().Format("20060102"), exporter.Extension())
	log.Info().Int("books", result.BooksProcessed).Str("file", filename).Msg("Exported catalog")

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, exporter.ContentType(), buf.Bytes())
}
