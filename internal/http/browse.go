package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librium/internal/query"
)

// BrowseController serves the paginated catalog views.
type BrowseController struct {
	browser Browser
}

func NewBrowseController(browser Browser) *BrowseController {
	return &BrowseController{browser: browser}
}

// bindParams reads the shared filter, sort and page parameters.
func bindParams(c *gin.Context) (query.Params, bool) {
	var p query.Params
	if err := c.ShouldBindQuery(&p); err != nil {
		respondBadRequest(c, "invalid query: "+err.Error())
		return p, false
	}
	p.Read = query.ParseReadStatus(c.Query("read"))
	return p, true
}

// pageHandler adapts one facade view to a GET handler.
func pageHandler[T any](resource string, view func(context.Context, query.Params) (*query.Page[T], error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := bindParams(c)
		if !ok {
			return
		}
		page, err := view(c.Request.Context(), p)
		if err != nil {
			respondServiceError(c, err, resource)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func (bc *BrowseController) Books() gin.HandlerFunc {
	return pageHandler("books", bc.browser.Books)
}

func (bc *BrowseController) Authors() gin.HandlerFunc {
	return pageHandler("authors", bc.browser.Authors)
}

func (bc *BrowseController) Genres() gin.HandlerFunc {
	return pageHandler("genres", bc.browser.Genres)
}

func (bc *BrowseController) Publishers() gin.HandlerFunc {
	return pageHandler("publishers", bc.browser.Publishers)
}

func (bc *BrowseController) Languages() gin.HandlerFunc {
	return pageHandler("languages", bc.browser.Languages)
}

func (bc *BrowseController) Series() gin.HandlerFunc {
	return pageHandler("series", bc.browser.Series)
}

func (bc *BrowseController) Years() gin.HandlerFunc {
	return pageHandler("years", bc.browser.Years)
}

// BooksInSeries handles GET /api/series/:id/books.
func (bc *BrowseController) BooksInSeries(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	entries, err := bc.browser.BooksInSeries(c.Request.Context(), id, query.ParseReadStatus(c.Query("read")))
	if err != nil {
		respondServiceError(c, err, "series")
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: entries, Count: len(entries)})
}

// BooksInGenre handles GET /api/genres/:id/books.
func (bc *BrowseController) BooksInGenre(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	books, err := bc.browser.BooksInGenre(c.Request.Context(), id, query.ParseReadStatus(c.Query("read")))
	if err != nil {
		respondServiceError(c, err, "genre")
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: books, Count: len(books)})
}

// BooksByAuthor handles GET /api/authors/:id/books.
func (bc *BrowseController) BooksByAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	books, err := bc.browser.BooksByAuthor(c.Request.Context(), id, query.ParseReadStatus(c.Query("read")))
	if err != nil {
		respondServiceError(c, err, "author")
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: books, Count: len(books)})
}

// BooksInYear handles GET /api/years/:year/books.
func (bc *BrowseController) BooksInYear(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		respondBadRequest(c, "invalid year")
		return
	}
	books, err := bc.browser.BooksInYear(c.Request.Context(), year, query.ParseReadStatus(c.Query("read")))
	if err != nil {
		respondServiceError(c, err, "year")
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: books, Count: len(books)})
}
