package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librium/internal/entities"
	"github.com/mrlokans/librium/internal/services"
)

// BookResponse is a book with its rendered display values.
type BookResponse struct {
	*entities.Book
	AuthorNames  []string `json:"author_names"`
	PriceDisplay string   `json:"price_display,omitempty"`
}

func newBookResponse(b *entities.Book) BookResponse {
	return BookResponse{
		Book:         b,
		AuthorNames:  b.AuthorNames(),
		PriceDisplay: b.PriceDisplay(),
	}
}

type BooksController struct {
	books      BookStore
	reconciler BookReconciler
}

func NewBooksController(books BookStore, reconciler BookReconciler) *BooksController {
	return &BooksController{books: books, reconciler: reconciler}
}

// GetBook handles GET /api/books/:id. A non-numeric id is looked up as a UUID.
func (bc *BooksController) GetBook(c *gin.Context) {
	param := c.Param("id")

	var (
		book *entities.Book
		err  error
	)
	if id, perr := strconv.ParseUint(param, 10, 32); perr == nil {
		book, err = bc.books.Get(c.Request.Context(), uint(id))
	} else {
		book, err = bc.books.GetByUUID(c.Request.Context(), param)
	}
	if err != nil {
		respondServiceError(c, err, "book")
		return
	}

	c.IndentedJSON(http.StatusOK, newBookResponse(book))
}

// CreateBook handles POST /api/books.
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req services.NewBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	book, err := bc.books.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "book")
		return
	}

	respondCreated(c, newBookResponse(book))
}

// UpdateBook handles PUT /api/books/:id. Fields left out of the body keep
// their current value; see services.Links for the association rules.
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var state services.DesiredState
	if err := c.ShouldBindJSON(&state); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	book, err := bc.reconciler.Reconcile(c.Request.Context(), id, state)
	if err != nil {
		respondServiceError(c, err, "book")
		return
	}

	c.IndentedJSON(http.StatusOK, newBookResponse(book))
}

// DeleteBook handles DELETE /api/books/:id.
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.books.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "book")
		return
	}

	respondSuccess(c, "book deleted")
}
