package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mrlokans/librium/internal/database/books"
	"github.com/mrlokans/librium/internal/entities"
)

// NewBookRequest creates a book and links it in one step.
type NewBookRequest struct {
	books.NewBook
	Links
}

// BookService handles the book lifecycle outside of reconciliation.
type BookService struct {
	db Transactor
}

func NewBookService(db Transactor) *BookService {
	return &BookService{db: db}
}

// Create inserts a book with a fresh UUID and reconciles its initial
// associations in the same transaction.
func (s *BookService) Create(ctx context.Context, req NewBookRequest) (*entities.Book, error) {
	if err := req.NewBook.Validate(); err != nil {
		return nil, err
	}
	if err := (DesiredState{Links: req.Links}).Validate(); err != nil {
		return nil, err
	}

	var book *entities.Book
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := books.NewRepository(tx)
		created, err := repo.Create(req.NewBook)
		if err != nil {
			return err
		}
		if err := reconcile(tx, created.ID, DesiredState{Links: req.Links}); err != nil {
			return err
		}
		book, err = repo.GetByID(created.ID)
		return err
	})
	if err != nil {
		logFailure(err, 0)
		return nil, err
	}

	log.Info().Uint("book_id", book.ID).Str("uuid", book.UUID).Str("title", book.Title).Msg("Created book")
	return book, nil
}

// Get returns a live book with its associations.
func (s *BookService) Get(ctx context.Context, id uint) (*entities.Book, error) {
	var book *entities.Book
	err := s.db.ReadTx(ctx, func(tx *gorm.DB) error {
		var err error
		book, err = books.NewRepository(tx).GetByID(id)
		return err
	})
	return book, err
}

// GetByUUID returns a live book by its external identifier.
func (s *BookService) GetByUUID(ctx context.Context, uuid string) (*entities.Book, error) {
	var book *entities.Book
	err := s.db.ReadTx(ctx, func(tx *gorm.DB) error {
		var err error
		book, err = books.NewRepository(tx).GetByUUID(uuid)
		return err
	})
	return book, err
}

// Delete soft-deletes a book.
func (s *BookService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return books.NewRepository(tx).SoftDelete(id)
	})
	if err != nil {
		logFailure(err, id)
		return err
	}
	log.Info().Uint("book_id", id).Msg("Deleted book")
	return nil
}

// All returns every live book with associations, for exporters.
func (s *BookService) All(ctx context.Context) ([]entities.Book, error) {
	var all []entities.Book
	err := s.db.ReadTx(ctx, func(tx *gorm.DB) error {
		var err error
		all, err = books.NewRepository(tx).All()
		return err
	})
	return all, err
}
