// Package books provides database operations for the book aggregate: the book
// row itself and the association rows it owns.
//
// Association writers expect already-resolved, live ids. Resolving references
// and skipping missing ones is the caller's job (see services.Reconciler).
//
// # Usage
//
//	repo := books.NewRepository(tx)
//	book, err := repo.GetByID(123)
package books

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/librium/internal/entities"
)

// Repository handles book rows and their associations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SeriesPlacement is one resolved series membership.
type SeriesPlacement struct {
	SeriesID uint
	Position decimal.Decimal
}

// WithAssociations preloads everything a book view needs. Authors come back in
// sequence order and series memberships in position order; links to
// soft-deleted authors or series are hidden.
func WithAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Format", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped()
		}).
		Preload("Authors", func(db *gorm.DB) *gorm.DB {
			return db.Where("author_id IN (SELECT id FROM authors WHERE deleted_at IS NULL)").Order("idx ASC")
		}).
		Preload("Authors.Author").
		Preload("Series", func(db *gorm.DB) *gorm.DB {
			return db.Where("series_id IN (SELECT id FROM series WHERE deleted_at IS NULL)").Order("idx ASC")
		}).
		Preload("Series.Series").
		Preload("Genres", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC")
		}).
		Preload("Publishers", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC")
		}).
		Preload("Languages", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC")
		})
}

// Create inserts a book with a fresh UUID. The format must be live.
func (r *Repository) Create(input NewBook) (*entities.Book, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := r.requireFormat(input.FormatID); err != nil {
		return nil, err
	}

	book := input.toEntity()
	book.UUID = uuid.NewString()
	if err := r.db.Omit(clause.Associations).Create(book).Error; err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	return book, nil
}

// GetByID retrieves a live book by id with all associations.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := WithAssociations(r.db).First(&book, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &book, nil
}

// GetByUUID retrieves a live book by its external identifier.
func (r *Repository) GetByUUID(id string) (*entities.Book, error) {
	var book entities.Book
	err := WithAssociations(r.db).Where("uuid = ?", id).First(&book).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &book, nil
}

// Exists reports whether a live book with this id exists.
func (r *Repository) Exists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// All returns every live book with associations, ordered by title.
func (r *Repository) All() ([]entities.Book, error) {
	var books []entities.Book
	err := WithAssociations(r.db).Order("title ASC").Order("id ASC").Find(&books).Error
	return books, err
}

// SoftDelete marks a book deleted. Its association rows stay in place.
func (r *Repository) SoftDelete(id uint) error {
	result := r.db.Delete(&entities.Book{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("book %d: %w", id, entities.ErrNotFound)
	}
	return nil
}

// ApplyUpdate writes the set scalar fields of update in one statement.
func (r *Repository) ApplyUpdate(id uint, update Update) error {
	columns := update.Columns()
	if len(columns) == 0 {
		return nil
	}
	if formatID, ok := columns["format_id"].(uint); ok {
		if err := r.requireFormat(formatID); err != nil {
			return err
		}
	}
	result := r.db.Model(&entities.Book{ID: id}).Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("book %d: %w", id, entities.ErrNotFound)
	}
	return nil
}

// ReplaceAuthors removes every author link of the book and inserts the given
// authors with sequence indices 1..n in slice order.
func (r *Repository) ReplaceAuthors(bookID uint, authorIDs []uint) error {
	if err := r.db.Where("book_id = ?", bookID).Delete(&entities.BookAuthor{}).Error; err != nil {
		return fmt.Errorf("failed to clear authors: %w", err)
	}
	if len(authorIDs) == 0 {
		return nil
	}
	links := make([]entities.BookAuthor, 0, len(authorIDs))
	for i, authorID := range authorIDs {
		links = append(links, entities.BookAuthor{BookID: bookID, AuthorID: authorID, Idx: i + 1})
	}
	if err := r.db.Omit(clause.Associations).Create(&links).Error; err != nil {
		return fmt.Errorf("failed to link authors: %w", err)
	}
	return nil
}

// ReplaceSeries removes every series membership of the book and inserts the
// given placements. Sibling positions are never touched.
func (r *Repository) ReplaceSeries(bookID uint, placements []SeriesPlacement) error {
	if err := r.db.Where("book_id = ?", bookID).Delete(&entities.SeriesIndex{}).Error; err != nil {
		return fmt.Errorf("failed to clear series: %w", err)
	}
	if len(placements) == 0 {
		return nil
	}
	rows := make([]entities.SeriesIndex, 0, len(placements))
	for _, p := range placements {
		rows = append(rows, entities.SeriesIndex{BookID: bookID, SeriesID: p.SeriesID, Idx: p.Position})
	}
	if err := r.db.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to link series: %w", err)
	}
	return nil
}

// ReplaceGenres sets the book's genre set to exactly genres.
func (r *Repository) ReplaceGenres(bookID uint, genres []entities.Genre) error {
	return r.replaceSet(bookID, "Genres", genres)
}

// ReplacePublishers sets the book's publisher set to exactly publishers.
func (r *Repository) ReplacePublishers(bookID uint, publishers []entities.Publisher) error {
	return r.replaceSet(bookID, "Publishers", publishers)
}

// ReplaceLanguages sets the book's language set to exactly languages.
func (r *Repository) ReplaceLanguages(bookID uint, languages []entities.Language) error {
	return r.replaceSet(bookID, "Languages", languages)
}

func (r *Repository) replaceSet(bookID uint, name string, values interface{}) error {
	association := r.db.Model(&entities.Book{ID: bookID}).Association(name)
	var err error
	if isEmpty(values) {
		err = association.Clear()
	} else {
		err = association.Replace(values)
	}
	if err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

// SeriesPositions returns the stored positions of a book within one series.
func (r *Repository) SeriesPositions(bookID, seriesID uint) ([]decimal.Decimal, error) {
	var rows []entities.SeriesIndex
	err := r.db.Where("book_id = ? AND series_id = ?", bookID, seriesID).Order("idx ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	positions := make([]decimal.Decimal, 0, len(rows))
	for _, row := range rows {
		positions = append(positions, row.Idx)
	}
	return positions, nil
}

func (r *Repository) requireFormat(id uint) error {
	if id == 0 {
		return &entities.InvalidReferenceError{Field: "format"}
	}
	var count int64
	if err := r.db.Model(&entities.Format{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return &entities.InvalidReferenceError{Field: "format", ID: id}
	}
	return nil
}

func isEmpty(values interface{}) bool {
	switch v := values.(type) {
	case []entities.Genre:
		return len(v) == 0
	case []entities.Publisher:
		return len(v) == 0
	case []entities.Language:
		return len(v) == 0
	}
	return values == nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.ErrNotFound
	}
	return err
}
