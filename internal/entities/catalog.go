package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaxNameLength bounds the name column of every simple catalog entity.
const MaxNameLength = 50

// MaxAffixLength bounds author prefixes and suffixes.
const MaxAffixLength = 20

type Format struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;size:50" json:"name"` // e.g., "Hardcover", "Ebook"
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Genre struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"index;size:50" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Publisher struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"index;size:50" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Language struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"index;size:50" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Series struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;size:50" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// NameParts is the full name tuple used to identify an author.
// Two authors are the same person only when every part matches exactly.
type NameParts struct {
	Prefix string `json:"prefix,omitempty"`
	First  string `json:"first_name,omitempty"`
	Middle string `json:"middle_name,omitempty"`
	Last   string `json:"last_name,omitempty"`
	Suffix string `json:"suffix,omitempty"`
}

// Trimmed returns a copy with surrounding whitespace removed from every part.
func (p NameParts) Trimmed() NameParts {
	return NameParts{
		Prefix: strings.TrimSpace(p.Prefix),
		First:  strings.TrimSpace(p.First),
		Middle: strings.TrimSpace(p.Middle),
		Last:   strings.TrimSpace(p.Last),
		Suffix: strings.TrimSpace(p.Suffix),
	}
}

// DisplayName joins the non-empty parts in prefix, first, middle, last, suffix order.
func (p NameParts) DisplayName() string {
	parts := make([]string, 0, 5)
	for _, s := range []string{p.Prefix, p.First, p.Middle, p.Last, p.Suffix} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

type Author struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UUID       string         `gorm:"uniqueIndex;size:36" json:"uuid"`
	Prefix     string         `gorm:"size:20" json:"prefix,omitempty"`
	FirstName  string         `gorm:"size:50" json:"first_name,omitempty"`
	MiddleName string         `gorm:"size:50" json:"middle_name,omitempty"`
	LastName   string         `gorm:"index;size:50" json:"last_name,omitempty"`
	Suffix     string         `gorm:"size:20" json:"suffix,omitempty"`
	Name       string         `gorm:"index;size:255" json:"name"` // denormalized display name
	Books      []BookAuthor   `gorm:"foreignKey:AuthorID" json:"-"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// Parts returns the author's name tuple.
func (a *Author) Parts() NameParts {
	return NameParts{
		Prefix: a.Prefix,
		First:  a.FirstName,
		Middle: a.MiddleName,
		Last:   a.LastName,
		Suffix: a.Suffix,
	}
}

// NewAuthor builds an author from trimmed name parts with a fresh UUID.
func NewAuthor(p NameParts) *Author {
	p = p.Trimmed()
	return &Author{
		UUID:       uuid.NewString(),
		Prefix:     p.Prefix,
		FirstName:  p.First,
		MiddleName: p.Middle,
		LastName:   p.Last,
		Suffix:     p.Suffix,
		Name:       p.DisplayName(),
	}
}

// BeforeSave keeps the denormalized display name in sync with the name parts.
func (a *Author) BeforeSave(tx *gorm.DB) error {
	if a.UUID == "" {
		a.UUID = uuid.NewString()
	}
	a.Name = a.Parts().DisplayName()
	return nil
}

type Book struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	UUID       string              `gorm:"uniqueIndex;size:36" json:"uuid"`
	Title      string              `gorm:"index;size:250;not null" json:"title"`
	ISBN       *string             `gorm:"index;size:13" json:"isbn,omitempty"`
	Released   *int                `gorm:"index" json:"released,omitempty"`
	PageCount  *int                `json:"page_count,omitempty"`
	Price      decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"price"`
	Read       bool                `gorm:"not null;default:false" json:"read"`
	HasCover   bool                `gorm:"not null;default:false" json:"has_cover"`
	FormatID   uint                `gorm:"index;not null" json:"format_id"`
	Format     Format              `gorm:"foreignKey:FormatID" json:"format"`
	Authors    []BookAuthor        `gorm:"foreignKey:BookID" json:"authors"`
	Series     []SeriesIndex       `gorm:"foreignKey:BookID" json:"series"`
	Genres     []Genre             `gorm:"many2many:book_genres;" json:"genres"`
	Publishers []Publisher         `gorm:"many2many:book_publishers;" json:"publishers"`
	Languages  []Language          `gorm:"many2many:book_languages;" json:"languages"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
	DeletedAt  gorm.DeletedAt      `gorm:"index" json:"-"`
}

// OrderedAuthors returns the book's authors sorted by sequence index.
// Associations are expected to be preloaded in that order already; the sort
// guards against callers that built the slice by hand.
func (b *Book) OrderedAuthors() []Author {
	links := make([]BookAuthor, len(b.Authors))
	copy(links, b.Authors)
	sortBookAuthors(links)
	authors := make([]Author, 0, len(links))
	for _, l := range links {
		authors = append(authors, l.Author)
	}
	return authors
}

// AuthorNames returns display names in sequence order.
func (b *Book) AuthorNames() []string {
	authors := b.OrderedAuthors()
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		names = append(names, a.Name)
	}
	return names
}

// PriceDisplay renders the price with the integer-when-whole rule, or "" when unset.
func (b *Book) PriceDisplay() string {
	if !b.Price.Valid {
		return ""
	}
	return FormatDecimal(b.Price.Decimal)
}

// BookAuthor links a book to an author at a 1-based sequence index.
type BookAuthor struct {
	BookID   uint   `gorm:"primaryKey;autoIncrement:false;uniqueIndex:idx_book_authors_seq,priority:1" json:"book_id"`
	AuthorID uint   `gorm:"primaryKey;autoIncrement:false;index" json:"author_id"`
	Idx      int    `gorm:"primaryKey;autoIncrement:false;uniqueIndex:idx_book_authors_seq,priority:2" json:"idx"`
	Author   Author `gorm:"foreignKey:AuthorID" json:"author"`
	Book     *Book  `gorm:"foreignKey:BookID" json:"-"`
}

// SeriesIndex places a book in a series at a fractional position.
type SeriesIndex struct {
	BookID   uint            `gorm:"primaryKey;autoIncrement:false" json:"book_id"`
	SeriesID uint            `gorm:"primaryKey;autoIncrement:false;index" json:"series_id"`
	Idx      decimal.Decimal `gorm:"primaryKey;type:decimal(10,4);not null;default:0;check:positive_index,idx >= 0" json:"idx"`
	Series   Series          `gorm:"foreignKey:SeriesID" json:"series"`
	Book     *Book           `gorm:"foreignKey:BookID" json:"-"`
}

// Position renders the series position for display.
func (s SeriesIndex) Position() string {
	return FormatDecimal(s.Idx)
}

func (Format) TableName() string {
	return "formats"
}

func (Genre) TableName() string {
	return "genres"
}

func (Publisher) TableName() string {
	return "publishers"
}

func (Language) TableName() string {
	return "languages"
}

func (Series) TableName() string {
	return "series"
}

func (Author) TableName() string {
	return "authors"
}

func (Book) TableName() string {
	return "books"
}

func (BookAuthor) TableName() string {
	return "book_authors"
}

func (SeriesIndex) TableName() string {
	return "series_index"
}
