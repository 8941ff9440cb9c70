package books

import (
	"bytes"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/mrlokans/librium/internal/entities"
)

// NewBook holds the fields accepted when a book is first created.
type NewBook struct {
	Title     string              `json:"title"`
	ISBN      *string             `json:"isbn,omitempty"`
	Released  *int                `json:"released,omitempty"`
	PageCount *int                `json:"page_count,omitempty"`
	Price     decimal.NullDecimal `json:"price"`
	Read      bool                `json:"read"`
	HasCover  bool                `json:"has_cover"`
	FormatID  uint                `json:"format_id"`
}

func (n NewBook) Validate() error {
	n.Title = strings.TrimSpace(n.Title)
	return entities.AsValidationError(validation.ValidateStruct(&n,
		validation.Field(&n.Title, validation.Required, validation.RuneLength(1, entities.MaxTitleLength)),
		validation.Field(&n.ISBN, entities.ISBNRule),
		validation.Field(&n.Released, append([]validation.Rule{validation.NilOrNotEmpty}, entities.ReleaseYearRules()...)...),
		validation.Field(&n.PageCount, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&n.Price, entities.NonNegativeDecimal),
	))
}

func (n NewBook) toEntity() *entities.Book {
	book := &entities.Book{
		Title:     strings.TrimSpace(n.Title),
		Released:  n.Released,
		PageCount: n.PageCount,
		Price:     n.Price,
		Read:      n.Read,
		HasCover:  n.HasCover,
		FormatID:  n.FormatID,
	}
	if n.ISBN != nil {
		if isbn := entities.NormalizeISBN(*n.ISBN); isbn != "" {
			book.ISBN = &isbn
		}
	}
	return book
}

// PriceUpdate is an optional price change. An absent JSON field leaves Set
// false; an explicit null sets it with an invalid Value, which clears the price.
type PriceUpdate struct {
	Set   bool
	Value decimal.NullDecimal
}

// SetPrice returns an update that stores price.
func SetPrice(price decimal.NullDecimal) PriceUpdate {
	return PriceUpdate{Set: true, Value: price}
}

// ClearPrice returns an update that removes the stored price.
func ClearPrice() PriceUpdate {
	return PriceUpdate{Set: true}
}

func (p *PriceUpdate) UnmarshalJSON(data []byte) error {
	p.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		p.Value = decimal.NullDecimal{}
		return nil
	}
	return p.Value.UnmarshalJSON(data)
}

func (p PriceUpdate) MarshalJSON() ([]byte, error) {
	return p.Value.MarshalJSON()
}

// Update names every scalar book field that may be changed after creation.
// A nil field is left untouched. An empty ISBN, a zero release year or page
// count, and a set Price without a value clear the stored value.
type Update struct {
	Title     *string     `json:"title,omitempty"`
	ISBN      *string     `json:"isbn,omitempty"`
	Released  *int        `json:"released,omitempty"`
	PageCount *int        `json:"page_count,omitempty"`
	Price     PriceUpdate `json:"price"`
	Read      *bool       `json:"read,omitempty"`
	HasCover  *bool       `json:"has_cover,omitempty"`
	FormatID  *uint       `json:"format_id,omitempty"`
}

func (u Update) Validate() error {
	var title *string
	if u.Title != nil {
		trimmed := strings.TrimSpace(*u.Title)
		title = &trimmed
	}
	var price interface{}
	if u.Price.Set {
		price = u.Price.Value
	}
	return entities.AsValidationError(validation.Errors{
		"title":      validation.Validate(title, validation.NilOrNotEmpty, validation.RuneLength(1, entities.MaxTitleLength)),
		"isbn":       validation.Validate(u.ISBN, entities.ISBNRule),
		"released":   validation.Validate(u.Released, entities.ReleaseYearRules()...),
		"page_count": validation.Validate(u.PageCount, validation.Min(1)),
		"price":      validation.Validate(price, entities.NonNegativeDecimal),
		"format_id":  validation.Validate(u.FormatID, validation.NilOrNotEmpty),
	}.Filter())
}

// IsZero reports whether no field is set.
func (u Update) IsZero() bool {
	return len(u.Columns()) == 0
}

// Columns maps the set fields to their column values.
func (u Update) Columns() map[string]interface{} {
	columns := make(map[string]interface{})
	if u.Title != nil {
		columns["title"] = strings.TrimSpace(*u.Title)
	}
	if u.ISBN != nil {
		if isbn := entities.NormalizeISBN(*u.ISBN); isbn != "" {
			columns["isbn"] = isbn
		} else {
			columns["isbn"] = nil
		}
	}
	if u.Released != nil {
		columns["released"] = nullableInt(*u.Released)
	}
	if u.PageCount != nil {
		columns["page_count"] = nullableInt(*u.PageCount)
	}
	if u.Price.Set {
		columns["price"] = u.Price.Value
	}
	if u.Read != nil {
		columns["read"] = *u.Read
	}
	if u.HasCover != nil {
		columns["has_cover"] = *u.HasCover
	}
	if u.FormatID != nil {
		columns["format_id"] = *u.FormatID
	}
	return columns
}

func nullableInt(v int) interface{} {
	if v == 0 {
		return nil
	}
	return v
}
