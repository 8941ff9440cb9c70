package entities

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// MinReleaseYear is the earliest plausible release year.
const MinReleaseYear = 1000

// MaxTitleLength bounds book titles.
const MaxTitleLength = 250

// MaxReleaseYear allows books announced up to five years ahead.
func MaxReleaseYear() int {
	return time.Now().Year() + 5
}

// ISBNRule accepts nil, empty, or a valid ISBN-13 (string or *string).
var ISBNRule = validation.By(func(value interface{}) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return errors.New("must be a string")
	}
	if !ValidISBN(s) {
		return errors.New("must be a 13-digit ISBN with a valid checksum")
	}
	return nil
})

// NonNegativeDecimal accepts nil, or a decimal >= 0 (Decimal, NullDecimal or a
// pointer to either). The decimal types are matched before validation.Indirect
// would turn them into their driver strings.
var NonNegativeDecimal = validation.By(func(value interface{}) error {
	var d decimal.Decimal
	switch t := value.(type) {
	case nil:
		return nil
	case decimal.Decimal:
		d = t
	case *decimal.Decimal:
		if t == nil {
			return nil
		}
		d = *t
	case decimal.NullDecimal:
		if !t.Valid {
			return nil
		}
		d = t.Decimal
	case *decimal.NullDecimal:
		if t == nil || !t.Valid {
			return nil
		}
		d = t.Decimal
	default:
		return errors.New("must be a decimal")
	}
	if d.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
})

// ReleaseYearRules bound the release year to a plausible range.
func ReleaseYearRules() []validation.Rule {
	return []validation.Rule{
		validation.Min(MinReleaseYear).Error("must be a plausible year"),
		validation.Max(MaxReleaseYear()).Error("must be a plausible year"),
	}
}

// ValidateName checks a simple entity name (genre, publisher, language, series, format).
func ValidateName(name string) error {
	return AsValidationError(validation.Errors{
		"name": validation.Validate(strings.TrimSpace(name),
			validation.Required,
			validation.RuneLength(1, MaxNameLength),
		),
	}.Filter())
}

// Validate checks the author name tuple: parts are bounded and at least one is set.
func (p NameParts) Validate() error {
	p = p.Trimmed()
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Prefix, validation.RuneLength(0, MaxAffixLength)),
		validation.Field(&p.First, validation.RuneLength(0, MaxNameLength)),
		validation.Field(&p.Middle, validation.RuneLength(0, MaxNameLength)),
		validation.Field(&p.Last, validation.RuneLength(0, MaxNameLength)),
		validation.Field(&p.Suffix, validation.RuneLength(0, MaxAffixLength)),
	)
	if err != nil {
		return AsValidationError(err)
	}
	if p.DisplayName() == "" {
		return &ValidationError{Fields: validation.Errors{"name": errors.New("author must have at least one name part")}}
	}
	return nil
}
