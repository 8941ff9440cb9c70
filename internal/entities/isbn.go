package entities

import (
	"strings"

	"github.com/asaskevich/govalidator"
)

// NormalizeISBN strips hyphens and spaces.
func NormalizeISBN(isbn string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(isbn)
}

// ValidISBN reports whether isbn is a 13-digit ISBN with a correct check digit.
// Hyphens and spaces are ignored. An empty value is valid since ISBN is optional.
func ValidISBN(isbn string) bool {
	isbn = NormalizeISBN(isbn)
	if isbn == "" {
		return true
	}
	return govalidator.IsISBN13(isbn)
}
