package query

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrNotInMemory is returned by Filter for a spec that can only run in storage.
var ErrNotInMemory = errors.New("spec cannot be evaluated in memory")

// Spec is a named predicate over T. Scope translates it into a storage query;
// Match evaluates it against a loaded value. Match is nil for predicates that
// need data outside of T (for example "has a read book").
type Spec[T any] struct {
	Name  string
	Scope func(*gorm.DB) *gorm.DB
	Match func(T) bool
}

// All combines specs with AND.
func All[T any](specs ...Spec[T]) Spec[T] {
	names := make([]string, 0, len(specs))
	inMemory := true
	for _, s := range specs {
		names = append(names, s.Name)
		if s.Match == nil {
			inMemory = false
		}
	}

	combined := Spec[T]{
		Name: strings.Join(names, " and "),
		Scope: func(db *gorm.DB) *gorm.DB {
			for _, s := range specs {
				db = s.Scope(db)
			}
			return db
		},
	}
	if inMemory {
		combined.Match = func(v T) bool {
			for _, s := range specs {
				if !s.Match(v) {
					return false
				}
			}
			return true
		}
	}
	return combined
}

// Filter keeps the items that satisfy spec.
func Filter[T any](items []T, spec Spec[T]) ([]T, error) {
	if spec.Match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotInMemory, spec.Name)
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if spec.Match(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

type textMode int

const (
	contains textMode = iota
	startsWith
	endsWith
	equals
)

func (m textMode) String() string {
	switch m {
	case startsWith:
		return "starts with"
	case endsWith:
		return "ends with"
	case equals:
		return "equals"
	}
	return "contains"
}

// textSpec matches a text column case-insensitively, except equals which is exact.
func textSpec[T any](column string, mode textMode, needle string, get func(T) string) Spec[T] {
	spec := Spec[T]{Name: fmt.Sprintf("%s %s %q", column, mode, needle)}

	if mode == equals {
		spec.Scope = func(db *gorm.DB) *gorm.DB {
			return db.Where(column+" = ?", needle)
		}
		spec.Match = func(v T) bool {
			return get(v) == needle
		}
		return spec
	}

	pattern := escapeLike(needle)
	switch mode {
	case startsWith:
		pattern += "%"
	case endsWith:
		pattern = "%" + pattern
	default:
		pattern = "%" + pattern + "%"
	}
	spec.Scope = func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER("+column+") LIKE LOWER(?) ESCAPE '\\'", pattern)
	}

	lower := strings.ToLower(needle)
	spec.Match = func(v T) bool {
		s := strings.ToLower(get(v))
		switch mode {
		case startsWith:
			return strings.HasPrefix(s, lower)
		case endsWith:
			return strings.HasSuffix(s, lower)
		}
		return strings.Contains(s, lower)
	}
	return spec
}

// existsSpec requires a live book linked through joinTable. When read is set
// the book must also have that read flag.
func existsSpec[T any](owner, joinTable, fkColumn string, read *bool) Spec[T] {
	cond := fmt.Sprintf(
		"EXISTS (SELECT 1 FROM %s j JOIN books b ON b.id = j.book_id WHERE j.%s = %s.id AND b.deleted_at IS NULL",
		joinTable, fkColumn, owner)
	name := "has a book"
	var args []interface{}
	if read != nil {
		cond += " AND b.read = ?"
		args = append(args, *read)
		name = fmt.Sprintf("has a book with read=%t", *read)
	}
	cond += ")"
	return Spec[T]{
		Name: name,
		Scope: func(db *gorm.DB) *gorm.DB {
			return db.Where(cond, args...)
		},
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
