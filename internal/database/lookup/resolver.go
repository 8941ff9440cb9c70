// Package lookup resolves catalog references to live entities and creates
// referenced entities on demand without ever duplicating them.
//
// A Resolver is bound to one *gorm.DB handle, normally the transaction of the
// surrounding unit of work:
//
//	err := db.WithTx(ctx, func(tx *gorm.DB) error {
//		genre, err := lookup.NewResolver(tx).GetOrCreateGenre("Fantasy")
//		...
//	})
package lookup

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mrlokans/librium/internal/entities"
)

// Kind names a resolvable entity type.
type Kind string

const (
	KindAuthor    Kind = "author"
	KindFormat    Kind = "format"
	KindGenre     Kind = "genre"
	KindLanguage  Kind = "language"
	KindPublisher Kind = "publisher"
	KindSeries    Kind = "series"
)

// Resolver handles lookups and get-or-create for referenced entities.
type Resolver struct {
	db *gorm.DB
}

// NewResolver creates a resolver bound to db.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// GetOrCreateGenre returns the live genre with this exact name, creating it if needed.
func (r *Resolver) GetOrCreateGenre(name string) (*entities.Genre, error) {
	return getOrCreateNamed(r.db, KindGenre, name, func(n string) *entities.Genre {
		return &entities.Genre{Name: n}
	})
}

// GetOrCreatePublisher returns the live publisher with this exact name, creating it if needed.
func (r *Resolver) GetOrCreatePublisher(name string) (*entities.Publisher, error) {
	return getOrCreateNamed(r.db, KindPublisher, name, func(n string) *entities.Publisher {
		return &entities.Publisher{Name: n}
	})
}

// GetOrCreateLanguage returns the live language with this exact name, creating it if needed.
func (r *Resolver) GetOrCreateLanguage(name string) (*entities.Language, error) {
	return getOrCreateNamed(r.db, KindLanguage, name, func(n string) *entities.Language {
		return &entities.Language{Name: n}
	})
}

// GetOrCreateSeries returns the live series with this exact name, creating it if needed.
func (r *Resolver) GetOrCreateSeries(name string) (*entities.Series, error) {
	return getOrCreateNamed(r.db, KindSeries, name, func(n string) *entities.Series {
		return &entities.Series{Name: n}
	})
}

// GetOrCreateFormat returns the live format with this exact name, creating it if needed.
func (r *Resolver) GetOrCreateFormat(name string) (*entities.Format, error) {
	return getOrCreateNamed(r.db, KindFormat, name, func(n string) *entities.Format {
		return &entities.Format{Name: n}
	})
}

// GetOrCreateAuthor matches on equality of every name part (never substring).
func (r *Resolver) GetOrCreateAuthor(parts entities.NameParts) (*entities.Author, error) {
	if err := parts.Validate(); err != nil {
		return nil, err
	}
	parts = parts.Trimmed()

	match := func(db *gorm.DB) *gorm.DB {
		return db.Where("prefix = ? AND first_name = ? AND middle_name = ? AND last_name = ? AND suffix = ?",
			parts.Prefix, parts.First, parts.Middle, parts.Last, parts.Suffix)
	}

	var author entities.Author
	err := match(r.db).First(&author).Error
	if err == nil {
		return &author, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	revived, err := revive[entities.Author](r.db, match)
	if err != nil {
		return nil, err
	}
	if revived {
		log.Info().Str("kind", string(KindAuthor)).Str("name", parts.DisplayName()).Msg("Restored soft-deleted entity")
		if err := match(r.db).First(&author).Error; err != nil {
			return nil, err
		}
		return &author, nil
	}

	created := entities.NewAuthor(parts)
	if err := r.db.Create(created).Error; err != nil {
		return nil, err
	}
	log.Info().Str("kind", string(KindAuthor)).Uint("id", created.ID).Str("name", created.Name).Msg("Created entity")
	return created, nil
}

// getOrCreateNamed implements exact-name get-or-create for the simple entities.
// A soft-deleted row with the same name is restored instead of duplicated.
func getOrCreateNamed[T any](db *gorm.DB, kind Kind, name string, build func(string) *T) (*T, error) {
	name = strings.TrimSpace(name)
	if err := entities.ValidateName(name); err != nil {
		return nil, err
	}

	match := func(db *gorm.DB) *gorm.DB {
		return db.Where("name = ?", name)
	}

	var found T
	err := match(db).First(&found).Error
	if err == nil {
		return &found, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	revived, err := revive[T](db, match)
	if err != nil {
		return nil, err
	}
	if revived {
		log.Info().Str("kind", string(kind)).Str("name", name).Msg("Restored soft-deleted entity")
		if err := match(db).First(&found).Error; err != nil {
			return nil, err
		}
		return &found, nil
	}

	created := build(name)
	if err := db.Create(created).Error; err != nil {
		return nil, err
	}
	log.Info().Str("kind", string(kind)).Str("name", name).Msg("Created entity")
	return created, nil
}

// revive clears the delete marker of the first soft-deleted row matching cond.
func revive[T any](db *gorm.DB, cond func(*gorm.DB) *gorm.DB) (bool, error) {
	var dead T
	err := cond(db.Unscoped()).Where("deleted_at IS NOT NULL").Order("id").First(&dead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := db.Unscoped().Model(&dead).Update("deleted_at", nil).Error; err != nil {
		return false, err
	}
	return true, nil
}
