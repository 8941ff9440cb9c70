package lookup

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mrlokans/librium/internal/entities"
)

// ErrUnknownKind is returned for kinds that have no simple name column.
var ErrUnknownKind = errors.New("unknown entity kind")

// NamedKinds lists the kinds identified by a single name.
var NamedKinds = []Kind{KindFormat, KindGenre, KindLanguage, KindPublisher, KindSeries}

// ParseKind maps a path segment such as "genres" or "genre" to its Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "author", "authors":
		return KindAuthor, true
	case "format", "formats":
		return KindFormat, true
	case "genre", "genres":
		return KindGenre, true
	case "language", "languages":
		return KindLanguage, true
	case "publisher", "publishers":
		return KindPublisher, true
	case "series":
		return KindSeries, true
	}
	return "", false
}

// Format returns the live format with this id.
func (r *Resolver) Format(id uint) (*entities.Format, error) {
	return liveByID[entities.Format](r.db, id)
}

// Genre returns the live genre with this id.
func (r *Resolver) Genre(id uint) (*entities.Genre, error) {
	return liveByID[entities.Genre](r.db, id)
}

// Publisher returns the live publisher with this id.
func (r *Resolver) Publisher(id uint) (*entities.Publisher, error) {
	return liveByID[entities.Publisher](r.db, id)
}

// Language returns the live language with this id.
func (r *Resolver) Language(id uint) (*entities.Language, error) {
	return liveByID[entities.Language](r.db, id)
}

// Series returns the live series with this id.
func (r *Resolver) Series(id uint) (*entities.Series, error) {
	return liveByID[entities.Series](r.db, id)
}

// Author returns the live author with this id.
func (r *Resolver) Author(id uint) (*entities.Author, error) {
	return liveByID[entities.Author](r.db, id)
}

// Formats lists the live formats by name.
func (r *Resolver) Formats() ([]entities.Format, error) {
	var formats []entities.Format
	err := r.db.Order("name").Find(&formats).Error
	return formats, err
}

// Create adds a new named entity. Unlike the GetOrCreate family it refuses a
// name that is already taken by a live row.
func (r *Resolver) Create(kind Kind, name string) (uint, error) {
	name = strings.TrimSpace(name)
	if err := entities.ValidateName(name); err != nil {
		return 0, err
	}
	if err := r.ensureNameFree(r.db, kind, name, 0); err != nil {
		return 0, err
	}
	switch kind {
	case KindGenre:
		g, err := r.GetOrCreateGenre(name)
		return idOf(g, err, func(g *entities.Genre) uint { return g.ID })
	case KindPublisher:
		p, err := r.GetOrCreatePublisher(name)
		return idOf(p, err, func(p *entities.Publisher) uint { return p.ID })
	case KindLanguage:
		l, err := r.GetOrCreateLanguage(name)
		return idOf(l, err, func(l *entities.Language) uint { return l.ID })
	case KindSeries:
		s, err := r.GetOrCreateSeries(name)
		return idOf(s, err, func(s *entities.Series) uint { return s.ID })
	case KindFormat:
		f, err := r.GetOrCreateFormat(name)
		return idOf(f, err, func(f *entities.Format) uint { return f.ID })
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

// Rename changes the name of a live named entity.
func (r *Resolver) Rename(kind Kind, id uint, name string) error {
	name = strings.TrimSpace(name)
	if err := entities.ValidateName(name); err != nil {
		return err
	}
	model, err := modelFor(kind)
	if err != nil {
		return err
	}
	// Deleted rows still hold their name in the unique indexes.
	if err := r.ensureNameFree(r.db.Unscoped(), kind, name, id); err != nil {
		return err
	}
	result := r.db.Model(model).Where("id = ?", id).Update("name", name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, entities.ErrNotFound)
	}
	return nil
}

// SoftDelete marks an entity deleted. Association rows pointing at it are kept.
func (r *Resolver) SoftDelete(kind Kind, id uint) error {
	var model interface{}
	if kind == KindAuthor {
		model = &entities.Author{}
	} else {
		m, err := modelFor(kind)
		if err != nil {
			return err
		}
		model = m
	}
	result := r.db.Delete(model, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, entities.ErrNotFound)
	}
	log.Info().Str("kind", string(kind)).Uint("id", id).Msg("Soft-deleted entity")
	return nil
}

func (r *Resolver) ensureNameFree(db *gorm.DB, kind Kind, name string, exceptID uint) error {
	model, err := modelFor(kind)
	if err != nil {
		return err
	}
	var count int64
	if err := db.Model(model).Where("name = ? AND id <> ?", name, exceptID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &entities.ValidationError{Fields: validation.Errors{
			"name": fmt.Errorf("%s %q already exists", kind, name),
		}}
	}
	return nil
}

func modelFor(kind Kind) (interface{}, error) {
	switch kind {
	case KindFormat:
		return &entities.Format{}, nil
	case KindGenre:
		return &entities.Genre{}, nil
	case KindLanguage:
		return &entities.Language{}, nil
	case KindPublisher:
		return &entities.Publisher{}, nil
	case KindSeries:
		return &entities.Series{}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

func liveByID[T any](db *gorm.DB, id uint) (*T, error) {
	var v T
	err := db.First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func idOf[T any](v *T, err error, id func(*T) uint) (uint, error) {
	if err != nil {
		return 0, err
	}
	return id(v), nil
}
