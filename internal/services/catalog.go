package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/librium/internal/database/lookup"
	"github.com/mrlokans/librium/internal/entities"
)

// CatalogService is the add-entity flow: the only path that creates
// referenced entities from raw names.
type CatalogService struct {
	db Transactor
}

func NewCatalogService(db Transactor) *CatalogService {
	return &CatalogService{db: db}
}

// Named is the id and name of a created or resolved simple entity.
type Named struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Resolve returns the live entity of kind with this exact name, creating it
// when absent.
func (s *CatalogService) Resolve(ctx context.Context, kind lookup.Kind, name string) (*Named, error) {
	var out *Named
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		r := lookup.NewResolver(tx)
		switch kind {
		case lookup.KindGenre:
			v, err := r.GetOrCreateGenre(name)
			if err != nil {
				return err
			}
			out = &Named{ID: v.ID, Name: v.Name}
		case lookup.KindPublisher:
			v, err := r.GetOrCreatePublisher(name)
			if err != nil {
				return err
			}
			out = &Named{ID: v.ID, Name: v.Name}
		case lookup.KindLanguage:
			v, err := r.GetOrCreateLanguage(name)
			if err != nil {
				return err
			}
			out = &Named{ID: v.ID, Name: v.Name}
		case lookup.KindSeries:
			v, err := r.GetOrCreateSeries(name)
			if err != nil {
				return err
			}
			out = &Named{ID: v.ID, Name: v.Name}
		case lookup.KindFormat:
			v, err := r.GetOrCreateFormat(name)
			if err != nil {
				return err
			}
			out = &Named{ID: v.ID, Name: v.Name}
		default:
			return lookup.ErrUnknownKind
		}
		return nil
	})
	return out, err
}

// Create adds a new simple entity, refusing a name already in use.
func (s *CatalogService) Create(ctx context.Context, kind lookup.Kind, name string) (*Named, error) {
	var out *Named
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		id, err := lookup.NewResolver(tx).Create(kind, name)
		if err != nil {
			return err
		}
		out = &Named{ID: id, Name: strings.TrimSpace(name)}
		return nil
	})
	return out, err
}

// ResolveAuthor returns the author matching every name part, creating it when absent.
func (s *CatalogService) ResolveAuthor(ctx context.Context, parts entities.NameParts) (*entities.Author, error) {
	var author *entities.Author
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		author, err = lookup.NewResolver(tx).GetOrCreateAuthor(parts)
		return err
	})
	return author, err
}

func (s *CatalogService) Rename(ctx context.Context, kind lookup.Kind, id uint, name string) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return lookup.NewResolver(tx).Rename(kind, id, name)
	})
}

func (s *CatalogService) Delete(ctx context.Context, kind lookup.Kind, id uint) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return lookup.NewResolver(tx).SoftDelete(kind, id)
	})
}

// Formats lists the live formats.
func (s *CatalogService) Formats(ctx context.Context) ([]entities.Format, error) {
	var formats []entities.Format
	err := s.db.ReadTx(ctx, func(tx *gorm.DB) error {
		var err error
		formats, err = lookup.NewResolver(tx).Formats()
		return err
	})
	return formats, err
}
