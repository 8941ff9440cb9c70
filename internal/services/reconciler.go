package services

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mrlokans/librium/internal/database/books"
	"github.com/mrlokans/librium/internal/database/lookup"
	"github.com/mrlokans/librium/internal/entities"
)

// SeriesRef places the book in a series at a caller-chosen position.
type SeriesRef struct {
	SeriesID uint            `json:"series_id"`
	Position decimal.Decimal `json:"position"`
}

func (r SeriesRef) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Position, entities.NonNegativeDecimal),
	)
}

// Links is the desired association state of a book.
//
// Authors, Genres, Publishers and Languages distinguish nil (leave the current
// associations alone) from an empty slice (remove them all). Series is always
// rewritten in full.
type Links struct {
	Authors    []uint      `json:"authors"`
	Series     []SeriesRef `json:"series"`
	Genres     []uint      `json:"genres"`
	Publishers []uint      `json:"publishers"`
	Languages  []uint      `json:"languages"`
}

// DesiredState is everything a caller may change on an existing book.
type DesiredState struct {
	books.Update
	Links
}

// Validate checks every scalar field and series position before anything is
// written.
func (s DesiredState) Validate() error {
	fields := validation.Errors{}
	if err := s.Update.Validate(); err != nil {
		var verr *entities.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		for k, v := range verr.Fields {
			fields[k] = v
		}
	}
	fields["series"] = validation.Validate(s.Series)
	return entities.AsValidationError(fields.Filter())
}

// Reconciler rewrites a book's associations to match a desired state.
type Reconciler struct {
	db Transactor
}

func NewReconciler(db Transactor) *Reconciler {
	return &Reconciler{db: db}
}

// Reconcile applies state to the book inside one transaction and returns the
// reloaded book. On any error the book is left exactly as it was.
//
// Missing optional references (authors, series, genres, publishers,
// languages) are skipped with a warning. A missing format aborts with an
// *entities.InvalidReferenceError.
func (r *Reconciler) Reconcile(ctx context.Context, bookID uint, state DesiredState) (*entities.Book, error) {
	if err := state.Validate(); err != nil {
		return nil, err
	}

	var book *entities.Book
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := books.NewRepository(tx)
		exists, err := repo.Exists(bookID)
		if err != nil {
			return err
		}
		if !exists {
			return entities.ErrNotFound
		}

		if err := reconcile(tx, bookID, state); err != nil {
			return err
		}

		book, err = repo.GetByID(bookID)
		return err
	})
	if err != nil {
		logFailure(err, bookID)
		return nil, err
	}

	log.Info().Uint("book_id", bookID).Msg("Reconciled book")
	return book, nil
}

// reconcile runs the clear-and-rebuild steps against an open transaction.
func reconcile(tx *gorm.DB, bookID uint, state DesiredState) error {
	resolver := lookup.NewResolver(tx)
	repo := books.NewRepository(tx)

	if state.FormatID != nil {
		if _, err := resolver.Format(*state.FormatID); err != nil {
			if errors.Is(err, entities.ErrNotFound) {
				return &entities.InvalidReferenceError{Field: "format", ID: *state.FormatID}
			}
			return err
		}
	}

	if state.Genres != nil {
		genres, err := resolveAll(bookID, lookup.KindGenre, state.Genres, resolver.Genre)
		if err != nil {
			return err
		}
		if err := repo.ReplaceGenres(bookID, genres); err != nil {
			return err
		}
	}
	if state.Publishers != nil {
		publishers, err := resolveAll(bookID, lookup.KindPublisher, state.Publishers, resolver.Publisher)
		if err != nil {
			return err
		}
		if err := repo.ReplacePublishers(bookID, publishers); err != nil {
			return err
		}
	}
	if state.Languages != nil {
		languages, err := resolveAll(bookID, lookup.KindLanguage, state.Languages, resolver.Language)
		if err != nil {
			return err
		}
		if err := repo.ReplaceLanguages(bookID, languages); err != nil {
			return err
		}
	}

	placements, err := resolvePlacements(bookID, state.Series, resolver)
	if err != nil {
		return err
	}
	if err := repo.ReplaceSeries(bookID, placements); err != nil {
		return err
	}

	if state.Authors != nil {
		authors, err := resolveAll(bookID, lookup.KindAuthor, state.Authors, resolver.Author)
		if err != nil {
			return err
		}
		ids := make([]uint, 0, len(authors))
		for _, a := range authors {
			ids = append(ids, a.ID)
		}
		if err := repo.ReplaceAuthors(bookID, ids); err != nil {
			return err
		}
	}

	return repo.ApplyUpdate(bookID, state.Update)
}

// resolveAll looks up ids in order, skipping missing and repeated ones.
func resolveAll[T any](bookID uint, kind lookup.Kind, ids []uint, get func(uint) (*T, error)) ([]T, error) {
	resolved := make([]T, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			log.Warn().Uint("book_id", bookID).Str("kind", string(kind)).Uint("id", id).Msg("Skipping duplicate reference")
			continue
		}
		seen[id] = struct{}{}

		v, err := get(id)
		if errors.Is(err, entities.ErrNotFound) {
			log.Warn().Uint("book_id", bookID).Str("kind", string(kind)).Uint("id", id).Msg("Skipping missing reference")
			continue
		}
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, *v)
	}
	return resolved, nil
}

func resolvePlacements(bookID uint, refs []SeriesRef, resolver *lookup.Resolver) ([]books.SeriesPlacement, error) {
	placements := make([]books.SeriesPlacement, 0, len(refs))
	type key struct {
		series   uint
		position string
	}
	seen := make(map[key]struct{}, len(refs))
	for _, ref := range refs {
		k := key{ref.SeriesID, ref.Position.String()}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		if _, err := resolver.Series(ref.SeriesID); err != nil {
			if errors.Is(err, entities.ErrNotFound) {
				log.Warn().Uint("book_id", bookID).Str("kind", string(lookup.KindSeries)).Uint("id", ref.SeriesID).Msg("Skipping missing reference")
				continue
			}
			return nil, err
		}
		placements = append(placements, books.SeriesPlacement{SeriesID: ref.SeriesID, Position: ref.Position})
	}
	return placements, nil
}

// logFailure logs storage errors. Caller-facing errors are returned silently.
func logFailure(err error, bookID uint) {
	switch {
	case errors.Is(err, entities.ErrValidation),
		errors.Is(err, entities.ErrInvalidReference),
		errors.Is(err, entities.ErrNotFound):
		return
	}
	log.Error().Err(err).Uint("book_id", bookID).Msg("Book transaction failed")
}
