package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/librium/internal/backup"
	"github.com/mrlokans/librium/internal/database/lookup"
	"github.com/mrlokans/librium/internal/entities"
	"github.com/mrlokans/librium/internal/query"
	"github.com/mrlokans/librium/internal/services"
)

// BookStore is the book lifecycle used by BooksController.
type BookStore interface {
	Create(ctx context.Context, req services.NewBookRequest) (*entities.Book, error)
	Get(ctx context.Context, id uint) (*entities.Book, error)
	GetByUUID(ctx context.Context, uuid string) (*entities.Book, error)
	Delete(ctx context.Context, id uint) error
	All(ctx context.Context) ([]entities.Book, error)
}

// BookReconciler rewrites a book to match a desired state.
type BookReconciler interface {
	Reconcile(ctx context.Context, bookID uint, state services.DesiredState) (*entities.Book, error)
}

// CatalogStore creates and maintains the referenced entities.
type CatalogStore interface {
	Resolve(ctx context.Context, kind lookup.Kind, name string) (*services.Named, error)
	Create(ctx context.Context, kind lookup.Kind, name string) (*services.Named, error)
	ResolveAuthor(ctx context.Context, parts entities.NameParts) (*entities.Author, error)
	Rename(ctx context.Context, kind lookup.Kind, id uint, name string) error
	Delete(ctx context.Context, kind lookup.Kind, id uint) error
	Formats(ctx context.Context) ([]entities.Format, error)
}

// Browser is the read side: paginated views and the per-entity book lists.
type Browser interface {
	Books(ctx context.Context, p query.Params) (*query.Page[entities.Book], error)
	Authors(ctx context.Context, p query.Params) (*query.Page[entities.Author], error)
	Genres(ctx context.Context, p query.Params) (*query.Page[entities.Genre], error)
	Publishers(ctx context.Context, p query.Params) (*query.Page[entities.Publisher], error)
	Languages(ctx context.Context, p query.Params) (*query.Page[entities.Language], error)
	Series(ctx context.Context, p query.Params) (*query.Page[entities.Series], error)
	Years(ctx context.Context, p query.Params) (*query.Page[query.YearGroup], error)
	BooksInSeries(ctx context.Context, seriesID uint, read *bool) ([]query.SeriesEntry, error)
	BooksInGenre(ctx context.Context, genreID uint, read *bool) ([]entities.Book, error)
	BooksByAuthor(ctx context.Context, authorID uint, read *bool) ([]entities.Book, error)
	BooksInYear(ctx context.Context, year int, read *bool) ([]entities.Book, error)
}

// BackupManager creates, lists and restores database snapshots.
type BackupManager interface {
	Create(ctx context.Context, name string) (*backup.Snapshot, error)
	Restore(ctx context.Context, name string) error
	List() ([]backup.Snapshot, error)
}

// TaskQueue enqueues background work. Nil when the task queue is disabled.
type TaskQueue interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}
