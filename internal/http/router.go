package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/librium/internal/database/lookup"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
type RouterConfig struct {
	Database   Pinger
	Books      BookStore
	Reconciler BookReconciler
	Catalog    CatalogStore
	Browser    Browser
	Backups    BackupManager

	// TaskQueue is optional; backups run inline without it.
	TaskQueue TaskQueue

	Version string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)

	api := router.Group("/api")

	browse := NewBrowseController(cfg.Browser)
	api.GET("/books", browse.Books())
	api.GET("/authors", browse.Authors())
	api.GET("/genres", browse.Genres())
	api.GET("/publishers", browse.Publishers())
	api.GET("/languages", browse.Languages())
	api.GET("/series", browse.Series())
	api.GET("/years", browse.Years())
	api.GET("/series/:id/books", browse.BooksInSeries)
	api.GET("/genres/:id/books", browse.BooksInGenre)
	api.GET("/authors/:id/books", browse.BooksByAuthor)
	api.GET("/years/:year/books", browse.BooksInYear)

	books := NewBooksController(cfg.Books, cfg.Reconciler)
	api.POST("/books", books.CreateBook)
	api.GET("/books/:id", books.GetBook)
	api.PUT("/books/:id", books.UpdateBook)
	api.DELETE("/books/:id", books.DeleteBook)

	catalog := NewCatalogController(cfg.Catalog)
	api.GET("/formats", catalog.Formats)
	for _, kind := range lookup.NamedKinds {
		path := "/" + collectionPath(kind)
		api.POST(path, catalog.Create(kind))
		api.POST(path+"/resolve", catalog.Resolve(kind))
		api.PUT(path+"/:id", catalog.Rename(kind))
		api.DELETE(path+"/:id", catalog.Delete(kind))
	}
	api.POST("/authors", catalog.ResolveAuthor)
	api.DELETE("/authors/:id", catalog.Delete(lookup.KindAuthor))

	export := NewExportController(cfg.Books)
	api.GET("/export", export.Export)

	if cfg.Backups != nil {
		backups := NewBackupsController(cfg.Backups, cfg.TaskQueue)
		api.GET("/backups", backups.List)
		api.POST("/backups", backups.Create)
		api.POST("/backups/:name/restore", backups.Restore)
		api.GET("/tasks/:id", backups.TaskStatus)
	}

	return router
}

// requestLogger logs one line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := log.Info()
		if c.Writer.Status() >= 500 {
			event = log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}
