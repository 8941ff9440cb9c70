// Package database owns the catalog's SQLite connection pool, schema
// migration and transaction boundaries.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup, pool, migrations, format seeding
//	├── lookup/          # Resolver: live lookups and get-or-create of referenced entities
//	└── books/           # Book aggregate rows and their association tables
//
// # Transactions
//
// Repositories take a *gorm.DB and never open transactions themselves. The
// caller picks the boundary:
//
//	err := db.WithTx(ctx, func(tx *gorm.DB) error {
//		resolver := lookup.NewResolver(tx)
//		repo := books.NewRepository(tx)
//		...
//	})
//
// Reads that need a consistent count and page use ReadTx. A restore copies a
// snapshot over the live database under Exclusive, which waits for every
// in-flight transaction.
package database
