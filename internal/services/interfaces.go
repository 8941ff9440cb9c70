package services

import (
	"context"

	"gorm.io/gorm"
)

// Transactor hands out transaction handles. Every service call runs inside
// exactly one of them; *database.Database implements it.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	ReadTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
