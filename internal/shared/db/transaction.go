// Package db provides small database utilities shared by repositories.
package db

import (
	"context"

	"gorm.io/gorm"
)

// Transaction runs fn inside a database transaction. The soft-delete cascade
// walks several tables row by row; callers that need the walk to be
// all-or-nothing rebuild their stores on the tx handed to fn.
func Transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}
