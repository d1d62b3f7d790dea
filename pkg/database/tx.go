package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/churchcafe/pkg/logger"
)

// WithTransaction runs fn inside a transaction. It commits when fn returns
// nil. On an error or a panic it rolls back and returns the original error
// (or re-panics); a failed rollback is logged, never returned. gorm hands
// the connection back to the pool on commit and on rollback.
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) (err error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("database: begin: %w", tx.Error)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback().Error; rbErr != nil {
			logger.WithCtx(ctx).Error("database: rollback failed", "error", rbErr)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit().Error; err != nil {
		return fmt.Errorf("database: commit: %w", err)
	}
	committed = true
	return nil
}
