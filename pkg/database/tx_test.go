package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type note struct {
	ID   uint `gorm:"primaryKey"`
	Body string
}

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&note{}))
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func count(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&note{}).Count(&n).Error)
	return n
}

func TestWithTransactionCommits(t *testing.T) {
	db := openMemory(t)

	err := WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
		return tx.Create(&note{Body: "kept"}).Error
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count(t, db))
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	db := openMemory(t)
	boom := errors.New("boom")

	err := WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
		require.NoError(t, tx.Create(&note{Body: "discarded"}).Error)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 0, count(t, db))
}

func TestWithTransactionRollsBackOnPanic(t *testing.T) {
	db := openMemory(t)

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
			tx.Create(&note{Body: "discarded"})
			panic("kaboom")
		})
	})
	assert.EqualValues(t, 0, count(t, db))
}

func TestWithTransactionReleasesConnection(t *testing.T) {
	db := openMemory(t)

	for i := 0; i < 5; i++ {
		_ = WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
			return errors.New("fail")
		})
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 0, sqlDB.Stats().InUse)
}

func TestBuildDialectorRejectsUnknownDriver(t *testing.T) {
	_, err := buildDialector("oracle", "x")
	assert.Error(t, err)
}
