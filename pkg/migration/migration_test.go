package migration_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/churchcafe/pkg/database"
	"github.com/shashiranjanraj/churchcafe/pkg/migration"
)

type table struct{ name string }

func (m table) Up(db *gorm.DB) error {
	return db.Exec("CREATE TABLE " + m.name + " (id INTEGER PRIMARY KEY)").Error
}

func (m table) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(m.name)
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestRunRollbackStatus(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	var out bytes.Buffer

	first := []migration.Entry{
		{Name: "002_orders", Migration: table{"orders"}},
		{Name: "001_roles", Migration: table{"roles"}},
	}
	require.NoError(t, migration.NewWith(db, &out, first).Run(ctx))
	assert.True(t, db.Migrator().HasTable("roles"))
	assert.True(t, db.Migrator().HasTable("orders"))
	assert.Less(t, bytes.Index(out.Bytes(), []byte("001_roles")), bytes.Index(out.Bytes(), []byte("002_orders")))

	all := append(first, migration.Entry{Name: "003_items", Migration: table{"items"}})
	r := migration.NewWith(db, &out, all)
	require.NoError(t, r.Run(ctx))

	status, err := r.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, []migration.Status{
		{Name: "001_roles", Ran: true, Batch: 1},
		{Name: "002_orders", Ran: true, Batch: 1},
		{Name: "003_items", Ran: true, Batch: 2},
	}, status)

	require.NoError(t, r.Rollback(ctx))
	assert.False(t, db.Migrator().HasTable("items"))
	assert.True(t, db.Migrator().HasTable("orders"))

	status, err = r.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status[2].Ran)

	out.Reset()
	require.NoError(t, r.Rollback(ctx))
	require.NoError(t, r.Rollback(ctx))
	assert.Contains(t, out.String(), "Nothing to roll back.")
	assert.False(t, db.Migrator().HasTable("roles"))
}

func TestRunWithoutMigrations(t *testing.T) {
	err := migration.NewWith(openDB(t), nil, nil).Run(context.Background())
	assert.ErrorIs(t, err, migration.ErrNoMigrations)
}
