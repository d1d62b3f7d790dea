package testkit

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/churchcafe/app/models"
	"github.com/shashiranjanraj/churchcafe/database/migrations"
	"github.com/shashiranjanraj/churchcafe/database/seeders"
	"github.com/shashiranjanraj/churchcafe/pkg/auth"
	"github.com/shashiranjanraj/churchcafe/pkg/database"
	"github.com/shashiranjanraj/churchcafe/pkg/migration"
)

// Role ids as created by seeders.SeedRoles on an empty database.
const (
	AdminRoleID       uint = 1
	PersonalRoleID    uint = 2
	ParishionerRoleID uint = 3
)

// NewDB returns a migrated, role-seeded in-memory SQLite database.
// orderItems picks the order_items shape: migrations.ItemSchema or
// migrations.ProductSchema.
func NewDB(t testing.TB, orderItems string) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	ctx := context.Background()
	require.NoError(t, migration.NewWith(db, io.Discard, migrations.All(orderItems)).Run(ctx))
	require.NoError(t, seeders.SeedRoles(ctx, db))
	return db
}

// CreateUser inserts a user with the given role id and returns it. The
// password is "secret".
func CreateUser(t testing.TB, db *gorm.DB, name, email string, roleID uint) models.User {
	t.Helper()

	hash, err := auth.HashPassword("secret")
	require.NoError(t, err)
	u := models.User{Name: name, Email: email, PasswordHash: hash, RoleID: &roleID}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// Signer returns a signer with a fixed test secret.
func Signer() *auth.Signer {
	return auth.NewSigner("testkit-secret", time.Hour)
}

// Token signs a token for u with role.
func Token(t testing.TB, s *auth.Signer, u models.User, role string) string {
	t.Helper()

	token, err := s.Sign(u.ID, u.Email, role)
	require.NoError(t, err)
	return token
}
