package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/churchcafe/app/models"
	"github.com/shashiranjanraj/churchcafe/app/repositories"
	"github.com/shashiranjanraj/churchcafe/database/migrations"
	"github.com/shashiranjanraj/churchcafe/pkg/apperr"
	"github.com/shashiranjanraj/churchcafe/pkg/auth"
	"github.com/shashiranjanraj/churchcafe/pkg/testkit"
)

func TestUserAdministration(t *testing.T) {
	db := testkit.NewDB(t, migrations.ItemSchema)
	svc := NewUserService(repositories.NewUserRepository(db))
	ctx := context.Background()

	created, err := svc.Create(ctx, "Maria", "maria@parish.org", "pw", auth.RolePersonal)
	require.NoError(t, err)
	require.NotNil(t, created.Role)
	assert.Equal(t, auth.RolePersonal, *created.Role)

	_, err = svc.Create(ctx, "Maria 2", "maria@parish.org", "pw", "")
	status, msg := apperr.Public(err)
	assert.Equal(t, 409, status)
	assert.Equal(t, "Email already exists", msg)

	plain, err := svc.Create(ctx, "Joe", "joe@parish.org", "pw", "")
	require.NoError(t, err)
	assert.Nil(t, plain.Role)

	require.NoError(t, svc.Update(ctx, plain.ID, "Joseph", auth.RoleAdmin))
	profile, err := svc.Profile(ctx, plain.ID)
	require.NoError(t, err)
	assert.Equal(t, "Joseph", profile.Name)
	require.NotNil(t, profile.Role)
	assert.Equal(t, auth.RoleAdmin, *profile.Role)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.Delete(ctx, plain.ID))
	_, err = svc.Profile(ctx, plain.ID)
	status, msg = apperr.Public(err)
	assert.Equal(t, 404, status)
	assert.Equal(t, "User not found", msg)
}

func TestUpdateSelf(t *testing.T) {
	db := testkit.NewDB(t, migrations.ItemSchema)
	u := testkit.CreateUser(t, db, "Ana", "ana@parish.org", testkit.ParishionerRoleID)
	svc := NewUserService(repositories.NewUserRepository(db))
	ctx := context.Background()

	err := svc.UpdateSelf(ctx, u.ID, "  ", "")
	_, msg := apperr.Public(err)
	assert.Equal(t, "Nothing to update", msg)

	require.NoError(t, svc.UpdateSelf(ctx, u.ID, "Ana Maria", "n3w-pass"))

	var stored models.User
	require.NoError(t, db.First(&stored, u.ID).Error)
	assert.Equal(t, "Ana Maria", stored.Name)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "n3w-pass"))
	require.NotNil(t, stored.RoleID)
	assert.Equal(t, testkit.ParishionerRoleID, *stored.RoleID)
}
