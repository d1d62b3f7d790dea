package seeders

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shashiranjanraj/churchcafe/app/models"
	"github.com/shashiranjanraj/churchcafe/config"
	"github.com/shashiranjanraj/churchcafe/pkg/auth"
)

func init() {
	Register("roles", SeedRoles)
	Register("admin_user", SeedAdmin)
}

// SeedRoles inserts the three roles, skipping any that exist.
func SeedRoles(_ context.Context, db *gorm.DB) error {
	roles := []models.Role{{Name: auth.RoleAdmin}, {Name: auth.RolePersonal}, {Name: auth.RoleParishioner}}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error
}

// SeedAdmin creates the ADMIN_EMAIL account with the admin role when it does
// not exist yet. Without ADMIN_PASSWORD nothing is created.
func SeedAdmin(_ context.Context, db *gorm.DB) error {
	email := config.Get("ADMIN_EMAIL", "admin@churchcafe.local")
	password := config.Get("ADMIN_PASSWORD", "")
	if password == "" {
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var role models.Role
	if err := db.Where("name = ?", auth.RoleAdmin).First(&role).Error; err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return db.Create(&models.User{
		Name:         config.Get("ADMIN_NAME", "Administrator"),
		Email:        email,
		PasswordHash: hash,
		RoleID:       &role.ID,
	}).Error
}
