package models

import "time"

type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;uniqueIndex;not null" json:"name"`
}

// User is an account. The password hash is never serialised.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:191;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	RoleID       *uint     `gorm:"index" json:"role_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserProfile is a user joined with its role name.
type UserProfile struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      *string   `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserCredentials is what login needs to check a password.
type UserCredentials struct {
	ID           uint
	Name         string
	Email        string
	PasswordHash string
	Role         *string
}
