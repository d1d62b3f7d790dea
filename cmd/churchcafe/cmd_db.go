package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/churchcafe/config"
	"github.com/shashiranjanraj/churchcafe/database/seeders"
	"github.com/shashiranjanraj/churchcafe/pkg/database"
	"github.com/shashiranjanraj/churchcafe/pkg/migration"
)

// withDB loads config, opens the database and closes it after fn.
func withDB(fn func(db *gorm.DB) error) error {
	if err := config.Load(); err != nil {
		return err
	}
	db, err := database.Connect()
	if err != nil {
		return err
	}
	defer database.Close(db)
	return fn(db)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			fmt.Printf("Running migrations (order_items: %s)…\n", config.OrderItemsSchema())
			return migration.New(db, os.Stdout).Run(cmd.Context())
		})
	},
}

var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			fmt.Println("Rolling back last batch…")
			return migration.New(db, os.Stdout).Rollback(cmd.Context())
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			return migration.New(db, os.Stdout).PrintStatus(cmd.Context())
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed roles and the initial admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *gorm.DB) error {
			fmt.Println("Running seeders…")
			return seeders.RunAll(cmd.Context(), db, os.Stdout)
		})
	},
}
