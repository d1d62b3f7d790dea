// Command churchcafe runs the cafe backend and its maintenance tasks.
//
//	churchcafe serve              # start the HTTP server
//	churchcafe migrate            # run pending migrations
//	churchcafe migrate:rollback   # roll back the last batch
//	churchcafe migrate:status
//	churchcafe seed               # roles and the first admin
//	churchcafe route:list
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/shashiranjanraj/churchcafe/database/migrations"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "churchcafe",
	Short:         "Church café order backend",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)
}
