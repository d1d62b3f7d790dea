package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/churchcafe/config"
	"github.com/shashiranjanraj/churchcafe/internal/kernel"
	"github.com/shashiranjanraj/churchcafe/internal/server"
	"github.com/shashiranjanraj/churchcafe/pkg/auth"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := kernel.Boot(cmd.Context())
		if err != nil {
			return err
		}
		defer k.Shutdown()

		return server.Start(cmd.Context(), ":"+config.AppPort(), k.Handler(), k.Hub.Close)
	},
}

var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		k := kernel.New(kernel.Options{Signer: auth.DefaultSigner()})
		defer k.Shutdown()

		infos := k.Router().Routes()
		if len(infos) == 0 {
			fmt.Println("No named routes registered.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
