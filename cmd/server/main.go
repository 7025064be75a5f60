package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "astro-api",
		Short: "Astrology consultation API server",
		RunE:  runServe,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "optional config file (yaml, json or env)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create tables and indexes for the configured store, then exit",
			RunE:  runMigrate,
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
