package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "foxbridge",
	Short:         "Serve Apifox shared docs as YApi interface records",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "Apifox share token (overrides FOXBRIDGE_TOKEN)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "foxbridge: %v\n", err)
		os.Exit(1)
	}
}
