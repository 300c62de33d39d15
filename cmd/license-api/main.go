package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coder4567/nwf-provider-license-api-1/internal/config"
)

// version is stamped by the build with -X main.version
var version = config.AppVersion

var rootCmd = &cobra.Command{
	Use:           "license-api <command>",
	Short:         "Provider-side license lookaside and issuer proxy",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", config.AppName, version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
