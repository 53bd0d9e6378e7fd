package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cqlwire",
		Short: "Inspect CQL native-protocol traffic",
		Long: `cqlwire decodes the binary wire protocol spoken between CQL clients
and Cassandra-compatible servers.

Commands:
  • dump   decode a captured server byte stream from a file or stdin
  • proxy  forward a live connection and decode server frames on the side
  • version`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		dumpCmd(),
		proxyCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
