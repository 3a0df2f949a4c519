package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcii/hunt/internal/store"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the database schema it writes",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version: %s, schema: v%d\n", app, version, store.SchemaVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
