package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomyedwab/sqlite-dbapi/dbapi"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dbapi %s\n", dbapi.VersionString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
