// Command dbapi runs SQL against SQLite databases through the dbapi client
// interface, either one statement at a time or in an interactive shell.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
