package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <database> <sql> [params...]",
	Short: "Run one statement and print its result",
	Long: `Runs a single statement, prints its result and commits.
Parameters fill the statement's ? placeholders in order and are bound as text.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) (err error) {
	s, err := openSession(args[0])
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()

	params := make([]any, 0, len(args)-2)
	for _, p := range args[2:] {
		params = append(params, p)
	}
	cur, err := s.conn.ExecuteContext(cmd.Context(), args[1], params...)
	if err != nil {
		return err
	}
	return printResult(cmd.Context(), cmd.OutOrStdout(), cur)
}
