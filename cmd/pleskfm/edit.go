package main

import (
	"os"

	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <filename> <contents>",
	Short: "Replace a remote file's content",
	Long: `Replace the content of a remote file with the literal argument.

Example:
  pleskfm edit .htaccess "Deny from all"`,
	Args: cobra.ExactArgs(2),
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.Edit(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	return getFormatter().FormatMessage(os.Stdout, "edited "+args[0])
}
