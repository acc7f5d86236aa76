package main

import (
	"os"

	"github.com/spf13/cobra"
)

var teeCmd = &cobra.Command{
	Use:   "tee <filename>",
	Short: "Write standard input to a remote file, echoing it",
	Long: `Read standard input, store it as the named remote file and echo it to
standard output, like the Unix tee.

Example:
  echo hello | pleskfm tee greeting.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runTee,
}

func runTee(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	_, err = client.Tee(cmd.Context(), args[0], os.Stdin, os.Stdout)
	return err
}
