package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pleskutil/pleskfm/clientcli"
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <dirname>",
	Short: "Create a remote directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runMkdir,
}

var rmdirCmd = &cobra.Command{
	Use:   "rmdir <dirname>",
	Short: "Remove a remote directory and its contents",
	Args:  cobra.ExactArgs(1),
	RunE:  runRmdir,
}

var rmCmd = &cobra.Command{
	Use:   "rm [files ...]",
	Short: "Remove remote files",
	Long: `Remove the named remote files. Each target is removed individually;
a failing target is reported and the rest are still attempted.`,
	Args: cobra.ArbitraryArgs,
	RunE: runRm,
}

var emptyCmd = &cobra.Command{
	Use:   "empty <filename>",
	Short: "Create an empty remote file, truncating an existing one",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmpty,
}

func runMkdir(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.Mkdir(cmd.Context(), args[0]); err != nil {
		return err
	}
	return getFormatter().FormatMessage(os.Stdout, "created "+args[0])
}

func runRmdir(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.Rmdir(cmd.Context(), args[0]); err != nil {
		return err
	}
	return getFormatter().FormatMessage(os.Stdout, "removed "+args[0])
}

func runRm(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Rm(cmd.Context(), args...)
	if err != nil {
		return err
	}

	if err := getFormatter().FormatRemove(os.Stdout, results); err != nil {
		return err
	}
	if clientcli.HasRemoveErrors(results) {
		return errReported
	}
	return nil
}

func runEmpty(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.Empty(cmd.Context(), args[0]); err != nil {
		return err
	}
	return getFormatter().FormatMessage(os.Stdout, "emptied "+args[0])
}
