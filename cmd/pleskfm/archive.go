package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pleskutil/pleskfm/clientcli"
)

var zipDir string

var zipCmd = &cobra.Command{
	Use:   "zip [-C dirname] <zipname> [files ...]",
	Short: "Create a zip archive on the panel",
	Long: `Ask the panel to archive the named files server-side; no bytes are
transferred locally. The archive is created inside the -C directory (or
the storage root) and the named files are resolved against it.

Examples:
  pleskfm zip backup.zip httpdocs logs
  pleskfm zip -C httpdocs assets.zip css js`,
	Args: cobra.MinimumNArgs(1),
	RunE: runZip,
}

var unzipCmd = &cobra.Command{
	Use:   "unzip <zipname>",
	Short: "Extract a zip archive on the panel",
	Long: `Ask the panel to unpack the named archive in place, server-side,
overwriting existing files.`,
	Args: cobra.ExactArgs(1),
	RunE: runUnzip,
}

func init() {
	zipCmd.Flags().StringVarP(&zipDir, "dirname", "C", "", "directory to create the archive in")
}

func runZip(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.Zip(cmd.Context(), clientcli.ZipOptions{
		Dir:     zipDir,
		ZipName: args[0],
		Files:   args[1:],
	}); err != nil {
		return err
	}

	name := strings.TrimSuffix(args[0], ".zip") + ".zip"
	return getFormatter().FormatMessage(os.Stdout, "created "+name)
}

func runUnzip(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.Unzip(cmd.Context(), args[0]); err != nil {
		return err
	}
	return getFormatter().FormatMessage(os.Stdout, "extracted "+args[0])
}
