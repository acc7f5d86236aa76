package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pleskutil/pleskfm/clientcli"
)

var duDir string

var duCmd = &cobra.Command{
	Use:   "du [-C dirname] [files ...]",
	Short: "Report remote sizes",
	Long: `Report the recursive size of each named target. Without targets,
every entry of the -C directory (or the storage root) is sized.

Examples:
  pleskfm du
  pleskfm du -C httpdocs css js index.html`,
	Args: cobra.ArbitraryArgs,
	RunE: runDu,
}

func init() {
	duCmd.Flags().StringVarP(&duDir, "dirname", "C", "", "directory to resolve targets against")
}

func runDu(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.Du(cmd.Context(), clientcli.DuOptions{Dir: duDir, Files: args})
	if err != nil {
		return err
	}

	if err := getFormatter().FormatDu(os.Stdout, result); err != nil {
		return err
	}
	if result.HasErrors() {
		return errReported
	}
	return nil
}
