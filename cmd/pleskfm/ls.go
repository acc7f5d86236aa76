package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pleskutil/pleskfm/clientcli"
)

var (
	lsRecurse      bool
	lsIgnoreErrors bool
)

var lsCmd = &cobra.Command{
	Use:   "ls [--recurse] [dirname]",
	Short: "List a remote directory",
	Long: `List a remote directory in long format.

Examples:
  pleskfm ls /
  pleskfm ls --recurse httpdocs`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

func init() {
	lsCmd.Flags().BoolVarP(&lsRecurse, "recurse", "r", false, "list subdirectories recursively")
	lsCmd.Flags().BoolVar(&lsIgnoreErrors, "ignore-errors", false, "report unreadable directories and keep going")
}

func runLs(cmd *cobra.Command, args []string) error {
	dir := "/"
	if len(args) > 0 {
		dir = args[0]
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	listings, err := client.Ls(cmd.Context(), clientcli.LsOptions{
		Dir:          dir,
		Recurse:      lsRecurse,
		IgnoreErrors: lsIgnoreErrors,
	})
	if err != nil {
		return err
	}

	if err := getFormatter().FormatListings(os.Stdout, listings); err != nil {
		return err
	}
	if clientcli.HasListingErrors(listings) {
		return errReported
	}
	return nil
}
