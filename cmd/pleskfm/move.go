package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pleskutil/pleskfm/clientcli"
)

var (
	moveDir string
	copyDir string
)

var mvCmd = &cobra.Command{
	Use:   "mv [-C dirname] <files ...> <destination>",
	Short: "Move remote files",
	Long: `Move remote files with Unix mv semantics: into the destination when
it is an existing directory, or a rename when it is a new name for a
single source. -C rebases relative sources under the named directory.

Examples:
  pleskfm mv old.txt new.txt
  pleskfm mv -C httpdocs a.html b.html archive/`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMv,
}

var cpCmd = &cobra.Command{
	Use:   "cp [-C dirname] <files ...> <destination>",
	Short: "Copy remote files",
	Long: `Copy remote files with Unix cp semantics: into the destination when
it is an existing directory, or to a new name for a single source. -C
rebases relative sources under the named directory.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCp,
}

func init() {
	mvCmd.Flags().StringVarP(&moveDir, "dirname", "C", "", "directory to resolve relative sources against")
	cpCmd.Flags().StringVarP(&copyDir, "dirname", "C", "", "directory to resolve relative sources against")
}

func runMv(cmd *cobra.Command, args []string) error {
	return runRelocate(cmd, args, moveDir, true)
}

func runCp(cmd *cobra.Command, args []string) error {
	return runRelocate(cmd, args, copyDir, false)
}

func runRelocate(cmd *cobra.Command, args []string, dir string, move bool) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.MoveOptions{
		Dir:     dir,
		Sources: args[:len(args)-1],
		Dest:    args[len(args)-1],
	}

	var results []clientcli.MoveResult
	verb := "copied"
	if move {
		verb = "moved"
		results, err = client.Move(cmd.Context(), opts)
	} else {
		results, err = client.Copy(cmd.Context(), opts)
	}
	if err != nil {
		return err
	}

	if err := getFormatter().FormatRelocate(os.Stdout, results, verb); err != nil {
		return err
	}
	if clientcli.HasMoveErrors(results) {
		return errReported
	}
	return nil
}
