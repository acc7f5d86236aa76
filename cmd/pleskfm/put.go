package main

import (
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pleskutil/pleskfm/clientcli"
)

var putCmd = &cobra.Command{
	Use:   "put <filename> <destination>",
	Short: "Upload a local file",
	Long: `Upload a local file into the named remote directory, keeping its
local name.

Example:
  pleskfm put ./index.html httpdocs`,
	Args: cobra.ExactArgs(2),
	RunE: runPut,
}

func runPut(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	remote := path.Join(args[1], filepath.Base(args[0]))
	result, err := client.Put(cmd.Context(), clientcli.PutOptions{
		LocalPath:  args[0],
		RemotePath: remote,
	})
	if err != nil {
		return err
	}

	return getFormatter().FormatTransfer(os.Stdout, result, "uploaded")
}
