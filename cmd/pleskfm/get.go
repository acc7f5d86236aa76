package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pleskutil/pleskfm/clientcli"
)

var getCmd = &cobra.Command{
	Use:   "get <filename> <destination>",
	Short: "Download a remote file",
	Long: `Download a remote file to a local path. A destination of "-" writes
the content to standard output; an existing local directory receives the
file under its remote name.

Examples:
  pleskfm get httpdocs/index.html ./index.html
  pleskfm get logs/access_log -`,
	Args: cobra.ExactArgs(2),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	result, rc, err := client.Get(cmd.Context(), clientcli.GetOptions{
		RemotePath: args[0],
		LocalPath:  args[1],
	})
	if err != nil {
		return err
	}

	if rc != nil {
		defer func() { _ = rc.Close() }()
		_, err = io.Copy(os.Stdout, rc)
		return err
	}

	return getFormatter().FormatTransfer(os.Stdout, result, "downloaded")
}
