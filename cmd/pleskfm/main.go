package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pleskutil/pleskfm/clientcli"
	"github.com/pleskutil/pleskfm/panel"
)

var (
	version = "dev"

	siteName   string
	rcPath     string
	baseURL    string
	username   string
	password   string
	insecure   bool
	timeout    time.Duration
	verbose    bool
	jsonOutput bool
	quiet      bool
)

// errReported signals a nonzero exit for per-target failures that the
// formatter already printed to the error stream.
var errReported = errors.New("some targets failed")

var rootCmd = &cobra.Command{
	Use:     "pleskfm",
	Version: version,
	Short:   "Unix-style file operations on a Plesk panel's file manager",
	Long: `pleskfm - Unix-style file operations on a Plesk panel's file manager

Runs the familiar filesystem commands (ls, cat, get, put, mv, cp, rm,
du, zip, ...) against a remote Plesk panel through its web interface.
Paths are resolved against the remote account's storage root.

Connection settings come from a site profile in ~/.pleskrc (see
'pleskfm configure'), PLESK_* environment variables, or flags; flags
take precedence over the environment, which takes precedence over the
profile.

Pipelines behave like their Unix equivalents:
  echo hello | pleskfm tee greeting.txt
  pleskfm cat greeting.txt | grep hello`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		// Reaching through cmd instead of the rootCmd variable keeps
		// this closure out of rootCmd's own initializer.
		initConfig(cmd.Root().PersistentFlags())
		setupLogging(viper.GetBool("verbose"))
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&siteName, "site", "c", "", "site profile to use (env: PLESK_SITE)")
	pf.StringVar(&rcPath, "pleskrc", "", "config file (default: ~/.pleskrc, env: PLESK_RC)")
	pf.StringVar(&baseURL, "baseurl", "", "panel base URL, e.g. https://example.com:8443 (env: PLESK_BASEURL)")
	pf.StringVarP(&username, "username", "u", "", "panel login name (env: PLESK_USERNAME)")
	pf.StringVarP(&password, "password", "p", "", "panel password (env: PLESK_PASSWORD)")
	pf.BoolVarP(&insecure, "insecure", "k", false, "skip TLS certificate verification (env: PLESK_INSECURE)")
	pf.DurationVar(&timeout, "timeout", 0, "HTTP request timeout (default 60s, env: PLESK_TIMEOUT)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&jsonOutput, "json", false, "output as JSON")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(teeCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(zipCmd)
	rootCmd.AddCommand(unzipCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(rmdirCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(emptyCmd)
	rootCmd.AddCommand(mvCmd)
	rootCmd.AddCommand(cpCmd)
	rootCmd.AddCommand(duCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, errReported):
		// Per-target failures were already printed by the formatter.
	case isUsageError(err):
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		if cmd == nil {
			cmd = rootCmd
		}
		_ = cmd.Usage()
	default:
		_ = getFormatter().FormatError(os.Stderr, err)
	}
	os.Exit(1)
}

// isUsageError reports whether err is a bad invocation (unknown
// subcommand, unknown flag, wrong argument count) rather than a runtime
// failure. These get the usage text; runtime failures do not.
func isUsageError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag") ||
		strings.Contains(msg, "arg(s)")
}

// buildConfig merges the site profile, environment and flags, in
// ascending precedence.
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	profile, err := loadProfile()
	if err != nil {
		return nil, err
	}
	if profile != nil {
		configs = append(configs, clientcli.ConfigFromProfile(profile))
	}

	// viper resolves flags over environment on its own.
	configs = append(configs, &clientcli.Config{
		BaseURL:  viper.GetString("baseurl"),
		Username: viper.GetString("username"),
		Password: viper.GetString("password"),
		Insecure: viper.GetBool("insecure"),
		Timeout:  viper.GetDuration("timeout"),
	})

	cfg := clientcli.MergeConfig(configs...)
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("no panel configured: run 'pleskfm configure add <name>', set PLESK_BASEURL, or pass --baseurl")
	}
	return cfg, nil
}

// loadProfile resolves the requested site profile. A missing config
// file is only an error when the user asked for it explicitly.
func loadProfile() (*clientcli.Profile, error) {
	explicit := viper.GetString("pleskrc")
	path := explicit
	if path == "" {
		path = clientcli.DefaultConfigPath()
	}
	if path == "" {
		return nil, nil
	}

	cfg, err := clientcli.LoadConfigFile(path)
	if err != nil {
		if explicit != "" {
			return nil, err
		}
		return nil, nil
	}

	site := viper.GetString("site")
	p, err := cfg.GetProfile(site)
	if err != nil {
		if site != "" {
			return nil, err
		}
		return nil, nil
	}
	return p, nil
}

// getConfigPath returns the profile file path for configure commands.
func getConfigPath() string {
	if p := viper.GetString("pleskrc"); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// getClient creates a client from the merged configuration.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}
	return clientcli.New(cfg, panel.WithLogger(slog.Default()))
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}
