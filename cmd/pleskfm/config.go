package main

import (
	"log/slog"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// initConfig binds the persistent flags and the PLESK_* environment to
// viper; a bound flag only wins over the environment when it was
// actually set on the command line.
func initConfig(fs *pflag.FlagSet) {
	if err := viper.BindPFlags(fs); err != nil {
		slog.Warn("failed to bind flags", "err", err)
	}

	viper.SetEnvPrefix("PLESK")
	viper.AutomaticEnv()

	// These two do not follow the prefix naming.
	_ = viper.BindEnv("pleskrc", "PLESK_RC")
	_ = viper.BindEnv("site", "PLESK_SITE")
}
