package main

import (
	"fmt"

	"github.com/Sternrassler/nasa-explorer-client/pkg/config"
	"github.com/Sternrassler/nasa-explorer-client/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli holds the state shared by all commands of one invocation.
type cli struct {
	v   *viper.Viper
	app *app
}

func newRootCmd(version, commit, date string) *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "nasa-explorer",
		Short: "Explore NASA public data through the explorer backend",
		Long: `nasa-explorer queries the NASA explorer backend: Astronomy Picture of the
Day, Mars rover photos, near-earth objects, the image library, EPIC, news
and stats. Results are cached per query and repeated lookups are served
from the cache.

Example:
  nasa-explorer neo --start-date 2024-01-01 --end-date 2024-01-07`,
		Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Close()
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.String(config.KeyAPIURL, "", "explorer backend URL (default: http://localhost:5000)")
	flags.String(config.KeyMode, "", "development or production (default: development)")
	flags.String(config.KeyLogLevel, "", "log level: debug, info, warn, error")
	flags.Bool(config.KeyPretty, false, "human-readable logs")
	flags.String(config.KeyRedisURL, "", "redis URL for the shared query cache and quota state")
	flags.Duration(config.KeyTimeout, 0, "request timeout (default: 30s)")

	// Bind flags to viper
	for _, key := range []string{config.KeyAPIURL, config.KeyMode, config.KeyLogLevel, config.KeyPretty, config.KeyRedisURL, config.KeyTimeout} {
		c.v.BindPFlag(key, flags.Lookup(key))
	}

	rootCmd.AddCommand(
		c.apodCmd(),
		c.marsCmd(),
		c.roversCmd(),
		c.neoCmd(),
		c.searchCmd(),
		c.epicCmd(),
		c.statsCmd(),
		c.newsCmd(),
		c.healthCmd(),
		c.serveCmd(),
	)

	return rootCmd
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.Load(c.v)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := cfg.Logging()
	logCfg.Output = cmd.ErrOrStderr()
	logging.Setup(logCfg)

	c.app, err = newApp(cmd.Context(), cfg)
	return err
}
