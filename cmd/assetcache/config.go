package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/assetcache/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective cache configuration",
	Long: `Print the cache configuration that would be used, in config file format.

Without --config or --game the compiled defaults are shown.

Examples:
  assetcache config
  assetcache config --game bg2 -d /games/bg2`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	cfg := config.Default()
	if path := configPath(); path != "" {
		cfg, err = config.Load(path, logger)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		fmt.Printf("# %s\n", path)
	}
	fmt.Print(cfg.String())
	return nil
}
