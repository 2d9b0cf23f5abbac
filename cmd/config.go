package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-rushing-metrics/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or write the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	Long:  "Print the configuration after the file, environment and flag overrides are applied.",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return config.Encode(os.Stdout, cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to the config file",
	Long: `Write the current configuration (defaults plus any environment and flag
overrides) to --config, or ~/.rushmetrics/config.toml when unset.

Example:
  rushmetrics config init --carries-url ./carries.csv.zst`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing config file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path, err := writeConfig(configPath, cfg, configForce)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote %s\n", path)
	return nil
}

// errConfigExists is returned by writeConfig when the file is already there
// and force is not set.
var errConfigExists = errors.New("config file already exists, use --force to overwrite")

// writeConfig saves c to path (DefaultPath when empty) and returns the path
// written.
func writeConfig(path string, c *config.Config, force bool) (string, error) {
	if path == "" {
		path = config.DefaultPath()
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%s: %w", path, errConfigExists)
		}
	}
	if err := config.Save(path, c); err != nil {
		return path, fmt.Errorf("save config: %w", err)
	}
	return path, nil
}
