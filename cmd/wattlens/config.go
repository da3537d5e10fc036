package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jgoulah/wattlens/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default tariff",
	Long: `Writes the default database path, log level, residential tariff and MQTT
topic settings to the config file so they can be edited.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := getConfigPath()
	if err := writeDefaultConfig(path, configForce); err != nil {
		return err
	}
	fmt.Printf("✓ Wrote default config to %s\n", path)
	return nil
}

// writeDefaultConfig saves config.Default to path, refusing to clobber an
// existing file unless force is set
func writeDefaultConfig(path string, force bool) error {
	if !force {
		_, err := os.Stat(path)
		if err == nil {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("checking config file: %w", err)
		}
	}

	if err := config.Save(path, config.Default()); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}
