package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/roboplan/internal/config"
	"github.com/danieljhkim/roboplan/internal/fsops"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the roboplan configuration",
	Long: `Configuration is read from ~/.roboplan/config.yaml (or $ROBOPLAN_ROOT/config.yaml),
then overridden by a .env file in the current directory and the environment:

  GEMINI_API_KEY / GOOGLE_API_KEY   Gemini API key (never written to config.yaml)
  ROBOPLAN_PERCEPTION               gemini | offline
  ROBOPLAN_MODEL                    Gemini model name
  ROBOPLAN_ROOT                     data directory`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(map[string]any{
				"path":        paths.Config,
				"provider":    cfg.Perception.Provider,
				"model":       cfg.Perception.Model,
				"apiKeySet":   cfg.Perception.APIKey != "",
				"timeout":     cfg.Perception.Timeout.String(),
				"cacheSize":   cfg.Perception.CacheSize,
				"rotateAngle": cfg.Planner.RotateAngle,
				"plansDir":    paths.Plans,
			})
		}

		PrintSection("Configuration")
		PrintLabelValue("Config file", paths.Config)
		PrintLabelValue("Plans", paths.Plans)
		PrintLabelValue("Provider", cfg.Perception.Provider)
		PrintLabelValue("Model", cfg.Perception.Model)
		if cfg.Perception.APIKey != "" {
			PrintLabelValueWithColor("API key", "set", successColor)
		} else {
			PrintLabelValueWithColor("API key", "not set", warningColor)
		}
		PrintLabelValue("Timeout", cfg.Perception.Timeout.String())
		PrintLabelValue("Scene cache", strconv.Itoa(cfg.Perception.CacheSize))
		PrintLabelValue("Rotate angle", strconv.FormatFloat(cfg.Planner.RotateAngle, 'g', -1, 64))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := config.DefaultPaths()
		if err != nil {
			return fmt.Errorf("failed to get config paths: %w", err)
		}
		if err := paths.EnsureDirectories(); err != nil {
			return fmt.Errorf("failed to ensure directories: %w", err)
		}

		fs := fsops.NewRealFS()
		exists, err := fs.Exists(paths.Config)
		if err != nil {
			return err
		}
		if exists && !configInitForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", paths.Config)
		}

		if err := config.DefaultConfig().SaveToFile(paths.Config, fs.AtomicWrite); err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(map[string]any{"success": true, "path": paths.Config})
		}
		PrintSuccess(fmt.Sprintf("Wrote %s", paths.Config))
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
