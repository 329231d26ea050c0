package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/mosaic/internal/cli"
	"github.com/aretw0/mosaic/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "mosaic",
	Short: "Mosaic is an image canvas where confirmed connections generate new images",
	Long: `Mosaic keeps a canvas of image nodes. Connecting two images, confirming the
connection and describing what you want produces a generated image joined to
the canvas, while the canvas is kept as one connected group.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("dir", ".", "Project directory (config, store and templates are resolved against it)")
	rootCmd.PersistentFlags().String("config", "mosaic.yaml", "Config file, relative to --dir")
	rootCmd.PersistentFlags().String("canvas", "", "Canvas id (overrides config)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging to stderr")
}

// loadStack reads the configuration selected by the persistent flags and wires the services.
func loadStack(cmd *cobra.Command) (*cli.Stack, error) {
	dir, _ := cmd.Flags().GetString("dir")
	cfgPath, _ := cmd.Flags().GetString("config")
	canvas, _ := cmd.Flags().GetString("canvas")
	debug, _ := cmd.Flags().GetBool("debug")

	if !filepath.IsAbs(cfgPath) {
		cfgPath = filepath.Join(dir, cfgPath)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if canvas != "" {
		cfg.Canvas = canvas
	}

	logger := cli.NewLogger(cfg.Log.Level, debug)
	return cli.NewStack(cfg, dir, logger)
}
