package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/mosaic"
	"github.com/aretw0/mosaic/internal/cli"
	"github.com/aretw0/mosaic/internal/presentation/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open a canvas in an interactive shell",
	Long:  `Loads (or seeds) the canvas and reads commands from stdin. Type 'help' inside the shell.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		canvas, err := stack.Manager.Get(sigCtx, stack.Config.Canvas)
		if err != nil {
			return err
		}

		interactive := cli.IsInteractive()
		opts := []cli.REPLOption{cli.WithInteractive(interactive)}
		if interactive {
			tui.PrintBanner(os.Stdout, mosaic.Version)
			opts = append(opts, cli.WithRenderer(tui.NewRenderer()))
		}

		err = cli.NewREPL(canvas, os.Stdin, os.Stdout, opts...).Run(sigCtx)
		if errors.Is(err, context.Canceled) && sigCtx.Signal() != nil {
			stack.Logger.Debug("interrupted", "signal", sigCtx.Signal())
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.RunE = runCmd.RunE
}
