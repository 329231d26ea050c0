package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/mosaic/internal/cli"
	"github.com/aretw0/mosaic/internal/presentation/tui"
)

var canvasCmd = &cobra.Command{
	Use:   "canvas",
	Short: "Manage persisted canvases",
	Long:  `List, inspect and remove canvases in the configured store.`,
}

var canvasLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored canvases",
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		ids, err := stack.Store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing canvases: %w", err)
		}
		if len(ids) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No canvases found.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Canvases:")
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), "- "+id)
		}
		return nil
	},
}

var canvasInspectCmd = &cobra.Command{
	Use:   "inspect <canvas-id> [node-id]",
	Short: "Print a stored canvas, or one of its nodes",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		saved, err := stack.Store.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading canvas '%s': %w", args[0], err)
		}

		if len(args) == 1 {
			data, err := json.MarshalIndent(saved, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		for _, n := range saved.Nodes {
			if n.ID != args[1] {
				continue
			}
			md := tui.NodeMarkdown(n)
			if cli.IsInteractive() {
				if out, err := tui.NewRenderer()(md); err == nil {
					md = out
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		return fmt.Errorf("node '%s' not found in canvas '%s'", args[1], args[0])
	},
}

var canvasRmCmd = &cobra.Command{
	Use:   "rm <canvas-id>...",
	Short: "Remove one or more canvases",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		var errs []error
		for _, id := range args {
			if err := stack.Manager.Delete(cmd.Context(), id); err != nil {
				errs = append(errs, fmt.Errorf("error removing '%s': %w", id, err))
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed canvas '%s'\n", id)
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(canvasCmd)
	canvasCmd.AddCommand(canvasLsCmd)
	canvasCmd.AddCommand(canvasInspectCmd)
	canvasCmd.AddCommand(canvasRmCmd)
}
