package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/mosaic/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the canvas as a Mermaid diagram",
	Long:  `Loads (or seeds) the selected canvas and prints a Mermaid flowchart (graph LR) of its nodes and edges.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		canvas, err := stack.Manager.Get(cmd.Context(), stack.Config.Canvas)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(canvas.Snapshot()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
