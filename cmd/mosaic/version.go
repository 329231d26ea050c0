package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/mosaic"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mosaic",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mosaic version %s\n", mosaic.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
