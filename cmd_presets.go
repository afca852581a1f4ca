package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/hawkdove/config"
)

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List named parameter presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := config.Presets()
			if err != nil {
				return err
			}
			for _, p := range presets {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", p.Name, p.Description)
			}
			return nil
		},
	}
}
