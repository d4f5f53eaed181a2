package main

import (
	"scenefuse/internal/tui"

	"github.com/spf13/cobra"
)

// NewBrowseCmd creates the browse command
func NewBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <directory>",
		Short: "Browse scenes and layers interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := newGrouper()
			if err != nil {
				return err
			}
			return tui.Run(g, args[0])
		},
	}
}
