package main

import (
	"fmt"

	"scenefuse/internal/afi"

	"github.com/spf13/cobra"
)

// outputDir picks the manifest directory: flag, then config, then the scan root.
func outputDir(flag, root string) string {
	if flag != "" {
		return flag
	}
	if cfg.Output != "" {
		return cfg.Output
	}
	return root
}

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <directory>",
		Short: "Write one .afi manifest per scene",
		Long: `Group a directory and write <output>/<scene>.afi for every scene. Each
manifest lists the absolute path and channel name of every layer. A scene
whose files cannot be listed is reported and the others are still written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := newGrouper()
			if err != nil {
				return err
			}
			grouping, err := g.ScanDirectory(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			results, exportErr := afi.Export(cmd.Context(), outputDir(output, args[0]), grouping)
			for _, res := range results {
				fmt.Fprintf(out, "%s %s\n", successText(res.Path), mutedText("("+plural(res.Layers, "layer")+")"))
			}
			fmt.Fprintf(out, "Exported %s of %d\n", plural(len(results), "scene"), len(grouping))
			return exportErr
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "directory for .afi files (default from config, else the scanned directory)")
	return cmd
}
