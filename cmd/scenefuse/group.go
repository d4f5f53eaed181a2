package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewGroupCmd creates the group command
func NewGroupCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "group <directory>",
		Short: "List the scenes and layers found in a directory",
		Args:  cobra.ExactArgs(1),
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
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(grouping)
			}

			if len(grouping) == 0 {
				fmt.Fprintln(out, "No scenes found.")
				return nil
			}
			for _, name := range grouping.SceneNames() {
				layers := grouping.LayerNames(name)
				fmt.Fprintf(out, "%s %s\n", titleText(name), mutedText("("+plural(len(layers), "layer")+")"))
				for _, layer := range layers {
					path, _ := grouping.Lookup(name, layer)
					fmt.Fprintf(out, "  %-24s %s\n", layer, mutedText(path))
				}
			}
			fmt.Fprintf(out, "\n%s, %s\n", plural(len(grouping), "scene"), plural(grouping.FileCount(), "file"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the grouping as JSON")
	return cmd
}

// NewExplainCmd creates the explain command
func NewExplainCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "explain <directory> <file>",
		Short: "Show how a single file is matched",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := newGrouper()
			if err != nil {
				return err
			}
			res, err := g.Classify(args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			fmt.Fprintln(out, titleText(res.Path))
			if res.Pattern != "" {
				fmt.Fprintf(out, "  pattern: %s\n", res.Pattern)
			}
			if res.Matched {
				fmt.Fprintf(out, "  scene:   %s\n  layer:   %s\n", res.Scene, res.Layer)
				fmt.Fprintln(out, successText("  matched"))
			} else {
				fmt.Fprintln(out, errorText("  skipped: "+res.Reason))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}
