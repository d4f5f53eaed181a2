package main

import (
	"fmt"

	"scenefuse/internal/definition"

	"github.com/spf13/cobra"
)

// NewTemplateCmd creates the template command
func NewTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template [file]",
		Short: "Write the built-in import definition",
		Long: `Write the built-in import definition for folders of single-page TIFFs.
Without a file argument the XML is printed to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defs := definition.Default()
			if len(args) == 0 {
				return definition.Encode(cmd.OutOrStdout(), defs)
			}
			if err := definition.Save(defs, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successText("Wrote "+args[0]))
			return nil
		},
	}
}

// NewValidateCmd creates the validate command
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check an import definition file",
		Long:  `Parse an import definition file and compile every TagString. Malformed patterns are reported with the offending TagString.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := definition.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, def := range defs.Definitions {
				sd := def.SceneDefinition
				fmt.Fprintf(out, "%s %s\n", titleText(def.Name),
					mutedText(fmt.Sprintf("(%s, %s, %s, pixel size %g %s)",
						plural(len(def.SceneSearch.TagStrings), "TagString"),
						plural(len(sd.Layers), "layer"), sd.Extent, sd.PixelSize, sd.Unit)))
				for _, ts := range def.SceneSearch.TagStrings {
					fmt.Fprintf(out, "  %s\n", ts.Value)
				}
			}
			fmt.Fprintln(out, successText(fmt.Sprintf("%s valid", plural(len(defs.Definitions), "import definition"))))
			return nil
		},
	}
}
