package main

import (
	"fmt"

	"scenefuse/internal/organize"

	"github.com/spf13/cobra"
)

// NewOrganizeCmd creates the organize command
func NewOrganizeCmd() *cobra.Command {
	var (
		dest   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "organize <directory>",
		Short: "Move grouped files into one folder per scene",
		Long: `Group a directory and move every layer to <dest>/<scene>/<layer><ext>.
Collisions are handled with the configured strategy (rename, skip or
overwrite). Dry run is on by default in the configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("dry-run") {
				cfg.Settings.DryRun = dryRun
			}

			g, err := newGrouper()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cfg.Settings.DryRun {
				fmt.Fprintf(out, "Dry run: planning organization of '%s' into '%s'\n", args[0], dest)
			} else {
				fmt.Fprintf(out, "Organizing '%s' into '%s'\n", args[0], dest)
			}

			engine := organize.CurrentOrganizerFactory(cfg)
			results, err := engine.OrganizeDirectory(g, args[0], dest)
			if err != nil {
				return fmt.Errorf("error organizing directory: %w", err)
			}

			if len(results) == 0 {
				fmt.Fprintln(out, "No files needed organization.")
				return nil
			}

			failed := 0
			for _, res := range results {
				status := successText("moved")
				switch {
				case res.Error != nil:
					failed++
					status = errorText("error: " + res.Error.Error())
				case cfg.Settings.DryRun:
					status = mutedText("planned")
				case !res.Moved:
					status = mutedText("skipped")
				}
				fmt.Fprintf(out, "  %s -> %s (%s)\n", res.SourcePath, res.DestinationPath, status)
			}

			if cfg.Settings.DryRun {
				fmt.Fprintln(out, "\nDry run complete. No files were moved.")
			} else {
				fmt.Fprintln(out, "\nOrganization complete.")
			}
			if failed > 0 {
				return fmt.Errorf("%s could not be organized", plural(failed, "file"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dest, "dest", "d", "", "destination directory for scene folders")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would be done without moving files")
	_ = cmd.MarkFlagRequired("dest")
	return cmd
}
