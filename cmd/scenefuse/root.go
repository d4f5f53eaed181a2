package main

import (
	"fmt"

	"scenefuse/internal/config"
	"scenefuse/internal/definition"
	"scenefuse/internal/log"
	"scenefuse/internal/scene"
	"scenefuse/internal/tui/styles"
	"scenefuse/pkg/types"

	"github.com/spf13/cobra"
)

var (
	cfgFile        string
	cfg            *config.Config
	debug          bool
	jsonLog        bool
	definitionFile string
	definitionName string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scenefuse",
		Short: "Group single-channel images into multi-layer scenes",
		Long: `scenefuse applies an import definition to a directory tree: every file
whose path matches one of the definition's TagStrings is assigned to a scene
and a layer. The grouping can be explained, exported as fused-image (.afi)
manifests, organized into one folder per scene, or kept in sync while files
arrive.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var opts []log.Option
			if jsonLog {
				opts = append(opts, log.WithJSON())
			}
			log.Configure(opts...)
			log.SetDebug(debug)

			var err error
			if cfgFile != "" {
				cfg, err = config.LoadConfigFile(cfgFile)
				if err != nil {
					return err
				}
			} else {
				cfg, err = config.LoadConfig()
				if err != nil {
					log.LogWithError(err).Warn("Could not load config, using default settings")
					cfg = config.New()
				}
			}

			if cmd.Flags().Changed("definition") {
				cfg.Definition = definitionFile
			}
			if cmd.Flags().Changed("name") {
				cfg.DefinitionName = definitionName
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/scenefuse/config.yaml)")
	flags.BoolVar(&debug, "debug", false, "enable debug logging")
	flags.BoolVar(&jsonLog, "json-log", false, "log as JSON")
	flags.StringVar(&definitionFile, "definition", "", "import definition XML file (default is the built-in template)")
	flags.StringVar(&definitionName, "name", "", "ImportDefinition to use (default is the first)")

	rootCmd.AddCommand(NewTemplateCmd())
	rootCmd.AddCommand(NewValidateCmd())
	rootCmd.AddCommand(NewGroupCmd())
	rootCmd.AddCommand(NewExplainCmd())
	rootCmd.AddCommand(NewExportCmd())
	rootCmd.AddCommand(NewOrganizeCmd())
	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewBrowseCmd())

	return rootCmd
}

// loadDefinition returns the import definition selected by the config.
func loadDefinition() (types.ImportDefinition, error) {
	defs := definition.Default()
	if cfg.Definition != "" {
		var err error
		defs, err = definition.Load(cfg.Definition)
		if err != nil {
			return types.ImportDefinition{}, err
		}
	}
	return definition.Select(defs, cfg.DefinitionName)
}

// newGrouper builds a grouper from the selected definition and config.
func newGrouper() (*scene.Grouper, error) {
	def, err := loadDefinition()
	if err != nil {
		return nil, err
	}
	log.LogWithFields(log.F("definition", def.Name)).Debug("Using import definition")
	return scene.NewWithConfig(cfg, def)
}

func titleText(s string) string   { return styles.Theme.Title.Render(s) }
func successText(s string) string { return styles.Theme.Success.Render(s) }
func errorText(s string) string   { return styles.Theme.Error.Render(s) }
func mutedText(s string) string   { return styles.Theme.Muted.Render(s) }

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
