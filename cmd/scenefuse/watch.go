package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scenefuse/internal/watch"

	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	var (
		output   string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <directory>",
		Short: "Keep scene manifests in sync while files arrive",
		Long: `Watch a directory tree and rewrite the .afi manifests once file activity
has been quiet for the configured interval. New sub-directories are watched
automatically. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := newGrouper()
			if err != nil {
				return err
			}

			cfg.Output = outputDir(output, args[0])
			daemon, err := watch.NewDaemon(cfg, g, args[0])
			if err != nil {
				return err
			}
			if interval > 0 {
				daemon.SetInterval(interval)
			}

			out := cmd.OutOrStdout()
			daemon.SetCallback(func(r watch.SyncReport) {
				stamp := r.Time.Format("15:04:05")
				if r.Err != nil {
					fmt.Fprintf(out, "%s %s\n", mutedText(stamp), errorText(r.Err.Error()))
					return
				}
				fmt.Fprintf(out, "%s %s, %s -> %s\n", mutedText(stamp),
					plural(r.Scenes, "scene"), plural(r.Files, "file"), cfg.Output)
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintln(out, titleText("Watching "+args[0])+mutedText(" (Ctrl+C to stop)"))
			return daemon.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "directory for .afi files (default from config, else the watched directory)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "quiet period before a resync (default from config watch_mode.interval)")
	return cmd
}

