package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/watcher"
)

func NewWatchCmd(deps *Dependencies) *cobra.Command {
	var dir string
	var existing bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Generate minutes for every recording dropped into a folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := deps.Config
			if dir == "" {
				dir = cfg.Paths.Inbox
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create inbox %s: %w", dir, err)
			}

			a, closeApp, err := openApp(deps, deps.Stdout)
			if err != nil {
				return err
			}
			defer closeApp()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := watcher.New(watcher.Options{
				Dir:             dir,
				MaxConcurrent:   cfg.Performance.MaxConcurrent,
				Accept:          a.Audio.IsSupported,
				ProcessExisting: existing,
			}, a.Pipeline.Process, a.Logger)
			if err != nil {
				return err
			}
			defer w.Stop()

			log := a.Logger
			log.Info(ctx, "========================================")
			log.Info(ctx, "Meeting minutes drop folder is ready!")
			log.Info(ctx, "Monitoring: %s", dir)
			log.Info(ctx, "Output: %s", cfg.Paths.Exports)
			log.Info(ctx, "Template: %s, formats: %v", cfg.Export.DefaultTemplate, cfg.Export.Formats)
			log.Info(ctx, "Concurrent: %d recordings at once", cfg.Performance.MaxConcurrent)
			log.Info(ctx, "")
			log.Info(ctx, "Press Ctrl+C to stop")
			log.Info(ctx, "========================================")

			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Info(ctx, "Drop folder stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Folder to watch (default from config)")
	cmd.Flags().BoolVar(&existing, "existing", false, "Also process recordings already in the folder")

	return cmd
}
