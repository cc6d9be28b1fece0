package cli

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
)

func NewServeCmd(deps *Dependencies) *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := deps.Config
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			a, closeApp, err := openApp(deps, deps.Stdout)
			if err != nil {
				return err
			}
			defer closeApp()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log := a.Logger
			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			log.Info(ctx, "========================================")
			log.Info(ctx, "Meeting Minutes Generator API")
			log.Info(ctx, "========================================")
			log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
			log.Info(ctx, "Transcription provider: %s", a.Transcriber.Name())
			log.Info(ctx, "Gemini configured: %t", cfg.GeminiConfigured())
			log.Info(ctx, "Max concurrent pipelines: %d", cfg.Performance.MaxConcurrent)
			log.Info(ctx, "Listening on %s", addr)
			log.Info(ctx, "========================================")

			return a.API().Serve(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Interface to bind (default from config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")

	return cmd
}
