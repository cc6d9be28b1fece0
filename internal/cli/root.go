package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/app"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/config"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/logger"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/version"
)

type Dependencies struct {
	Config *config.Config
	Stdout io.Writer
	Stderr io.Writer
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}

	rootCmd := &cobra.Command{
		Use:           "minutes",
		Short:         "Turn meeting recordings into structured minutes",
		Long:          "Transcribes meeting audio (AssemblyAI or whisper.cpp), extracts action items, decisions and topics with Gemini, and exports MRS, MTQP or MSAD minutes as PDF, Markdown, text or DOCX.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.AddCommand(NewServeCmd(deps))
	rootCmd.AddCommand(NewProcessCmd(deps))
	rootCmd.AddCommand(NewWatchCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))
	rootCmd.AddCommand(NewMCPCmd(deps))
	rootCmd.AddCommand(NewVersionCmd(deps))

	return rootCmd
}

func NewVersionCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(deps.Stdout, version.Full())
		},
	}
}

// newLogger builds the configured logger on w, tee'd to logging.file when set.
// The returned func closes the log file.
func newLogger(cfg *config.Config, w io.Writer) (logger.Logger, func(), error) {
	closeFn := func() {}
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, closeFn, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(w, f)
		closeFn = func() { f.Close() }
	}

	return logger.NewWithOptions(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: w,
	}), closeFn, nil
}

// openApp wires the services with a logger writing to w.
func openApp(deps *Dependencies, w io.Writer) (*app.App, func(), error) {
	log, closeLog, err := newLogger(deps.Config, w)
	if err != nil {
		return nil, nil, err
	}

	a, err := app.New(deps.Config, log)
	if err != nil {
		closeLog()
		return nil, nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, func() {
		a.Close()
		closeLog()
	}, nil
}
