package cli

import (
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/pipeline"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/ui"
)

type processFlags struct {
	template      string
	formats       []string
	title         string
	date          string
	participants  []string
	language      string
	noDiarization bool
}

func NewProcessCmd(deps *Dependencies) *cobra.Command {
	var flags processFlags

	cmd := &cobra.Command{
		Use:   "process <audio-file>",
		Short: "Generate minutes for one recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := ui.NewFormatter(deps.Stdout)

			// logs go to stderr so stdout stays readable
			a, closeApp, err := openApp(deps, deps.Stderr)
			if err != nil {
				return err
			}
			defer closeApp()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			req := flags.request(args[0], deps.Config.DiarizationEnabled())
			if len(req.Formats) == 0 {
				req.Formats = deps.Config.Export.Formats
			}

			events, unsubscribe := a.Broker.Subscribe(req.JobID)
			done := make(chan struct{})
			go func() {
				defer close(done)
				for e := range events {
					f.Event(e)
				}
			}()

			f.Title("Processing " + filepath.Base(req.AudioPath))
			res, err := a.Pipeline.ProcessFile(ctx, req)
			unsubscribe()
			<-done
			if err != nil {
				return err
			}

			f.Result(res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.template, "template", "t", "", "Minutes template: MRS, MTQP or MSAD (default from config)")
	cmd.Flags().StringSliceVarP(&flags.formats, "format", "f", nil, "Export formats: pdf, markdown, txt, docx (default from config)")
	cmd.Flags().StringVar(&flags.title, "title", "", "Meeting title (default: file name)")
	cmd.Flags().StringVar(&flags.date, "date", "", "Meeting date, YYYY-MM-DD (default: today)")
	cmd.Flags().StringSliceVar(&flags.participants, "participants", nil, "Participant names")
	cmd.Flags().StringVar(&flags.language, "language", "", "Language code (default from config)")
	cmd.Flags().BoolVar(&flags.noDiarization, "no-diarization", false, "Disable speaker labels")

	return cmd
}

func (p processFlags) request(path string, diarization bool) pipeline.Request {
	title := p.title
	if title == "" {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		title = strings.ReplaceAll(stem, "_", " ")
	}

	return pipeline.Request{
		JobID:     uuid.NewString(),
		AudioPath: path,
		Metadata: models.MeetingMetadata{
			Title:        title,
			Date:         p.date,
			Participants: p.participants,
		},
		Template:    p.template,
		Formats:     p.formats,
		Language:    p.language,
		Diarization: diarization && !p.noDiarization,
	}
}
