package pipeline

import (
	"time"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/analyzer"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/audio"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/logger"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/minutes"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/progress"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/store"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/transcriber"
)

type Options struct {
	Template      string
	Formats       []string
	Language      string
	Diarization   bool
	ConvertToWAV  bool
	MaxConcurrent int
}

// Deps are the services a pipeline drives.
type Deps struct {
	Audio       audio.Service
	Transcriber transcriber.Transcriber
	Transcripts *transcriber.Repository
	Analyzer    analyzer.Analyzer
	Minutes     minutes.Generator
	Store       store.Store
	Progress    progress.Publisher
}

type implPipeline struct {
	deps   Deps
	opts   Options
	sem    *semaphore
	logger logger.Logger
	now    func() time.Time
}

// New creates a Pipeline. At most opts.MaxConcurrent recordings run at once.
func New(deps Deps, opts Options, log logger.Logger) Pipeline {
	if deps.Progress == nil {
		deps.Progress = progress.Nop{}
	}
	if opts.Template == "" {
		opts.Template = "MRS"
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []string{"pdf", "markdown"}
	}
	if opts.Language == "" {
		opts.Language = "en"
	}

	return &implPipeline{
		deps:   deps,
		opts:   opts,
		sem:    newSemaphore(opts.MaxConcurrent),
		logger: log,
		now:    time.Now,
	}
}
