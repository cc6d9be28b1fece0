package api

import (
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/analyzer"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/audio"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/logger"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/minutes"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/pipeline"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/progress"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/store"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/transcriber"
)

type Options struct {
	Version              string
	UploadDir            string
	ExportDir            string
	MaxUploadBytes       int64
	MaxFormMemoryBytes   int64
	ConvertToWAV         bool
	DefaultTemplate      string
	DefaultLanguage      string
	GeminiConfigured     bool
	AssemblyAIConfigured bool
}

type Deps struct {
	Audio       audio.Service
	Transcriber transcriber.Transcriber
	Transcripts *transcriber.Repository
	Analyzer    analyzer.Analyzer
	Minutes     minutes.Generator
	Pipeline    pipeline.Pipeline
	Store       store.Store
	Broker      *progress.Broker
}

// Handlers serves the meeting minutes HTTP API.
type Handlers struct {
	deps   Deps
	opts   Options
	logger logger.Logger
}

func New(deps Deps, opts Options, log logger.Logger) *Handlers {
	if opts.DefaultTemplate == "" {
		opts.DefaultTemplate = "MRS"
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "en"
	}
	if opts.MaxFormMemoryBytes <= 0 {
		opts.MaxFormMemoryBytes = 32 << 20
	}
	return &Handlers{deps: deps, opts: opts, logger: log}
}
