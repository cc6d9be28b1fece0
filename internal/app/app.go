package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/analyzer"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/api"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/audio"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/cache"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/config"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/logger"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/mcpserver"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/minutes"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/pipeline"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/progress"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/store"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/transcriber"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/version"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/pkg/executor"
)

// App holds the wired services shared by every command.
type App struct {
	Config      *config.Config
	Logger      logger.Logger
	Audio       audio.Service
	Transcriber transcriber.Transcriber
	Transcripts *transcriber.Repository
	Analyzer    analyzer.Analyzer
	Minutes     minutes.Generator
	Store       store.Store
	Broker      *progress.Broker
	Pipeline    pipeline.Pipeline

	cache cache.Cache
}

func New(cfg *config.Config, log logger.Logger) (*App, error) {
	ctx := context.Background()

	for _, dir := range cfg.Dirs() {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	exec := executor.New()
	audioSvc := audio.New(audio.Options{
		UploadDir:      cfg.Paths.Uploads,
		MaxSizeBytes:   cfg.MaxFileSizeBytes(),
		AllowedFormats: cfg.Audio.AllowedFormats,
	}, exec, log)

	tr, err := transcriber.New(cfg, exec, log)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: log, Audio: audioSvc}

	// the transcript cache is an optimisation; run without it if badger cannot open
	c, err := cache.New(cfg.Paths.Cache, time.Duration(cfg.Transcription.CacheTTLHours)*time.Hour)
	if err != nil {
		log.Warn(ctx, "Transcript cache disabled: %v", err)
	} else {
		a.cache = c
		tr = transcriber.WithCache(tr, c, log)
	}
	a.Transcriber = tr
	a.Transcripts = transcriber.NewRepository(cfg.Paths.Transcripts)

	gen := analyzer.NewGemini(analyzer.GeminiOptions{
		APIKeys:         cfg.Gemini.APIKeys,
		Model:           cfg.Gemini.Model,
		Temperature:     cfg.Gemini.Temperature,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
	}, log)
	a.Analyzer = analyzer.New(gen, analyzer.Options{
		MaxConcurrent:     cfg.Gemini.MaxConcurrent,
		RequestsPerMinute: cfg.Gemini.RequestsPerMinute,
		IncludeSentiment:  cfg.Gemini.AnalyzeSentiment,
	}, log)

	a.Minutes = minutes.New(minutes.Options{
		ExportDir:      cfg.Paths.Exports,
		DefaultFormats: cfg.Export.Formats,
		PDFFont:        cfg.Export.PDFFont,
		PDFFontSize:    cfg.Export.PDFFontSize,
		DocxFont:       cfg.Export.DocxFont,
	}, log)

	a.Store, err = store.Open(cfg.Paths.Database)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Broker = progress.NewBroker()
	a.Pipeline = pipeline.New(pipeline.Deps{
		Audio:       a.Audio,
		Transcriber: a.Transcriber,
		Transcripts: a.Transcripts,
		Analyzer:    a.Analyzer,
		Minutes:     a.Minutes,
		Store:       a.Store,
		Progress:    a.Broker,
	}, pipeline.Options{
		Template:      cfg.Export.DefaultTemplate,
		Formats:       cfg.Export.Formats,
		Language:      cfg.Transcription.Language,
		Diarization:   cfg.DiarizationEnabled(),
		ConvertToWAV:  a.ConvertToWAV(),
		MaxConcurrent: cfg.Performance.MaxConcurrent,
	}, log)

	return a, nil
}

// ConvertToWAV reports whether recordings are re-encoded before transcription.
// whisper.cpp only reads 16 kHz WAV.
func (a *App) ConvertToWAV() bool {
	return a.Config.Transcription.Provider == "whisper" && !a.Config.Audio.SkipConversion
}

func (a *App) API() *api.Handlers {
	cfg := a.Config
	return api.New(api.Deps{
		Audio:       a.Audio,
		Transcriber: a.Transcriber,
		Transcripts: a.Transcripts,
		Analyzer:    a.Analyzer,
		Minutes:     a.Minutes,
		Pipeline:    a.Pipeline,
		Store:       a.Store,
		Broker:      a.Broker,
	}, api.Options{
		Version:              version.Version,
		UploadDir:            cfg.Paths.Uploads,
		ExportDir:            cfg.Paths.Exports,
		MaxUploadBytes:       cfg.MaxFileSizeBytes(),
		MaxFormMemoryBytes:   int64(cfg.Server.MaxFormMemoryMB) << 20,
		ConvertToWAV:         a.ConvertToWAV(),
		DefaultTemplate:      cfg.Export.DefaultTemplate,
		DefaultLanguage:      cfg.Transcription.Language,
		GeminiConfigured:     cfg.GeminiConfigured(),
		AssemblyAIConfigured: cfg.AssemblyAIConfigured(),
	}, a.Logger)
}

func (a *App) MCP() *mcpserver.Server {
	return mcpserver.New(mcpserver.Deps{
		Analyzer:    a.Analyzer,
		Minutes:     a.Minutes,
		Transcripts: a.Transcripts,
	}, mcpserver.Options{
		Version:         version.Version,
		DefaultTemplate: a.Config.Export.DefaultTemplate,
	}, a.Logger)
}

// Close releases the store and cache.
func (a *App) Close() error {
	var firstErr error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			firstErr = err
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
