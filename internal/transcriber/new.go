package transcriber

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/config"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/logger"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/pkg/executor"
)

// New returns the provider selected by transcription.provider.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) (Transcriber, error) {
	switch cfg.Transcription.Provider {
	case "assemblyai":
		return NewAssemblyAI(AssemblyAIOptions{
			APIKey:       cfg.AssemblyAI.APIKey,
			BaseURL:      cfg.AssemblyAI.BaseURL,
			PollInterval: time.Duration(cfg.AssemblyAI.PollIntervalSeconds) * time.Second,
			Timeout:      time.Duration(cfg.Transcription.TimeoutSeconds) * time.Second,
		}, &http.Client{Timeout: 5 * time.Minute}, log), nil
	case "whisper":
		return NewWhisper(WhisperOptions{
			BinaryPath: cfg.Whisper.BinaryPath,
			ModelPath:  cfg.WhisperModelPath(),
			Threads:    cfg.Whisper.Threads,
			Prompt:     cfg.Whisper.Prompt,
			Timeout:    time.Duration(cfg.Transcription.TimeoutSeconds) * time.Second,
		}, exec, log), nil
	default:
		return nil, fmt.Errorf("unknown transcription provider %q", cfg.Transcription.Provider)
	}
}
