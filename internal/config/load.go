package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path, applies environment overrides and validates.
// An empty path skips the file and starts from defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment, skipping ones that don't exist.
// Variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.Split(v, ",")
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", key, v)
		}
		*dst = n
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %q is not a boolean", key, v)
		}
		*dst = b
		return nil
	}

	str("HOST", &cfg.Server.Host)
	str("DATA_DIR", &cfg.Paths.Data)
	str("UPLOAD_FOLDER", &cfg.Paths.Uploads)
	str("TRANSCRIPT_FOLDER", &cfg.Paths.Transcripts)
	str("EXPORT_FOLDER", &cfg.Paths.Exports)
	str("INBOX_FOLDER", &cfg.Paths.Inbox)
	str("DATABASE_PATH", &cfg.Paths.Database)
	list("ALLOWED_AUDIO_FORMATS", &cfg.Audio.AllowedFormats)
	str("TRANSCRIPTION_PROVIDER", &cfg.Transcription.Provider)
	str("TRANSCRIPTION_LANGUAGE", &cfg.Transcription.Language)
	str("ASSEMBLYAI_API_KEY", &cfg.AssemblyAI.APIKey)
	str("WHISPER_MODEL_SIZE", &cfg.Whisper.ModelSize)
	str("WHISPER_BINARY_PATH", &cfg.Whisper.BinaryPath)
	str("WHISPER_MODEL_DIR", &cfg.Whisper.ModelDir)
	list("GEMINI_API_KEY", &cfg.Gemini.APIKeys)
	str("GEMINI_MODEL", &cfg.Gemini.Model)
	list("EXPORT_FORMATS", &cfg.Export.Formats)
	str("DEFAULT_TEMPLATE", &cfg.Export.DefaultTemplate)
	str("PDF_FONT", &cfg.Export.PDFFont)
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FORMAT", &cfg.Logging.Format)
	str("LOG_FILE", &cfg.Logging.File)

	ints := []struct {
		key string
		dst *int
	}{
		{"PORT", &cfg.Server.Port},
		{"MAX_AUDIO_FILE_SIZE_MB", &cfg.Audio.MaxFileSizeMB},
		{"TRANSCRIPTION_TIMEOUT_SECONDS", &cfg.Transcription.TimeoutSeconds},
		{"GEMINI_MAX_OUTPUT_TOKENS", &cfg.Gemini.MaxOutputTokens},
		{"MAX_CONCURRENT", &cfg.Performance.MaxConcurrent},
	}
	for _, e := range ints {
		if err := num(e.key, e.dst); err != nil {
			return err
		}
	}

	if v, ok := lookup("ENABLE_DIARIZATION"); ok && strings.TrimSpace(v) != "" {
		var diarization bool
		if err := boolean("ENABLE_DIARIZATION", &diarization); err != nil {
			return err
		}
		cfg.Transcription.Diarization = &diarization
	}

	if v, ok := lookup("GEMINI_TEMPERATURE"); ok && strings.TrimSpace(v) != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
		if err != nil {
			return fmt.Errorf("GEMINI_TEMPERATURE: %q is not a number", v)
		}
		cfg.Gemini.Temperature = float32(f)
	}
	if v, ok := lookup("PDF_FONT_SIZE"); ok && strings.TrimSpace(v) != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("PDF_FONT_SIZE: %q is not a number", v)
		}
		cfg.Export.PDFFontSize = f
	}

	return nil
}
