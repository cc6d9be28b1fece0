package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Paths         PathsConfig         `yaml:"paths"`
	Audio         AudioConfig         `yaml:"audio"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Whisper       WhisperConfig       `yaml:"whisper"`
	AssemblyAI    AssemblyAIConfig    `yaml:"assemblyai"`
	Gemini        GeminiConfig        `yaml:"gemini"`
	Export        ExportConfig        `yaml:"export"`
	Logging       LoggingConfig       `yaml:"logging"`
	Performance   PerformanceConfig   `yaml:"performance"`
}

type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	MaxFormMemoryMB int    `yaml:"max_form_memory_mb"`
}

type PathsConfig struct {
	Data        string `yaml:"data"`
	Uploads     string `yaml:"uploads"`
	Transcripts string `yaml:"transcripts"`
	Exports     string `yaml:"exports"`
	Inbox       string `yaml:"inbox"`
	Cache       string `yaml:"cache"`
	Database    string `yaml:"database"`
}

type AudioConfig struct {
	MaxFileSizeMB  int      `yaml:"max_file_size_mb"`
	AllowedFormats []string `yaml:"allowed_formats"`
	SkipConversion bool     `yaml:"skip_conversion"` // hand the original file to the provider instead of 16 kHz WAV
}

type TranscriptionConfig struct {
	Provider       string `yaml:"provider"`
	Language       string `yaml:"language"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Diarization    *bool  `yaml:"diarization"` // nil means on
	CacheTTLHours  int    `yaml:"cache_ttl_hours"`
}

type WhisperConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ModelDir   string `yaml:"model_dir"`
	ModelSize  string `yaml:"model_size"`
	Threads    int    `yaml:"threads"`
	Prompt     string `yaml:"prompt"`
}

type AssemblyAIConfig struct {
	APIKey              string `yaml:"api_key"`
	BaseURL             string `yaml:"base_url"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
}

type GeminiConfig struct {
	APIKeys           []string `yaml:"api_keys"`
	Model             string   `yaml:"model"`
	Temperature       float32  `yaml:"temperature"`
	MaxOutputTokens   int      `yaml:"max_output_tokens"`
	MaxConcurrent     int      `yaml:"max_concurrent"`
	RequestsPerMinute int      `yaml:"requests_per_minute"`
	AnalyzeSentiment  bool     `yaml:"analyze_sentiment"`
}

type ExportConfig struct {
	Formats         []string `yaml:"formats"`
	DefaultTemplate string   `yaml:"default_template"`
	PDFFont         string   `yaml:"pdf_font"`
	PDFFontSize     float64  `yaml:"pdf_font_size"`
	DocxFont        string   `yaml:"docx_font"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

var (
	WhisperModelSizes = []string{"tiny", "base", "small", "medium", "large"}
	Providers         = []string{"assemblyai", "whisper"}
	Templates         = []string{"MRS", "MTQP", "MSAD"}
	ExportFormats     = []string{"pdf", "markdown", "txt", "docx"}
)

// Validate fills defaults and rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.Server.MaxFormMemoryMB == 0 {
		c.Server.MaxFormMemoryMB = 32
	}

	if c.Transcription.Diarization == nil {
		on := true
		c.Transcription.Diarization = &on
	}

	if c.Paths.Data == "" {
		c.Paths.Data = "data"
	}
	if c.Paths.Uploads == "" {
		c.Paths.Uploads = filepath.Join(c.Paths.Data, "uploads")
	}
	if c.Paths.Transcripts == "" {
		c.Paths.Transcripts = filepath.Join(c.Paths.Data, "transcripts")
	}
	if c.Paths.Exports == "" {
		c.Paths.Exports = filepath.Join(c.Paths.Data, "exports")
	}
	if c.Paths.Inbox == "" {
		c.Paths.Inbox = filepath.Join(c.Paths.Data, "inbox")
	}
	if c.Paths.Cache == "" {
		c.Paths.Cache = filepath.Join(c.Paths.Data, "cache")
	}
	if c.Paths.Database == "" {
		c.Paths.Database = filepath.Join(c.Paths.Data, "meetings.db")
	}

	if c.Audio.MaxFileSizeMB == 0 {
		c.Audio.MaxFileSizeMB = 100
	}
	if c.Audio.MaxFileSizeMB < 0 {
		return fmt.Errorf("audio.max_file_size_mb must be positive")
	}
	if len(c.Audio.AllowedFormats) == 0 {
		c.Audio.AllowedFormats = []string{"mp3", "wav", "mp4", "m4a", "flac", "ogg", "webm"}
	}
	c.Audio.AllowedFormats = normalizeList(c.Audio.AllowedFormats, func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), ".")
	})

	if c.Transcription.Provider == "" {
		c.Transcription.Provider = "assemblyai"
	}
	c.Transcription.Provider = strings.ToLower(c.Transcription.Provider)
	if !slices.Contains(Providers, c.Transcription.Provider) {
		return fmt.Errorf("transcription.provider %q is not one of %s", c.Transcription.Provider, strings.Join(Providers, ", "))
	}
	if c.Transcription.Language == "" {
		c.Transcription.Language = "en"
	}
	if c.Transcription.TimeoutSeconds == 0 {
		c.Transcription.TimeoutSeconds = 600
	}
	if c.Transcription.CacheTTLHours == 0 {
		c.Transcription.CacheTTLHours = 24 * 7
	}

	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = "whisper-cli"
	}
	if c.Whisper.ModelDir == "" {
		c.Whisper.ModelDir = "models"
	}
	if c.Whisper.ModelSize == "" {
		c.Whisper.ModelSize = "base"
	}
	c.Whisper.ModelSize = strings.ToLower(c.Whisper.ModelSize)
	if !slices.Contains(WhisperModelSizes, c.Whisper.ModelSize) {
		return fmt.Errorf("whisper.model_size %q is not one of %s", c.Whisper.ModelSize, strings.Join(WhisperModelSizes, ", "))
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 4
	}

	if c.AssemblyAI.BaseURL == "" {
		c.AssemblyAI.BaseURL = "https://api.assemblyai.com/v2"
	}
	if c.AssemblyAI.PollIntervalSeconds == 0 {
		c.AssemblyAI.PollIntervalSeconds = 3
	}

	c.Gemini.APIKeys = normalizeList(c.Gemini.APIKeys, strings.TrimSpace)
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Gemini.Temperature == 0 {
		c.Gemini.Temperature = 0.2
	}
	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		return fmt.Errorf("gemini.temperature must be between 0 and 2")
	}
	if c.Gemini.MaxOutputTokens == 0 {
		c.Gemini.MaxOutputTokens = 8192
	}
	if c.Gemini.MaxConcurrent == 0 {
		c.Gemini.MaxConcurrent = 3
	}
	if c.Gemini.RequestsPerMinute == 0 {
		c.Gemini.RequestsPerMinute = 60
	}

	if len(c.Export.Formats) == 0 {
		c.Export.Formats = []string{"pdf", "markdown", "txt", "docx"}
	}
	c.Export.Formats = normalizeList(c.Export.Formats, strings.ToLower)
	for _, f := range c.Export.Formats {
		if !slices.Contains(ExportFormats, f) {
			return fmt.Errorf("export.formats: unknown format %q", f)
		}
	}
	if c.Export.DefaultTemplate == "" {
		c.Export.DefaultTemplate = "MRS"
	}
	c.Export.DefaultTemplate = strings.ToUpper(c.Export.DefaultTemplate)
	if !slices.Contains(Templates, c.Export.DefaultTemplate) {
		return fmt.Errorf("export.default_template %q is not one of %s", c.Export.DefaultTemplate, strings.Join(Templates, ", "))
	}
	if c.Export.PDFFont == "" {
		c.Export.PDFFont = "Helvetica"
	}
	if c.Export.PDFFontSize == 0 {
		c.Export.PDFFontSize = 11
	}
	if c.Export.DocxFont == "" {
		c.Export.DocxFont = "Times New Roman"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}

	return nil
}

// MaxFileSizeBytes is the upload limit in bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.Audio.MaxFileSizeMB) * 1024 * 1024
}

func (c *Config) GeminiConfigured() bool {
	return len(c.Gemini.APIKeys) > 0
}

// DiarizationEnabled reports whether speaker labels are requested by default.
func (c *Config) DiarizationEnabled() bool {
	return c.Transcription.Diarization == nil || *c.Transcription.Diarization
}

func (c *Config) AssemblyAIConfigured() bool {
	return c.AssemblyAI.APIKey != ""
}

// WhisperModelPath resolves the ggml model file for the configured size.
func (c *Config) WhisperModelPath() string {
	return filepath.Join(c.Whisper.ModelDir, "ggml-"+c.Whisper.ModelSize+".bin")
}

// Dirs lists the directories the service writes into.
func (c *Config) Dirs() []string {
	return []string{c.Paths.Uploads, c.Paths.Transcripts, c.Paths.Exports, c.Paths.Inbox, c.Paths.Cache}
}

func normalizeList(in []string, fn func(string) string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = fn(strings.TrimSpace(s))
		if s == "" || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}
