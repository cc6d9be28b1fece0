package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "empty config gets defaults",
			config:  Config{},
			wantErr: false,
		},
		{
			name: "whisper provider with valid size",
			config: Config{
				Transcription: TranscriptionConfig{Provider: "Whisper"},
				Whisper:       WhisperConfig{ModelSize: "SMALL"},
			},
			wantErr: false,
		},
		{
			name:    "unknown provider",
			config:  Config{Transcription: TranscriptionConfig{Provider: "google"}},
			wantErr: true,
		},
		{
			name:    "unknown whisper size",
			config:  Config{Whisper: WhisperConfig{ModelSize: "huge"}},
			wantErr: true,
		},
		{
			name:    "unknown export format",
			config:  Config{Export: ExportConfig{Formats: []string{"pdf", "html"}}},
			wantErr: true,
		},
		{
			name:    "invalid template",
			config:  Config{Export: ExportConfig{DefaultTemplate: "ABC"}},
			wantErr: true,
		},
		{
			name:    "negative size limit",
			config:  Config{Audio: AudioConfig{MaxFileSizeMB: -1}},
			wantErr: true,
		},
		{
			name:    "port out of range",
			config:  Config{Server: ServerConfig{Port: 70000}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Audio.MaxFileSizeMB != 100 {
		t.Errorf("MaxFileSizeMB = %d, want 100", cfg.Audio.MaxFileSizeMB)
	}
	if cfg.MaxFileSizeBytes() != 100*1024*1024 {
		t.Errorf("MaxFileSizeBytes = %d", cfg.MaxFileSizeBytes())
	}
	if len(cfg.Audio.AllowedFormats) != 7 {
		t.Errorf("AllowedFormats = %v", cfg.Audio.AllowedFormats)
	}
	if cfg.Paths.Exports != filepath.Join("data", "exports") {
		t.Errorf("Exports = %s", cfg.Paths.Exports)
	}
	if cfg.Gemini.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2", cfg.Gemini.Temperature)
	}
	if cfg.Export.DefaultTemplate != "MRS" {
		t.Errorf("DefaultTemplate = %s", cfg.Export.DefaultTemplate)
	}
	if cfg.GeminiConfigured() || cfg.AssemblyAIConfigured() {
		t.Error("no keys should be configured by default")
	}
	if cfg.WhisperModelPath() != filepath.Join("models", "ggml-base.bin") {
		t.Errorf("WhisperModelPath = %s", cfg.WhisperModelPath())
	}
	if cfg.Transcription.Diarization == nil || !cfg.DiarizationEnabled() {
		t.Error("diarization should default to on")
	}
}

func TestDiarizationDefault(t *testing.T) {
	t.Setenv("ENABLE_DIARIZATION", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.DiarizationEnabled() {
		t.Error("diarization should be on without a config file")
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("transcription:\n  diarization: false\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DiarizationEnabled() {
		t.Error("diarization: false in the file should turn it off")
	}

	t.Setenv("ENABLE_DIARIZATION", "true")
	cfg, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.DiarizationEnabled() {
		t.Error("ENABLE_DIARIZATION should override the file")
	}
}

func TestValidateNormalizesLists(t *testing.T) {
	cfg := Config{
		Audio:  AudioConfig{AllowedFormats: []string{".MP3", "wav", " mp3 ", ""}},
		Gemini: GeminiConfig{APIKeys: []string{" k1", "k2 ", "k1", ""}},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	if got := cfg.Audio.AllowedFormats; len(got) != 2 || got[0] != "mp3" || got[1] != "wav" {
		t.Errorf("AllowedFormats = %v", got)
	}
	if got := cfg.Gemini.APIKeys; len(got) != 2 || got[0] != "k1" || got[1] != "k2" {
		t.Errorf("APIKeys = %v", got)
	}
}

func TestLoad(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	content := `
server:
  port: 8080

paths:
  data: "var/minutes"

transcription:
  provider: "whisper"
  language: "de"

whisper:
  model_size: "medium"

gemini:
  api_keys: ["key-a", "key-b"]
  model: "gemini-2.5-pro"

export:
  formats: ["markdown", "txt"]
  default_template: "msad"

logging:
  level: "debug"
  format: "json"
`

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %v, want 8080", cfg.Server.Port)
	}
	if cfg.Paths.Uploads != filepath.Join("var/minutes", "uploads") {
		t.Errorf("Uploads = %v", cfg.Paths.Uploads)
	}
	if cfg.Transcription.Provider != "whisper" || cfg.Transcription.Language != "de" {
		t.Errorf("Transcription = %+v", cfg.Transcription)
	}
	if len(cfg.Gemini.APIKeys) != 2 {
		t.Errorf("APIKeys = %v", cfg.Gemini.APIKeys)
	}
	if cfg.Export.DefaultTemplate != "MSAD" {
		t.Errorf("DefaultTemplate = %v, want MSAD", cfg.Export.DefaultTemplate)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on malformed yaml")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"GEMINI_API_KEY":         "a, b,c",
		"ASSEMBLYAI_API_KEY":     "aai",
		"WHISPER_MODEL_SIZE":     "large",
		"MAX_AUDIO_FILE_SIZE_MB": "500",
		"GEMINI_TEMPERATURE":     "0.7",
		"EXPORT_FORMATS":         "pdf,docx",
		"ENABLE_DIARIZATION":     "true",
		"PORT":                   "9000",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := &Config{}
	if err := applyEnv(cfg, lookup); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	if len(cfg.Gemini.APIKeys) != 3 || cfg.Gemini.APIKeys[1] != "b" {
		t.Errorf("APIKeys = %v", cfg.Gemini.APIKeys)
	}
	if !cfg.AssemblyAIConfigured() {
		t.Error("AssemblyAI should be configured")
	}
	if cfg.Whisper.ModelSize != "large" {
		t.Errorf("ModelSize = %s", cfg.Whisper.ModelSize)
	}
	if cfg.Audio.MaxFileSizeMB != 500 {
		t.Errorf("MaxFileSizeMB = %d", cfg.Audio.MaxFileSizeMB)
	}
	if cfg.Gemini.Temperature < 0.69 || cfg.Gemini.Temperature > 0.71 {
		t.Errorf("Temperature = %v", cfg.Gemini.Temperature)
	}
	if len(cfg.Export.Formats) != 2 {
		t.Errorf("Formats = %v", cfg.Export.Formats)
	}
	if !cfg.DiarizationEnabled() {
		t.Error("Diarization should be enabled")
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
}

func TestApplyEnvInvalidNumber(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == "MAX_AUDIO_FILE_SIZE_MB" {
			return "lots", true
		}
		return "", false
	}
	if err := applyEnv(&Config{}, lookup); err == nil {
		t.Error("applyEnv() should reject non-numeric size")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("MINUTES_TEST_DOTENV=loaded\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("MINUTES_TEST_DOTENV") })

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if os.Getenv("MINUTES_TEST_DOTENV") != "loaded" {
		t.Error("variable from .env not loaded")
	}
}
