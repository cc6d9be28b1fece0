package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/config"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/ui"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/pkg/executor"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := ui.NewFormatter(deps.Stdout)
			f.Title("Checking prerequisites")

			if runDoctor(deps.Config, executor.New().Available, f) {
				f.Success("All prerequisites met. Ready to process meetings!")
			} else {
				f.Warning("Some prerequisites are missing.")
			}
			return nil
		},
	}
}

// runDoctor prints one line per prerequisite and reports whether all required ones pass.
func runDoctor(cfg *config.Config, available func(string) bool, f *ui.Formatter) bool {
	ok := true

	if available("ffmpeg") {
		f.Check("ffmpeg", true, "installed")
	} else {
		need := cfg.Transcription.Provider == "whisper" && !cfg.Audio.SkipConversion
		f.Check("ffmpeg", false, "not found. Needed to convert audio for whisper.cpp")
		ok = ok && !need
	}

	if available("ffprobe") {
		f.Check("ffprobe", true, "installed")
	} else {
		f.Check("ffprobe", false, "not found. Audio duration will not be reported")
	}

	switch cfg.Transcription.Provider {
	case "assemblyai":
		if cfg.AssemblyAIConfigured() {
			f.Check("AssemblyAI API key", true, "configured")
		} else {
			f.Check("AssemblyAI API key", false, "not set. Set ASSEMBLYAI_API_KEY or use TRANSCRIPTION_PROVIDER=whisper")
			ok = false
		}
	case "whisper":
		if available(cfg.Whisper.BinaryPath) {
			f.Check("whisper.cpp", true, cfg.Whisper.BinaryPath)
		} else {
			f.Check("whisper.cpp", false, fmt.Sprintf("%s not found. Set WHISPER_BINARY_PATH", cfg.Whisper.BinaryPath))
			ok = false
		}
		if _, err := os.Stat(cfg.WhisperModelPath()); err == nil {
			f.Check("Whisper model", true, cfg.WhisperModelPath())
		} else {
			f.Check("Whisper model", false, fmt.Sprintf("%s missing. Download ggml-%s.bin into %s", cfg.WhisperModelPath(), cfg.Whisper.ModelSize, cfg.Whisper.ModelDir))
			ok = false
		}
	}

	if n := len(cfg.Gemini.APIKeys); n > 0 {
		f.Check("Gemini API key", true, fmt.Sprintf("%d configured, model %s", n, cfg.Gemini.Model))
	} else {
		f.Check("Gemini API key", false, "not set. Set GEMINI_API_KEY")
		ok = false
	}

	for _, dir := range cfg.Dirs() {
		if err := os.MkdirAll(dir, 0755); err != nil {
			f.Check("Directory", false, fmt.Sprintf("%s: %v", dir, err))
			ok = false
			continue
		}
		f.Check("Directory", true, dir)
	}

	return ok
}
