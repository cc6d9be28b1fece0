package pipeline

import (
	"context"
	"time"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
)

// Request describes one recording to turn into minutes.
type Request struct {
	JobID       string
	AudioPath   string
	Metadata    models.MeetingMetadata
	Template    string
	Formats     []string
	Language    string
	Diarization bool
}

type Result struct {
	MeetingID      string                 `json:"meeting_id"`
	AudioFile      *models.AudioFile      `json:"audio_info"`
	Transcript     *models.Transcript     `json:"transcript"`
	TranscriptFile string                 `json:"transcript_file"`
	Analysis       *models.Analysis       `json:"analysis"`
	Metadata       models.MeetingMetadata `json:"meeting_data"`
	Template       string                 `json:"template"`
	Outputs        map[string]string      `json:"outputs"`
	ProcessingTime time.Duration          `json:"-"`
}

// Pipeline runs validate, transcribe, analyze and generate for a recording.
type Pipeline interface {
	ProcessFile(ctx context.Context, req Request) (*Result, error)
	// Process runs a file with defaults, titled after the file name.
	Process(ctx context.Context, audioPath string) error
}
