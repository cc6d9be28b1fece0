package transcriber

import (
	"context"
	"errors"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
)

var (
	ErrNotConfigured = errors.New("transcription provider not configured")
	ErrFailed        = errors.New("transcription failed")
)

type Options struct {
	Language    string
	Diarization bool
}

// Transcriber turns an audio file into a transcript.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audioPath string, opts Options) (*models.Transcript, error)
}
