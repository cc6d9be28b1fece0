package audio

import (
	"context"
	"errors"
	"io"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
)

var (
	ErrNotFound          = errors.New("audio file not found")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrFileTooLarge      = errors.New("audio file too large")
	ErrEmptyFile         = errors.New("audio file is empty")
)

// Service stores, validates and prepares recordings for transcription.
type Service interface {
	// Save writes an upload into the upload folder under a unique, sanitised name.
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Validate(ctx context.Context, path string) (*models.AudioFile, error)
	// ConvertToWAV produces a 16 kHz mono WAV next to the input. WAV inputs are returned unchanged.
	ConvertToWAV(ctx context.Context, path string) (string, error)
	Cleanup(ctx context.Context, paths ...string)
	IsSupported(name string) bool
	AllowedFormats() []string
}
