package analyzer

import (
	"context"
	"errors"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
)

var (
	ErrNotConfigured   = errors.New("gemini API key not configured")
	ErrEmptyTranscript = errors.New("transcript is empty")
	ErrEmptyQuery      = errors.New("query is empty")
	ErrEmptyResponse   = errors.New("empty response from Gemini")
	ErrFailed          = errors.New("analysis failed")
)

// Analyzer extracts structured meeting intelligence from transcript text.
type Analyzer interface {
	Analyze(ctx context.Context, transcript string, meta *models.MeetingMetadata) (*models.Analysis, error)
	Query(ctx context.Context, transcript, question string) (string, error)
	Sentiment(ctx context.Context, transcript string) (*models.Sentiment, error)
}

type GenerateOptions struct {
	JSON bool
}

// Generator is the text generation backend. The Gemini implementation lives in gemini.go.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}
