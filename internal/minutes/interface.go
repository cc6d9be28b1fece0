package minutes

import (
	"context"
	"errors"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
)

var (
	ErrInvalidTemplate = errors.New("invalid template")
	ErrUnknownFormat   = errors.New("unknown export format")
)

// Formats lists every export format in the order files are written.
var Formats = []string{"pdf", "markdown", "txt", "docx"}

// Generator renders analysis results into minutes documents on disk.
type Generator interface {
	// Generate writes one file per format and returns format -> path.
	Generate(ctx context.Context, meta *models.MeetingMetadata, analysis *models.Analysis, template string, formats []string) (map[string]string, error)
	// Markdown renders the document without touching the disk.
	Markdown(meta *models.MeetingMetadata, analysis *models.Analysis, template string) (string, error)
}
