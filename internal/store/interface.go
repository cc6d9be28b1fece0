package store

import (
	"context"
	"errors"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
)

var (
	ErrNotFound = errors.New("meeting not found")
	ErrExists   = errors.New("meeting already exists")
)

// Completion carries the results recorded when a meeting finishes processing.
type Completion struct {
	TranscriptFile string
	Outputs        map[string]string
	ActionItems    int
	Decisions      int
}

// Store keeps the history of processed meetings.
type Store interface {
	Create(ctx context.Context, m *models.Meeting) error
	// UpdateStatus moves a meeting to status. errMsg is stored for failed meetings.
	UpdateStatus(ctx context.Context, id string, status models.MeetingStatus, errMsg string) error
	Complete(ctx context.Context, id string, c Completion) error
	Get(ctx context.Context, id string) (*models.Meeting, error)
	// List returns the newest meetings first. limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]models.Meeting, error)
	Close() error
}
