package transcriber

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
)

var (
	ErrTranscriptNotFound = errors.New("transcript not found")
	ErrNoSpeakerMatch     = errors.New("no speakers matched the mapping")
)

// Repository persists transcripts as JSON files in a single folder.
type Repository struct {
	dir string
	now func() time.Time
}

func NewRepository(dir string) *Repository {
	return &Repository{dir: dir, now: time.Now}
}

func (r *Repository) Dir() string { return r.dir }

// Save writes <base>_transcript_<YYYYMMDD_HHMMSS>.json and records the path on t.
func (r *Repository) Save(t *models.Transcript, base string) (string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("create transcript dir: %w", err)
	}

	now := r.now()
	if base == "" {
		base = "meeting"
	}
	name := fmt.Sprintf("%s_transcript_%s.json", base, now.Format("20060102_150405"))
	path := filepath.Join(r.dir, name)

	t.File = path
	if t.CreatedAt == "" {
		t.CreatedAt = now.Format(time.RFC3339)
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode transcript: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}

// Resolve maps a transcript name or path onto a file inside the repository folder.
func (r *Repository) Resolve(name string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || !strings.HasSuffix(base, ".json") {
		return "", fmt.Errorf("%w: %s", ErrTranscriptNotFound, name)
	}
	return filepath.Join(r.dir, base), nil
}

func (r *Repository) Load(name string) (*models.Transcript, error) {
	path, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTranscriptNotFound, filepath.Base(path))
		}
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	var t models.Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}
	t.File = path
	return &t, nil
}

// UpdateSpeakers renames speakers in a stored transcript and rewrites it in place.
func (r *Repository) UpdateSpeakers(name string, mapping map[string]string) (*models.Transcript, error) {
	t, err := r.Load(name)
	if err != nil {
		return nil, err
	}

	if t.Speakers == nil {
		t.Speakers = SpeakerStats(t.Segments)
	}
	if RelabelSpeakers(t, mapping) == 0 {
		return nil, ErrNoSpeakerMatch
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	if err := os.WriteFile(t.File, data, 0644); err != nil {
		return nil, fmt.Errorf("write transcript: %w", err)
	}
	return t, nil
}
