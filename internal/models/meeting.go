package models

import (
	"fmt"
	"strings"
	"time"
)

// MeetingMetadata is the caller supplied context for a recording.
type MeetingMetadata struct {
	Title        string     `json:"title,omitempty"`
	Date         string     `json:"date,omitempty"`
	Time         string     `json:"time,omitempty"`
	Location     string     `json:"location,omitempty"`
	Organizer    string     `json:"organizer,omitempty"`
	Agenda       string     `json:"agenda,omitempty"`
	Participants StringList `json:"participants,omitempty"`
	Duration     string     `json:"duration,omitempty"`
}

// WithDefaults returns a copy with title and date filled in.
func (m MeetingMetadata) WithDefaults(now time.Time) MeetingMetadata {
	if strings.TrimSpace(m.Title) == "" {
		m.Title = "Meeting"
	}
	if m.Date == "" {
		m.Date = now.Format("2006-01-02")
	}
	return m
}

// FormatDuration renders seconds the way meeting documents show it.
func FormatDuration(seconds float64) string {
	return fmt.Sprintf("%.1f minutes", seconds/60)
}

// AudioFile describes an uploaded recording after validation.
type AudioFile struct {
	ID              string  `json:"file_id"`
	Path            string  `json:"file_path"`
	Name            string  `json:"file_name"`
	Format          string  `json:"format"`
	SizeBytes       int64   `json:"size_bytes"`
	SizeMB          float64 `json:"file_size_mb"`
	DurationSeconds float64 `json:"duration_seconds"`
	DurationMinutes float64 `json:"duration_minutes"`
	Channels        int     `json:"channels,omitempty"`
	SampleRate      int     `json:"sample_rate,omitempty"`
	Valid           bool    `json:"valid"`
}

type MeetingStatus string

const (
	StatusQueued       MeetingStatus = "queued"
	StatusTranscribing MeetingStatus = "transcribing"
	StatusAnalyzing    MeetingStatus = "analyzing"
	StatusGenerating   MeetingStatus = "generating"
	StatusCompleted    MeetingStatus = "completed"
	StatusFailed       MeetingStatus = "failed"
)

// Meeting is one pipeline run as recorded in the history store.
type Meeting struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Template       string            `json:"template"`
	Status         MeetingStatus     `json:"status"`
	AudioFile      string            `json:"audio_file"`
	TranscriptFile string            `json:"transcript_file,omitempty"`
	Outputs        map[string]string `json:"outputs,omitempty"`
	Error          string            `json:"error,omitempty"`
	ActionItems    int               `json:"action_items"`
	Decisions      int               `json:"decisions"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
