package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
)

const schema = `
	CREATE TABLE IF NOT EXISTS meetings (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		template TEXT NOT NULL,
		status TEXT NOT NULL,
		audioFile TEXT NOT NULL,
		transcriptFile TEXT,
		outputs TEXT,
		error TEXT,
		actionItems INTEGER NOT NULL DEFAULT 0,
		decisions INTEGER NOT NULL DEFAULT 0,
		createdAt REAL NOT NULL,
		updatedAt REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_meetings_created ON meetings(createdAt);
`

type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the meeting history database at path.
func Open(path string) (Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// sqlite allows one writer; a single connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &sqliteStore{db: db, now: time.Now}, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func (s *sqliteStore) Create(ctx context.Context, m *models.Meeting) error {
	now := s.now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	if m.Status == "" {
		m.Status = models.StatusQueued
	}

	outputs, err := encodeOutputs(m.Outputs)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO meetings (id, title, template, status, audioFile, transcriptFile, outputs, error,
			actionItems, decisions, createdAt, updatedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, m.ID, m.Title, m.Template, string(m.Status), m.AudioFile, nullString(m.TranscriptFile), outputs,
		nullString(m.Error), m.ActionItems, m.Decisions, unixFromTime(m.CreatedAt), unixFromTime(m.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert meeting: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrExists, m.ID)
	}
	return nil
}

func (s *sqliteStore) UpdateStatus(ctx context.Context, id string, status models.MeetingStatus, errMsg string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE meetings SET status = ?, error = ?, updatedAt = ? WHERE id = ?
	`, string(status), nullString(errMsg), unixFromTime(s.now()), id)
	if err != nil {
		return fmt.Errorf("update meeting status: %w", err)
	}
	return checkAffected(res)
}

func (s *sqliteStore) Complete(ctx context.Context, id string, c Completion) error {
	outputs, err := encodeOutputs(c.Outputs)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE meetings
		SET status = ?, transcriptFile = ?, outputs = ?, error = NULL,
			actionItems = ?, decisions = ?, updatedAt = ?
		WHERE id = ?
	`, string(models.StatusCompleted), nullString(c.TranscriptFile), outputs,
		c.ActionItems, c.Decisions, unixFromTime(s.now()), id)
	if err != nil {
		return fmt.Errorf("complete meeting: %w", err)
	}
	return checkAffected(res)
}

const selectMeeting = `
	SELECT id, title, template, status, audioFile, transcriptFile, outputs, error,
		actionItems, decisions, createdAt, updatedAt
	FROM meetings
`

func (s *sqliteStore) Get(ctx context.Context, id string) (*models.Meeting, error) {
	row := s.db.QueryRowContext(ctx, selectMeeting+` WHERE id = ?`, id)
	m, err := scanMeeting(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *sqliteStore) List(ctx context.Context, limit int) ([]models.Meeting, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, selectMeeting+` ORDER BY createdAt DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query meetings: %w", err)
	}
	defer rows.Close()

	meetings := []models.Meeting{}
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, *m)
	}
	return meetings, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row scanner) (*models.Meeting, error) {
	var m models.Meeting
	var status string
	var transcript, outputs, errMsg sql.NullString
	var createdAt, updatedAt float64

	if err := row.Scan(&m.ID, &m.Title, &m.Template, &status, &m.AudioFile, &transcript, &outputs,
		&errMsg, &m.ActionItems, &m.Decisions, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan meeting: %w", err)
	}

	m.Status = models.MeetingStatus(status)
	m.TranscriptFile = transcript.String
	m.Error = errMsg.String
	m.CreatedAt = timeFromUnix(createdAt)
	m.UpdatedAt = timeFromUnix(updatedAt)

	if outputs.Valid && outputs.String != "" {
		if err := json.Unmarshal([]byte(outputs.String), &m.Outputs); err != nil {
			return nil, fmt.Errorf("decode outputs: %w", err)
		}
	}
	return &m, nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func encodeOutputs(outputs map[string]string) (sql.NullString, error) {
	if len(outputs) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(outputs)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode outputs: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(f float64) time.Time {
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
