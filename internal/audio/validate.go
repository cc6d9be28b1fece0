package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
)

func (s *implService) IsSupported(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return ext != "" && slices.Contains(s.opts.AllowedFormats, ext)
}

func (s *implService) unsupported(name string) error {
	ext := filepath.Ext(name)
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Errorf("%w: %s. Allowed formats: %s", ErrUnsupportedFormat, ext, strings.Join(s.opts.AllowedFormats, ", "))
}

// Validate checks existence, format and size, then probes stream metadata.
// A failed probe leaves duration and stream fields at zero.
func (s *implService) Validate(ctx context.Context, path string) (*models.AudioFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat audio: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	if !s.IsSupported(path) {
		return nil, s.unsupported(path)
	}

	sizeMB := float64(info.Size()) / (1024 * 1024)
	if s.opts.MaxSizeBytes > 0 && info.Size() > s.opts.MaxSizeBytes {
		return nil, fmt.Errorf("%w: %.1fMB exceeds maximum %dMB", ErrFileTooLarge, sizeMB, s.opts.MaxSizeBytes/(1024*1024))
	}
	if info.Size() == 0 {
		return nil, ErrEmptyFile
	}

	name := filepath.Base(path)
	file := &models.AudioFile{
		ID:        strings.TrimSuffix(name, filepath.Ext(name)),
		Path:      path,
		Name:      name,
		Format:    strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."),
		SizeBytes: info.Size(),
		SizeMB:    math.Round(sizeMB*100) / 100,
		Valid:     true,
	}

	if err := s.probe(ctx, file); err != nil {
		s.logger.Warn(ctx, "Could not probe %s: %v", path, err)
	}

	s.logger.Info(ctx, "Validated audio: %s (%.2fMB, %.1fs)", name, file.SizeMB, file.DurationSeconds)
	return file, nil
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Channels   int    `json:"channels"`
		SampleRate string `json:"sample_rate"`
		Duration   string `json:"duration"`
	} `json:"streams"`
}

func (s *implService) probe(ctx context.Context, file *models.AudioFile) error {
	out, err := s.executor.Execute(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		file.Path,
	)
	if err != nil {
		return fmt.Errorf("ffprobe: %w", err)
	}

	return applyProbe(file, []byte(out))
}

func applyProbe(file *models.AudioFile, data []byte) error {
	var p probeOutput
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parse ffprobe output: %w", err)
	}

	duration, _ := strconv.ParseFloat(p.Format.Duration, 64)
	for _, st := range p.Streams {
		if st.CodecType != "audio" {
			continue
		}
		file.Channels = st.Channels
		file.SampleRate, _ = strconv.Atoi(st.SampleRate)
		if duration == 0 {
			duration, _ = strconv.ParseFloat(st.Duration, 64)
		}
		break
	}

	file.DurationSeconds = math.Round(duration*100) / 100
	file.DurationMinutes = math.Round(duration/60*100) / 100
	return nil
}
