package audio

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// ConvertToWAV re-encodes to 16 kHz mono PCM, the input format whisper.cpp expects.
func (s *implService) ConvertToWAV(ctx context.Context, path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return path, nil
	}

	wavPath := strings.TrimSuffix(path, filepath.Ext(path)) + "_converted.wav"
	s.logger.Info(ctx, "Converting to 16kHz mono WAV: %s", path)

	args := []string{
		"-i", path,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-y",
		wavPath,
	}

	if _, err := s.executor.Execute(ctx, "ffmpeg", args...); err != nil {
		return "", fmt.Errorf("ffmpeg convert: %w", err)
	}

	s.logger.Info(ctx, "Audio converted: %s", wavPath)
	return wavPath, nil
}
