package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/logger"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/pkg/executor"
)

type WhisperOptions struct {
	BinaryPath string
	ModelPath  string
	Threads    int
	Prompt     string
	Timeout    time.Duration
}

type whisper struct {
	opts     WhisperOptions
	executor executor.Executor
	logger   logger.Logger
}

// NewWhisper creates a Transcriber that shells out to whisper.cpp.
// Input must already be 16 kHz mono WAV.
func NewWhisper(opts WhisperOptions, exec executor.Executor, log logger.Logger) Transcriber {
	return &whisper{opts: opts, executor: exec, logger: log}
}

func (w *whisper) Name() string { return "whisper" }

func (w *whisper) Transcribe(ctx context.Context, audioPath string, opts Options) (*models.Transcript, error) {
	if _, err := os.Stat(w.opts.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: whisper model %s: %v", ErrNotConfigured, w.opts.ModelPath, err)
	}

	if w.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.opts.Timeout)
		defer cancel()
	}

	// whisper.cpp appends .json to the prefix
	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + "_whisper"
	language := opts.Language
	if language == "" {
		language = "auto"
	}

	w.logger.Info(ctx, "Starting whisper transcription with %d threads: %s", w.opts.Threads, audioPath)

	// -ojf: full JSON including per-token offsets and probabilities
	args := []string{
		"-m", w.opts.ModelPath,
		"-f", audioPath,
		"-ojf",
		"-l", language,
		"-t", strconv.Itoa(w.opts.Threads),
		"--output-file", outputPrefix,
	}
	if w.opts.Prompt != "" {
		args = append(args, "--prompt", w.opts.Prompt)
	}

	if _, err := w.executor.Execute(ctx, w.opts.BinaryPath, args...); err != nil {
		return nil, fmt.Errorf("%w: whisper: %w", ErrFailed, err)
	}

	jsonPath := outputPrefix + ".json"
	defer os.Remove(jsonPath)

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read whisper output: %w", ErrFailed, err)
	}

	t, err := parseWhisperJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailed, err)
	}
	if t.Language == "" {
		t.Language = opts.Language
	}

	w.logger.Info(ctx, "Whisper transcription completed: %d segments", len(t.Segments))
	return t, nil
}

type whisperOffsets struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

type whisperOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets whisperOffsets `json:"offsets"`
		Text    string         `json:"text"`
		Tokens  []struct {
			Text    string         `json:"text"`
			Offsets whisperOffsets `json:"offsets"`
			P       float64        `json:"p"`
		} `json:"tokens"`
	} `json:"transcription"`
}

func parseWhisperJSON(data []byte) (*models.Transcript, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	t := &models.Transcript{
		Language: out.Result.Language,
		Provider: "whisper",
	}

	var texts []string
	var confSum float64
	for _, item := range out.Transcription {
		seg := models.Segment{
			ID:    len(t.Segments),
			Text:  strings.TrimSpace(item.Text),
			Start: item.Offsets.From / 1000,
			End:   item.Offsets.To / 1000,
		}

		// Tokens are sub-word pieces; a leading space starts a new word.
		for _, tok := range item.Tokens {
			if strings.HasPrefix(tok.Text, "[_") || strings.TrimSpace(tok.Text) == "" {
				continue
			}
			if len(seg.Words) == 0 || strings.HasPrefix(tok.Text, " ") {
				seg.Words = append(seg.Words, models.Word{
					Text:       strings.TrimSpace(tok.Text),
					Start:      tok.Offsets.From / 1000,
					End:        tok.Offsets.To / 1000,
					Confidence: tok.P,
				})
				continue
			}
			last := &seg.Words[len(seg.Words)-1]
			last.Text += tok.Text
			last.End = tok.Offsets.To / 1000
			last.Confidence = (last.Confidence + tok.P) / 2
		}

		var segConf float64
		for _, w := range seg.Words {
			segConf += w.Confidence
		}
		if len(seg.Words) > 0 {
			seg.Confidence = round2(segConf / float64(len(seg.Words)))
		}
		if seg.Text == "" {
			continue
		}
		confSum += seg.Confidence
		texts = append(texts, seg.Text)
		t.Words = append(t.Words, seg.Words...)
		t.Segments = append(t.Segments, seg)
	}

	t.FullText = strings.Join(texts, " ")
	if len(t.Segments) > 0 {
		t.Confidence = round2(confSum / float64(len(t.Segments)))
		t.AudioDuration = t.Segments[len(t.Segments)-1].End
	}
	return t, nil
}
