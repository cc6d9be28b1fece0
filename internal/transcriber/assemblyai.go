package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/logger"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
)

type AssemblyAIOptions struct {
	APIKey       string
	BaseURL      string
	PollInterval time.Duration
	Timeout      time.Duration
}

type assemblyAI struct {
	opts   AssemblyAIOptions
	client *http.Client
	logger logger.Logger
}

// NewAssemblyAI creates a Transcriber backed by the AssemblyAI REST API.
func NewAssemblyAI(opts AssemblyAIOptions, client *http.Client, log logger.Logger) Transcriber {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 3 * time.Second
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &assemblyAI{opts: opts, client: client, logger: log}
}

func (a *assemblyAI) Name() string { return "assemblyai" }

type aaiWord struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker"`
}

type aaiUtterance struct {
	Speaker    string    `json:"speaker"`
	Text       string    `json:"text"`
	Start      float64   `json:"start"`
	End        float64   `json:"end"`
	Confidence float64   `json:"confidence"`
	Words      []aaiWord `json:"words"`
}

type aaiTranscript struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	Text          string         `json:"text"`
	Error         string         `json:"error"`
	LanguageCode  string         `json:"language_code"`
	Confidence    float64        `json:"confidence"`
	AudioDuration float64        `json:"audio_duration"`
	Words         []aaiWord      `json:"words"`
	Utterances    []aaiUtterance `json:"utterances"`
}

func (a *assemblyAI) Transcribe(ctx context.Context, audioPath string, opts Options) (*models.Transcript, error) {
	if a.opts.APIKey == "" {
		return nil, fmt.Errorf("%w: ASSEMBLYAI_API_KEY is not set", ErrNotConfigured)
	}

	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	a.logger.Info(ctx, "Uploading to AssemblyAI: %s", audioPath)
	uploadURL, err := a.upload(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("%w: upload audio: %w", ErrFailed, err)
	}

	id, err := a.create(ctx, uploadURL, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: create transcript: %w", ErrFailed, err)
	}
	a.logger.Info(ctx, "AssemblyAI transcript queued: %s", id)

	result, err := a.poll(ctx, id)
	if err != nil {
		if errors.Is(err, ErrFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrFailed, err)
	}

	return convertAssemblyAI(result, opts.Language), nil
}

func (a *assemblyAI) upload(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.opts.BaseURL+"/upload", f)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	var out struct {
		UploadURL string `json:"upload_url"`
	}
	if err := a.do(req, &out); err != nil {
		return "", err
	}
	if out.UploadURL == "" {
		return "", fmt.Errorf("empty upload_url in response")
	}
	return out.UploadURL, nil
}

func (a *assemblyAI) create(ctx context.Context, audioURL string, opts Options) (string, error) {
	body := map[string]interface{}{
		"audio_url":      audioURL,
		"punctuate":      true,
		"format_text":    true,
		"speaker_labels": opts.Diarization,
	}
	if opts.Language != "" {
		body["language_code"] = opts.Language
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.opts.BaseURL+"/transcript", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out aaiTranscript
	if err := a.do(req, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("empty transcript id in response")
	}
	return out.ID, nil
}

func (a *assemblyAI) poll(ctx context.Context, id string) (*aaiTranscript, error) {
	ticker := time.NewTicker(a.opts.PollInterval)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.opts.BaseURL+"/transcript/"+id, nil)
		if err != nil {
			return nil, err
		}

		var out aaiTranscript
		if err := a.do(req, &out); err != nil {
			return nil, fmt.Errorf("poll transcript: %w", err)
		}

		switch out.Status {
		case "completed":
			a.logger.Info(ctx, "AssemblyAI transcript completed: %s", id)
			return &out, nil
		case "error":
			return nil, fmt.Errorf("%w: %s", ErrFailed, out.Error)
		}

		a.logger.Debug(ctx, "AssemblyAI transcript %s status: %s", id, out.Status)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("transcription timed out: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (a *assemblyAI) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", a.opts.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("assemblyai status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("assemblyai status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// convertAssemblyAI maps the API payload (milliseconds) onto a Transcript (seconds).
func convertAssemblyAI(r *aaiTranscript, language string) *models.Transcript {
	t := &models.Transcript{
		FullText:      r.Text,
		Language:      r.LanguageCode,
		Confidence:    r.Confidence,
		AudioDuration: r.AudioDuration,
		Provider:      "assemblyai",
	}
	if t.Language == "" {
		t.Language = language
	}

	for _, w := range r.Words {
		t.Words = append(t.Words, convertWord(w))
	}

	if len(r.Utterances) > 0 {
		for i, u := range r.Utterances {
			seg := models.Segment{
				ID:         i,
				Speaker:    u.Speaker,
				Text:       u.Text,
				Start:      u.Start / 1000,
				End:        u.End / 1000,
				Confidence: u.Confidence,
			}
			for _, w := range u.Words {
				seg.Words = append(seg.Words, convertWord(w))
			}
			t.Segments = append(t.Segments, seg)
		}
	} else {
		t.Segments = BuildSpeakerSegments(t.Words)
	}

	if t.AudioDuration == 0 && len(t.Words) > 0 {
		t.AudioDuration = t.Words[len(t.Words)-1].End
	}

	t.Speakers = SpeakerStats(t.Segments)
	return t
}

func convertWord(w aaiWord) models.Word {
	return models.Word{
		Text:       w.Text,
		Start:      w.Start / 1000,
		End:        w.End / 1000,
		Confidence: w.Confidence,
		Speaker:    w.Speaker,
	}
}
