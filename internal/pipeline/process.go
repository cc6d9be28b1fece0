package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/minutes"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/progress"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/store"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/transcriber"
)

// Process runs a drop-folder recording with the configured defaults.
func (p *implPipeline) Process(ctx context.Context, audioPath string) error {
	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	_, err := p.ProcessFile(ctx, Request{
		AudioPath:   audioPath,
		Metadata:    models.MeetingMetadata{Title: strings.ReplaceAll(stem, "_", " ")},
		Template:    p.opts.Template,
		Formats:     p.opts.Formats,
		Language:    p.opts.Language,
		Diarization: p.opts.Diarization,
	})
	return err
}

// ProcessFile orchestrates validate, convert, transcribe, analyze and generate for one recording.
func (p *implPipeline) ProcessFile(ctx context.Context, req Request) (*Result, error) {
	if req.JobID == "" {
		req.JobID = uuid.NewString()
	}
	if req.Template == "" {
		req.Template = p.opts.Template
	}
	if len(req.Formats) == 0 {
		req.Formats = p.opts.Formats
	}
	if req.Language == "" {
		req.Language = p.opts.Language
	}
	req.Template = strings.ToUpper(strings.TrimSpace(req.Template))

	// reject bad requests before any provider is called
	if err := minutes.ValidTemplate(req.Template); err != nil {
		return nil, p.reject(ctx, req.JobID, progress.StageValidate, err)
	}
	formats, err := minutes.NormalizeFormats(req.Formats)
	if err != nil {
		return nil, p.reject(ctx, req.JobID, progress.StageValidate, err)
	}
	req.Formats = formats

	if err := p.sem.acquire(ctx); err != nil {
		return nil, p.reject(ctx, req.JobID, progress.StageValidate, fmt.Errorf("wait for slot: %w", err))
	}
	defer p.sem.release()

	startTime := time.Now()
	meta := req.Metadata.WithDefaults(p.now())

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting meeting processing: %s", req.AudioPath)
	p.logger.Info(ctx, "Job: %s, template: %s", req.JobID, req.Template)
	p.logger.Info(ctx, "========================================")

	meeting := &models.Meeting{
		ID:        req.JobID,
		Title:     meta.Title,
		Template:  req.Template,
		Status:    models.StatusQueued,
		AudioFile: filepath.Base(req.AudioPath),
	}
	if err := p.deps.Store.Create(ctx, meeting); err != nil {
		return nil, p.reject(ctx, req.JobID, progress.StageValidate, fmt.Errorf("record meeting: %w", err))
	}

	result := &Result{MeetingID: req.JobID, Template: req.Template}

	// Step 1: Validate audio
	p.stage(req.JobID, progress.StageValidate, progress.StatusStarted, req.AudioPath)
	audioFile, err := p.deps.Audio.Validate(ctx, req.AudioPath)
	if err != nil {
		return nil, p.fail(ctx, req.JobID, progress.StageValidate, fmt.Errorf("validate audio: %w", err))
	}
	if meta.Duration == "" && audioFile.DurationSeconds > 0 {
		meta.Duration = models.FormatDuration(audioFile.DurationSeconds)
	}
	result.AudioFile = audioFile
	p.stage(req.JobID, progress.StageValidate, progress.StatusCompleted, fmt.Sprintf("%.2f MB", audioFile.SizeMB))

	// Step 2: Convert for local transcription
	transcribePath := req.AudioPath
	if p.opts.ConvertToWAV {
		p.stage(req.JobID, progress.StageConvert, progress.StatusStarted, "")
		wavPath, err := p.deps.Audio.ConvertToWAV(ctx, req.AudioPath)
		if err != nil {
			return nil, p.fail(ctx, req.JobID, progress.StageConvert, fmt.Errorf("convert audio: %w", err))
		}
		if wavPath != req.AudioPath {
			defer p.deps.Audio.Cleanup(ctx, wavPath)
		}
		transcribePath = wavPath
		p.stage(req.JobID, progress.StageConvert, progress.StatusCompleted, "")
	}

	// Step 3: Transcribe
	p.setStatus(ctx, req.JobID, models.StatusTranscribing)
	p.stage(req.JobID, progress.StageTranscribe, progress.StatusStarted, p.deps.Transcriber.Name())
	transcript, err := p.deps.Transcriber.Transcribe(ctx, transcribePath, transcriber.Options{
		Language:    req.Language,
		Diarization: req.Diarization,
	})
	if err != nil {
		return nil, p.fail(ctx, req.JobID, progress.StageTranscribe, fmt.Errorf("transcribe: %w", err))
	}
	transcript.Metadata = &meta

	stem := strings.TrimSuffix(filepath.Base(req.AudioPath), filepath.Ext(req.AudioPath))
	transcriptFile, err := p.deps.Transcripts.Save(transcript, stem)
	if err != nil {
		// keep going, the transcript is still returned inline
		p.logger.Warn(ctx, "Failed to save transcript: %v", err)
	}
	result.Transcript = transcript
	result.TranscriptFile = transcriptFile
	p.stage(req.JobID, progress.StageTranscribe, progress.StatusCompleted,
		fmt.Sprintf("%d words, %d segments", len(transcript.Words), len(transcript.Segments)))

	// Step 4: Analyze
	p.setStatus(ctx, req.JobID, models.StatusAnalyzing)
	p.stage(req.JobID, progress.StageAnalyze, progress.StatusStarted, "")
	analysis, err := p.deps.Analyzer.Analyze(ctx, transcript.SpeakerText(), &meta)
	if err != nil {
		return nil, p.fail(ctx, req.JobID, progress.StageAnalyze, fmt.Errorf("analyze: %w", err))
	}
	result.Analysis = analysis
	p.stage(req.JobID, progress.StageAnalyze, progress.StatusCompleted,
		fmt.Sprintf("%d action items, %d decisions", len(analysis.ActionItems), len(analysis.Decisions)))

	// Step 5: Generate minutes
	p.setStatus(ctx, req.JobID, models.StatusGenerating)
	p.stage(req.JobID, progress.StageGenerate, progress.StatusStarted, strings.Join(req.Formats, ","))
	outputs, err := p.deps.Minutes.Generate(ctx, &meta, analysis, req.Template, req.Formats)
	if err != nil {
		return nil, p.fail(ctx, req.JobID, progress.StageGenerate, fmt.Errorf("generate minutes: %w", err))
	}
	result.Outputs = outputs
	result.Metadata = meta
	p.stage(req.JobID, progress.StageGenerate, progress.StatusCompleted, "")

	err = p.deps.Store.Complete(ctx, req.JobID, store.Completion{
		TranscriptFile: transcriptFile,
		Outputs:        outputs,
		ActionItems:    len(analysis.ActionItems),
		Decisions:      len(analysis.Decisions),
	})
	if err != nil {
		p.logger.Warn(ctx, "Failed to record completed meeting %s: %v", req.JobID, err)
	}

	result.ProcessingTime = time.Since(startTime)
	p.stage(req.JobID, progress.StageDone, progress.StatusCompleted, "")

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Processing completed successfully!")
	p.logger.Info(ctx, "Transcript: %s", transcriptFile)
	for format, path := range outputs {
		p.logger.Info(ctx, "Output %s: %s", format, path)
	}
	p.logger.Info(ctx, "Processing time: %s", result.ProcessingTime)
	p.logger.Info(ctx, "========================================")

	return result, nil
}

func (p *implPipeline) stage(jobID, stage, status, msg string) {
	p.deps.Progress.Publish(progress.Event{
		JobID:   jobID,
		Stage:   stage,
		Status:  status,
		Message: msg,
		Time:    p.now().UTC(),
	})
}

func (p *implPipeline) setStatus(ctx context.Context, jobID string, status models.MeetingStatus) {
	if err := p.deps.Store.UpdateStatus(ctx, jobID, status, ""); err != nil && !errors.Is(err, store.ErrNotFound) {
		p.logger.Warn(ctx, "Failed to update meeting %s status: %v", jobID, err)
	}
}

// reject publishes a final failed event for a job that never got a meeting
// record of its own, leaving the store untouched.
func (p *implPipeline) reject(ctx context.Context, jobID, stage string, err error) error {
	p.logger.Error(ctx, "Meeting %s rejected: %v", jobID, err)
	p.stage(jobID, stage, progress.StatusFailed, err.Error())
	return err
}

// fail records err against the meeting and returns it.
func (p *implPipeline) fail(ctx context.Context, jobID, stage string, err error) error {
	p.logger.Error(ctx, "Meeting %s failed at %s: %v", jobID, stage, err)

	// the caller's ctx may already be cancelled
	if uerr := p.deps.Store.UpdateStatus(context.WithoutCancel(ctx), jobID, models.StatusFailed, err.Error()); uerr != nil {
		p.logger.Warn(ctx, "Failed to record failure for %s: %v", jobID, uerr)
	}
	p.stage(jobID, stage, progress.StatusFailed, err.Error())
	return err
}
