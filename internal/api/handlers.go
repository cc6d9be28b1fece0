package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/minutes"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/pipeline"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/store"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/transcriber"
)

const serviceName = "Meeting Minutes Generator"

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":                 "healthy",
		"service":                serviceName,
		"version":                h.opts.Version,
		"gemini_configured":      h.opts.GeminiConfigured,
		"assemblyai_configured":  h.opts.AssemblyAIConfigured,
		"transcription_provider": h.deps.Transcriber.Name(),
	})
}

type uploadMetadata struct {
	*models.AudioFile
	MeetingMetadata models.MeetingMetadata `json:"meeting_metadata"`
}

// Upload stores and validates a recording without processing it.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	path, meta, ok := h.receiveAudio(w, r)
	if !ok {
		return
	}

	audioFile, err := h.deps.Audio.Validate(r.Context(), path)
	if err != nil {
		h.deps.Audio.Cleanup(r.Context(), path)
		h.fail(w, r, "upload", err)
		return
	}

	h.logger.Info(r.Context(), "Audio file uploaded successfully: %s", audioFile.Name)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "File uploaded successfully",
		"file_id":   audioFile.ID,
		"file_path": path,
		"metadata":  uploadMetadata{AudioFile: audioFile, MeetingMetadata: meta},
	})
}

// parseUpload reads the multipart body once. Later calls are no-ops.
func (h *Handlers) parseUpload(w http.ResponseWriter, r *http.Request) bool {
	if r.MultipartForm != nil {
		return true
	}
	if h.opts.MaxUploadBytes > 0 {
		// leave room for the other form fields
		r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes+1<<20)
	}
	if err := r.ParseMultipartForm(h.opts.MaxFormMemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large. Maximum size: %dMB", h.opts.MaxUploadBytes>>20))
			return false
		}
		writeError(w, http.StatusBadRequest, "No file provided")
		return false
	}
	return true
}

// receiveAudio parses a multipart upload and saves its "file" part.
// It writes the error response itself and reports ok=false on failure.
func (h *Handlers) receiveAudio(w http.ResponseWriter, r *http.Request) (string, models.MeetingMetadata, bool) {
	var meta models.MeetingMetadata

	if !h.parseUpload(w, r) {
		return "", meta, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return "", meta, false
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return "", meta, false
	}

	if raw := r.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid metadata JSON")
			return "", meta, false
		}
	}

	if !h.deps.Audio.IsSupported(header.Filename) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported file format. Allowed: %s",
			strings.Join(h.deps.Audio.AllowedFormats(), ", ")))
		return "", meta, false
	}

	path, err := h.deps.Audio.Save(r.Context(), header.Filename, file)
	if err != nil {
		h.fail(w, r, "upload", err)
		return "", meta, false
	}
	return path, meta, true
}

type transcribeRequest struct {
	FilePath          string                 `json:"file_path"`
	Language          string                 `json:"language"`
	LanguageCode      string                 `json:"language_code"`
	EnableDiarization *bool                  `json:"enable_diarization"`
	Metadata          models.MeetingMetadata `json:"metadata"`
}

// Transcribe runs speech-to-text on a previously uploaded recording.
func (h *Handlers) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req transcribeRequest
	if err := decodeJSON(r, &req); err != nil || req.FilePath == "" {
		writeError(w, http.StatusBadRequest, "file_path is required")
		return
	}

	// only recordings inside the upload folder can be transcribed
	path := filepath.Join(h.opts.UploadDir, filepath.Base(filepath.Clean(req.FilePath)))
	if _, err := h.deps.Audio.Validate(r.Context(), path); err != nil {
		h.fail(w, r, "transcription", err)
		return
	}

	if h.opts.ConvertToWAV {
		wavPath, err := h.deps.Audio.ConvertToWAV(r.Context(), path)
		if err != nil {
			h.fail(w, r, "transcription", err)
			return
		}
		if wavPath != path {
			defer h.deps.Audio.Cleanup(r.Context(), wavPath)
		}
		path = wavPath
	}

	language := req.Language
	if language == "" {
		language = req.LanguageCode
	}
	if language == "" {
		language = h.opts.DefaultLanguage
	}
	diarization := req.EnableDiarization == nil || *req.EnableDiarization

	h.logger.Info(r.Context(), "Starting transcription for %s...", path)
	t, err := h.deps.Transcriber.Transcribe(r.Context(), path, transcriber.Options{Language: language, Diarization: diarization})
	if err != nil {
		h.fail(w, r, "transcription", err)
		return
	}

	meta := req.Metadata.WithDefaults(time.Now())
	t.Metadata = &meta

	stem := strings.TrimSuffix(filepath.Base(req.FilePath), filepath.Ext(req.FilePath))
	file, err := h.deps.Transcripts.Save(t, stem)
	if err != nil {
		h.fail(w, r, "transcription", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":         "Transcription completed successfully",
		"full_transcript": t.FullText,
		"segments":        t.Segments,
		"speakers":        t.Speakers,
		"confidence":      t.Confidence,
		"transcript_file": file,
		"metadata":        t.Metadata,
	})
}

type analyzeRequest struct {
	Transcript string                  `json:"transcript"`
	Metadata   *models.MeetingMetadata `json:"metadata"`
}

// Analyze extracts action items, decisions and the rest from a transcript.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Transcript) == "" {
		writeError(w, http.StatusBadRequest, "transcript is required")
		return
	}

	text, meta := h.resolveTranscript(req.Transcript)
	if req.Metadata != nil {
		meta = req.Metadata
	}

	h.logger.Info(r.Context(), "Starting transcript analysis...")
	analysis, err := h.deps.Analyzer.Analyze(r.Context(), text, meta)
	if err != nil {
		h.fail(w, r, "analysis", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Analysis completed successfully",
		"analysis": analysis,
	})
}

// resolveTranscript treats a value naming a saved transcript as that transcript,
// anything else as literal text.
func (h *Handlers) resolveTranscript(value string) (string, *models.MeetingMetadata) {
	if strings.HasSuffix(strings.TrimSpace(value), ".json") {
		if t, err := h.deps.Transcripts.Load(strings.TrimSpace(value)); err == nil {
			return t.SpeakerText(), t.Metadata
		}
	}
	return value, nil
}

type generateRequest struct {
	MeetingData *models.MeetingMetadata `json:"meeting_data"`
	Analysis    *models.Analysis        `json:"analysis"`
	Template    string                  `json:"template"`
	Formats     []string                `json:"formats"`
}

func (h *Handlers) GenerateMinutes(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil || req.MeetingData == nil || req.Analysis == nil {
		writeError(w, http.StatusBadRequest, "meeting_data and analysis are required")
		return
	}
	if req.Template == "" {
		req.Template = h.opts.DefaultTemplate
	}
	if len(req.Formats) == 0 {
		req.Formats = []string{"pdf", "markdown"}
	}

	h.logger.Info(r.Context(), "Generating minutes in %s format...", req.Template)
	files, err := h.deps.Minutes.Generate(r.Context(), req.MeetingData, req.Analysis, req.Template, req.Formats)
	if err != nil {
		h.fail(w, r, "generation", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Minutes generated successfully",
		"files":     files,
		"downloads": downloadLinks(files),
		"template":  strings.ToUpper(req.Template),
	})
}

// ProcessMeeting runs the whole pipeline for an uploaded recording.
func (h *Handlers) ProcessMeeting(w http.ResponseWriter, r *http.Request) {
	if !h.parseUpload(w, r) {
		return
	}
	jobID := strings.TrimSpace(r.FormValue("job_id"))
	if jobID != "" {
		_, err := h.deps.Store.Get(r.Context(), jobID)
		if err == nil {
			h.fail(w, r, "processing", fmt.Errorf("%w: job_id %s", store.ErrExists, jobID))
			return
		}
		if !errors.Is(err, store.ErrNotFound) {
			h.fail(w, r, "processing", err)
			return
		}
	}

	template := r.FormValue("template")
	if template == "" {
		template = h.opts.DefaultTemplate
	}
	if err := minutes.ValidTemplate(template); err != nil {
		h.fail(w, r, "processing", err)
		return
	}

	path, meta, ok := h.receiveAudio(w, r)
	if !ok {
		return
	}

	formats := []string{"pdf", "markdown"}
	if raw := r.FormValue("formats"); raw != "" {
		formats = strings.Split(raw, ",")
	}

	res, err := h.deps.Pipeline.ProcessFile(r.Context(), pipeline.Request{
		JobID:       jobID,
		AudioPath:   path,
		Metadata:    meta,
		Template:    template,
		Formats:     formats,
		Language:    r.FormValue("language"),
		Diarization: !strings.EqualFold(r.FormValue("enable_diarization"), "false"),
	})
	if err != nil {
		if errors.Is(err, store.ErrExists) {
			// lost a race with another request using the same job_id
			h.deps.Audio.Cleanup(r.Context(), path)
		}
		h.fail(w, r, "processing", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":         "Meeting processed successfully",
		"meeting_id":      res.MeetingID,
		"transcript_file": res.TranscriptFile,
		"transcript":      res.Transcript.FullText,
		"segments":        res.Transcript.Segments,
		"speakers":        res.Transcript.Speakers,
		"audio_info":      res.AudioFile,
		"meeting_data":    res.Metadata,
		"analysis":        res.Analysis,
		"minutes_files":   res.Outputs,
		"downloads":       downloadLinks(res.Outputs),
	})
}

type updateSpeakersRequest struct {
	TranscriptFile string            `json:"transcript_file"`
	SpeakerMapping map[string]string `json:"speaker_mapping"`
}

func (h *Handlers) UpdateSpeakers(w http.ResponseWriter, r *http.Request) {
	var req updateSpeakersRequest
	if err := decodeJSON(r, &req); err != nil || req.TranscriptFile == "" || len(req.SpeakerMapping) == 0 {
		writeError(w, http.StatusBadRequest, "transcript_file and speaker_mapping are required")
		return
	}

	t, err := h.deps.Transcripts.UpdateSpeakers(req.TranscriptFile, req.SpeakerMapping)
	if err != nil {
		h.fail(w, r, "update speakers", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":          "Speaker labels updated successfully",
		"transcript_file":  req.TranscriptFile,
		"updated_speakers": t.Speakers,
	})
}

type queryRequest struct {
	Transcript string `json:"transcript"`
	Query      string `json:"query"`
}

func (h *Handlers) CustomQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(r, &req); err != nil || req.Transcript == "" || req.Query == "" {
		writeError(w, http.StatusBadRequest, "transcript and query are required")
		return
	}

	text, _ := h.resolveTranscript(req.Transcript)
	answer, err := h.deps.Analyzer.Query(r.Context(), text, req.Query)
	if err != nil {
		h.fail(w, r, "custom query", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"query":  req.Query,
		"answer": answer,
	})
}

// Download serves a generated document or transcript as an attachment.
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["filename"]
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		writeError(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	for _, dir := range []string{h.opts.ExportDir, h.deps.Transcripts.Dir()} {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		defer f.Close()

		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
		http.ServeContent(w, r, name, info.ModTime(), f)
		return
	}

	writeError(w, http.StatusNotFound, "File not found")
}

func (h *Handlers) ListMeetings(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	meetings, err := h.deps.Store.List(r.Context(), limit)
	if err != nil {
		h.fail(w, r, "list meetings", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"meetings": meetings,
		"count":    len(meetings),
	})
}

func (h *Handlers) GetMeeting(w http.ResponseWriter, r *http.Request) {
	m, err := h.deps.Store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, "get meeting", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func downloadLinks(files map[string]string) map[string]string {
	links := make(map[string]string, len(files))
	for format, path := range files {
		links[format] = "/api/download/" + filepath.Base(path)
	}
	return links
}
