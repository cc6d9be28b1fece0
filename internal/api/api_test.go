package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/analyzer"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/audio"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/logger"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/minutes"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/pipeline"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/progress"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/store"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/transcriber"
)

type fakeExecutor struct{}

func (fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	if name == "ffprobe" {
		return `{"format":{"duration":"120.0"},"streams":[{"codec_type":"audio","channels":1,"sample_rate":"16000"}]}`, nil
	}
	return "", nil
}

func (e fakeExecutor) ExecuteInDir(ctx context.Context, dir, name string, args ...string) (string, error) {
	return e.Execute(ctx, name, args...)
}

func (fakeExecutor) Available(string) bool { return true }

type fakeTranscriber struct{}

func (fakeTranscriber) Name() string { return "fake" }

func (fakeTranscriber) Transcribe(ctx context.Context, path string, opts transcriber.Options) (*models.Transcript, error) {
	return &models.Transcript{
		FullText:   "Alex: I will send the report.",
		Confidence: 0.93,
		Segments: []models.Segment{
			{ID: 0, Speaker: "A", Text: "I will send the report.", Start: 0, End: 2},
		},
		Speakers: map[string]*models.SpeakerInfo{"A": {Name: "Speaker A", Label: "A"}},
		Provider: "fake",
	}, nil
}

type fakeAnalyzer struct {
	lastTranscript string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, transcript string, meta *models.MeetingMetadata) (*models.Analysis, error) {
	f.lastTranscript = transcript
	switch transcript {
	case "unconfigured":
		return nil, analyzer.ErrNotConfigured
	case "quota":
		return nil, fmt.Errorf("%w: key 1: quota exhausted", analyzer.ErrFailed)
	}
	return &models.Analysis{
		ActionItems:      []models.ActionItem{{Description: "Send the report", Owner: "Alex", Priority: models.PriorityMedium}},
		ExecutiveSummary: models.ExecutiveSummary{Overview: "Short sync."},
	}, nil
}

func (f *fakeAnalyzer) Query(ctx context.Context, transcript, question string) (string, error) {
	f.lastTranscript = transcript
	return "Alex sends the report.", nil
}

func (f *fakeAnalyzer) Sentiment(ctx context.Context, transcript string) (*models.Sentiment, error) {
	return &models.Sentiment{Overall: "neutral"}, nil
}

type testEnv struct {
	handlers *Handlers
	router   http.Handler
	analyzer *fakeAnalyzer
	repo     *transcriber.Repository
	broker   *progress.Broker
	dirs     map[string]string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	root := t.TempDir()
	dirs := map[string]string{}
	for _, d := range []string{"uploads", "transcripts", "exports"} {
		dirs[d] = filepath.Join(root, d)
		if err := os.MkdirAll(dirs[d], 0755); err != nil {
			t.Fatal(err)
		}
	}

	st, err := store.Open(filepath.Join(root, "meetings.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	log := logger.Nop()
	audioSvc := audio.New(audio.Options{
		UploadDir:      dirs["uploads"],
		MaxSizeBytes:   1 << 20,
		AllowedFormats: []string{"mp3", "wav"},
	}, fakeExecutor{}, log)
	fa := &fakeAnalyzer{}
	repo := transcriber.NewRepository(dirs["transcripts"])
	gen := minutes.New(minutes.Options{ExportDir: dirs["exports"]}, log)
	broker := progress.NewBroker()

	deps := Deps{
		Audio:       audioSvc,
		Transcriber: fakeTranscriber{},
		Transcripts: repo,
		Analyzer:    fa,
		Minutes:     gen,
		Store:       st,
		Broker:      broker,
	}
	deps.Pipeline = pipeline.New(pipeline.Deps{
		Audio:       audioSvc,
		Transcriber: deps.Transcriber,
		Transcripts: repo,
		Analyzer:    fa,
		Minutes:     gen,
		Store:       st,
		Progress:    broker,
	}, pipeline.Options{}, log)

	h := New(deps, Options{
		Version:          "test",
		UploadDir:        dirs["uploads"],
		ExportDir:        dirs["exports"],
		MaxUploadBytes:   1 << 20,
		GeminiConfigured: true,
	}, log)

	return &testEnv{handlers: h, router: h.Router(), analyzer: fa, repo: repo, broker: broker, dirs: dirs}
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var body map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
		}
	}
	return rec, body
}

func jsonRequest(t *testing.T, path string, v interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, path, filename string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte("ID3 fake mp3 payload"))
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/health", "/api/health"} {
		rec, body := env.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
		if body["status"] != "healthy" || body["gemini_configured"] != true || body["assemblyai_configured"] != false || body["transcription_provider"] != "fake" {
			t.Errorf("%s body = %v", path, body)
		}
	}
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, multipartRequest(t, "/api/upload", "team sync.mp3", map[string]string{
		"metadata": `{"title":"Team Sync","participants":"Alex, Bo"}`,
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %v", rec.Code, body)
	}
	if body["file_id"] != "team_sync" {
		t.Errorf("file_id = %v", body["file_id"])
	}
	meta := body["metadata"].(map[string]interface{})
	if meta["duration_seconds"] != 120.0 || meta["valid"] != true {
		t.Errorf("metadata = %v", meta)
	}
	mm := meta["meeting_metadata"].(map[string]interface{})
	if mm["title"] != "Team Sync" || len(mm["participants"].([]interface{})) != 2 {
		t.Errorf("meeting_metadata = %v", mm)
	}
	if _, err := os.Stat(filepath.Join(env.dirs["uploads"], "team_sync.mp3")); err != nil {
		t.Errorf("upload not saved: %v", err)
	}
}

func TestUploadErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		filename string
		fields   map[string]string
		want     string
	}{
		{"no file", "", nil, "No file provided"},
		{"bad metadata", "a.mp3", map[string]string{"metadata": "{not json"}, "Invalid metadata JSON"},
		{"unsupported", "a.exe", nil, "Unsupported file format. Allowed: mp3, wav"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := env.do(t, multipartRequest(t, "/api/upload", tt.filename, tt.fields))
			if rec.Code != http.StatusBadRequest || body["error"] != tt.want {
				t.Errorf("status = %d body = %v", rec.Code, body)
			}
		})
	}

	if entries, _ := os.ReadDir(env.dirs["uploads"]); len(entries) != 0 {
		t.Errorf("rejected uploads left %d files", len(entries))
	}
}

func TestTranscribe(t *testing.T) {
	env := newTestEnv(t)
	if err := os.WriteFile(filepath.Join(env.dirs["uploads"], "call.mp3"), []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}

	rec, body := env.do(t, jsonRequest(t, "/api/transcribe", map[string]interface{}{
		"file_path": "/somewhere/else/call.mp3",
		"metadata":  map[string]string{"title": "Call"},
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %v", rec.Code, body)
	}
	if body["full_transcript"] != "Alex: I will send the report." || body["confidence"] != 0.93 {
		t.Errorf("body = %v", body)
	}
	file, _ := body["transcript_file"].(string)
	if !strings.HasPrefix(filepath.Base(file), "call_transcript_") {
		t.Errorf("transcript_file = %s", file)
	}

	rec, body = env.do(t, jsonRequest(t, "/api/transcribe", map[string]string{}))
	if rec.Code != http.StatusBadRequest || body["error"] != "file_path is required" {
		t.Errorf("missing file_path: %d %v", rec.Code, body)
	}

	rec, _ = env.do(t, jsonRequest(t, "/api/transcribe", map[string]string{"file_path": "missing.mp3"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing file status = %d", rec.Code)
	}
}

func TestTranscribeUpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	if err := os.WriteFile(filepath.Join(env.dirs["uploads"], "a.wav"), []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid API key"}`))
	}))
	defer upstream.Close()
	env.handlers.deps.Transcriber = transcriber.NewAssemblyAI(transcriber.AssemblyAIOptions{
		APIKey:       "bad-key",
		BaseURL:      upstream.URL,
		PollInterval: 5 * time.Millisecond,
		Timeout:      time.Second,
	}, upstream.Client(), logger.Nop())

	rec, body := env.do(t, jsonRequest(t, "/api/transcribe", map[string]string{"file_path": "a.wav"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %v", rec.Code, body)
	}
	if msg, _ := body["error"].(string); !strings.Contains(msg, "Invalid API key") {
		t.Errorf("error = %q, want the provider message", msg)
	}
}

func TestAnalyzeUpstreamFailure(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, jsonRequest(t, "/api/analyze", map[string]string{"transcript": "quota"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %v", rec.Code, body)
	}
	if msg, _ := body["error"].(string); !strings.Contains(msg, "quota exhausted") {
		t.Errorf("error = %q", msg)
	}
}

func TestAnalyze(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, jsonRequest(t, "/api/analyze", map[string]string{"transcript": "Alex: send the report"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %v", rec.Code, body)
	}
	analysis := body["analysis"].(map[string]interface{})
	if len(analysis["action_items"].([]interface{})) != 1 {
		t.Errorf("analysis = %v", analysis)
	}

	saved := &models.Transcript{
		FullText: "flat text",
		Segments: []models.Segment{{Speaker: "A", Text: "From file."}},
		Speakers: map[string]*models.SpeakerInfo{"A": {Name: "Dana", Label: "A"}},
	}
	path, err := env.repo.Save(saved, "weekly")
	if err != nil {
		t.Fatal(err)
	}
	rec, _ = env.do(t, jsonRequest(t, "/api/analyze", map[string]string{"transcript": filepath.Base(path)}))
	if rec.Code != http.StatusOK || env.analyzer.lastTranscript != "Dana: From file." {
		t.Errorf("status = %d, analyzed %q", rec.Code, env.analyzer.lastTranscript)
	}

	rec, body = env.do(t, jsonRequest(t, "/api/analyze", map[string]string{"transcript": "unconfigured"}))
	if rec.Code != http.StatusBadRequest || !strings.Contains(body["error"].(string), "not configured") {
		t.Errorf("not configured: %d %v", rec.Code, body)
	}

	rec, _ = env.do(t, jsonRequest(t, "/api/analyze", map[string]string{}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty request status = %d", rec.Code)
	}
}

func TestGenerateMinutes(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, jsonRequest(t, "/api/generate-minutes", map[string]interface{}{
		"meeting_data": map[string]interface{}{"title": "Retro", "participants": []string{"Alex"}},
		"analysis": map[string]interface{}{
			"action_items": []map[string]interface{}{{"description": "Fix CI", "owner": "Alex", "confidence": 0.9}},
		},
		"template": "msad",
		"formats":  []string{"markdown", "txt"},
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %v", rec.Code, body)
	}
	files := body["files"].(map[string]interface{})
	if len(files) != 2 || body["template"] != "MSAD" {
		t.Errorf("body = %v", body)
	}
	links := body["downloads"].(map[string]interface{})
	if !strings.HasPrefix(links["markdown"].(string), "/api/download/Retro_MSAD_") {
		t.Errorf("downloads = %v", links)
	}

	rec, body = env.do(t, jsonRequest(t, "/api/generate-minutes", map[string]interface{}{
		"meeting_data": map[string]string{}, "analysis": map[string]string{}, "template": "XYZ",
	}))
	if rec.Code != http.StatusBadRequest || !strings.Contains(body["error"].(string), "XYZ") {
		t.Errorf("invalid template: %d %v", rec.Code, body)
	}

	rec, body = env.do(t, jsonRequest(t, "/api/generate-minutes", map[string]interface{}{"analysis": map[string]string{}}))
	if rec.Code != http.StatusBadRequest || body["error"] != "meeting_data and analysis are required" {
		t.Errorf("missing meeting_data: %d %v", rec.Code, body)
	}
}

func TestProcessMeetingAndHistory(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, multipartRequest(t, "/api/process-meeting", "standup.mp3", map[string]string{
		"metadata": `{"title":"Standup"}`,
		"template": "MTQP",
		"formats":  "markdown, txt",
		"job_id":   "job-42",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %v", rec.Code, body)
	}
	if body["meeting_id"] != "job-42" || len(body["minutes_files"].(map[string]interface{})) != 2 {
		t.Errorf("body = %v", body)
	}
	if md := body["meeting_data"].(map[string]interface{}); md["duration"] != "2.0 minutes" {
		t.Errorf("meeting_data = %v", md)
	}

	rec, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/meetings", nil))
	if rec.Code != http.StatusOK || body["count"] != 1.0 {
		t.Errorf("list: %d %v", rec.Code, body)
	}

	rec, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/meetings/job-42", nil))
	if rec.Code != http.StatusOK || body["status"] != "completed" || body["template"] != "MTQP" {
		t.Errorf("get: %d %v", rec.Code, body)
	}

	rec, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/api/meetings/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing meeting status = %d", rec.Code)
	}
}

func TestProcessMeetingDuplicateJobID(t *testing.T) {
	env := newTestEnv(t)
	fields := map[string]string{"formats": "markdown", "job_id": "j1"}

	rec, body := env.do(t, multipartRequest(t, "/api/process-meeting", "a.mp3", fields))
	if rec.Code != http.StatusOK {
		t.Fatalf("first: status = %d body = %v", rec.Code, body)
	}

	rec, body = env.do(t, multipartRequest(t, "/api/process-meeting", "a.mp3", fields))
	if rec.Code != http.StatusConflict {
		t.Fatalf("second: status = %d body = %v", rec.Code, body)
	}
	if msg, _ := body["error"].(string); !strings.Contains(msg, "j1") {
		t.Errorf("error = %q", msg)
	}

	entries, err := os.ReadDir(env.dirs["uploads"])
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("uploads = %d files, want 1", len(entries))
	}

	rec, body = env.do(t, httptest.NewRequest(http.MethodGet, "/api/meetings/j1", nil))
	if rec.Code != http.StatusOK || body["status"] != "completed" {
		t.Errorf("get: %d %v", rec.Code, body)
	}
}

func TestProcessMeetingInvalidTemplate(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, multipartRequest(t, "/api/process-meeting", "a.mp3", map[string]string{"template": "NOPE"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %v", rec.Code, body)
	}
	if msg, _ := body["error"].(string); !strings.Contains(msg, "NOPE") {
		t.Errorf("error = %q", msg)
	}
	if entries, _ := os.ReadDir(env.dirs["uploads"]); len(entries) != 0 {
		t.Errorf("upload kept for a rejected request: %d files", len(entries))
	}
}

func TestUpdateSpeakers(t *testing.T) {
	env := newTestEnv(t)
	path, err := env.repo.Save(&models.Transcript{
		Segments: []models.Segment{{Speaker: "A", Text: "hi"}},
		Speakers: map[string]*models.SpeakerInfo{"A": {Name: "Speaker A", Label: "A"}},
	}, "call")
	if err != nil {
		t.Fatal(err)
	}

	rec, body := env.do(t, jsonRequest(t, "/api/update-speakers", map[string]interface{}{
		"transcript_file": path,
		"speaker_mapping": map[string]string{"Speaker A": "Priya"},
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %v", rec.Code, body)
	}
	speakers := body["updated_speakers"].(map[string]interface{})
	if speakers["A"].(map[string]interface{})["name"] != "Priya" {
		t.Errorf("updated_speakers = %v", speakers)
	}

	rec, _ = env.do(t, jsonRequest(t, "/api/update-speakers", map[string]interface{}{
		"transcript_file": "missing.json",
		"speaker_mapping": map[string]string{"A": "B"},
	}))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing transcript status = %d", rec.Code)
	}

	rec, _ = env.do(t, jsonRequest(t, "/api/update-speakers", map[string]interface{}{"transcript_file": path}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing mapping status = %d", rec.Code)
	}
}

func TestCustomQuery(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.do(t, jsonRequest(t, "/api/custom-query", map[string]string{"transcript": "text", "query": "Who?"}))
	if rec.Code != http.StatusOK || body["answer"] != "Alex sends the report." || body["query"] != "Who?" {
		t.Errorf("status = %d body = %v", rec.Code, body)
	}

	rec, _ = env.do(t, jsonRequest(t, "/api/custom-query", map[string]string{"transcript": "text"}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing query status = %d", rec.Code)
	}
}

func TestDownload(t *testing.T) {
	env := newTestEnv(t)
	os.WriteFile(filepath.Join(env.dirs["exports"], "minutes.md"), []byte("# Minutes"), 0644)
	os.WriteFile(filepath.Join(env.dirs["transcripts"], "t.json"), []byte("{}"), 0644)

	rec, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/api/download/minutes.md", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "# Minutes" {
		t.Errorf("export: %d %q", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename=minutes.md` {
		t.Errorf("Content-Disposition = %q", cd)
	}

	rec, _ = env.do(t, httptest.NewRequest(http.MethodGet, "/api/download/t.json", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("transcript download status = %d", rec.Code)
	}

	rec, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/download/nope.pdf", nil))
	if rec.Code != http.StatusNotFound || body["error"] != "File not found" {
		t.Errorf("missing: %d %v", rec.Code, body)
	}

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/download/x", nil), map[string]string{"filename": "../secret"})
	w := httptest.NewRecorder()
	env.handlers.Download(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("traversal status = %d", w.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)
	rec, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/nothing", nil))
	if rec.Code != http.StatusNotFound || body["error"] != "Endpoint not found" {
		t.Errorf("status = %d body = %v", rec.Code, body)
	}
}

func TestProgressWebSocket(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	rec, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/ws", nil))
	if rec.Code != http.StatusBadRequest || body["error"] != "job_id is required" {
		t.Errorf("missing job_id: %d %v", rec.Code, body)
	}

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?job_id=job-7"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var ready progress.Event
	if err := conn.ReadJSON(&ready); err != nil || ready.Status != "ready" {
		t.Fatalf("ready = %+v, %v", ready, err)
	}

	env.broker.Publish(progress.Event{JobID: "job-7", Stage: progress.StageAnalyze, Status: progress.StatusStarted})
	env.broker.Publish(progress.Event{JobID: "job-7", Stage: progress.StageDone, Status: progress.StatusCompleted})

	var got []progress.Event
	for {
		var e progress.Event
		if err := conn.ReadJSON(&e); err != nil {
			break
		}
		got = append(got, e)
	}
	if len(got) != 2 || got[1].Stage != progress.StageDone {
		t.Errorf("events = %+v", got)
	}
}
