package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/analyzer"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/logger"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/minutes"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/transcriber"
)

type Options struct {
	Name            string
	Version         string
	DefaultTemplate string
}

type Deps struct {
	Analyzer    analyzer.Analyzer
	Minutes     minutes.Generator
	Transcripts *transcriber.Repository
}

// Server exposes transcript analysis and minutes rendering as MCP tools.
type Server struct {
	deps   Deps
	opts   Options
	logger logger.Logger
	mcp    *server.MCPServer
}

func New(deps Deps, opts Options, log logger.Logger) *Server {
	if opts.Name == "" {
		opts.Name = "meeting-minutes"
	}
	if opts.DefaultTemplate == "" {
		opts.DefaultTemplate = "MRS"
	}

	s := &Server{
		deps:   deps,
		opts:   opts,
		logger: log,
		mcp:    server.NewMCPServer(opts.Name, opts.Version, server.WithToolCapabilities(false), server.WithRecovery()),
	}
	s.registerTools()
	return s
}

// ServeStdio blocks serving MCP over stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	transcriptArg := mcp.WithString("transcript",
		mcp.Required(),
		mcp.Description("Transcript text, or the file name of a saved transcript (*.json)"),
	)

	s.mcp.AddTool(mcp.NewTool("analyze_transcript",
		mcp.WithDescription("Extract action items, decisions, topics, open questions and an executive summary from a meeting transcript"),
		transcriptArg,
		mcp.WithString("title", mcp.Description("Meeting title")),
		mcp.WithString("date", mcp.Description("Meeting date, YYYY-MM-DD")),
		mcp.WithString("participants", mcp.Description("Comma separated participant names")),
	), s.analyzeTranscript)

	s.mcp.AddTool(mcp.NewTool("query_transcript",
		mcp.WithDescription("Answer a free-form question about a meeting transcript"),
		transcriptArg,
		mcp.WithString("question", mcp.Required(), mcp.Description("The question to answer")),
	), s.queryTranscript)

	s.mcp.AddTool(mcp.NewTool("generate_minutes",
		mcp.WithDescription("Analyze a transcript and render meeting minutes. Returns markdown, or writes files when formats is set"),
		transcriptArg,
		mcp.WithString("template", mcp.Description("Minutes layout"), mcp.Enum("MRS", "MTQP", "MSAD")),
		mcp.WithString("formats", mcp.Description("Comma separated export formats: pdf, markdown, txt, docx")),
		mcp.WithString("title", mcp.Description("Meeting title")),
		mcp.WithString("date", mcp.Description("Meeting date, YYYY-MM-DD")),
		mcp.WithString("participants", mcp.Description("Comma separated participant names")),
	), s.generateMinutes)
}

func (s *Server) analyzeTranscript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("transcript")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, meta := s.resolve(raw, req)
	analysis, err := s.deps.Analyzer.Analyze(ctx, text, meta)
	if err != nil {
		s.logger.Warn(ctx, "analyze_transcript failed: %v", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode analysis: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) queryTranscript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("transcript")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, _ := s.resolve(raw, req)
	answer, err := s.deps.Analyzer.Query(ctx, text, question)
	if err != nil {
		s.logger.Warn(ctx, "query_transcript failed: %v", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(answer), nil
}

func (s *Server) generateMinutes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("transcript")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	template := req.GetString("template", s.opts.DefaultTemplate)
	if err := minutes.ValidTemplate(template); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, meta := s.resolve(raw, req)
	analysis, err := s.deps.Analyzer.Analyze(ctx, text, meta)
	if err != nil {
		s.logger.Warn(ctx, "generate_minutes analysis failed: %v", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	formats := req.GetString("formats", "")
	if strings.TrimSpace(formats) == "" {
		md, err := s.deps.Minutes.Markdown(meta, analysis, template)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(md), nil
	}

	files, err := s.deps.Minutes.Generate(ctx, meta, analysis, template, strings.Split(formats, ","))
	if err != nil {
		s.logger.Warn(ctx, "generate_minutes failed: %v", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode files: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// resolve loads a saved transcript when raw names one, and merges metadata
// arguments over whatever the transcript carried.
func (s *Server) resolve(raw string, req mcp.CallToolRequest) (string, *models.MeetingMetadata) {
	text := raw
	meta := models.MeetingMetadata{}

	name := strings.TrimSpace(raw)
	if s.deps.Transcripts != nil && strings.HasSuffix(name, ".json") {
		if t, err := s.deps.Transcripts.Load(name); err == nil {
			text = t.SpeakerText()
			if t.Metadata != nil {
				meta = *t.Metadata
			}
		}
	}

	if v := req.GetString("title", ""); v != "" {
		meta.Title = v
	}
	if v := req.GetString("date", ""); v != "" {
		meta.Date = v
	}
	if v := req.GetString("participants", ""); v != "" {
		meta.Participants = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				meta.Participants = append(meta.Participants, p)
			}
		}
	}
	return text, &meta
}
