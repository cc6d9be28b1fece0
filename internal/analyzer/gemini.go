package analyzer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/logger"
)

type GeminiOptions struct {
	APIKeys         []string
	Model           string
	Temperature     float32
	MaxOutputTokens int
}

type geminiGenerator struct {
	opts   GeminiOptions
	logger logger.Logger

	mu         sync.Mutex
	currentKey int
	clients    map[string]*genai.Client
}

// NewGemini creates a Generator that rotates through the supplied Gemini API keys.
func NewGemini(opts GeminiOptions, log logger.Logger) Generator {
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}
	return &geminiGenerator{
		opts:    opts,
		logger:  log,
		clients: make(map[string]*genai.Client),
	}
}

// Generate sends prompt to Gemini. Rotates API keys on 429 / quota errors.
func (g *geminiGenerator) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if len(g.opts.APIKeys) == 0 {
		return "", fmt.Errorf("%w: set GEMINI_API_KEY", ErrNotConfigured)
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.opts.Temperature),
		MaxOutputTokens: int32(g.opts.MaxOutputTokens),
	}
	if opts.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	var lastErr error
	for range len(g.opts.APIKeys) {
		idx, client, err := g.client(ctx)
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			g.rotateKey(idx)
			continue
		}

		result, err := client.Models.GenerateContent(ctx, g.opts.Model, genai.Text(prompt), cfg)
		if err != nil {
			if isQuotaError(err) {
				g.logger.Warn(ctx, "Gemini key %d rate limited, rotating...", idx+1)
				g.rotateKey(idx)
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}

		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			var text strings.Builder
			for _, part := range result.Candidates[0].Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
				}
			}
			if text.Len() > 0 {
				return text.String(), nil
			}
		}

		return "", ErrEmptyResponse
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (g *geminiGenerator) client(ctx context.Context) (int, *genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := g.currentKey
	key := g.opts.APIKeys[idx]
	if c, ok := g.clients[key]; ok {
		return idx, c, nil
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return idx, nil, err
	}
	g.clients[key] = c
	return idx, c, nil
}

// rotateKey advances past failed, unless a concurrent caller already moved on.
func (g *geminiGenerator) rotateKey(failed int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentKey == failed {
		g.currentKey = (g.currentKey + 1) % len(g.opts.APIKeys)
	}
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
