package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
)

const summaryFailed = "Summary generation failed"

// Analyze runs every extraction concurrently. A failed extraction degrades to an empty
// section, and a reply without JSON counts as an empty section rather than a failure.
// The call only fails when the backend is not configured, the context ends, or every
// generator call failed (ErrFailed).
func (a *implAnalyzer) Analyze(ctx context.Context, transcript string, meta *models.MeetingMetadata) (*models.Analysis, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, ErrEmptyTranscript
	}

	startTime := time.Now()
	a.logger.Info(ctx, "Analyzing transcript (%d chars)", len(transcript))

	result := &models.Analysis{
		ActionItems:         []models.ActionItem{},
		Decisions:           []models.Decision{},
		Topics:              []models.Topic{},
		OpenQuestions:       []models.OpenQuestion{},
		ImplicitCommitments: []models.Commitment{},
		ExecutiveSummary: models.ExecutiveSummary{
			Overview:            summaryFailed,
			KeyOutcomes:         models.StringList{},
			CriticalActionItems: models.StringList{},
			RisksOrBlockers:     models.StringList{},
		},
		TranscriptLength: len(transcript),
	}

	var (
		mu       sync.Mutex
		failures []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.MaxConcurrent)

	run := func(name string, fn func(context.Context) error) {
		g.Go(func() error {
			err := fn(gctx)
			if err == nil {
				return nil
			}
			if errors.Is(err, ErrNotConfigured) || gctx.Err() != nil {
				return err
			}
			a.logger.Error(gctx, "Error extracting %s: %v", name, err)
			mu.Lock()
			failures = append(failures, fmt.Errorf("%s: %w", name, err))
			mu.Unlock()
			return nil
		})
	}

	run("action items", func(ctx context.Context) error {
		items, err := a.extractActionItems(ctx, transcript, meta)
		if err == nil {
			result.ActionItems = items
		}
		return err
	})
	run("decisions", func(ctx context.Context) error {
		items, err := extractList[models.Decision](ctx, a, fmt.Sprintf(decisionsPrompt, transcript))
		if err == nil {
			result.Decisions = items
		}
		return err
	})
	run("key topics", func(ctx context.Context) error {
		items, err := extractList[models.Topic](ctx, a, fmt.Sprintf(topicsPrompt, transcript))
		if err == nil {
			result.Topics = items
		}
		return err
	})
	run("open questions", func(ctx context.Context) error {
		items, err := extractList[models.OpenQuestion](ctx, a, fmt.Sprintf(openQuestionsPrompt, transcript))
		if err == nil {
			result.OpenQuestions = items
		}
		return err
	})
	run("implicit commitments", func(ctx context.Context) error {
		items, err := a.extractCommitments(ctx, transcript)
		if err == nil {
			result.ImplicitCommitments = items
		}
		return err
	})
	run("executive summary", func(ctx context.Context) error {
		summary, err := a.executiveSummary(ctx, transcript, meta)
		if err == nil {
			result.ExecutiveSummary = *summary
		}
		return err
	})

	tasks := 6
	if a.opts.IncludeSentiment {
		tasks++
		run("sentiment", func(ctx context.Context) error {
			s, err := a.Sentiment(ctx, transcript)
			if err == nil {
				result.Sentiment = s
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyze transcript: %w", err)
	}
	if len(failures) == tasks {
		return nil, fmt.Errorf("%w: %w", ErrFailed, errors.Join(failures...))
	}

	result.AnalyzedAt = a.now().UTC().Format(time.RFC3339)

	a.logger.Info(ctx, "Analysis completed in %s: %d action items, %d decisions, %d topics, %d open questions",
		time.Since(startTime).Round(time.Millisecond), len(result.ActionItems), len(result.Decisions),
		len(result.Topics), len(result.OpenQuestions))
	return result, nil
}

func (a *implAnalyzer) generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	return a.gen.Generate(ctx, prompt, opts)
}

func extractList[T any](ctx context.Context, a *implAnalyzer, prompt string) ([]T, error) {
	text, err := a.generate(ctx, prompt, GenerateOptions{JSON: true})
	if err != nil {
		return nil, err
	}
	items, err := parseList[T](text)
	if errors.Is(err, errNoJSON) {
		a.logger.Warn(ctx, "No JSON in model response, using an empty list")
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (a *implAnalyzer) extractActionItems(ctx context.Context, transcript string, meta *models.MeetingMetadata) ([]models.ActionItem, error) {
	prompt := fmt.Sprintf(actionItemsPrompt, buildContext(meta), transcript)
	items, err := extractList[models.ActionItem](ctx, a, prompt)
	if err != nil {
		return nil, err
	}

	assignOwners(items, transcript, meta)
	inferDueDates(items, a.now())

	kept := make([]models.ActionItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Description) == "" {
			continue
		}
		if float64(item.Confidence) >= a.opts.ActionItemThreshold {
			kept = append(kept, item)
		}
	}

	a.logger.Debug(ctx, "Kept %d of %d action items", len(kept), len(items))
	return kept, nil
}

func (a *implAnalyzer) extractCommitments(ctx context.Context, transcript string) ([]models.Commitment, error) {
	items, err := extractList[models.Commitment](ctx, a, fmt.Sprintf(commitmentsPrompt, transcript))
	if err != nil {
		return nil, err
	}

	kept := make([]models.Commitment, 0, len(items))
	for _, c := range items {
		if float64(c.Confidence) >= a.opts.CommitmentThreshold {
			kept = append(kept, c)
		}
	}
	return kept, nil
}

func (a *implAnalyzer) executiveSummary(ctx context.Context, transcript string, meta *models.MeetingMetadata) (*models.ExecutiveSummary, error) {
	text, err := a.generate(ctx, fmt.Sprintf(summaryPrompt, buildContext(meta), transcript), GenerateOptions{JSON: true})
	if err != nil {
		return nil, err
	}

	var summary models.ExecutiveSummary
	err = parseObject(text, &summary)
	if errors.Is(err, errNoJSON) {
		a.logger.Warn(ctx, "No JSON in executive summary response, using an empty summary")
	} else if err != nil {
		return nil, err
	}
	if summary.KeyOutcomes == nil {
		summary.KeyOutcomes = models.StringList{}
	}
	if summary.CriticalActionItems == nil {
		summary.CriticalActionItems = models.StringList{}
	}
	if summary.RisksOrBlockers == nil {
		summary.RisksOrBlockers = models.StringList{}
	}
	return &summary, nil
}

func (a *implAnalyzer) Sentiment(ctx context.Context, transcript string) (*models.Sentiment, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, ErrEmptyTranscript
	}

	text, err := a.generate(ctx, fmt.Sprintf(sentimentPrompt, transcript), GenerateOptions{JSON: true})
	if err != nil {
		return nil, err
	}

	var s models.Sentiment
	err = parseObject(text, &s)
	if errors.Is(err, errNoJSON) {
		a.logger.Warn(ctx, "No JSON in sentiment response, using an empty result")
	} else if err != nil {
		return nil, err
	}
	return &s, nil
}

// Query answers a free-form question using only the transcript.
func (a *implAnalyzer) Query(ctx context.Context, transcript, question string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", ErrEmptyTranscript
	}
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuery
	}

	text, err := a.generate(ctx, fmt.Sprintf(queryPrompt, question, transcript), GenerateOptions{})
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return "", err
		}
		return "", fmt.Errorf("%w: custom query: %w", ErrFailed, err)
	}
	return strings.TrimSpace(text), nil
}
