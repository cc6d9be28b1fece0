package analyzer

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/logger"
)

type Options struct {
	MaxConcurrent       int
	RequestsPerMinute   int
	ActionItemThreshold float64
	CommitmentThreshold float64
	IncludeSentiment    bool
}

type implAnalyzer struct {
	gen     Generator
	opts    Options
	limiter *rate.Limiter
	logger  logger.Logger
	now     func() time.Time
}

// New creates an Analyzer on top of gen
func New(gen Generator, opts Options, log logger.Logger) Analyzer {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 3
	}
	if opts.ActionItemThreshold == 0 {
		opts.ActionItemThreshold = 0.7
	}
	if opts.CommitmentThreshold == 0 {
		opts.CommitmentThreshold = 0.8
	}

	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(opts.RequestsPerMinute) / 60.0)
	}

	return &implAnalyzer{
		gen:     gen,
		opts:    opts,
		limiter: rate.NewLimiter(limit, opts.MaxConcurrent),
		logger:  log,
		now:     time.Now,
	}
}
