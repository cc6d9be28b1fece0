package transcriber

import (
	"context"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/cache"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/logger"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
)

type cached struct {
	inner  Transcriber
	cache  cache.Cache
	logger logger.Logger
}

// WithCache wraps a Transcriber so identical audio is only sent to the provider once.
func WithCache(inner Transcriber, c cache.Cache, log logger.Logger) Transcriber {
	return &cached{inner: inner, cache: c, logger: log}
}

func (c *cached) Name() string { return c.inner.Name() }

func (c *cached) Transcribe(ctx context.Context, audioPath string, opts Options) (*models.Transcript, error) {
	sum, err := cache.Checksum(audioPath)
	if err != nil {
		c.logger.Warn(ctx, "Skipping transcript cache for %s: %v", audioPath, err)
		return c.inner.Transcribe(ctx, audioPath, opts)
	}

	key := cache.Key(sum, c.inner.Name(), opts.Language, opts.Diarization)
	if t, ok, err := c.cache.Get(key); err != nil {
		c.logger.Warn(ctx, "Transcript cache read failed: %v", err)
	} else if ok {
		c.logger.Info(ctx, "Transcript cache hit: %s", audioPath)
		return t, nil
	}

	t, err := c.inner.Transcribe(ctx, audioPath, opts)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Put(key, t); err != nil {
		c.logger.Warn(ctx, "Transcript cache write failed: %v", err)
	}
	return t, nil
}
