package audio

import (
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/logger"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/pkg/executor"
)

type Options struct {
	UploadDir      string
	MaxSizeBytes   int64
	AllowedFormats []string
}

type implService struct {
	opts     Options
	executor executor.Executor
	logger   logger.Logger
}

// New creates a new audio Service
func New(opts Options, exec executor.Executor, log logger.Logger) Service {
	return &implService{
		opts:     opts,
		executor: exec,
		logger:   log,
	}
}

func (s *implService) AllowedFormats() []string {
	return s.opts.AllowedFormats
}
