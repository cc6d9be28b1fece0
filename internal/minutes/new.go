package minutes

import (
	"time"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/logger"
)

type Options struct {
	ExportDir      string
	DefaultFormats []string
	PDFFont        string
	PDFFontSize    float64
	DocxFont       string
}

type implGenerator struct {
	opts   Options
	logger logger.Logger
	now    func() time.Time
}

// New creates a minutes Generator writing into opts.ExportDir.
func New(opts Options, log logger.Logger) Generator {
	if len(opts.DefaultFormats) == 0 {
		opts.DefaultFormats = []string{"pdf", "markdown"}
	}
	if opts.PDFFont == "" {
		opts.PDFFont = "Helvetica"
	}
	if opts.PDFFontSize <= 0 {
		opts.PDFFontSize = 11
	}
	if opts.DocxFont == "" {
		opts.DocxFont = "Times New Roman"
	}
	return &implGenerator{
		opts:   opts,
		logger: log,
		now:    time.Now,
	}
}
