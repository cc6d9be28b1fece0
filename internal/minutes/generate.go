package minutes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
)

var extensions = map[string]string{
	"pdf":      ".pdf",
	"markdown": ".md",
	"txt":      ".txt",
	"docx":     ".docx",
}

// Generate writes the minutes in every requested format. Formats are validated
// before any file is created.
func (g *implGenerator) Generate(ctx context.Context, meta *models.MeetingMetadata, analysis *models.Analysis, template string, formats []string) (map[string]string, error) {
	now := g.now()

	doc, err := Build(template, meta, analysis, now)
	if err != nil {
		return nil, err
	}

	if len(formats) == 0 {
		formats = g.opts.DefaultFormats
	}
	formats, err = NormalizeFormats(formats)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(g.opts.ExportDir, 0755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	base := Filename(meta, doc.Template, now)
	outputs := make(map[string]string, len(formats))

	for _, format := range formats {
		if err := ctx.Err(); err != nil {
			return outputs, err
		}

		path := filepath.Join(g.opts.ExportDir, base+extensions[format])
		if err := g.write(doc, format, now, path); err != nil {
			g.logger.Error(ctx, "Error generating %s minutes: %v", format, err)
			return outputs, fmt.Errorf("failed to generate minutes: %s: %w", format, err)
		}

		g.logger.Info(ctx, "%s generated: %s", strings.ToUpper(format), path)
		outputs[format] = path
	}

	g.logger.Info(ctx, "Generated %s minutes in %d formats", doc.Template, len(outputs))
	return outputs, nil
}

func (g *implGenerator) Markdown(meta *models.MeetingMetadata, analysis *models.Analysis, template string) (string, error) {
	now := g.now()
	doc, err := Build(template, meta, analysis, now)
	if err != nil {
		return "", err
	}
	return RenderMarkdown(doc, now), nil
}

func (g *implGenerator) write(doc *Document, format string, now time.Time, path string) error {
	switch format {
	case "pdf":
		return writePDF(doc, g.opts.PDFFont, g.opts.PDFFontSize, now, path)
	case "markdown":
		return os.WriteFile(path, []byte(RenderMarkdown(doc, now)), 0644)
	case "txt":
		return os.WriteFile(path, []byte(RenderText(doc, now)), 0644)
	case "docx":
		return writeDocx(doc, g.opts.DocxFont, now, path)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// NormalizeFormats trims, lowercases and de-duplicates formats, accepting "md" for markdown.
func NormalizeFormats(formats []string) ([]string, error) {
	var out []string
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if f == "md" {
			f = "markdown"
		}
		if _, ok := extensions[f]; !ok {
			return nil, fmt.Errorf("%w: %s. Supported formats: %s", ErrUnknownFormat, f, strings.Join(Formats, ", "))
		}
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no formats requested", ErrUnknownFormat)
	}
	return out, nil
}

// Filename builds "<title>_<TEMPLATE>_<date>_<HHMMSS>" without an extension.
func Filename(meta *models.MeetingMetadata, template string, now time.Time) string {
	title, date := "meeting", now.Format("20060102")
	if meta != nil {
		if meta.Title != "" {
			title = meta.Title
		}
		if meta.Date != "" {
			date = meta.Date
		}
	}

	title = strings.ReplaceAll(cleanName(title), " ", "_")
	if r := []rune(title); len(r) > 50 {
		title = string(r[:50])
	}
	if title == "" {
		title = "meeting"
	}

	return fmt.Sprintf("%s_%s_%s_%s", title, template, cleanName(date), now.Format("150405"))
}

func cleanName(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			return r
		}
		return -1
	}, s)
}
