package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/pipeline"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/progress"
)

// Formatter prints human-facing CLI output.
type Formatter struct {
	w      io.Writer
	styles Styles
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w, styles: NewStyles(w)}
}

func (f *Formatter) Title(msg string) {
	fmt.Fprintln(f.w, f.styles.Title.Render(msg))
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "%s %s\n", f.styles.Dim.Render("•"), msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintln(f.w, f.styles.Success.Render("✓ "+msg))
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintln(f.w, f.styles.Warning.Render("! "+msg))
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintln(f.w, f.styles.Error.Render("✗ "+msg))
}

// Check prints one prerequisite line for the doctor command.
func (f *Formatter) Check(name string, ok bool, detail string) {
	mark := f.styles.Success.Render("✓")
	if !ok {
		mark = f.styles.Error.Render("✗")
	}
	fmt.Fprintf(f.w, "  %s %s %s\n", mark, f.styles.Label.Render(name+":"), detail)
}

// Event prints a pipeline progress update.
func (f *Formatter) Event(e progress.Event) {
	stage := f.styles.Label.Render(fmt.Sprintf("%-10s", e.Stage))
	var status string
	switch e.Status {
	case progress.StatusCompleted:
		status = f.styles.Success.Render(e.Status)
	case progress.StatusFailed:
		status = f.styles.Error.Render(e.Status)
	default:
		status = f.styles.Dim.Render(e.Status)
	}

	line := fmt.Sprintf("  %s %s", stage, status)
	if e.Message != "" {
		line += " " + f.styles.Dim.Render(e.Message)
	}
	fmt.Fprintln(f.w, line)
}

// Result summarises a finished pipeline run in a bordered box.
func (f *Formatter) Result(res *pipeline.Result) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", f.styles.Label.Render("Meeting:"), res.MeetingID)
	fmt.Fprintf(&b, "%s %s\n", f.styles.Label.Render("Template:"), res.Template)
	if res.Analysis != nil {
		fmt.Fprintf(&b, "%s %d action items, %d decisions\n", f.styles.Label.Render("Found:"),
			len(res.Analysis.ActionItems), len(res.Analysis.Decisions))
	}
	if res.TranscriptFile != "" {
		fmt.Fprintf(&b, "%s %s\n", f.styles.Label.Render("Transcript:"), res.TranscriptFile)
	}

	formats := make([]string, 0, len(res.Outputs))
	for format := range res.Outputs {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	for _, format := range formats {
		fmt.Fprintf(&b, "%s %s\n", f.styles.Label.Render(strings.ToUpper(format)+":"), res.Outputs[format])
	}
	fmt.Fprintf(&b, "%s %s", f.styles.Label.Render("Took:"), res.ProcessingTime.Round(time.Millisecond))

	fmt.Fprintln(f.w, f.styles.Box.Render(b.String()))
}
