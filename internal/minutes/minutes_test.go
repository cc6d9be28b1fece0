package minutes

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/logger"
	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
)

var fixedNow = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

func sampleMeta() *models.MeetingMetadata {
	return &models.MeetingMetadata{
		Title:        "Q1 Planning: Roadmap/Budget",
		Date:         "2024-03-05",
		Agenda:       "Roadmap review",
		Participants: []string{"Ann", "Ben", "Cal", "Dee", "Eve", "Fay"},
		Duration:     "42.0 minutes",
	}
}

func sampleAnalysis() *models.Analysis {
	return &models.Analysis{
		ActionItems: []models.ActionItem{
			{Description: "Draft budget | v2", Owner: "Ann", DueDate: "2024-03-08", Priority: "high"},
			{Description: "Book venue", Priority: ""},
		},
		Decisions: []models.Decision{
			{Decision: "Ship in April", Rationale: "Market window", Stakeholders: models.StringList{"Sales", "Eng"}},
		},
		Topics:        []models.Topic{{Topic: "Roadmap", Summary: "Reviewed Q1 roadmap."}},
		OpenQuestions: []models.OpenQuestion{{Question: "Who owns QA?", WhoNeedsToAnswer: "Ben"}},
		ExecutiveSummary: models.ExecutiveSummary{
			Overview:        "Planning sync.",
			KeyOutcomes:     models.StringList{"April launch"},
			RisksOrBlockers: models.StringList{"Hiring"},
			NextMeeting:     "March 12",
		},
	}
}

func headings(doc *Document) []string {
	var out []string
	for _, s := range doc.Sections {
		out = append(out, s.Heading)
	}
	return out
}

func TestBuild(t *testing.T) {
	tests := []struct {
		template string
		title    string
		headings []string
	}{
		{"mrs", "Meeting Recording System (MRS) Minutes", []string{
			"Meeting Information", "Attendees", "Agenda", "Discussion Summary",
			"Action Items", "Decisions Made", "Open Questions / Follow-up Items",
		}},
		{"MTQP", "Meeting Topics, Questions, and Points (MTQP)", []string{
			"Meeting Information", "Executive Summary", "Topics Discussed",
			"Questions Raised", "Key Points and Decisions", "Action Points",
		}},
		{" msad ", "Meeting Summary and Action Dashboard (MSAD)", []string{
			"Quick Overview", "Key Outcomes", "Action Dashboard", "Decisions Log",
			"Risks and Blockers", "Next Steps",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			doc, err := Build(tt.template, sampleMeta(), sampleAnalysis(), fixedNow)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if doc.Title != tt.title {
				t.Errorf("Title = %q", doc.Title)
			}
			if got := strings.Join(headings(doc), "|"); got != strings.Join(tt.headings, "|") {
				t.Errorf("headings = %s", got)
			}
		})
	}
}

func TestBuildInvalidTemplate(t *testing.T) {
	_, err := Build("XYZ", nil, nil, fixedNow)
	if !errors.Is(err, ErrInvalidTemplate) || !strings.Contains(err.Error(), "XYZ") {
		t.Errorf("Build() error = %v", err)
	}
}

func TestValidTemplate(t *testing.T) {
	for _, name := range []string{"MRS", "mtqp", " Msad "} {
		if err := ValidTemplate(name); err != nil {
			t.Errorf("ValidTemplate(%q) = %v", name, err)
		}
	}
	for _, name := range []string{"", "NOPE"} {
		if err := ValidTemplate(name); !errors.Is(err, ErrInvalidTemplate) {
			t.Errorf("ValidTemplate(%q) = %v, want ErrInvalidTemplate", name, err)
		}
	}
}

func TestBuildMSADDetails(t *testing.T) {
	a := sampleAnalysis()
	doc, err := Build("MSAD", sampleMeta(), a, fixedNow)
	if err != nil {
		t.Fatal(err)
	}

	attendees := doc.Sections[0].Info[3]
	if attendees.Value != "Ann, Ben, Cal, Dee, Eve..." {
		t.Errorf("Attendees = %q", attendees.Value)
	}
	for _, item := range doc.Sections[2].Actions {
		if item.Status != "Pending" {
			t.Errorf("Status = %q, want Pending", item.Status)
		}
	}
	if a.ActionItems[0].Status != "" {
		t.Error("Build mutated the analysis")
	}
}

func TestBuildDefaults(t *testing.T) {
	doc, err := Build("MRS", nil, nil, fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("sections = %v", headings(doc))
	}
	info := doc.Sections[0].Info
	if info[0].Value != "N/A" || info[1].Value != "2024-03-05" || info[3].Value != "Virtual" {
		t.Errorf("info = %+v", info)
	}
}

func TestRenderMarkdown(t *testing.T) {
	doc, _ := Build("MSAD", sampleMeta(), sampleAnalysis(), fixedNow)
	md := RenderMarkdown(doc, fixedNow)

	for _, want := range []string{
		"# Meeting Summary and Action Dashboard (MSAD)\n",
		"**Meeting:** Q1 Planning: Roadmap/Budget  ",
		"| Description | Owner | Due Date | Priority | Status |",
		`| Draft budget \| v2 | Ann | 2024-03-08 | High | Pending |`,
		"| Book venue | Unassigned | Not specified | Medium | Pending |",
		"### Decision 1: Ship in April",
		"**Stakeholders:** Sales, Eng",
		"- Hiring",
		"\n---\n*Generated on 2024-03-05 14:07:09*",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
}

func TestRenderText(t *testing.T) {
	doc, _ := Build("MRS", sampleMeta(), sampleAnalysis(), fixedNow)
	txt := RenderText(doc, fixedNow)

	for _, want := range []string{
		"Meeting Recording System (MRS) Minutes\n======================================\n",
		"\nAttendees\n---------",
		"  • Fay",
		"1. Draft budget | v2\n   Owner: Ann\n   Due Date: 2024-03-08\n   Priority: High",
		"1. Who owns QA?\n   Owner: Ben",
		"Generated on 2024-03-05 14:07:09",
	} {
		if !strings.Contains(txt, want) {
			t.Errorf("text missing %q\n%s", want, txt)
		}
	}
	if strings.Contains(txt, "Status:") {
		t.Error("MRS text should not show status")
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		meta *models.MeetingMetadata
		want string
	}{
		{"nil meta", nil, "meeting_MRS_20240305_140709"},
		{"cleaned", &models.MeetingMetadata{Title: "Q1 Planning: Roadmap/Budget", Date: "2024-03-05"}, "Q1_Planning_RoadmapBudget_MRS_2024-03-05_140709"},
		{"truncated", &models.MeetingMetadata{Title: strings.Repeat("a", 60)}, strings.Repeat("a", 50) + "_MRS_20240305_140709"},
		{"only symbols", &models.MeetingMetadata{Title: "!!!"}, "meeting_MRS_20240305_140709"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filename(tt.meta, "MRS", fixedNow); got != tt.want {
				t.Errorf("Filename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeFormats(t *testing.T) {
	got, err := NormalizeFormats([]string{" PDF", "md", "markdown", "", "txt"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(got, ",") != "pdf,markdown,txt" {
		t.Errorf("NormalizeFormats() = %v", got)
	}

	if _, err := NormalizeFormats([]string{"pdf", "html"}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("error = %v, want ErrUnknownFormat", err)
	}
	if _, err := NormalizeFormats([]string{" "}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("error = %v, want ErrUnknownFormat", err)
	}
}

func newTestGenerator(dir string) *implGenerator {
	g := New(Options{ExportDir: dir}, logger.Nop()).(*implGenerator)
	g.now = func() time.Time { return fixedNow }
	return g
}

func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	g := newTestGenerator(dir)

	outputs, err := g.Generate(context.Background(), sampleMeta(), sampleAnalysis(), "MRS", []string{"markdown", "txt", "pdf", "docx"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(outputs) != 4 {
		t.Fatalf("outputs = %v", outputs)
	}

	for format, path := range outputs {
		if filepath.Ext(path) != extensions[format] {
			t.Errorf("%s path %s has wrong extension", format, path)
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Errorf("%s output missing or empty: %v", format, err)
		}
	}

	pdf, _ := os.ReadFile(outputs["pdf"])
	if !strings.HasPrefix(string(pdf), "%PDF-") {
		t.Error("pdf output lacks PDF header")
	}
	docx, _ := os.ReadFile(outputs["docx"])
	if !strings.HasPrefix(string(docx), "PK") {
		t.Error("docx output is not a zip archive")
	}
}

func TestGenerateDefaultsAndErrors(t *testing.T) {
	dir := t.TempDir()
	g := newTestGenerator(dir)
	if g.opts.DocxFont != "Times New Roman" || g.opts.PDFFont != "Helvetica" {
		t.Errorf("font defaults = %q, %q", g.opts.DocxFont, g.opts.PDFFont)
	}

	outputs, err := g.Generate(context.Background(), nil, sampleAnalysis(), "MTQP", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := outputs["pdf"]; !ok || len(outputs) != 2 {
		t.Errorf("default outputs = %v", outputs)
	}

	empty := t.TempDir()
	g = newTestGenerator(empty)
	if _, err := g.Generate(context.Background(), nil, nil, "MRS", []string{"markdown", "rtf"}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("error = %v, want ErrUnknownFormat", err)
	}
	if entries, _ := os.ReadDir(empty); len(entries) != 0 {
		t.Errorf("files written before format validation: %d", len(entries))
	}

	if _, err := g.Generate(context.Background(), nil, nil, "bogus", nil); !errors.Is(err, ErrInvalidTemplate) {
		t.Errorf("error = %v, want ErrInvalidTemplate", err)
	}
}

func TestMarkdown(t *testing.T) {
	g := newTestGenerator(t.TempDir())
	md, err := g.Markdown(sampleMeta(), sampleAnalysis(), "mtqp")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(md, "# Meeting Topics, Questions, and Points (MTQP)") {
		t.Errorf("Markdown() = %q", md[:60])
	}
}
