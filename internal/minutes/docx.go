package minutes

import (
	"regexp"
	"strings"
	"time"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontSize    = 13
	titleSize   = 16
	headingSize = 15
)

var reBold = regexp.MustCompile(`\*\*(.+?)\*\*`)

// writeDocx renders doc as a Word document at outputPath.
func writeDocx(doc *Document, font string, now time.Time, outputPath string) error {
	d, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addStyledRun(d.AddParagraph(""), font, doc.Title, true, titleSize)

	for _, s := range doc.Sections {
		addStyledRun(d.AddParagraph(""), font, s.Heading, true, headingSize)

		switch s.Kind {
		case KindInfo:
			for _, kv := range s.Info {
				addRichText(d.AddParagraph(""), font, "**"+kv.Label+":** "+kv.Value)
			}

		case KindList:
			for _, item := range s.Items {
				addRichText(d.AddParagraph(""), font, "• "+item)
			}

		case KindText:
			for _, line := range strings.Split(s.Text, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					addRichText(d.AddParagraph(""), font, line)
				}
			}

		case KindActionItems, KindActionDashboard:
			for _, item := range s.Actions {
				addStyledRun(d.AddParagraph(""), font, "• "+actionDescription(item), true, fontSize)
				details := []string{
					"Owner: " + actionOwner(item),
					"Due: " + actionDue(item),
					"Priority: " + actionPriority(item),
				}
				if s.Kind == KindActionDashboard {
					details = append(details, "Status: "+actionStatus(item))
				}
				for _, line := range details {
					addRichText(d.AddParagraph(""), font, "   "+line)
				}
			}

		case KindDecisions:
			for _, dec := range s.Decisions {
				addStyledRun(d.AddParagraph(""), font, "• "+or(dec.Decision, "N/A"), true, fontSize)
				if dec.Rationale != "" {
					addRichText(d.AddParagraph(""), font, "   Rationale: "+dec.Rationale)
				}
			}

		case KindTopics:
			for _, t := range s.Topics {
				addStyledRun(d.AddParagraph(""), font, "• "+or(t.Topic, "N/A"), true, fontSize)
				addRichText(d.AddParagraph(""), font, "   "+or(t.Summary, "N/A"))
			}

		case KindQuestions:
			for _, q := range s.Questions {
				addRichText(d.AddParagraph(""), font, "• Q: "+or(q.Question, "N/A"))
				if q.WhoNeedsToAnswer != "" {
					addRichText(d.AddParagraph(""), font, "   Owner: "+q.WhoNeedsToAnswer)
				}
			}
		}
	}

	d.AddParagraph("")
	addStyledRun(d.AddParagraph(""), font, "Generated on "+now.Format(footerLayout), false, fontSize-2)

	return d.SaveTo(outputPath)
}

func addStyledRun(p *docx.Paragraph, font, text string, bold bool, size uint64) {
	text = cleanMarkdownInline(text)
	run := p.AddText(text).Font(font).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

// addRichText writes text into p, turning **spans** into bold runs.
func addRichText(p *docx.Paragraph, font, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(font).Size(fontSize).Color("000000")
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(font).Size(fontSize).Color("000000").Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
