package minutes

import (
	"fmt"
	"strings"
	"time"
)

// RenderText renders doc as plain text with underlined headings.
func RenderText(doc *Document, now time.Time) string {
	lines := []string{fmt.Sprintf("%s\n%s\n", doc.Title, underline(doc.Title, "="))}

	for _, s := range doc.Sections {
		lines = append(lines, fmt.Sprintf("\n%s\n%s", s.Heading, underline(s.Heading, "-")))

		switch s.Kind {
		case KindInfo:
			for _, kv := range s.Info {
				lines = append(lines, fmt.Sprintf("%s: %s", kv.Label, kv.Value))
			}

		case KindList:
			for _, item := range s.Items {
				lines = append(lines, "  • "+item)
			}

		case KindText:
			lines = append(lines, "\n"+s.Text+"\n")

		case KindActionItems, KindActionDashboard:
			for i, item := range s.Actions {
				lines = append(lines,
					fmt.Sprintf("\n%d. %s", i+1, actionDescription(item)),
					"   Owner: "+actionOwner(item),
					"   Due Date: "+actionDue(item),
					"   Priority: "+actionPriority(item))
				if s.Kind == KindActionDashboard {
					lines = append(lines, "   Status: "+actionStatus(item))
				}
			}

		case KindDecisions:
			for i, d := range s.Decisions {
				lines = append(lines, fmt.Sprintf("\n%d. %s", i+1, or(d.Decision, "N/A")))
				if d.Rationale != "" {
					lines = append(lines, "   Rationale: "+d.Rationale)
				}
			}

		case KindTopics:
			for i, t := range s.Topics {
				lines = append(lines, fmt.Sprintf("\n%d. %s", i+1, or(t.Topic, "N/A")), "   "+or(t.Summary, "N/A"))
			}

		case KindQuestions:
			for i, q := range s.Questions {
				lines = append(lines, fmt.Sprintf("\n%d. %s", i+1, or(q.Question, "N/A")))
				if q.WhoNeedsToAnswer != "" {
					lines = append(lines, "   Owner: "+q.WhoNeedsToAnswer)
				}
			}
		}

		lines = append(lines, "")
	}

	lines = append(lines, "\nGenerated on "+now.Format(footerLayout))
	return strings.Join(lines, "\n")
}

func underline(s, ch string) string {
	return strings.Repeat(ch, len([]rune(s)))
}
