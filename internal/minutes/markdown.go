package minutes

import (
	"fmt"
	"strings"
	"time"
)

const footerLayout = "2006-01-02 15:04:05"

// RenderMarkdown renders doc as GitHub flavoured markdown.
func RenderMarkdown(doc *Document, now time.Time) string {
	lines := []string{fmt.Sprintf("# %s\n", doc.Title)}

	for _, s := range doc.Sections {
		lines = append(lines, fmt.Sprintf("\n## %s\n", s.Heading))

		switch s.Kind {
		case KindInfo:
			for _, kv := range s.Info {
				lines = append(lines, fmt.Sprintf("**%s:** %s  ", kv.Label, kv.Value))
			}

		case KindList:
			for _, item := range s.Items {
				lines = append(lines, "- "+item)
			}

		case KindText:
			lines = append(lines, "\n"+s.Text+"\n")

		case KindActionItems, KindActionDashboard:
			lines = append(lines,
				"\n| Description | Owner | Due Date | Priority | Status |",
				"|-------------|-------|----------|----------|--------|")
			for _, item := range s.Actions {
				status := "-"
				if s.Kind == KindActionDashboard {
					status = actionStatus(item)
				}
				lines = append(lines, fmt.Sprintf("| %s | %s | %s | %s | %s |",
					tableCell(actionDescription(item)), tableCell(actionOwner(item)),
					tableCell(actionDue(item)), actionPriority(item), status))
			}

		case KindDecisions:
			for i, d := range s.Decisions {
				lines = append(lines, fmt.Sprintf("\n### Decision %d: %s", i+1, or(d.Decision, "N/A")))
				if d.Rationale != "" {
					lines = append(lines, "**Rationale:** "+d.Rationale)
				}
				if len(d.Stakeholders) > 0 {
					lines = append(lines, "**Stakeholders:** "+strings.Join(d.Stakeholders, ", "))
				}
			}

		case KindTopics:
			for i, t := range s.Topics {
				lines = append(lines, fmt.Sprintf("\n### %d. %s", i+1, or(t.Topic, "N/A")), or(t.Summary, "N/A"))
			}

		case KindQuestions:
			for i, q := range s.Questions {
				lines = append(lines, fmt.Sprintf("\n**Q%d:** %s", i+1, or(q.Question, "N/A")))
				if q.WhoNeedsToAnswer != "" {
					lines = append(lines, fmt.Sprintf("*Owner: %s*", q.WhoNeedsToAnswer))
				}
			}
		}

		lines = append(lines, "\n")
	}

	lines = append(lines, fmt.Sprintf("\n---\n*Generated on %s*", now.Format(footerLayout)))
	return strings.Join(lines, "\n")
}

func tableCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
