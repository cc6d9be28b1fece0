package minutes

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
)

type SectionKind string

const (
	KindInfo            SectionKind = "info"
	KindList            SectionKind = "list"
	KindText            SectionKind = "text"
	KindTopics          SectionKind = "topics"
	KindActionItems     SectionKind = "action_items"
	KindActionDashboard SectionKind = "action_dashboard"
	KindDecisions       SectionKind = "decisions"
	KindQuestions       SectionKind = "questions"
)

type InfoItem struct {
	Label string
	Value string
}

// Section is one heading of a minutes document. Only the field matching Kind is set.
type Section struct {
	Heading   string
	Kind      SectionKind
	Info      []InfoItem
	Items     []string
	Text      string
	Topics    []models.Topic
	Actions   []models.ActionItem
	Decisions []models.Decision
	Questions []models.OpenQuestion
}

type Document struct {
	Template string
	Title    string
	Sections []Section
}

const maxAttendees = 5

// Templates lists the supported minutes layouts.
var Templates = []string{"MRS", "MTQP", "MSAD"}

// ValidTemplate reports ErrInvalidTemplate unless name is one of Templates, ignoring case.
func ValidTemplate(name string) error {
	t := strings.ToUpper(strings.TrimSpace(name))
	if !slices.Contains(Templates, t) {
		return fmt.Errorf("%w: %s. Supported templates: %s", ErrInvalidTemplate, t, strings.Join(Templates, ", "))
	}
	return nil
}

// Build lays out analysis results according to template (MRS, MTQP or MSAD, any case).
func Build(template string, meta *models.MeetingMetadata, analysis *models.Analysis, now time.Time) (*Document, error) {
	if meta == nil {
		meta = &models.MeetingMetadata{}
	}
	if analysis == nil {
		analysis = &models.Analysis{}
	}

	switch t := strings.ToUpper(strings.TrimSpace(template)); t {
	case "MRS":
		return buildMRS(meta, analysis, now), nil
	case "MTQP":
		return buildMTQP(meta, analysis, now), nil
	case "MSAD":
		return buildMSAD(meta, analysis, now), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidTemplate, t)
	}
}

func buildMRS(meta *models.MeetingMetadata, a *models.Analysis, now time.Time) *Document {
	doc := &Document{Template: "MRS", Title: "Meeting Recording System (MRS) Minutes"}

	doc.Sections = append(doc.Sections,
		Section{Heading: "Meeting Information", Kind: KindInfo, Info: []InfoItem{
			{"Meeting Title", or(meta.Title, "N/A")},
			{"Date", meetingDate(meta, now)},
			{"Time", or(meta.Time, "N/A")},
			{"Location/Platform", or(meta.Location, "Virtual")},
			{"Organizer", or(meta.Organizer, "N/A")},
			{"Duration", or(meta.Duration, "N/A")},
		}},
		Section{Heading: "Attendees", Kind: KindList, Items: meta.Participants},
	)

	if strings.TrimSpace(meta.Agenda) != "" {
		doc.Sections = append(doc.Sections, Section{Heading: "Agenda", Kind: KindText, Text: meta.Agenda})
	}
	if len(a.Topics) > 0 {
		doc.Sections = append(doc.Sections, Section{Heading: "Discussion Summary", Kind: KindTopics, Topics: a.Topics})
	}
	if len(a.ActionItems) > 0 {
		doc.Sections = append(doc.Sections, Section{Heading: "Action Items", Kind: KindActionItems, Actions: a.ActionItems})
	}
	if len(a.Decisions) > 0 {
		doc.Sections = append(doc.Sections, Section{Heading: "Decisions Made", Kind: KindDecisions, Decisions: a.Decisions})
	}
	if len(a.OpenQuestions) > 0 {
		doc.Sections = append(doc.Sections, Section{Heading: "Open Questions / Follow-up Items", Kind: KindQuestions, Questions: a.OpenQuestions})
	}
	return doc
}

func buildMTQP(meta *models.MeetingMetadata, a *models.Analysis, now time.Time) *Document {
	doc := &Document{Template: "MTQP", Title: "Meeting Topics, Questions, and Points (MTQP)"}

	doc.Sections = append(doc.Sections, Section{Heading: "Meeting Information", Kind: KindInfo, Info: []InfoItem{
		{"Title", or(meta.Title, "N/A")},
		{"Date", meetingDate(meta, now)},
		{"Participants", strings.Join(meta.Participants, ", ")},
	}})

	if a.ExecutiveSummary.Overview != "" {
		doc.Sections = append(doc.Sections, Section{Heading: "Executive Summary", Kind: KindText, Text: a.ExecutiveSummary.Overview})
	}
	if len(a.Topics) > 0 {
		doc.Sections = append(doc.Sections, Section{Heading: "Topics Discussed", Kind: KindTopics, Topics: a.Topics})
	}
	if len(a.OpenQuestions) > 0 {
		doc.Sections = append(doc.Sections, Section{Heading: "Questions Raised", Kind: KindQuestions, Questions: a.OpenQuestions})
	}
	if len(a.Decisions) > 0 {
		doc.Sections = append(doc.Sections, Section{Heading: "Key Points and Decisions", Kind: KindDecisions, Decisions: a.Decisions})
	}
	if len(a.ActionItems) > 0 {
		doc.Sections = append(doc.Sections, Section{Heading: "Action Points", Kind: KindActionItems, Actions: a.ActionItems})
	}
	return doc
}

func buildMSAD(meta *models.MeetingMetadata, a *models.Analysis, now time.Time) *Document {
	doc := &Document{Template: "MSAD", Title: "Meeting Summary and Action Dashboard (MSAD)"}

	attendees := strings.Join(meta.Participants, ", ")
	if len(meta.Participants) > maxAttendees {
		attendees = strings.Join(meta.Participants[:maxAttendees], ", ") + "..."
	}

	doc.Sections = append(doc.Sections, Section{Heading: "Quick Overview", Kind: KindInfo, Info: []InfoItem{
		{"Meeting", or(meta.Title, "N/A")},
		{"Date", meetingDate(meta, now)},
		{"Duration", or(meta.Duration, "N/A")},
		{"Attendees", attendees},
	}})

	summary := a.ExecutiveSummary
	if len(summary.KeyOutcomes) > 0 {
		doc.Sections = append(doc.Sections, Section{Heading: "Key Outcomes", Kind: KindList, Items: summary.KeyOutcomes})
	}
	if len(a.ActionItems) > 0 {
		tracked := make([]models.ActionItem, len(a.ActionItems))
		copy(tracked, a.ActionItems)
		for i := range tracked {
			tracked[i].Status = "Pending"
		}
		doc.Sections = append(doc.Sections, Section{Heading: "Action Dashboard", Kind: KindActionDashboard, Actions: tracked})
	}
	if len(a.Decisions) > 0 {
		doc.Sections = append(doc.Sections, Section{Heading: "Decisions Log", Kind: KindDecisions, Decisions: a.Decisions})
	}
	if len(summary.RisksOrBlockers) > 0 {
		doc.Sections = append(doc.Sections, Section{Heading: "Risks and Blockers", Kind: KindList, Items: summary.RisksOrBlockers})
	}
	if strings.TrimSpace(summary.NextMeeting) != "" {
		doc.Sections = append(doc.Sections, Section{Heading: "Next Steps", Kind: KindText, Text: summary.NextMeeting})
	}
	return doc
}

func meetingDate(meta *models.MeetingMetadata, now time.Time) string {
	if meta.Date != "" {
		return meta.Date
	}
	return now.Format("2006-01-02")
}

func or(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// Helpers shared by the exporters so every format shows the same defaults.

func actionDescription(item models.ActionItem) string { return or(item.Description, "N/A") }
func actionOwner(item models.ActionItem) string       { return or(item.Owner, "Unassigned") }
func actionDue(item models.ActionItem) string         { return or(item.DueDate, "Not specified") }
func actionStatus(item models.ActionItem) string      { return or(item.Status, "Pending") }

func actionPriority(item models.ActionItem) string {
	p := strings.ToLower(strings.TrimSpace(string(item.Priority)))
	if p == "" {
		return "Medium"
	}
	return strings.ToUpper(p[:1]) + p[1:]
}
