package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// NormalizePriority maps model output onto the three known priorities.
func NormalizePriority(p string) Priority {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "high", "urgent", "critical":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

type ActionItem struct {
	Description     string   `json:"description"`
	Owner           string   `json:"owner"`
	OwnerInferred   bool     `json:"owner_inferred,omitempty"`
	DueDate         string   `json:"due_date"`
	DueDateInferred bool     `json:"due_date_inferred,omitempty"`
	Priority        Priority `json:"priority"`
	Context         string   `json:"context,omitempty"`
	Confidence      Score    `json:"confidence"`
	SourceText      string   `json:"source_text,omitempty"`
	Status          string   `json:"status,omitempty"`
}

type Decision struct {
	Decision     string     `json:"decision"`
	Rationale    string     `json:"rationale,omitempty"`
	Impact       string     `json:"impact,omitempty"`
	Stakeholders StringList `json:"stakeholders,omitempty"`
	SourceText   string     `json:"source_text,omitempty"`
}

type Topic struct {
	Topic        string     `json:"topic"`
	Summary      string     `json:"summary"`
	Duration     string     `json:"duration,omitempty"`
	Participants StringList `json:"participants,omitempty"`
	Outcome      string     `json:"outcome,omitempty"`
}

type OpenQuestion struct {
	Question         string `json:"question"`
	Context          string `json:"context,omitempty"`
	WhoNeedsToAnswer string `json:"who_needs_to_answer,omitempty"`
	Urgency          string `json:"urgency,omitempty"`
	SourceText       string `json:"source_text,omitempty"`
}

type Commitment struct {
	Commitment string `json:"commitment"`
	Person     string `json:"person"`
	SourceText string `json:"source_text,omitempty"`
	Confidence Score  `json:"confidence"`
}

type ExecutiveSummary struct {
	Overview            string     `json:"overview"`
	KeyOutcomes         StringList `json:"key_outcomes"`
	CriticalActionItems StringList `json:"critical_action_items"`
	RisksOrBlockers     StringList `json:"risks_or_blockers"`
	NextMeeting         string     `json:"next_meeting,omitempty"`
}

type Sentiment struct {
	Overall         string     `json:"overall_sentiment"`
	Tone            string     `json:"tone,omitempty"`
	EngagementLevel string     `json:"engagement_level,omitempty"`
	Concerns        StringList `json:"concerns,omitempty"`
	Highlights      StringList `json:"highlights,omitempty"`
}

// Analysis bundles everything extracted from one transcript.
type Analysis struct {
	ActionItems         []ActionItem     `json:"action_items"`
	Decisions           []Decision       `json:"decisions"`
	Topics              []Topic          `json:"key_topics"`
	OpenQuestions       []OpenQuestion   `json:"open_questions"`
	ImplicitCommitments []Commitment     `json:"implicit_commitments"`
	ExecutiveSummary    ExecutiveSummary `json:"executive_summary"`
	Sentiment           *Sentiment       `json:"sentiment,omitempty"`
	AnalyzedAt          string           `json:"analysis_timestamp"`
	TranscriptLength    int              `json:"transcript_length"`
}

// StringList decodes from either a JSON array of strings or a single string.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = splitList(s)
		return nil
	}

	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		switch x := v.(type) {
		case string:
			if s := strings.TrimSpace(x); s != "" {
				out = append(out, s)
			}
		case nil:
		default:
			b, _ := json.Marshal(x)
			out = append(out, string(b))
		}
	}
	*l = out
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Score is a 0..1 value that also accepts numeric strings.
type Score float64

func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			*s = 0
			return nil
		}
		*s = Score(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = Score(f)
	return nil
}
