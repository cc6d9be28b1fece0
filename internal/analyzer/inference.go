package analyzer

import (
	"regexp"
	"strings"
	"time"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
)

var (
	reEmail       = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	reSpeakerLine = regexp.MustCompile(`^([A-Z][A-Za-z0-9_\-]+(?: [A-Z][A-Za-z0-9_\-]+)?)\s*:\s*(.*)$`)
	reOwnership   = regexp.MustCompile(`(?i)\b(will|can you|i'll|i will|let me|assign|i can)\b`)
	reNamePattern = []*regexp.Regexp{
		regexp.MustCompile(`\b([A-Z][a-z]{2,}(?:\s[A-Z][a-z]{2,})?)\s+(?:will|shall|can|is going to)\b`),
		regexp.MustCompile(`\b[Cc]an\s+([A-Z][a-z]{2,})\b`),
		regexp.MustCompile(`assign(?:ed)? to\s+([A-Z][a-z]{2,})\b`),
	}
)

func isUnassigned(owner string) bool {
	switch strings.ToLower(strings.TrimSpace(owner)) {
	case "", "unassigned", "none", "not specified", "unknown", "tbd", "n/a":
		return true
	}
	return false
}

// assignOwners fills in owners the model left blank. In order it tries an email in the
// quote, the speaker line the quote came from, a participant named in the quote, and
// finally name patterns like "Sarah will" or "assigned to Mike".
func assignOwners(items []models.ActionItem, transcript string, meta *models.MeetingMetadata) {
	var lines []string
	for _, l := range strings.Split(transcript, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	for i := range items {
		item := &items[i]
		if !isUnassigned(item.Owner) {
			item.OwnerInferred = false
			continue
		}

		if owner := inferOwner(item, lines, meta); owner != "" {
			item.Owner = owner
			item.OwnerInferred = true
			continue
		}

		item.Owner = "Unassigned"
		item.OwnerInferred = false
	}
}

func inferOwner(item *models.ActionItem, lines []string, meta *models.MeetingMetadata) string {
	source := strings.TrimSpace(item.SourceText)
	blob := strings.TrimSpace(source + "\n" + item.Description)

	if m := reEmail.FindString(source); m != "" {
		return m
	}

	if source != "" {
		sourceWords := wordSet(source)
		for _, line := range lines {
			m := reSpeakerLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			speaker, content := m[1], m[2]
			if strings.Contains(content, source) {
				return speaker
			}
			if reOwnership.MatchString(content) && overlap(sourceWords, wordSet(content)) >= 2 {
				return speaker
			}
		}
	}

	if meta != nil {
		for _, p := range meta.Participants {
			re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(p) + `\b`)
			if err == nil && re.MatchString(blob) {
				return p
			}
		}
	}

	for _, re := range reNamePattern {
		if m := re.FindStringSubmatch(blob); m != nil {
			return m[1]
		}
	}
	return ""
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}

func hasNoDueDate(d string) bool {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "", "not specified", "none", "tbd", "n/a", "unknown", "null":
		return true
	}
	return false
}

// inferDueDates gives undated items a deadline from priority: high +3 days, medium +7, low +14.
func inferDueDates(items []models.ActionItem, now time.Time) {
	for i := range items {
		item := &items[i]
		item.Priority = models.NormalizePriority(string(item.Priority))

		if !hasNoDueDate(item.DueDate) {
			item.DueDateInferred = false
			continue
		}

		days := 7
		switch item.Priority {
		case models.PriorityHigh:
			days = 3
		case models.PriorityLow:
			days = 14
		}
		item.DueDate = now.AddDate(0, 0, days).Format("2006-01-02")
		item.DueDateInferred = true
	}
}
