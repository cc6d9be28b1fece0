package transcriber

import (
	"math"
	"strings"

	"github.com/aaronmat1905/automated-meeting-minutes-generator/internal/models"
)

// BuildSpeakerSegments groups words into segments. A new segment starts on every
// speaker change, or after sentence-ending punctuation when no speakers are labelled.
func BuildSpeakerSegments(words []models.Word) []models.Segment {
	var (
		segments []models.Segment
		current  *models.Segment
		confSum  float64
	)

	flush := func() {
		if current == nil || len(current.Words) == 0 {
			return
		}
		current.Confidence = round2(confSum / float64(len(current.Words)))
		segments = append(segments, *current)
		current = nil
		confSum = 0
	}

	for _, w := range words {
		if current != nil && w.Speaker != current.Speaker {
			flush()
		}
		if current == nil {
			current = &models.Segment{
				ID:      len(segments),
				Speaker: w.Speaker,
				Start:   w.Start,
			}
		}

		if current.Text != "" {
			current.Text += " "
		}
		current.Text += strings.TrimSpace(w.Text)
		current.End = w.End
		current.Words = append(current.Words, w)
		confSum += w.Confidence

		if w.Speaker == "" && endsSentence(w.Text) {
			flush()
		}
	}
	flush()

	return segments
}

func endsSentence(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!")
}

// SpeakerStats aggregates talk time, segment and word counts per speaker label.
// It returns nil when no segment carries a speaker.
func SpeakerStats(segments []models.Segment) map[string]*models.SpeakerInfo {
	stats := make(map[string]*models.SpeakerInfo)
	for _, s := range segments {
		if s.Speaker == "" {
			continue
		}
		info, ok := stats[s.Speaker]
		if !ok {
			info = &models.SpeakerInfo{Name: "Speaker " + s.Speaker, Label: s.Speaker}
			stats[s.Speaker] = info
		}
		info.TotalDuration = round2(info.TotalDuration + (s.End - s.Start))
		info.SegmentCount++
		info.WordCount += len(strings.Fields(s.Text))
	}
	if len(stats) == 0 {
		return nil
	}
	return stats
}

// RelabelSpeakers sets Speakers[label].Name from a label -> name mapping and
// returns how many speakers changed. Segment and word labels stay untouched.
// Keys may be either the raw label ("A") or the current display name ("Speaker A").
func RelabelSpeakers(t *models.Transcript, mapping map[string]string) int {
	if t == nil || len(mapping) == 0 {
		return 0
	}

	resolved := make(map[string]string)
	for key, name := range mapping {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		for label, info := range t.Speakers {
			if key == label || key == info.Name {
				resolved[label] = name
			}
		}
	}

	for label, name := range resolved {
		t.Speakers[label].Name = name
	}
	return len(resolved)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
