package models

// Word is a single recognised token. Times are seconds from the start of the recording.
type Word struct {
	Text       string  `json:"word"`
	Start      float64 `json:"start_time"`
	End        float64 `json:"end_time"`
	Confidence float64 `json:"confidence"`
	Speaker    string  `json:"speaker,omitempty"`
}

type Segment struct {
	ID         int     `json:"id"`
	Speaker    string  `json:"speaker,omitempty"`
	Text       string  `json:"text"`
	Start      float64 `json:"start_time"`
	End        float64 `json:"end_time"`
	Confidence float64 `json:"confidence,omitempty"`
	Words      []Word  `json:"words,omitempty"`
}

type SpeakerInfo struct {
	Name          string  `json:"name"`
	Label         string  `json:"label"`
	TotalDuration float64 `json:"total_duration"`
	SegmentCount  int     `json:"segment_count"`
	WordCount     int     `json:"word_count"`
}

// Transcript is the provider independent transcription result.
type Transcript struct {
	FullText      string                  `json:"full_transcript"`
	Language      string                  `json:"language"`
	Confidence    float64                 `json:"confidence"`
	AudioDuration float64                 `json:"audio_duration"`
	Words         []Word                  `json:"words,omitempty"`
	Segments      []Segment               `json:"segments,omitempty"`
	Speakers      map[string]*SpeakerInfo `json:"speakers,omitempty"`
	Provider      string                  `json:"provider"`
	AudioFile     string                  `json:"audio_file,omitempty"`
	File          string                  `json:"transcript_file,omitempty"`
	Metadata      *MeetingMetadata        `json:"metadata,omitempty"`
	CreatedAt     string                  `json:"timestamp,omitempty"`
}

// SpeakerText renders segments as "Speaker: text" lines, falling back to the flat text.
func (t *Transcript) SpeakerText() string {
	if t == nil {
		return ""
	}
	hasSpeakers := false
	for _, s := range t.Segments {
		if s.Speaker != "" {
			hasSpeakers = true
			break
		}
	}
	if !hasSpeakers {
		return t.FullText
	}

	var out []byte
	for _, s := range t.Segments {
		name := s.Speaker
		if info, ok := t.Speakers[s.Speaker]; ok && info.Name != "" {
			name = info.Name
		}
		if len(out) > 0 {
			out = append(out, '\n')
		}
		out = append(out, name...)
		out = append(out, ": "...)
		out = append(out, s.Text...)
	}
	return string(out)
}
