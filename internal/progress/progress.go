package progress

import (
	"sync"
	"time"
)

// Stage names published while a meeting moves through the pipeline.
const (
	StageUpload     = "upload"
	StageValidate   = "validate"
	StageConvert    = "convert"
	StageTranscribe = "transcribe"
	StageAnalyze    = "analyze"
	StageGenerate   = "generate"
	StageDone       = "done"
)

const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Event struct {
	JobID   string    `json:"job_id"`
	Stage   string    `json:"stage"`
	Status  string    `json:"status"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
}

// Final reports whether no further events follow e for its job.
func (e Event) Final() bool {
	return e.Stage == StageDone || e.Status == StatusFailed
}

// Publisher is the side of the broker the pipeline depends on.
type Publisher interface {
	Publish(e Event)
}

const bufferSize = 32

// Broker fans job events out to subscribers. Slow subscribers drop events instead
// of blocking the publisher.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan Event]struct{})}
}

func (b *Broker) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs[e.JobID] {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe returns a channel of events for jobID and a function that ends the
// subscription and closes the channel.
func (b *Broker) Subscribe(jobID string) (<-chan Event, func()) {
	ch := make(chan Event, bufferSize)

	b.mu.Lock()
	if b.subs[jobID] == nil {
		b.subs[jobID] = make(map[chan Event]struct{})
	}
	b.subs[jobID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[jobID], ch)
			if len(b.subs[jobID]) == 0 {
				delete(b.subs, jobID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(Event) {}
