package progress

import (
	"testing"
	"time"
)

func TestBrokerDelivers(t *testing.T) {
	b := NewBroker()
	events, cancel := b.Subscribe("job-1")
	defer cancel()

	b.Publish(Event{JobID: "job-2", Stage: StageAnalyze, Status: StatusStarted})
	b.Publish(Event{JobID: "job-1", Stage: StageTranscribe, Status: StatusStarted, Message: "assemblyai"})

	select {
	case e := <-events:
		if e.Stage != StageTranscribe || e.Message != "assemblyai" {
			t.Errorf("event = %+v", e)
		}
		if e.Time.IsZero() {
			t.Error("Time not stamped")
		}
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	select {
	case e := <-events:
		t.Errorf("unexpected event for other job: %+v", e)
	default:
	}
}

func TestBrokerCancelClosesChannel(t *testing.T) {
	b := NewBroker()
	events, cancel := b.Subscribe("job")
	cancel()
	cancel()

	if _, ok := <-events; ok {
		t.Error("channel should be closed")
	}
	if len(b.subs) != 0 {
		t.Errorf("subscriptions left: %d", len(b.subs))
	}

	b.Publish(Event{JobID: "job"})
}

func TestBrokerDropsWhenFull(t *testing.T) {
	b := NewBroker()
	events, cancel := b.Subscribe("job")
	defer cancel()

	for i := 0; i < bufferSize+10; i++ {
		b.Publish(Event{JobID: "job", Stage: StageAnalyze})
	}
	if len(events) != bufferSize {
		t.Errorf("buffered = %d, want %d", len(events), bufferSize)
	}
}

func TestEventFinal(t *testing.T) {
	tests := []struct {
		e    Event
		want bool
	}{
		{Event{Stage: StageDone, Status: StatusCompleted}, true},
		{Event{Stage: StageAnalyze, Status: StatusFailed}, true},
		{Event{Stage: StageAnalyze, Status: StatusCompleted}, false},
	}
	for _, tt := range tests {
		if got := tt.e.Final(); got != tt.want {
			t.Errorf("Final(%+v) = %v", tt.e, got)
		}
	}
}
