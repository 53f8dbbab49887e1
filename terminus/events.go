package terminus

import (
	"sync"
	"time"
)

// EventKind identifies the type of task event.
type EventKind string

const (
	EventTaskStart       EventKind = "task_start"
	EventTaskEnd         EventKind = "task_end"
	EventEpisodeStart    EventKind = "episode_start"
	EventModelResponse   EventKind = "model_response"
	EventModelRetry      EventKind = "model_retry"
	EventCommandTimeout  EventKind = "command_timeout"
	EventRepeatedBatch   EventKind = "repeated_batch"
	EventTaskComplete    EventKind = "task_complete"
	EventBudgetExhausted EventKind = "budget_exhausted"
	EventMarker          EventKind = "marker"
	EventSummarySaved    EventKind = "summary_saved"
	EventWarning         EventKind = "warning"
	EventError           EventKind = "error"
)

// TaskEvent is a typed event emitted while a task runs.
type TaskEvent struct {
	Kind      EventKind              `json:"kind"`
	Timestamp time.Time              `json:"timestamp"`
	TaskID    string                 `json:"task_id"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// EventEmitter delivers typed events to the host application via a channel.
type EventEmitter struct {
	taskID string
	ch     chan TaskEvent
	closed bool
	mu     sync.Mutex
}

// NewEventEmitter creates a new EventEmitter with a buffered channel.
func NewEventEmitter(taskID string, bufferSize int) *EventEmitter {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &EventEmitter{
		taskID: taskID,
		ch:     make(chan TaskEvent, bufferSize),
	}
}

// Emit sends an event to the channel. If the emitter is closed, the event
// is silently dropped.
func (e *EventEmitter) Emit(kind EventKind, data map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	event := TaskEvent{
		Kind:      kind,
		Timestamp: time.Now(),
		TaskID:    e.taskID,
		Data:      data,
	}
	select {
	case e.ch <- event:
	default:
		// Channel full; drop event to avoid blocking the episode loop.
	}
}

// Events returns the read-only event channel.
func (e *EventEmitter) Events() <-chan TaskEvent {
	return e.ch
}

// Close closes the event channel. Safe to call multiple times.
func (e *EventEmitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.ch)
	}
}
