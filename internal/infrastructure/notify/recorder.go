package notify

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultHistory is how many notifications the recorder retains.
const DefaultHistory = 50

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is one recorded status message.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Recorder keeps a bounded history of status notifications and mirrors each
// one to the process log. The oldest entries fall off when the history is
// full.
type Recorder struct {
	history int
	entries []Notification
	mutex   sync.RWMutex
}

// NewRecorder creates a recorder retaining up to history notifications.
// A non-positive history falls back to DefaultHistory.
func NewRecorder(history int) *Recorder {
	if history <= 0 {
		history = DefaultHistory
	}
	return &Recorder{
		history: history,
	}
}

// Success records a success notification
func (r *Recorder) Success(message string) {
	r.record(LevelSuccess, message)
}

// Error records an error notification
func (r *Recorder) Error(message string) {
	r.record(LevelError, message)
}

// Recent returns the retained notifications, newest first
func (r *Recorder) Recent() []Notification {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	recent := make([]Notification, len(r.entries))
	for i, n := range r.entries {
		recent[len(r.entries)-1-i] = n
	}
	return recent
}

func (r *Recorder) record(level Level, message string) {
	notification := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	}

	log.Printf("[NOTIFY] %s: %s", level, message)

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.entries = append(r.entries, notification)
	if len(r.entries) > r.history {
		r.entries = r.entries[len(r.entries)-r.history:]
	}
}
