package persistence

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// EventLogger persists the events of one loading session.
// It satisfies logging.EventLogger.
type EventLogger struct {
	repo      LoadingEventRepository
	sessionID string
	vehicle   string
	errOut    io.Writer
	timeout   time.Duration
}

// NewEventLogger creates a logger writing to repo under the given session
func NewEventLogger(repo LoadingEventRepository, sessionID, vehicle string) *EventLogger {
	return &EventLogger{
		repo:      repo,
		sessionID: sessionID,
		vehicle:   vehicle,
		errOut:    os.Stderr,
		timeout:   5 * time.Second,
	}
}

// WithErrorOutput redirects persistence failures, which never reach the caller
func (l *EventLogger) WithErrorOutput(w io.Writer) *EventLogger {
	l.errOut = w
	return l
}

// Log persists the event; a failed write is reported on the error output
func (l *EventLogger) Log(level, message string, metadata map[string]interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	if err := l.repo.Log(ctx, l.sessionID, l.vehicle, message, level, metadata); err != nil {
		fmt.Fprintf(l.errOut, "[%s] [%s] ERROR: Failed to persist loading event: %v\n",
			time.Now().Format(time.RFC3339),
			l.sessionID,
			err,
		)
	}
}
