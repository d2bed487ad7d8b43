package auth

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventLoginSuccess ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure ActivityEventType = "auth.login.failure"
	ActivityEventRegister     ActivityEventType = "auth.register"
	ActivityEventAccessDenied ActivityEventType = "auth.access.denied"
	ActivityEventUserCreated  ActivityEventType = "user.created"
	ActivityEventUserUpdated  ActivityEventType = "user.updated"
	ActivityEventAdminChanged ActivityEventType = "user.admin.changed"
	ActivityEventUserDeleted  ActivityEventType = "user.deleted"
)

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType     ActivityEventType
	ActorID       int64
	UserID        int64
	CorrelationID string
	Metadata      map[string]any
	OccurredAt    time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

// recordActivity stamps event and hands it to sink. Sink failures are
// logged and never fail the caller.
func recordActivity(ctx context.Context, sink ActivitySink, logger Logger, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if event.CorrelationID == "" {
		event.CorrelationID = CorrelationID(ctx)
	}
	if err := sink.Record(ctx, event); err != nil {
		LoggerFor(ctx, logger).Warn("activity sink failed", "event", string(event.EventType), "error", err)
	}
}
