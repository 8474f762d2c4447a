// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskplanner/internal/app/store/audit"
	"github.com/dalemusser/taskplanner/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for a category.
const (
	DestAll = "all" // MongoDB and zap
	DestDB  = "db"  // MongoDB only
	DestLog = "log" // zap only
	DestOff = "off"
)

// Config selects a destination per category.
type Config struct {
	Auth  string
	Board string
}

// EventStore persists audit events. *audit.Store satisfies it.
type EventStore interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger records audit events to the configured destinations.
// A nil *Logger is a no-op, so handlers and tests may omit it.
type Logger struct {
	store  EventStore
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store EventStore, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) destination(category string) string {
	var d string
	switch category {
	case audit.CategoryAuth:
		d = l.config.Auth
	case audit.CategoryBoard:
		d = l.config.Board
	}
	if d == "" {
		return DestAll
	}
	return d
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.BoardID != nil {
		fields = append(fields, zap.String("board_id", event.BoardID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to its category's destination. Storage
// failures are logged, never returned: auditing must not fail a request.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}
	dest := l.destination(event.Category)
	if dest == DestOff {
		return
	}
	if dest == DestAll || dest == DestLog {
		l.logToZap(event)
	}
	if (dest == DestAll || dest == DestDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func requestEvent(r *http.Request, category, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// --- Authentication Events ---

func (l *Logger) Registered(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	ev := requestEvent(r, audit.CategoryAuth, audit.EventRegistered, true)
	ev.UserID = &userID
	ev.Details = map[string]string{"email": email}
	l.Log(ctx, ev)
}

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	ev := requestEvent(r, audit.CategoryAuth, audit.EventLoginSuccess, true)
	ev.UserID = &userID
	ev.Details = map[string]string{"email": email}
	l.Log(ctx, ev)
}

// LoginFailed records a rejected login. eventType is one of the
// audit.EventLoginFailed* constants.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, eventType, email, reason string) {
	ev := requestEvent(r, audit.CategoryAuth, eventType, false)
	ev.FailureReason = reason
	ev.Details = map[string]string{"email": email}
	l.Log(ctx, ev)
}

func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	ev := requestEvent(r, audit.CategoryAuth, audit.EventPasswordChanged, true)
	ev.UserID = &userID
	l.Log(ctx, ev)
}

func (l *Logger) ProfileUpdated(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	ev := requestEvent(r, audit.CategoryAuth, audit.EventProfileUpdated, true)
	ev.UserID = &userID
	l.Log(ctx, ev)
}

func (l *Logger) AccountDeleted(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	ev := requestEvent(r, audit.CategoryAuth, audit.EventAccountDeleted, true)
	ev.UserID = &userID
	l.Log(ctx, ev)
}

// --- Board Events ---

func (l *Logger) boardEvent(ctx context.Context, r *http.Request, eventType string, userID, boardID primitive.ObjectID, title string) {
	ev := requestEvent(r, audit.CategoryBoard, eventType, true)
	ev.UserID = &userID
	ev.BoardID = &boardID
	if title != "" {
		ev.Details = map[string]string{"title": title}
	}
	l.Log(ctx, ev)
}

func (l *Logger) BoardCreated(ctx context.Context, r *http.Request, userID, boardID primitive.ObjectID, title string) {
	l.boardEvent(ctx, r, audit.EventBoardCreated, userID, boardID, title)
}

func (l *Logger) BoardUpdated(ctx context.Context, r *http.Request, userID, boardID primitive.ObjectID, title string) {
	l.boardEvent(ctx, r, audit.EventBoardUpdated, userID, boardID, title)
}

func (l *Logger) BoardDeleted(ctx context.Context, r *http.Request, userID, boardID primitive.ObjectID) {
	l.boardEvent(ctx, r, audit.EventBoardDeleted, userID, boardID, "")
}
