// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/dalemusser/taskplanner/internal/app/system/apperr"
	"github.com/dalemusser/taskplanner/internal/app/system/auth"
	"github.com/dalemusser/taskplanner/internal/app/system/reqlog"
	"go.uber.org/zap"
)

// ErrorLogger logs a failed request once, with its context, and writes the
// JSON error response.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger creates an ErrorLogger. A nil logger discards output.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{log: logger}
}

func (el *ErrorLogger) fields(r *http.Request, op string, err error) []zap.Field {
	fs := []zap.Field{
		zap.String("op", op),
		zap.String("request_id", reqlog.ID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}
	if c, ok := auth.CurrentCaller(r); ok {
		fs = append(fs, zap.String("caller", c.Email))
	}
	return fs
}

// Respond logs err and writes the matching response. Server errors log at
// Error; client errors log at Debug.
func (el *ErrorLogger) Respond(w http.ResponseWriter, r *http.Request, op string, err error) {
	if apperr.KindOf(err) == apperr.Internal {
		el.log.Error(op+" failed", el.fields(r, op, err)...)
	} else {
		el.log.Debug(op+" rejected", el.fields(r, op, err)...)
	}
	WriteError(w, err)
}
