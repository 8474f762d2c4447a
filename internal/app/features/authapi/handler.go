// internal/app/features/authapi/handler.go
package authapi

import (
	"context"
	"net/http"

	"github.com/dalemusser/taskplanner/internal/app/account"
	apierrors "github.com/dalemusser/taskplanner/internal/app/features/errors"
	"github.com/dalemusser/taskplanner/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// Accounts is the part of the account service these handlers use.
type Accounts interface {
	Register(ctx context.Context, in account.RegisterInput) (account.Session, error)
	Login(ctx context.Context, in account.LoginInput) (account.Session, error)
}

// Limiter throttles login attempts. *ratelimit.LoginLimiter satisfies it.
type Limiter interface {
	Check(r *http.Request, email string) (bool, error)
	ResetEmail(ctx context.Context, email string) error
}

// Handler owns the unauthenticated register and login endpoints.
type Handler struct {
	Accounts Accounts
	Limiter  Limiter // nil disables login throttling
	Audit    *auditlog.Logger
	Log      *zap.Logger
	ErrLog   *apierrors.ErrorLogger
}

// NewHandler constructs a Handler.
func NewHandler(accounts Accounts, limiter Limiter, audit *auditlog.Logger, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts: accounts,
		Limiter:  limiter,
		Audit:    audit,
		Log:      logger,
		ErrLog:   errLog,
	}
}
