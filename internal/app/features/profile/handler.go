// internal/app/features/profile/handler.go
package profile

import (
	"context"

	"github.com/dalemusser/taskplanner/internal/app/account"
	apierrors "github.com/dalemusser/taskplanner/internal/app/features/errors"
	"github.com/dalemusser/taskplanner/internal/app/system/auditlog"
	"github.com/dalemusser/taskplanner/internal/domain/models"
	"go.uber.org/zap"
)

// Accounts is the part of the account service the profile handlers use.
type Accounts interface {
	Profile(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, email string, in account.ProfileInput) (*models.User, error)
	ChangePassword(ctx context.Context, email string, in account.PasswordInput) (*models.User, error)
	DeleteAccount(ctx context.Context, email string) (*models.User, error)
}

// Handler owns all /user/me handlers.
type Handler struct {
	Accounts Accounts
	Audit    *auditlog.Logger
	Log      *zap.Logger
	ErrLog   *apierrors.ErrorLogger
}

// NewHandler constructs a Handler bound to the account service and logger.
func NewHandler(accounts Accounts, audit *auditlog.Logger, errLog *apierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts: accounts,
		Audit:    audit,
		Log:      logger,
		ErrLog:   errLog,
	}
}
