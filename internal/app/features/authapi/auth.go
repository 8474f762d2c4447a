// internal/app/features/authapi/auth.go
package authapi

import (
	"errors"
	"net/http"

	"github.com/dalemusser/taskplanner/internal/app/account"
	apierrors "github.com/dalemusser/taskplanner/internal/app/features/errors"
	"github.com/dalemusser/taskplanner/internal/app/store/audit"
	"github.com/dalemusser/taskplanner/internal/app/system/ratelimit"
	"github.com/dalemusser/taskplanner/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type tokenResponse struct {
	Token string `json:"token"`
}

// HandleRegister handles POST /auth/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in account.RegisterInput
	if err := apierrors.DecodeJSON(r, &in); err != nil {
		h.ErrLog.Respond(w, r, "register", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "register")
	defer cancel()
	sess, err := h.Accounts.Register(ctx, in)
	if err != nil {
		h.ErrLog.Respond(w, r, "register", err)
		return
	}

	h.Audit.Registered(r.Context(), r, sess.User.ID, sess.User.Email)
	apierrors.WriteJSON(w, http.StatusOK, tokenResponse{Token: sess.Token})
}

// HandleLogin handles POST /auth/login. Attempts are throttled per client
// IP and per email; a success clears the email's count.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in account.LoginInput
	if err := apierrors.DecodeJSON(r, &in); err != nil {
		h.ErrLog.Respond(w, r, "login", err)
		return
	}

	if h.Limiter != nil {
		allowed, err := h.Limiter.Check(r, in.Email)
		if err != nil {
			h.Log.Warn("login rate limiter unavailable", zap.Error(err))
		}
		if !allowed {
			h.Audit.LoginFailed(r.Context(), r, audit.EventLoginFailedRateLimit, in.Email, "rate limited")
			apierrors.WriteMessage(w, http.StatusTooManyRequests, ratelimit.MsgTooManyAttempts)
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "login")
	defer cancel()
	sess, err := h.Accounts.Login(ctx, in)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrUnknownEmail):
			h.Audit.LoginFailed(r.Context(), r, audit.EventLoginFailedUserNotFound, in.Email, "unknown email")
		case errors.Is(err, account.ErrWrongPassword):
			h.Audit.LoginFailed(r.Context(), r, audit.EventLoginFailedWrongPassword, in.Email, "wrong password")
		}
		h.ErrLog.Respond(w, r, "login", err)
		return
	}

	if h.Limiter != nil {
		if err := h.Limiter.ResetEmail(r.Context(), sess.User.Email); err != nil {
			h.Log.Warn("reset login attempts failed", zap.Error(err))
		}
	}
	h.Audit.LoginSuccess(r.Context(), r, sess.User.ID, sess.User.Email)
	apierrors.WriteJSON(w, http.StatusOK, tokenResponse{Token: sess.Token})
}
