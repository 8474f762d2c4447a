// internal/app/features/profile/profile.go
package profile

import (
	"net/http"

	"github.com/dalemusser/taskplanner/internal/app/account"
	apierrors "github.com/dalemusser/taskplanner/internal/app/features/errors"
	"github.com/dalemusser/taskplanner/internal/app/features/shared"
	"github.com/dalemusser/taskplanner/internal/app/system/timeouts"
)

// ServeProfile handles GET /user/me.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	email, ok := shared.CallerEmail(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "read profile")
	defer cancel()
	u, err := h.Accounts.Profile(ctx, email)
	if err != nil {
		h.ErrLog.Respond(w, r, "read profile", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, account.UserViewOf(*u))
}

// HandleUpdateProfile handles PATCH /user/me.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	email, ok := shared.CallerEmail(w, r)
	if !ok {
		return
	}
	var in account.ProfileInput
	if err := apierrors.DecodeJSON(r, &in); err != nil {
		h.ErrLog.Respond(w, r, "update profile", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update profile")
	defer cancel()
	u, err := h.Accounts.UpdateProfile(ctx, email, in)
	if err != nil {
		h.ErrLog.Respond(w, r, "update profile", err)
		return
	}
	h.Audit.ProfileUpdated(r.Context(), r, u.ID)
	apierrors.WriteJSON(w, http.StatusOK, account.UserViewOf(*u))
}

// HandleChangePassword handles PATCH /user/me/password.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	email, ok := shared.CallerEmail(w, r)
	if !ok {
		return
	}
	var in account.PasswordInput
	if err := apierrors.DecodeJSON(r, &in); err != nil {
		h.ErrLog.Respond(w, r, "change password", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "change password")
	defer cancel()
	u, err := h.Accounts.ChangePassword(ctx, email, in)
	if err != nil {
		h.ErrLog.Respond(w, r, "change password", err)
		return
	}
	h.Audit.PasswordChanged(r.Context(), r, u.ID)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteAccount handles DELETE /user/me.
func (h *Handler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	email, ok := shared.CallerEmail(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete account")
	defer cancel()
	u, err := h.Accounts.DeleteAccount(ctx, email)
	if err != nil {
		h.ErrLog.Respond(w, r, "delete account", err)
		return
	}
	h.Audit.AccountDeleted(r.Context(), r, u.ID)
	w.WriteHeader(http.StatusNoContent)
}
