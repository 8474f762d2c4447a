// internal/app/features/shared/caller.go
package shared

import (
	"net/http"

	apierrors "github.com/dalemusser/taskplanner/internal/app/features/errors"
	"github.com/dalemusser/taskplanner/internal/app/system/auth"
)

// CallerEmail returns the authenticated caller's email. Routes mounted
// behind auth.RequireBearer always have one; when it is missing the request
// is answered 401 and ok is false.
func CallerEmail(w http.ResponseWriter, r *http.Request) (email string, ok bool) {
	c, found := auth.CurrentCaller(r)
	if !found || c.Email == "" {
		apierrors.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return c.Email, true
}
