package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Caller identity                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// Caller is the identity resolved from a bearer token. Handlers read it once
// and pass it explicitly into account and planner calls.
type Caller struct {
	Email string
}

type ctxKey string

const callerKey ctxKey = "caller"

// CurrentCaller returns the caller and a "found?" flag.
func CurrentCaller(r *http.Request) (Caller, bool) {
	c, ok := r.Context().Value(callerKey).(Caller)
	return c, ok
}

// WithCaller stores c in ctx.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

// WithTestCaller injects a caller into a request. For handler tests only.
func WithTestCaller(r *http.Request, email string) *http.Request {
	return r.WithContext(WithCaller(r.Context(), Caller{Email: email}))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errBadAuthorization     = errors.New("authorization header is not a bearer token")
)

// Verifier resolves a bearer token to its subject. *Tokens satisfies it.
type Verifier interface {
	Verify(token string) (string, error)
}

// RequireBearer rejects requests without a valid bearer token with 401
// {"message":"Unauthorized"} and otherwise puts the Caller in the context.
func RequireBearer(v Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r.Header.Get("Authorization"))
			if err == nil {
				var sub string
				if sub, err = v.Verify(token); err == nil {
					next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), Caller{Email: sub})))
					return
				}
			}
			logger.Debug("bearer rejected", zap.String("path", r.URL.Path), zap.Error(err))
			writeUnauthorized(w)
		})
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(h string) (string, error) {
	h = strings.TrimSpace(h)
	if h == "" {
		return "", errMissingAuthorization
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errBadAuthorization
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errBadAuthorization
	}
	return token, nil
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("WWW-Authenticate", `Bearer realm="taskplanner"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Unauthorized"})
}
