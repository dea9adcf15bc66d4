package auth

import (
	"net/http"
	"strings"

	"github.com/ghuser/stockhub/pkg/httpx"
	"github.com/ghuser/stockhub/pkg/logger"
)

// UnauthorizedMessage is the body of every 401 response.
const UnauthorizedMessage = "Could not validate credentials"

// RequireAuth is a chi middleware that enforces bearer-token authentication.
// It verifies the Authorization header with v and injects the Identity into
// the request context. Every failure yields the same 401 response.
//
// After this middleware, handlers can safely call auth.IdentityFromCtx(r.Context()).
func RequireAuth(v Verifier, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				log.WarnContext(r.Context(), "missing bearer token")
				Unauthorized(w)
				return
			}

			id, err := v.Verify(r.Context(), token)
			if err != nil {
				log.WarnContext(r.Context(), "token verification failed", "error", err)
				Unauthorized(w)
				return
			}

			ctx := WithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Unauthorized writes the standard 401 response with a Bearer challenge.
func Unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	httpx.JSONError(w, http.StatusUnauthorized, UnauthorizedMessage)
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
