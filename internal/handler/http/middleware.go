package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/himmat05/prime-deal/internal/identity"
)

type contextKey string

const externalIDKey contextKey = "external_id"

// RequireAuth resolves the bearer credential to an external identity id and
// stores it in the request context. It rejects the request before any store
// access happens.
func RequireAuth(verifier identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if authz == "" {
				respondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				respondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				respondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			externalID, err := verifier.Verify(r.Context(), rawToken)
			if err != nil {
				log.Warn().Err(err).Msg("Rejected bearer credential")
				respondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), externalIDKey, externalID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func externalIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(externalIDKey).(string)
	return id, ok && id != ""
}
