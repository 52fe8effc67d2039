package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/vogiaan1904/ticketbottle-ledger/internal/auth"
)

type actorKey struct{}

// RequireActor authenticates the request's actor token and stores the
// account in the request context. Mutating routes sit behind this.
func RequireActor(signer *auth.Signer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				respondJSON(w, http.StatusUnauthorized, errorResponse{
					Code:    "UNAUTHORIZED",
					Message: "missing actor token",
				})
				return
			}

			account, err := signer.Verify(tokenStr)
			if err != nil {
				respondJSON(w, http.StatusUnauthorized, errorResponse{
					Code:    "UNAUTHORIZED",
					Message: "invalid actor token",
				})
				return
			}

			ctx := context.WithValue(r.Context(), actorKey{}, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Actor returns the authenticated account, empty when the route is public.
func Actor(ctx context.Context) string {
	account, _ := ctx.Value(actorKey{}).(string)
	return account
}
