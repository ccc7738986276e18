package middleware

import (
	"net/http"

	"arkom-be/internal/auth"
	"arkom-be/internal/logger"
	"arkom-be/internal/utils"

	"go.uber.org/zap"
)

// NewAuthMiddleware resolves the caller from the access token. Requests
// without a token pass through anonymously; a token that fails verification
// is rejected with 401.
func NewAuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(tokenStr, secret)
			if err != nil {
				logger.FromCtx(r.Context()).Warn("rejected access token",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				utils.WriteJSONError(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Email, claims.Role)
			ctx = logger.WithUserID(ctx, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
