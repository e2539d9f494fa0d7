package middleware

import (
	"context"
	"net/http"

	apierrors "github.com/boardroom-ai/auth-service/internal/errors"
	"github.com/boardroom-ai/auth-service/internal/models"
	"github.com/boardroom-ai/auth-service/internal/service"
)

// Authenticator — контракт проверки access-токена и per-request лимита,
// достаточный для Authenticate. Реализуется service.Service.
type Authenticator interface {
	Verify(ctx context.Context, accessToken string) (*models.User, error)
	AllowRequest(ctx context.Context, subject string) error
}

// Authenticate требует валидный access-токен (см. AuthBearer), проверяет
// per-request rate-лимит субъекта и кладёт учётную запись в контекст.
// Ошибки маппятся в 401/403/429 через apierrors.
func Authenticate(auth Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := AuthTokenFrom(r.Context())
			if token == "" {
				apierrors.WriteError(w, r, service.ErrInvalidToken)
				return
			}

			user, err := auth.Verify(r.Context(), token)
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			if err := auth.AllowRequest(r.Context(), user.ID.String()); err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
