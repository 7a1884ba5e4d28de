// Package middlewarectx содержит HTTP middleware для проверки JWT токенов
// и ролей пользователей.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке
// Authorization, загружает пользователя из хранилища и кладет его в контекст
// запроса. AdminOnlyMiddleware поверх этого требует роль admin.
//
// При отказе проверки токена возвращается HTTP 401 Unauthorized с challenge
// заголовком WWW-Authenticate: Bearer.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/elearning-api/internal/http/response"
	"github.com/magabrotheeeer/elearning-api/internal/lib/jwt"
	"github.com/magabrotheeeer/elearning-api/internal/lib/sl"
	"github.com/magabrotheeeer/elearning-api/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// CurrentUser — ключ контекста с загруженным *models.User.
const CurrentUser Key = "current_user"

// UserProvider загружает пользователя по идентификатору из токена.
type UserProvider interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// UserFromContext возвращает пользователя, положенного в контекст JWTMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(CurrentUser).(*models.User)
	return user, ok
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке
// Authorization и резолвит пользователя.
//
// Валидация токена всегда предшествует загрузке пользователя. Токен без
// соответствующей записи в базе отклоняется так же, как невалидный.
func JWTMiddleware(maker jwt.Maker, users UserProvider, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			authHeader := r.Header.Get("Authorization")

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				unauthorized(w, r, "missing or invalid authorization header")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := maker.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				unauthorized(w, r, "invalid or expired token")
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.Subject)
			if err != nil {
				log.Error("token subject not found", sl.Err(err))
				unauthorized(w, r, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), CurrentUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnlyMiddleware требует роль admin у пользователя из контекста.
//
// Токен повторно не проверяется, middleware должен стоять после JWTMiddleware.
func AdminOnlyMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AdminOnlyMiddleware"

			user, ok := UserFromContext(r.Context())
			if !ok {
				log.Error("user missing in context", slog.String("op", op))
				unauthorized(w, r, "unauthorized")
				return
			}
			if user.Role != models.RoleAdmin {
				log.Error("admin privileges required",
					slog.String("op", op),
					slog.String("role", string(user.Role)))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("admin privileges required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	render.JSON(w, r, response.Error(msg))
}
