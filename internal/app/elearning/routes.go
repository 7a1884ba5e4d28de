// Package elearning собирает приложение: зависимости, маршруты и HTTP-сервер.
package elearning

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magabrotheeeer/elearning-api/internal/http/handlers/admin/userlist"
	"github.com/magabrotheeeer/elearning-api/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/elearning-api/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/elearning-api/internal/http/handlers/auth/register"
	coursecreate "github.com/magabrotheeeer/elearning-api/internal/http/handlers/course/create"
	courselist "github.com/magabrotheeeer/elearning-api/internal/http/handlers/course/list"
	courseread "github.com/magabrotheeeer/elearning-api/internal/http/handlers/course/read"
	courseremove "github.com/magabrotheeeer/elearning-api/internal/http/handlers/course/remove"
	courseupdate "github.com/magabrotheeeer/elearning-api/internal/http/handlers/course/update"
	"github.com/magabrotheeeer/elearning-api/internal/http/handlers/health"
	"github.com/magabrotheeeer/elearning-api/internal/http/middlewarectx"
	"github.com/magabrotheeeer/elearning-api/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/elearning-api/internal/services/auth"
	courseservice "github.com/magabrotheeeer/elearning-api/internal/services/course"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker jwt.Maker,
	auth *authservice.Service, courses *courseservice.Service, db health.StoreProber) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	healthHandler := health.New(logger, db)
	r.Get("/", healthHandler.Root)
	r.Get("/test", healthHandler.StoreCheck)

	// Открытые конечные точки
	r.Post("/auth/register", register.New(logger, auth).ServeHTTP)
	r.Post("/auth/token", login.New(logger, auth).ServeHTTP)
	r.Get("/courses", courselist.New(logger, courses).ServeHTTP)
	r.Get("/courses/{id}", courseread.New(logger, courses).ServeHTTP)

	// Группа с JWT аутентификацией
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(jwtMaker, auth, logger))
		r.Get("/auth/me", me.New(logger).ServeHTTP)

		// Только для администраторов
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AdminOnlyMiddleware(logger))
			r.Get("/admin/users", userlist.New(logger, auth).ServeHTTP)
			r.Post("/courses", coursecreate.New(logger, courses).ServeHTTP)
			r.Patch("/courses/{id}", courseupdate.New(logger, courses).ServeHTTP)
			r.Delete("/courses/{id}", courseremove.New(logger, courses).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
}
