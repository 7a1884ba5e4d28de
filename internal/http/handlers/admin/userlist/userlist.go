// Package userlist реализует административный HTTP-обработчик списка пользователей.
package userlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/elearning-api/internal/http/response"
	"github.com/magabrotheeeer/elearning-api/internal/lib/sl"
	"github.com/magabrotheeeer/elearning-api/internal/models"
)

// listLimit верхняя граница административной выборки пользователей.
const listLimit = 200

// Service описывает интерфейс выборки пользователей.
type Service interface {
	ListUsers(ctx context.Context, limit int64) ([]*models.User, error)
}

// Handler обрабатывает запрос списка пользователей. Доступ ограничивается
// middleware, сам обработчик роль не проверяет.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	users, err := h.service.ListUsers(r.Context(), listLimit)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list users"))
		return
	}

	public := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}

	log.Info("users listed", slog.Int("count", len(public)))
	render.JSON(w, r, response.OKWithData(public))
}
