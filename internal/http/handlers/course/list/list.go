// Package list реализует публичный HTTP-обработчик листинга каталога курсов.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/elearning-api/internal/http/response"
	"github.com/magabrotheeeer/elearning-api/internal/lib/sl"
	"github.com/magabrotheeeer/elearning-api/internal/models"
)

const defaultLimit = 50

// Service описывает интерфейс бизнес-логики листинга каталога.
type Service interface {
	List(ctx context.Context, skip, limit int64) ([]*models.Course, error)
}

// Handler обрабатывает запросы каталога курсов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	skip := parseQueryInt(r, "skip", 0)
	limit := parseQueryInt(r, "limit", defaultLimit)

	courses, err := h.service.List(r.Context(), skip, limit)
	if err != nil {
		log.Error("failed to list courses", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list courses"))
		return
	}

	render.JSON(w, r, response.OKWithData(courses))
}

func parseQueryInt(r *http.Request, name string, def int64) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}
