// Package read реализует публичный HTTP-обработчик чтения курса по идентификатору.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/elearning-api/internal/http/response"
	"github.com/magabrotheeeer/elearning-api/internal/lib/sl"
	"github.com/magabrotheeeer/elearning-api/internal/models"
	courseservice "github.com/magabrotheeeer/elearning-api/internal/services/course"
)

// Service описывает интерфейс бизнес-логики чтения курса.
type Service interface {
	Get(ctx context.Context, id string) (*models.Course, error)
}

// Handler обрабатывает GET-запросы курса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

	course, err := h.service.Get(r.Context(), id)
	if errors.Is(err, courseservice.ErrCourseNotFound) {
		log.Error("course not found", slog.String("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("course not found"))
		return
	}
	if err != nil {
		log.Error("failed to get course", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to get course"))
		return
	}

	render.JSON(w, r, response.OKWithData(course))
}
