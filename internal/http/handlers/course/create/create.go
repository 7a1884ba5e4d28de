// Package create реализует HTTP-обработчик создания курса.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/elearning-api/internal/http/response"
	"github.com/magabrotheeeer/elearning-api/internal/lib/sl"
	"github.com/magabrotheeeer/elearning-api/internal/models"
)

// Request — входные данные нового курса.
type Request struct {
	Title        string   `json:"title" validate:"required"`
	Description  string   `json:"description" validate:"required"`
	Level        string   `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price        float64  `json:"price" validate:"gte=0"`
	Published    bool     `json:"published"`
	ThumbnailURL string   `json:"thumbnail_url"`
	Lessons      []string `json:"lessons"`
}

// Service описывает интерфейс бизнес-логики создания курса.
type Service interface {
	Create(ctx context.Context, course models.Course) (*models.Course, error)
}

// Handler обрабатывает HTTP-запросы на создание курса.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	level := req.Level
	if level == "" {
		level = "beginner"
	}
	created, err := h.service.Create(r.Context(), models.Course{
		Title:        req.Title,
		Description:  req.Description,
		Level:        level,
		Price:        req.Price,
		Published:    req.Published,
		ThumbnailURL: req.ThumbnailURL,
		Lessons:      req.Lessons,
	})
	if err != nil {
		log.Error("failed to create course", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to create course"))
		return
	}

	log.Info("course created", slog.String("id", created.ID.Hex()))
	render.JSON(w, r, response.OKWithData(created))
}
