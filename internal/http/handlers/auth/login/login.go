// Package login реализует HTTP-обработчик выдачи токена доступа.
//
// Запрос приходит формой с полями username и password (username — это email
// или отображаемое имя). Перед аутентификацией выполняется идемпотентная
// проверка наличия администратора по умолчанию; недоступность хранилища на
// этом шаге логируется и не блокирует вход.
//
// Все причины отказа аутентификации сведены к единому ответу 400
// "incorrect credentials".
package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/elearning-api/internal/http/response"
	"github.com/magabrotheeeer/elearning-api/internal/lib/sl"
	"github.com/magabrotheeeer/elearning-api/internal/models"
	authservice "github.com/magabrotheeeer/elearning-api/internal/services/auth"
)

// Request — учетные данные из тела формы.
type Request struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// Service описывает интерфейс бизнес-логики входа.
type Service interface {
	EnsureDefaultAdmin(ctx context.Context) (authservice.BootstrapResult, error)
	Login(ctx context.Context, identifier, rawPassword string) (string, *models.User, error)
}

// Handler обрабатывает HTTP-запросы на вход.
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
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	req := Request{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	// Гарантируем администратора для первого запуска. Недоступность
	// хранилища здесь сознательно игнорируется: вход должен остаться
	// возможным, решение принимает обработчик, а не сервис.
	result, err := h.service.EnsureDefaultAdmin(r.Context())
	switch result {
	case authservice.BootstrapCreated:
		log.Info("default admin created")
	case authservice.BootstrapUnavailable:
		log.Warn("default admin check skipped", sl.Err(err))
	}

	token, user, err := h.service.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, authservice.ErrInvalidCredentials) {
		log.Error("login rejected")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("incorrect credentials"))
		return
	}
	if err != nil {
		log.Error("login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("login success", slog.String("role", string(user.Role)))
	render.JSON(w, r, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
	})
}
