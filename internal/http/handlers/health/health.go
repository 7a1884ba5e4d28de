// Package health реализует диагностические HTTP-обработчики.
//
// Root отвечает без обращения к зависимостям. StoreCheck по требованию
// проверяет доступность базы пробной записью и отвечает 503, если база
// недоступна.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/elearning-api/internal/http/response"
	"github.com/magabrotheeeer/elearning-api/internal/lib/sl"
)

// StoreProber проверяет доступность хранилища.
type StoreProber interface {
	InsertHealthProbe(ctx context.Context) error
}

// Handler обрабатывает диагностические запросы.
type Handler struct {
	log    *slog.Logger
	prober StoreProber
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, prober StoreProber) *Handler {
	return &Handler{log: log, prober: prober}
}

// Root подтверждает, что процесс жив.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"ok":      true,
		"service": "elearning-api",
	})
}

// StoreCheck проверяет доступность базы пробной записью.
func (h *Handler) StoreCheck(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health.storecheck"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := h.prober.InsertHealthProbe(r.Context()); err != nil {
		log.Error("store probe failed", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("database unavailable"))
		return
	}
	render.JSON(w, r, map[string]any{"status": "ok"})
}
