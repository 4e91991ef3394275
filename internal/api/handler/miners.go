package handler

import (
	"context"
	"net/http"

	"github.com/xela07ax/rustchain-node-api/internal/policy"
)

// MinerService Описываем, что нам нужно от сервиса
type MinerService interface {
	List(ctx context.Context, level policy.AccessLevel) (any, error)
}

type MinersHandler struct {
	base
	service MinerService
}

func NewMinersHandler(s MinerService, d Deps) *MinersHandler {
	return &MinersHandler{base: newBase(d, policy.MinersFields), service: s}
}

// List GET /api/miners — ключ необязателен, от него зависит только набор полей.
func (h *MinersHandler) List(w http.ResponseWriter, r *http.Request) {
	level := h.classify(r)

	list, err := h.service.List(r.Context(), level)
	if err != nil {
		h.internalError(w, r, level, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
	h.record(r, level, http.StatusOK)
}
