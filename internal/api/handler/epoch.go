package handler

import (
	"context"
	"net/http"

	"github.com/xela07ax/rustchain-node-api/internal/policy"
)

type EpochService interface {
	Info(ctx context.Context, level policy.AccessLevel) (any, error)
}

type EpochHandler struct {
	base
	service EpochService
}

func NewEpochHandler(s EpochService, d Deps) *EpochHandler {
	return &EpochHandler{base: newBase(d, policy.EpochFields), service: s}
}

// Get GET /epoch
func (h *EpochHandler) Get(w http.ResponseWriter, r *http.Request) {
	level := h.classify(r)

	info, err := h.service.Info(r.Context(), level)
	if err != nil {
		h.internalError(w, r, level, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
	h.record(r, level, http.StatusOK)
}
