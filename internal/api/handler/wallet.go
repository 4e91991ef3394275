package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/xela07ax/rustchain-node-api/internal/domain"
	"github.com/xela07ax/rustchain-node-api/internal/engine"
	"github.com/xela07ax/rustchain-node-api/internal/policy"
)

type WalletService interface {
	Balance(ctx context.Context, level policy.AccessLevel, minerID string) (*domain.Balance, error)
}

type WalletHandler struct {
	base
	service WalletService
}

func NewWalletHandler(s WalletService, d Deps) *WalletHandler {
	return &WalletHandler{base: newBase(d, policy.WalletBalanceFields), service: s}
}

// Balance GET /wallet/balance?miner_id=... — только с валидным ключом.
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	level := h.classify(r)

	bal, err := h.service.Balance(r.Context(), level, r.URL.Query().Get("miner_id"))
	switch {
	case errors.Is(err, policy.ErrAuthenticationRequired):
		h.unauthorized(w, r, level)
	case errors.Is(err, engine.ErrMinerIDRequired):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: engine.ErrMinerIDRequired.Error()})
		h.record(r, level, http.StatusBadRequest)
	case err != nil:
		h.internalError(w, r, level, err)
	default:
		writeJSON(w, http.StatusOK, bal)
		h.record(r, level, http.StatusOK)
	}
}
