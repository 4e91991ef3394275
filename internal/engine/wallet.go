package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xela07ax/rustchain-node-api/internal/chain"
	"github.com/xela07ax/rustchain-node-api/internal/domain"
	"github.com/xela07ax/rustchain-node-api/internal/policy"
)

var ErrMinerIDRequired = errors.New("miner_id required")

type BalanceReader interface {
	BalanceOf(ctx context.Context, minerID string) (int64, error)
}

type WalletService struct {
	repo   BalanceReader
	params chain.Params
}

func NewWalletService(repo BalanceReader, params chain.Params) *WalletService {
	return &WalletService{repo: repo, params: params}
}

// Balance требует админский уровень. Проверки идут до запроса в базу.
func (s *WalletService) Balance(ctx context.Context, level policy.AccessLevel, minerID string) (*domain.Balance, error) {
	if err := policy.Require(level); err != nil {
		return nil, err
	}

	minerID = strings.TrimSpace(minerID)
	if minerID == "" {
		return nil, ErrMinerIDRequired
	}

	amount, err := s.repo.BalanceOf(ctx, minerID)
	if err != nil {
		return nil, fmt.Errorf("wallet_service: %w", err)
	}

	return &domain.Balance{
		MinerID:   minerID,
		AmountI64: amount,
		AmountRTC: s.params.ToDisplay(amount),
	}, nil
}
