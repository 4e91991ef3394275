package engine

import (
	"context"
	"fmt"

	"github.com/xela07ax/rustchain-node-api/internal/chain"
	"github.com/xela07ax/rustchain-node-api/internal/domain"
	"github.com/xela07ax/rustchain-node-api/internal/policy"
)

type EnrollmentReader interface {
	EnrolledCount(ctx context.Context, epoch int64) (int64, error)
}

type EpochService struct {
	repo    EnrollmentReader
	params  chain.Params
	clock   chain.Clock
	metrics *Metrics
}

func NewEpochService(repo EnrollmentReader, params chain.Params, clock chain.Clock, metrics *Metrics) *EpochService {
	return &EpochService{repo: repo, params: params, clock: clock, metrics: metrics}
}

// Info: гейдж эпохи обновляется при любом уровне доступа, запрос числа участников выполняется всегда.
// Анониму уходит domain.EpochInfo, админу domain.EpochDetails.
func (s *EpochService) Info(ctx context.Context, level policy.AccessLevel) (any, error) {
	slot := s.params.CurrentSlot(s.clock())
	epoch := s.params.SlotToEpoch(slot)
	s.metrics.CurrentEpoch.Set(float64(epoch))

	enrolled, err := s.repo.EnrolledCount(ctx, epoch)
	if err != nil {
		return nil, fmt.Errorf("epoch_service: %w", err)
	}

	info := domain.EpochInfo{
		Epoch:          epoch,
		Slot:           slot,
		BlocksPerEpoch: s.params.EpochSlots,
	}
	if !level.IsAdmin() {
		return info, nil
	}

	return domain.EpochDetails{
		EpochInfo:      info,
		EpochPot:       s.params.PerEpochRTC,
		EnrolledMiners: enrolled,
	}, nil
}
