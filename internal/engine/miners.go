package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/xela07ax/rustchain-node-api/internal/chain"
	"github.com/xela07ax/rustchain-node-api/internal/domain"
	"github.com/xela07ax/rustchain-node-api/internal/policy"
	"go.uber.org/zap"
)

// RecencyWindow — в списке только майнеры, аттестовавшиеся за последний час.
const RecencyWindow = time.Hour

type AttestationReader interface {
	RecentAttestations(ctx context.Context, since int64) ([]domain.Attestation, error)
}

type MinerService struct {
	repo    AttestationReader
	first   FirstAttestLookup
	weights domain.HardwareWeights
	clock   chain.Clock
	metrics *Metrics
	logger  *zap.Logger
}

func NewMinerService(repo AttestationReader, first FirstAttestLookup, weights domain.HardwareWeights, clock chain.Clock, metrics *Metrics, logger *zap.Logger) *MinerService {
	return &MinerService{
		repo:    repo,
		first:   first,
		weights: weights,
		clock:   clock,
		metrics: metrics,
		logger:  logger.Named("miner-service"),
	}
}

// List возвращает []domain.MinerInfo для анонима и []domain.MinerDetails для админа.
// Закрытые поля (и вторичный запрос first_attest) вычисляются только для админа.
func (s *MinerService) List(ctx context.Context, level policy.AccessLevel) (any, error) {
	since := s.clock().Add(-RecencyWindow).Unix()

	rows, err := s.repo.RecentAttestations(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("miner_service: %w", err)
	}

	if !level.IsAdmin() {
		out := make([]domain.MinerInfo, 0, len(rows))
		for _, r := range rows {
			out = append(out, domain.NewMinerInfo(r, s.weights))
		}
		return out, nil
	}

	out := make([]domain.MinerDetails, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.MinerDetails{
			MinerInfo:    domain.NewMinerInfo(r, s.weights),
			FirstAttest:  s.firstAttest(ctx, r.Miner),
			EntropyScore: r.Entropy(),
		})
	}
	return out, nil
}

// firstAttest изолирует сбой одного майнера: ошибка превращается в null, запрос идет дальше.
func (s *MinerService) firstAttest(ctx context.Context, miner string) *int64 {
	first, err := s.first.FirstAttestation(ctx, miner)
	if err != nil {
		s.metrics.FirstAttestFailures.Inc()
		s.logger.Debug("first attestation lookup failed", zap.String("miner", miner), zap.Error(err))
		return nil
	}
	return first
}
