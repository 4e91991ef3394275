package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xela07ax/rustchain-node-api/internal/domain"
)

// RecentAttestations — аттестации новее since, свежие первыми.
func (s *Store) RecentAttestations(ctx context.Context, since int64) ([]domain.Attestation, error) {
	query := s.rebind(`
		SELECT miner, ts_ok, device_family, device_arch, entropy_score
		FROM miner_attest_recent
		WHERE ts_ok > ?
		ORDER BY ts_ok DESC`)

	rows, err := s.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: failed to query recent attestations: %w", err)
	}
	defer rows.Close()

	// Пустой слайс, чтобы в JSON был [] вместо null
	results := make([]domain.Attestation, 0)
	for rows.Next() {
		var (
			a       domain.Attestation
			family  sql.NullString
			arch    sql.NullString
			entropy sql.NullFloat64
		)
		if err := rows.Scan(&a.Miner, &a.TsOK, &family, &arch, &entropy); err != nil {
			return nil, fmt.Errorf("sqlstore: failed to scan attestation: %w", err)
		}
		if family.Valid {
			v := family.String
			a.DeviceFamily = &v
		}
		if arch.Valid {
			v := arch.String
			a.DeviceArch = &v
		}
		if entropy.Valid {
			v := entropy.Float64
			a.EntropyScore = &v
		}
		results = append(results, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: rows iteration error: %w", err)
	}
	return results, nil
}

// FirstAttestation — самая ранняя аттестация майнера. Нет истории (NULL или 0) — nil.
func (s *Store) FirstAttestation(ctx context.Context, miner string) (*int64, error) {
	query := s.rebind(`SELECT MIN(ts_ok) FROM miner_attest_history WHERE miner = ?`)

	var first sql.NullInt64
	if err := s.db.QueryRowContext(ctx, query, miner).Scan(&first); err != nil {
		return nil, fmt.Errorf("sqlstore: failed to query first attestation: %w", err)
	}
	if !first.Valid || first.Int64 == 0 {
		return nil, nil
	}
	v := first.Int64
	return &v, nil
}
