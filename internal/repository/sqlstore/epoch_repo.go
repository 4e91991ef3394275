package sqlstore

import (
	"context"
	"fmt"
)

func (s *Store) EnrolledCount(ctx context.Context, epoch int64) (int64, error) {
	query := s.rebind(`SELECT COUNT(*) FROM epoch_enroll WHERE epoch = ?`)

	var n int64
	if err := s.db.QueryRowContext(ctx, query, epoch).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlstore: failed to count enrolled miners: %w", err)
	}
	return n, nil
}
