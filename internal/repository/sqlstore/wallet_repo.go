package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// BalanceOf возвращает баланс в минимальных единицах. Неизвестный майнер — 0, не ошибка.
func (s *Store) BalanceOf(ctx context.Context, minerID string) (int64, error) {
	query := s.rebind(`SELECT amount_i64 FROM balances WHERE miner_id = ?`)

	var amount int64
	err := s.db.QueryRowContext(ctx, query, minerID).Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("sqlstore: failed to query balance: %w", err)
	}
	return amount, nil
}
