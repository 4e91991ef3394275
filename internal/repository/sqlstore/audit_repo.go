package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/xela07ax/rustchain-node-api/internal/audit"
)

// WriteBatch пакетно пишет события журнала доступа одним INSERT.
func (s *Store) WriteBatch(ctx context.Context, events []audit.AccessEvent) error {
	if len(events) == 0 {
		return nil
	}

	// Количество колонок в api_access_log
	const numFields = 8
	placeholders := make([]string, 0, len(events))
	vals := make([]interface{}, 0, len(events)*numFields)

	for _, e := range events {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?)")
		vals = append(vals,
			e.ID, e.TraceID, e.Endpoint, e.AccessLevel, e.RemoteAddr, e.Status, strings.Join(e.Disclosed, ","), e.Timestamp.Unix(),
		)
	}

	query := s.rebind(fmt.Sprintf(
		"INSERT INTO api_access_log (id, trace_id, endpoint, access_level, remote_addr, status, disclosed, ts) VALUES %s",
		strings.Join(placeholders, ", "),
	))

	if _, err := s.db.ExecContext(ctx, query, vals...); err != nil {
		return fmt.Errorf("sqlstore: failed to write access batch: %w", err)
	}
	return nil
}
