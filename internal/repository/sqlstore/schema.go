package sqlstore

import (
	"context"
	"fmt"
)

// Таблицы ноды. Типы подобраны так, чтобы DDL проходил во всех трех диалектах.
var schemaTables = []string{
	`CREATE TABLE IF NOT EXISTS miner_attest_recent (
		miner VARCHAR(128) PRIMARY KEY,
		ts_ok BIGINT NOT NULL,
		device_family VARCHAR(64),
		device_arch VARCHAR(64),
		entropy_score DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS miner_attest_history (
		miner VARCHAR(128) NOT NULL,
		ts_ok BIGINT NOT NULL,
		device_family VARCHAR(64),
		device_arch VARCHAR(64)
	)`,
	`CREATE TABLE IF NOT EXISTS balances (
		miner_id VARCHAR(128) PRIMARY KEY,
		amount_i64 BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS epoch_enroll (
		epoch BIGINT NOT NULL,
		miner_pk VARCHAR(128) NOT NULL,
		weight DOUBLE PRECISION NOT NULL DEFAULT 1.0,
		PRIMARY KEY (epoch, miner_pk)
	)`,
	`CREATE TABLE IF NOT EXISTS api_access_log (
		id VARCHAR(36) PRIMARY KEY,
		trace_id VARCHAR(64) NOT NULL,
		endpoint VARCHAR(32) NOT NULL,
		access_level VARCHAR(16) NOT NULL,
		remote_addr VARCHAR(64) NOT NULL,
		status INTEGER NOT NULL,
		disclosed VARCHAR(255) NOT NULL DEFAULT '',
		ts BIGINT NOT NULL
	)`,
}

// MySQL не умеет CREATE INDEX IF NOT EXISTS, там индексы заводятся миграциями отдельно.
var schemaIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_attest_recent_ts ON miner_attest_recent (ts_ok)`,
	`CREATE INDEX IF NOT EXISTS idx_attest_history_miner ON miner_attest_history (miner)`,
}

// Migrate создает недостающие таблицы. Для dev-окружения и тестов; в проде схемой владеет нода.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := schemaTables
	if s.dialect != DialectMySQL {
		stmts = append(append([]string{}, schemaTables...), schemaIndexes...)
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlstore: migrate: %w", err)
		}
	}
	return nil
}
