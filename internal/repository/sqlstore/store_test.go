package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/xela07ax/rustchain-node-api/internal/audit"
	"github.com/xela07ax/rustchain-node-api/internal/infra"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	s, err := Open(ctx, infra.DatabaseConfig{URL: "sqlite://:memory:", ConnectAttempts: 1}, zap.NewNop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return s
}

func mustExec(t *testing.T, s *Store, query string, args ...any) {
	t.Helper()
	if _, err := s.DB().ExecContext(context.Background(), query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		url         string
		wantDialect Dialect
		wantDriver  string
		wantDSN     string
		wantErr     bool
	}{
		{url: "postgres://u:p@localhost/db", wantDialect: DialectPostgres, wantDriver: "pgx", wantDSN: "postgres://u:p@localhost/db"},
		{url: "postgresql://localhost/db", wantDialect: DialectPostgres, wantDriver: "pgx", wantDSN: "postgresql://localhost/db"},
		{url: "mysql://u:p@tcp(localhost:3306)/db", wantDialect: DialectMySQL, wantDriver: "mysql", wantDSN: "u:p@tcp(localhost:3306)/db"},
		{url: "sqlite://rustchain.db", wantDialect: DialectSQLite, wantDriver: "sqlite", wantDSN: "rustchain.db"},
		{url: "file:test.db?cache=shared", wantDialect: DialectSQLite, wantDriver: "sqlite", wantDSN: "file:test.db?cache=shared"},
		{url: "redis://localhost", wantErr: true},
		{url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			d, drv, dsn, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if d != tt.wantDialect || drv != tt.wantDriver || dsn != tt.wantDSN {
				t.Errorf("ParseURL() = (%v, %v, %v)", d, drv, dsn)
			}
		})
	}
}

func TestRebind(t *testing.T) {
	pg := &Store{dialect: DialectPostgres}
	lite := &Store{dialect: DialectSQLite}

	q := "SELECT a FROM t WHERE x = ? AND y > ?"
	if got := pg.rebind(q); got != "SELECT a FROM t WHERE x = $1 AND y > $2" {
		t.Errorf("postgres rebind = %q", got)
	}
	if got := lite.rebind(q); got != q {
		t.Errorf("sqlite rebind = %q", got)
	}
}

func TestOpen_UnsupportedURL(t *testing.T) {
	_, err := Open(context.Background(), infra.DatabaseConfig{URL: "ftp://nowhere"}, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for unsupported url")
	}
}

func TestStore_RecentAttestations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustExec(t, s, `INSERT INTO miner_attest_recent (miner, ts_ok, device_family, device_arch, entropy_score) VALUES (?, ?, ?, ?, ?)`,
		"g4", 1000, "PowerPC", "G4", 0.91)
	mustExec(t, s, `INSERT INTO miner_attest_recent (miner, ts_ok, device_family, device_arch, entropy_score) VALUES (?, ?, ?, ?, ?)`,
		"m2", 2000, "Apple", "M2", nil)
	mustExec(t, s, `INSERT INTO miner_attest_recent (miner, ts_ok) VALUES (?, ?)`, "ghost", 1500)
	mustExec(t, s, `INSERT INTO miner_attest_recent (miner, ts_ok, device_family) VALUES (?, ?, ?)`, "stale", 10, "x86")

	got, err := s.RecentAttestations(ctx, 100)
	if err != nil {
		t.Fatalf("RecentAttestations() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3 (stale row excluded)", len(got))
	}

	// Свежие первыми
	if got[0].Miner != "m2" || got[1].Miner != "ghost" || got[2].Miner != "g4" {
		t.Errorf("order = %s, %s, %s", got[0].Miner, got[1].Miner, got[2].Miner)
	}
	if got[0].EntropyScore != nil {
		t.Errorf("m2 entropy = %v, want nil", *got[0].EntropyScore)
	}
	if got[1].DeviceFamily != nil || got[1].DeviceArch != nil {
		t.Error("ghost device fields must be nil")
	}
	if got[2].EntropyScore == nil || *got[2].EntropyScore != 0.91 {
		t.Errorf("g4 entropy = %v", got[2].EntropyScore)
	}
	if got[2].DeviceFamily == nil || *got[2].DeviceFamily != "PowerPC" {
		t.Errorf("g4 family = %v", got[2].DeviceFamily)
	}
}

func TestStore_RecentAttestations_EmptyIsNotNil(t *testing.T) {
	s := newTestStore(t)
	got, err := s.RecentAttestations(context.Background(), 0)
	if err != nil {
		t.Fatalf("RecentAttestations() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty non-nil slice", got)
	}
}

func TestStore_FirstAttestation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustExec(t, s, `INSERT INTO miner_attest_history (miner, ts_ok) VALUES (?, ?), (?, ?), (?, ?)`,
		"g4", 500, "g4", 300, "g4", 900)
	mustExec(t, s, `INSERT INTO miner_attest_history (miner, ts_ok) VALUES (?, ?)`, "zero", 0)

	first, err := s.FirstAttestation(ctx, "g4")
	if err != nil {
		t.Fatalf("FirstAttestation() error = %v", err)
	}
	if first == nil || *first != 300 {
		t.Errorf("first = %v, want 300", first)
	}

	none, err := s.FirstAttestation(ctx, "nobody")
	if err != nil || none != nil {
		t.Errorf("no history: got (%v, %v), want (nil, nil)", none, err)
	}

	zero, err := s.FirstAttestation(ctx, "zero")
	if err != nil || zero != nil {
		t.Errorf("zero ts: got (%v, %v), want (nil, nil)", zero, err)
	}
}

func TestStore_FirstAttestation_ClosedDB(t *testing.T) {
	s := newTestStore(t)
	s.Close()
	if _, err := s.FirstAttestation(context.Background(), "g4"); err == nil {
		t.Error("expected error on closed database")
	}
}

func TestStore_BalanceOf(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustExec(t, s, `INSERT INTO balances (miner_id, amount_i64) VALUES (?, ?)`, "g4", 2_500_000)

	amt, err := s.BalanceOf(ctx, "g4")
	if err != nil || amt != 2_500_000 {
		t.Errorf("BalanceOf(g4) = (%d, %v)", amt, err)
	}

	amt, err = s.BalanceOf(ctx, "unknown")
	if err != nil || amt != 0 {
		t.Errorf("BalanceOf(unknown) = (%d, %v), want (0, nil)", amt, err)
	}
}

func TestStore_EnrolledCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustExec(t, s, `INSERT INTO epoch_enroll (epoch, miner_pk) VALUES (?, ?), (?, ?), (?, ?)`,
		7, "a", 7, "b", 8, "a")

	n, err := s.EnrolledCount(ctx, 7)
	if err != nil || n != 2 {
		t.Errorf("EnrolledCount(7) = (%d, %v), want 2", n, err)
	}
	n, err = s.EnrolledCount(ctx, 99)
	if err != nil || n != 0 {
		t.Errorf("EnrolledCount(99) = (%d, %v), want 0", n, err)
	}
}

func TestStore_WriteBatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.WriteBatch(ctx, nil); err != nil {
		t.Errorf("WriteBatch(nil) = %v", err)
	}

	now := time.Unix(1_700_000_000, 0)
	events := []audit.AccessEvent{
		{ID: "e1", TraceID: "t1", Endpoint: "miners", AccessLevel: "admin", RemoteAddr: "10.0.0.1", Status: 200,
			Disclosed: []string{"first_attest", "entropy_score"}, Timestamp: now},
		{ID: "e2", TraceID: "t2", Endpoint: "wallet_balance", AccessLevel: "anonymous", RemoteAddr: "10.0.0.2", Status: 401, Timestamp: now},
	}
	if err := s.WriteBatch(ctx, events); err != nil {
		t.Fatalf("WriteBatch() error = %v", err)
	}

	var n int
	if err := s.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM api_access_log WHERE status = 401`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("401 rows = %d, want 1", n)
	}

	var disclosed string
	if err := s.DB().QueryRowContext(ctx, `SELECT disclosed FROM api_access_log WHERE id = 'e1'`).Scan(&disclosed); err != nil {
		t.Fatalf("disclosed: %v", err)
	}
	if disclosed != "first_attest,entropy_score" {
		t.Errorf("disclosed = %q", disclosed)
	}
}

func TestStore_MigrateIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Errorf("second Migrate() error = %v", err)
	}
	if s.Dialect() != DialectSQLite {
		t.Errorf("Dialect() = %v", s.Dialect())
	}
}
