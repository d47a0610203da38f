package recorder

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"CompSim/internal/model"
)

// SQLiteRecorder persists season history to a SQLite database.
type SQLiteRecorder struct {
	db *sqlx.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets report queries read while a season is being written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS season_runs (
			run_id            TEXT PRIMARY KEY,
			season            INTEGER NOT NULL,
			timestamp         INTEGER NOT NULL,
			members           INTEGER NOT NULL,
			active            INTEGER NOT NULL,
			orphans           INTEGER NOT NULL,
			paid_this_season  INTEGER NOT NULL,
			paid_lifetime     INTEGER NOT NULL,
			bonus_this_season INTEGER NOT NULL,
			bonus_lifetime    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON season_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS bonus_summaries (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES season_runs(run_id),
			kind   TEXT NOT NULL,
			amount INTEGER NOT NULL,
			count  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_run ON bonus_summaries(run_id)`,

		`CREATE TABLE IF NOT EXISTS member_snapshots (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT NOT NULL REFERENCES season_runs(run_id),
			season            INTEGER NOT NULL,
			name              TEXT NOT NULL,
			rank              INTEGER NOT NULL,
			subtree_size      INTEGER NOT NULL,
			bank_count        INTEGER NOT NULL,
			active            INTEGER NOT NULL,
			bonus_this_season INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_name ON member_snapshots(name, season)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordSeason writes the run row, its per-kind summary and one snapshot
// row per member in a single transaction.
func (r *SQLiteRecorder) RecordSeason(snap *SeasonSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := snap.RecordedAt
	if at.IsZero() {
		at = time.Now()
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO season_runs
		(run_id, season, timestamp, members, active, orphans,
		 paid_this_season, paid_lifetime, bonus_this_season, bonus_lifetime)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		snap.RunID, snap.Season, at.Unix(), snap.Members, snap.Active, snap.Orphans,
		snap.Totals.PaidThisSeason, snap.Totals.PaidLifetime,
		snap.Totals.BonusThisSeason, snap.Totals.BonusLifetime,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", snap.RunID, err)
	}

	for _, kind := range model.BonusKinds {
		kt := snap.Summary[kind]
		if _, err := tx.Exec(`INSERT INTO bonus_summaries (run_id, kind, amount, count) VALUES (?,?,?,?)`,
			snap.RunID, string(kind), kt.Amount, kt.Count); err != nil {
			return fmt.Errorf("insert summary %s: %w", kind, err)
		}
	}

	stmt, err := tx.Preparex(`INSERT INTO member_snapshots
		(run_id, season, name, rank, subtree_size, bank_count, active, bonus_this_season)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare snapshot: %w", err)
	}
	defer stmt.Close()

	for _, m := range snap.Roster {
		active := 0
		if m.Active {
			active = 1
		}
		if _, err := stmt.Exec(snap.RunID, snap.Season, m.Name, m.Rank, m.SubtreeSize,
			m.BankCount, active, m.BonusThisSeason); err != nil {
			return fmt.Errorf("insert snapshot %q: %w", m.Name, err)
		}
	}

	return tx.Commit()
}

// RecentSeasons returns the latest runs, newest first.
func (r *SQLiteRecorder) RecentSeasons(limit int) ([]SeasonRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var runs []SeasonRun
	err := r.db.Select(&runs, `SELECT run_id, season, timestamp, members, active, orphans,
		paid_this_season, paid_lifetime, bonus_this_season, bonus_lifetime
		FROM season_runs ORDER BY timestamp DESC, season DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	return runs, nil
}

// SeasonSummary returns the per-kind totals recorded for a run.
func (r *SQLiteRecorder) SeasonSummary(runID string) (model.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rows []struct {
		Kind   string `db:"kind"`
		Amount int64  `db:"amount"`
		Count  int    `db:"count"`
	}
	if err := r.db.Select(&rows, `SELECT kind, amount, count FROM bonus_summaries WHERE run_id = ?`, runID); err != nil {
		return nil, fmt.Errorf("select summary %s: %w", runID, err)
	}
	s := model.NewSummary()
	for _, row := range rows {
		s[model.BonusKind(row.Kind)] = model.KindTotal{Amount: row.Amount, Count: row.Count}
	}
	return s, nil
}

// MemberHistory returns a member's recorded seasons, newest first.
func (r *SQLiteRecorder) MemberHistory(name string, limit int) ([]MemberRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var recs []MemberRecord
	err := r.db.Select(&recs, `SELECT run_id, season, name, rank, subtree_size, bank_count, active, bonus_this_season
		FROM member_snapshots WHERE name = ? ORDER BY season DESC, id DESC LIMIT ?`, name, limit)
	if err != nil {
		return nil, fmt.Errorf("select history %q: %w", name, err)
	}
	return recs, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
