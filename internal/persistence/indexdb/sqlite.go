// Package indexdb maintains a queryable SQLite index of finished
// episodes and per-task success statistics. The JSONL episode logs
// remain the source of truth; this index exists for ad-hoc queries.
package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"craftstream.ai/internal/sim/session"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqEpisode reqKind = iota + 1
	reqTaskStats
)

type req struct {
	kind reqKind

	episode session.EpisodeLogEntry
	stats   taskStatsRow
}

type taskStatsRow struct {
	SessionID  string
	Rates      []float64
	RecordedAt string
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// Episodes finish at most every few seconds per session; the
		// buffer covers a burst of short deaths across many sessions.
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	// NORMAL is a decent durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS episodes (
			episode_id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			seed INTEGER NOT NULL,
			episode INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			return REAL NOT NULL,
			died INTEGER NOT NULL,
			unlocked INTEGER NOT NULL,
			given_json TEXT NOT NULL,
			follow_json TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_episodes_mode ON episodes(mode, episode);`,
		`CREATE TABLE IF NOT EXISTS task_stats (
			session_id TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			rates_json TEXT NOT NULL,
			PRIMARY KEY (session_id, recorded_at)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// WriteEpisode queues an episode row. Drops if the indexer falls
// behind; the JSONL logs remain the source of truth.
func (s *SQLiteIndex) WriteEpisode(e session.EpisodeLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqEpisode, episode: e}:
	default:
	}
	return nil
}

// RecordTaskStats queues the per-task success rates pushed by an
// evaluation client.
func (s *SQLiteIndex) RecordTaskStats(sessionID string, rates []float64) {
	if s == nil || s.closed.Load() {
		return
	}
	if sessionID == "" || len(rates) == 0 {
		return
	}
	r := taskStatsRow{
		SessionID:  sessionID,
		Rates:      append([]float64(nil), rates...),
		RecordedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	select {
	case s.ch <- req{kind: reqTaskStats, stats: r}:
	default:
	}
}

// EpisodeCount is a convenience for tests and the admin surface.
func (s *SQLiteIndex) EpisodeCount() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM episodes`).Scan(&n)
	return n, err
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertEpisode, _ := s.db.Prepare(`INSERT OR REPLACE INTO episodes
		(episode_id,mode,seed,episode,steps,return,died,unlocked,given_json,follow_json,recorded_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?)`)
	insertStats, _ := s.db.Prepare(`INSERT OR REPLACE INTO task_stats(session_id,recorded_at,rates_json) VALUES(?,?,?)`)
	defer func() {
		if insertEpisode != nil {
			_ = insertEpisode.Close()
		}
		if insertStats != nil {
			_ = insertStats.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 64
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqEpisode:
			e := r.episode
			died := 0
			if e.Died {
				died = 1
			}
			givenJSON, _ := json.Marshal(e.GivenAchs)
			followJSON, _ := json.Marshal(e.FollowAchs)
			if insertEpisode != nil {
				if _, err := tx.Stmt(insertEpisode).Exec(
					e.EpisodeID,
					e.Mode,
					e.Seed,
					e.Episode,
					e.Steps,
					e.Return,
					died,
					e.Unlocked,
					string(givenJSON),
					string(followJSON),
					time.Now().UTC().Format(time.RFC3339Nano),
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqTaskStats:
			st := r.stats
			ratesJSON, _ := json.Marshal(st.Rates)
			if insertStats != nil {
				if _, err := tx.Stmt(insertStats).Exec(st.SessionID, st.RecordedAt, string(ratesJSON)); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		}
		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}

	commit()
}
