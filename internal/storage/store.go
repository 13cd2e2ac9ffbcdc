// Package storage keeps a SQLite ledger of finished matches.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lox/shellroulette/internal/game"
	"github.com/lox/shellroulette/internal/storage/migrations"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// ErrDuplicateMatch is returned when a match id is saved twice.
var ErrDuplicateMatch = errors.New("storage: match already recorded")

// Store persists match results in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store and applies embedded migrations.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := "file::memory:?_pragma=foreign_keys(1)"
	if path != MemoryPath {
		dsn = "file:" + filepath.Clean(path) +
			"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps an in-memory database alive and serialises writers.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveMatch records one finished match. Seat strategies are taken from the
// player names in result.
func (s *Store) SaveMatch(ctx context.Context, seed int64, result *game.MatchResult, playedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(result.MatchID) == "" {
		return fmt.Errorf("match id is required")
	}
	if len(result.Rounds) == 0 {
		return fmt.Errorf("match %s has no rounds", result.MatchID)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE id = ?`, result.MatchID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check match %s: %w", result.MatchID, err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateMatch, result.MatchID)
	}

	var winner sql.NullInt64
	if !result.Tied {
		winner = sql.NullInt64{Int64: int64(result.Winner), Valid: true}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO matches (id, seed, players, winner, tied, actions, played_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.MatchID, seed, len(result.Players), winner, result.Tied, result.Actions, toMillis(playedAt),
	); err != nil {
		return fmt.Errorf("insert match %s: %w", result.MatchID, err)
	}

	for _, p := range result.Players {
		items := 0
		for _, n := range p.ItemsUsed {
			items += n
		}
		won := !result.Tied && p.Player == result.Winner
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO match_seats (
			   match_id, seat, strategy, won, round_wins, shots, self_shots,
			   live_hits, kills, deaths, items_used, rejected, fallbacks
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			result.MatchID, int(p.Player), p.Name, won, len(p.RoundWins), p.Shots, p.SelfShots,
			p.LiveHits, p.Kills, p.Deaths, items, p.Rejected, p.Fallbacks,
		); err != nil {
			return fmt.Errorf("insert seat %s: %w", p.Player, err)
		}
	}

	for _, r := range result.Rounds {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO match_rounds (match_id, round, winner, first_dead, loadouts) VALUES (?, ?, ?, ?, ?)`,
			result.MatchID, int(r.Round), int(r.Winner), int(r.FirstDead), r.Loadouts,
		); err != nil {
			return fmt.Errorf("insert round %d: %w", r.Round, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit match %s: %w", result.MatchID, err)
	}
	return nil
}

// MatchRow is a stored match header.
type MatchRow struct {
	ID       string
	Seed     int64
	Players  int
	Winner   game.PlayerNumber
	Tied     bool
	Actions  int
	PlayedAt time.Time
}

// RecentMatches returns up to limit matches, newest first.
func (s *Store) RecentMatches(ctx context.Context, limit int) ([]MatchRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, seed, players, winner, tied, actions, played_at
		 FROM matches ORDER BY played_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []MatchRow
	for rows.Next() {
		var (
			row      MatchRow
			winner   sql.NullInt64
			playedAt int64
		)
		if err := rows.Scan(&row.ID, &row.Seed, &row.Players, &winner, &row.Tied, &row.Actions, &playedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		if winner.Valid {
			row.Winner = game.PlayerNumber(winner.Int64)
		}
		row.PlayedAt = fromMillis(playedAt)
		out = append(out, row)
	}
	return out, rows.Err()
}

// CountMatches returns the number of stored matches.
func (s *Store) CountMatches(ctx context.Context) (int, error) {
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return n, nil
}

// StrategySummary aggregates every seat a strategy has played.
type StrategySummary struct {
	Strategy  string
	Seats     int
	Wins      int
	RoundWins int
	Shots     int
	SelfShots int
	Kills     int
	Deaths    int
	ItemsUsed int
	Rejected  int
}

// WinRate is the share of seats that won their match.
func (s StrategySummary) WinRate() float64 {
	if s.Seats == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Seats)
}

// StrategySummary returns per-strategy totals ordered by win rate.
func (s *Store) StrategySummary(ctx context.Context) ([]StrategySummary, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT strategy, COUNT(*), SUM(won), SUM(round_wins), SUM(shots), SUM(self_shots),
		        SUM(kills), SUM(deaths), SUM(items_used), SUM(rejected)
		 FROM match_seats GROUP BY strategy`)
	if err != nil {
		return nil, fmt.Errorf("query strategies: %w", err)
	}
	defer rows.Close()

	var out []StrategySummary
	for rows.Next() {
		var r StrategySummary
		if err := rows.Scan(&r.Strategy, &r.Seats, &r.Wins, &r.RoundWins, &r.Shots, &r.SelfShots,
			&r.Kills, &r.Deaths, &r.ItemsUsed, &r.Rejected); err != nil {
			return nil, fmt.Errorf("scan strategy: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b StrategySummary) int {
		switch ra, rb := a.WinRate(), b.WinRate(); {
		case ra > rb:
			return -1
		case ra < rb:
			return 1
		default:
			return strings.Compare(a.Strategy, b.Strategy)
		}
	})
	return out, nil
}

const migrationTable = "schema_migrations"

// applyMigrations executes every *.sql file in migrationFS once, in name
// order.
func applyMigrations(sqlDB *sql.DB, migrationFS fs.FS) error {
	if _, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
		name TEXT PRIMARY KEY,
		applied_at INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	files, err := fs.Glob(migrationFS, "*.sql")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	slices.Sort(files)

	for _, file := range files {
		var applied int
		if err := sqlDB.QueryRow(`SELECT COUNT(*) FROM `+migrationTable+` WHERE name = ?`, file).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if applied > 0 {
			continue
		}
		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		tx, err := sqlDB.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", file, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
		if _, err := tx.Exec(`INSERT INTO `+migrationTable+` (name, applied_at) VALUES (?, ?)`,
			file, toMillis(time.Now())); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}
