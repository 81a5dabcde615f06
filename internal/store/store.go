package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-sqlite3"
	"github.com/mauv0809/catchboard/internal/competition"
	"github.com/mauv0809/catchboard/internal/entry"
	"github.com/mauv0809/catchboard/internal/scoring"
)

// New creates a new Store backed by db.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// UpsertCompetitors inserts the roster or updates existing competitors in
// place. Entries already recorded for a competitor are kept. The roster that
// would result is checked first; a clash returns ErrRosterConflict. Competitors
// changing box are parked on the negative of their old box before the new
// boxes are written, so boxes can be exchanged within one upsert.
func (s *store) UpsertCompetitors(ctx context.Context, competitors []competition.Competitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	existing, err := queryCompetitors(ctx, tx)
	if err != nil {
		return err
	}
	moving, err := checkMergedRoster(existing, competitors)
	if err != nil {
		return err
	}
	for _, id := range moving {
		if _, err := tx.ExecContext(ctx, `UPDATE competitors SET box_number = -box_number WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to park competitor %s: %w", id, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO competitors (id, sector, box_number, name, team)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sector = excluded.sector,
			box_number = excluded.box_number,
			name = excluded.name,
			team = excluded.team
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range competitors {
		if _, err := stmt.ExecContext(ctx, c.ID, c.Sector, c.BoxNumber, c.Name, c.Team); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: box %s: %w", ErrRosterConflict, c.BoxCode(), err)
			}
			return fmt.Errorf("failed to upsert competitor %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

// checkMergedRoster validates the roster the upsert would produce and returns
// the ids of stored competitors whose box changes.
func checkMergedRoster(existing, incoming []competition.Competitor) ([]string, error) {
	merged := make(map[string]competition.Competitor, len(existing)+len(incoming))
	order := make([]string, 0, len(existing)+len(incoming))
	for _, c := range existing {
		merged[c.ID] = c
		order = append(order, c.ID)
	}

	var moving []string
	seen := make(map[string]bool, len(incoming))
	for _, c := range incoming {
		old, ok := merged[c.ID]
		if !ok {
			order = append(order, c.ID)
		} else if !seen[c.ID] && old.BoxCode() != c.BoxCode() {
			moving = append(moving, c.ID)
		}
		seen[c.ID] = true
		merged[c.ID] = c
	}

	roster := make([]competition.Competitor, 0, len(order))
	for _, id := range order {
		roster = append(roster, merged[id])
	}
	if err := competition.ValidateRoster(roster); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRosterConflict, err)
	}
	return moving, nil
}

// GetCompetitors returns the roster ordered by sector and box.
func (s *store) GetCompetitors(ctx context.Context) ([]competition.Competitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryCompetitors(ctx, s.db)
}

// GetCompetitor returns a single competitor or ErrNotFound.
func (s *store) GetCompetitor(ctx context.Context, id string) (competition.Competitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c competition.Competitor
	err := s.db.QueryRowContext(ctx, `SELECT id, sector, box_number, name, team FROM competitors WHERE id = ?`, id).
		Scan(&c.ID, &c.Sector, &c.BoxNumber, &c.Name, &c.Team)
	if errors.Is(err, sql.ErrNoRows) {
		return competition.Competitor{}, ErrNotFound
	}
	return c, err
}

// GetHourlyEntry returns the stored entry for (competitorID, hour) or ErrNotFound.
func (s *store) GetHourlyEntry(ctx context.Context, competitorID string, hour int) (entry.HourlyEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT competitor_id, hour, fish_count, total_weight, status, source, recorded_at, version, request_id
		FROM hourly_entries WHERE competitor_id = ? AND hour = ?
	`, competitorID, hour)
	e, err := scanHourly(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entry.HourlyEntry{}, ErrNotFound
	}
	return e, err
}

// PutHourlyEntry writes e if the stored version still equals expectedVersion
// (0 meaning no entry yet). The written entry carries the new version.
func (s *store) PutHourlyEntry(ctx context.Context, e entry.HourlyEntry, expectedVersion int64) (entry.HourlyEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		res sql.Result
		err error
	)
	if expectedVersion == 0 {
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO hourly_entries (competitor_id, hour, fish_count, total_weight, status, source, recorded_at, version, request_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)
			ON CONFLICT(competitor_id, hour) DO NOTHING
		`, e.CompetitorID, e.Hour, e.FishCount, e.TotalWeight, e.Status, e.Source, e.Timestamp.UnixNano(), e.RequestID)
	} else {
		res, err = s.db.ExecContext(ctx, `
			UPDATE hourly_entries SET
				fish_count = ?, total_weight = ?, status = ?, source = ?, recorded_at = ?, request_id = ?,
				version = version + 1
			WHERE competitor_id = ? AND hour = ? AND version = ?
		`, e.FishCount, e.TotalWeight, e.Status, e.Source, e.Timestamp.UnixNano(), e.RequestID,
			e.CompetitorID, e.Hour, expectedVersion)
	}
	if err := checkSwapped(res, err); err != nil {
		return entry.HourlyEntry{}, err
	}
	e.Version = expectedVersion + 1
	return e, nil
}

// MarkHourlyError flags the entry as errored, keeping the values of the
// failed attempt. Like PutHourlyEntry it only applies when the stored version
// still equals expectedVersion, so a concurrent valid write is never hidden.
func (s *store) MarkHourlyError(ctx context.Context, e entry.HourlyEntry, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		res sql.Result
		err error
	)
	if expectedVersion == 0 {
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO hourly_entries (competitor_id, hour, fish_count, total_weight, status, source, recorded_at, version, request_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)
			ON CONFLICT(competitor_id, hour) DO NOTHING
		`, e.CompetitorID, e.Hour, e.FishCount, e.TotalWeight, entry.StatusError, e.Source, e.Timestamp.UnixNano(), e.RequestID)
	} else {
		res, err = s.db.ExecContext(ctx, `
			UPDATE hourly_entries SET
				fish_count = ?, total_weight = ?, status = ?, source = ?, recorded_at = ?, request_id = ?,
				version = version + 1
			WHERE competitor_id = ? AND hour = ? AND version = ?
		`, e.FishCount, e.TotalWeight, entry.StatusError, e.Source, e.Timestamp.UnixNano(), e.RequestID,
			e.CompetitorID, e.Hour, expectedVersion)
	}
	if err := checkSwapped(res, err); err != nil {
		log.Error("Failed to mark hourly entry as error", "competitorID", e.CompetitorID, "hour", e.Hour, "error", err)
		return err
	}
	return nil
}

// GetBigCatchEntry returns the stored big-catch entry or ErrNotFound.
func (s *store) GetBigCatchEntry(ctx context.Context, competitorID string) (entry.BigCatchEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT competitor_id, biggest_catch, status, source, recorded_at, version, request_id
		FROM big_catch_entries WHERE competitor_id = ?
	`, competitorID)
	e, err := scanBigCatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entry.BigCatchEntry{}, ErrNotFound
	}
	return e, err
}

// PutBigCatchEntry is the big-catch counterpart of PutHourlyEntry.
func (s *store) PutBigCatchEntry(ctx context.Context, e entry.BigCatchEntry, expectedVersion int64) (entry.BigCatchEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		res sql.Result
		err error
	)
	if expectedVersion == 0 {
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO big_catch_entries (competitor_id, biggest_catch, status, source, recorded_at, version, request_id)
			VALUES (?, ?, ?, ?, ?, 1, ?)
			ON CONFLICT(competitor_id) DO NOTHING
		`, e.CompetitorID, e.BiggestCatch, e.Status, e.Source, e.Timestamp.UnixNano(), e.RequestID)
	} else {
		res, err = s.db.ExecContext(ctx, `
			UPDATE big_catch_entries SET
				biggest_catch = ?, status = ?, source = ?, recorded_at = ?, request_id = ?,
				version = version + 1
			WHERE competitor_id = ? AND version = ?
		`, e.BiggestCatch, e.Status, e.Source, e.Timestamp.UnixNano(), e.RequestID,
			e.CompetitorID, expectedVersion)
	}
	if err := checkSwapped(res, err); err != nil {
		return entry.BigCatchEntry{}, err
	}
	e.Version = expectedVersion + 1
	return e, nil
}

// MarkBigCatchError is the big-catch counterpart of MarkHourlyError.
func (s *store) MarkBigCatchError(ctx context.Context, e entry.BigCatchEntry, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		res sql.Result
		err error
	)
	if expectedVersion == 0 {
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO big_catch_entries (competitor_id, biggest_catch, status, source, recorded_at, version, request_id)
			VALUES (?, ?, ?, ?, ?, 1, ?)
			ON CONFLICT(competitor_id) DO NOTHING
		`, e.CompetitorID, e.BiggestCatch, entry.StatusError, e.Source, e.Timestamp.UnixNano(), e.RequestID)
	} else {
		res, err = s.db.ExecContext(ctx, `
			UPDATE big_catch_entries SET
				biggest_catch = ?, status = ?, source = ?, recorded_at = ?, request_id = ?,
				version = version + 1
			WHERE competitor_id = ? AND version = ?
		`, e.BiggestCatch, entry.StatusError, e.Source, e.Timestamp.UnixNano(), e.RequestID,
			e.CompetitorID, expectedVersion)
	}
	if err := checkSwapped(res, err); err != nil {
		log.Error("Failed to mark big catch entry as error", "competitorID", e.CompetitorID, "error", err)
		return err
	}
	return nil
}

// SyncOffline promotes offline entries matching filter to their locked
// status in a single transaction and returns how many entries changed.
func (s *store) SyncOffline(ctx context.Context, filter SyncFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	idClause, idArgs := inClause("competitor_id", filter.CompetitorIDs)
	synced := 0
	for _, table := range []string{"hourly_entries", "big_catch_entries"} {
		for _, status := range filter.offlineStatuses() {
			target, _ := entry.Reconnect(status)
			args := append([]any{target, status}, idArgs...)
			res, err := tx.ExecContext(ctx,
				fmt.Sprintf(`UPDATE %s SET status = ?, version = version + 1 WHERE status = ?%s`, table, idClause),
				args...)
			if err != nil {
				return 0, fmt.Errorf("failed to sync %s: %w", table, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return 0, err
			}
			synced += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return synced, nil
}

// Snapshot reads the roster and every entry inside one transaction so the
// ranking engine sees a consistent view.
func (s *store) Snapshot(ctx context.Context) (scoring.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return scoring.Snapshot{}, err
	}
	defer tx.Rollback()

	var snap scoring.Snapshot
	if snap.Competitors, err = queryCompetitors(ctx, tx); err != nil {
		return scoring.Snapshot{}, err
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT competitor_id, hour, fish_count, total_weight, status, source, recorded_at, version, request_id
		FROM hourly_entries ORDER BY competitor_id, hour
	`)
	if err != nil {
		return scoring.Snapshot{}, err
	}
	for rows.Next() {
		e, err := scanHourly(rows)
		if err != nil {
			rows.Close()
			return scoring.Snapshot{}, err
		}
		snap.Hourly = append(snap.Hourly, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return scoring.Snapshot{}, err
	}

	rows, err = tx.QueryContext(ctx, `
		SELECT competitor_id, biggest_catch, status, source, recorded_at, version, request_id
		FROM big_catch_entries ORDER BY competitor_id
	`)
	if err != nil {
		return scoring.Snapshot{}, err
	}
	defer rows.Close()
	for rows.Next() {
		e, err := scanBigCatch(rows)
		if err != nil {
			return scoring.Snapshot{}, err
		}
		snap.BigCatches = append(snap.BigCatches, e)
	}
	if err := rows.Err(); err != nil {
		return scoring.Snapshot{}, err
	}
	return snap, tx.Commit()
}

// ClearEntries removes every hourly and big-catch entry but keeps the roster.
func (s *store) ClearEntries(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return execAll(ctx, s.db, "DELETE FROM hourly_entries", "DELETE FROM big_catch_entries")
}

// Clear removes all data.
func (s *store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return execAll(ctx, s.db, "DELETE FROM hourly_entries", "DELETE FROM big_catch_entries", "DELETE FROM competitors")
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryCompetitors(ctx context.Context, q querier) ([]competition.Competitor, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, sector, box_number, name, team FROM competitors ORDER BY sector, box_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	competitors := []competition.Competitor{}
	for rows.Next() {
		var c competition.Competitor
		if err := rows.Scan(&c.ID, &c.Sector, &c.BoxNumber, &c.Name, &c.Team); err != nil {
			return nil, err
		}
		competitors = append(competitors, c)
	}
	return competitors, rows.Err()
}

// scanHourly scans a single hourly entry row. Unknown statuses are kept as-is
// so the ranking engine can report them.
func scanHourly(scanner interface{ Scan(...any) error }) (entry.HourlyEntry, error) {
	var (
		e          entry.HourlyEntry
		recordedAt int64
	)
	err := scanner.Scan(&e.CompetitorID, &e.Hour, &e.FishCount, &e.TotalWeight, &e.Status, &e.Source, &recordedAt, &e.Version, &e.RequestID)
	if err != nil {
		return entry.HourlyEntry{}, err
	}
	e.Timestamp = time.Unix(0, recordedAt).UTC()
	return e, nil
}

func scanBigCatch(scanner interface{ Scan(...any) error }) (entry.BigCatchEntry, error) {
	var (
		e          entry.BigCatchEntry
		recordedAt int64
	)
	err := scanner.Scan(&e.CompetitorID, &e.BiggestCatch, &e.Status, &e.Source, &recordedAt, &e.Version, &e.RequestID)
	if err != nil {
		return entry.BigCatchEntry{}, err
	}
	e.Timestamp = time.Unix(0, recordedAt).UTC()
	return e, nil
}

func checkSwapped(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVersionConflict
	}
	return nil
}

// isUniqueViolation reports a UNIQUE constraint failure from either driver.
// The libsql client only surfaces the message text.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func inClause(column string, values []string) (string, []any) {
	if len(values) == 0 {
		return "", nil
	}
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(values)), ",")
	return fmt.Sprintf(" AND %s IN (%s)", column, placeholders), args
}

func execAll(ctx context.Context, db *sql.DB, statements ...string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", stmt, err)
		}
	}
	return tx.Commit()
}
