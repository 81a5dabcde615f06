package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddNamedMigrationNoTxContext("00003_competitor_box_parking.go", upBoxParking, downBoxParking)
}

// upBoxParking lets a competitor sit on the negative of its box number while a
// roster upsert moves boxes around.
func upBoxParking(ctx context.Context, db *sql.DB) error {
	return rebuildCompetitors(ctx, db, "box_number BETWEEN 1 AND 20 OR box_number BETWEEN -20 AND -1")
}

func downBoxParking(ctx context.Context, db *sql.DB) error {
	return rebuildCompetitors(ctx, db, "box_number BETWEEN 1 AND 20")
}

// rebuildCompetitors recreates the competitors table with a new box check.
// SQLite cannot alter a CHECK constraint in place, and dropping the table with
// foreign keys on would cascade into the entries, so the rebuild runs on one
// connection with foreign keys off and verifies them before committing.
func rebuildCompetitors(ctx context.Context, db *sql.DB, boxCheck string) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("failed to disable foreign keys: %w", err)
	}
	defer func() {
		if _, err := conn.ExecContext(context.WithoutCancel(ctx), "PRAGMA foreign_keys = ON"); err != nil {
			log.Error("Failed to re-enable foreign keys", "error", err)
		}
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	statements := []string{
		fmt.Sprintf(`CREATE TABLE competitors_next (
			id TEXT PRIMARY KEY,
			sector TEXT NOT NULL CHECK (sector IN ('A', 'B', 'C', 'D', 'E', 'F')),
			box_number INTEGER NOT NULL CHECK (%s),
			name TEXT NOT NULL DEFAULT '',
			team TEXT NOT NULL DEFAULT '',
			UNIQUE (sector, box_number)
		)`, boxCheck),
		`INSERT INTO competitors_next (id, sector, box_number, name, team)
			SELECT id, sector, box_number, name, team FROM competitors`,
		`DROP TABLE competitors`,
		`ALTER TABLE competitors_next RENAME TO competitors`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to rebuild competitors: %w", err)
		}
	}

	rows, err := tx.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return err
	}
	violated := rows.Next()
	if err := rows.Close(); err != nil {
		return err
	}
	if violated {
		return errors.New("foreign key violation after rebuilding competitors")
	}
	return tx.Commit()
}
