package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/fortuna/courtside/internal/store"
)

// BoxScoreWriter persists imported games
type BoxScoreWriter struct {
	db *store.Database
}

// NewBoxScoreWriter creates a new box score writer
func NewBoxScoreWriter(db *store.Database) *BoxScoreWriter {
	return &BoxScoreWriter{db: db}
}

// Exists returns the subset of ids already present in the schedule.
func (w *BoxScoreWriter) Exists(ctx context.Context, ids []string) (map[string]bool, error) {
	found := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	rows, err := w.db.DB().QueryContext(ctx, `SELECT id FROM schedule WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("querying existing games: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning game id: %w", err)
		}
		found[id] = true
	}
	return found, rows.Err()
}

// AllGameIDs returns every stored game id.
func (w *BoxScoreWriter) AllGameIDs(ctx context.Context) ([]string, error) {
	rows, err := w.db.DB().QueryContext(ctx, `SELECT id FROM schedule`)
	if err != nil {
		return nil, fmt.Errorf("querying game ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning game id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Upsert writes the schedule row and replaces both box scores of a game
// in one transaction.
func (w *BoxScoreWriter) Upsert(ctx context.Context, g *store.ImportedGame) error {
	tx, err := w.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	s := g.Schedule
	_, err = tx.ExecContext(ctx, `
		INSERT INTO schedule (
			id, date, start_time, season, game_type, game_remarks,
			home_team, away_team, home_team_abb, away_team_abb,
			home_team_pts, away_team_pts
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date,
			start_time = EXCLUDED.start_time,
			season = EXCLUDED.season,
			game_type = EXCLUDED.game_type,
			game_remarks = EXCLUDED.game_remarks,
			home_team = EXCLUDED.home_team,
			away_team = EXCLUDED.away_team,
			home_team_abb = EXCLUDED.home_team_abb,
			away_team_abb = EXCLUDED.away_team_abb,
			home_team_pts = EXCLUDED.home_team_pts,
			away_team_pts = EXCLUDED.away_team_pts,
			updated_at = NOW()
	`,
		s.ID, s.Date, s.StartTime, s.Season, s.GameType, nullIfEmpty(s.GameRemarks),
		s.HomeTeam, s.AwayTeam, s.HomeTeamAbb, s.AwayTeamAbb,
		s.HomeTeamPts.Int32, s.AwayTeamPts.Int32,
	)
	if err != nil {
		return fmt.Errorf("upserting schedule %s: %w", s.ID, err)
	}

	if err := replaceLines(ctx, tx, "teams_boxscore", store.TeamBoxScoreColumns, s.ID, g.Teams); err != nil {
		return err
	}
	if err := replaceLines(ctx, tx, "players_boxscore", store.PlayerBoxScoreColumns, s.ID, g.Players); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import %s: %w", s.ID, err)
	}
	return nil
}

// replaceLines deletes a game's rows from table and inserts lines. Only
// the listed columns are written.
func replaceLines(ctx context.Context, tx *sql.Tx, table string, cols []string, gameID string, lines []store.BoxScoreLine) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE game_id = $1", gameID); err != nil {
		return fmt.Errorf("clearing %s for %s: %w", table, gameID, err)
	}
	if len(lines) == 0 {
		return nil
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "),
	))
	if err != nil {
		return fmt.Errorf("preparing %s insert: %w", table, err)
	}
	defer stmt.Close()

	for _, line := range lines {
		args := make([]any, len(cols))
		for i, c := range cols {
			if c == "game_id" {
				args[i] = gameID
				continue
			}
			args[i] = nullIfEmpty(line[c])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting into %s for %s: %w", table, gameID, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
