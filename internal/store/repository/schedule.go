package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fortuna/courtside/internal/stats"
	"github.com/fortuna/courtside/internal/store"
)

// ScheduleQuery narrows a schedule read. Empty fields are unconstrained.
type ScheduleQuery struct {
	Season   string
	GameType string
	Team     string
	DateFrom time.Time
	DateTo   time.Time
}

// ScheduleRepository handles schedule data access
type ScheduleRepository struct {
	db *store.Database
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db *store.Database) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// whereClause collects predicates and their positional arguments.
type whereClause struct {
	preds []string
	args  []any
}

func (w *whereClause) add(pred string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		pred = strings.Replace(pred, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.preds = append(w.preds, pred)
}

func (w *whereClause) String() string {
	if len(w.preds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.preds, " AND ")
}

// gameTypeClause appends the game type predicate for column prefix p.
// "regular season" also admits non-championship in-season tournament
// games; callers narrow further in memory.
func gameTypeClause(w *whereClause, p, gameType string) {
	gt := strings.ToLower(strings.TrimSpace(gameType))
	switch gt {
	case "", stats.AllGameTypes:
	case stats.GameTypeRegularSeason:
		w.add("LOWER(" + p + "game_type) IN ('regular season', 'in-season tournament') AND (" +
			p + "game_remarks IS NULL OR LOWER(" + p + "game_remarks) != 'championship game')")
	default:
		w.add("LOWER("+p+"game_type) = ?", gt)
	}
}

func seasonClause(w *whereClause, p, season string) {
	if season != "" && season != stats.AllSeasons {
		w.add(p+"season = ?", season)
	}
}

// Games returns played games matching q, newest start time first.
func (r *ScheduleRepository) Games(ctx context.Context, q ScheduleQuery) (stats.RawTable, error) {
	var w whereClause
	seasonClause(&w, "", q.Season)
	gameTypeClause(&w, "", q.GameType)
	if q.Team != "" && q.Team != stats.AllTeams {
		w.add("(UPPER(home_team) = UPPER(?) OR UPPER(away_team) = UPPER(?))", q.Team, q.Team)
	}
	if !q.DateFrom.IsZero() {
		w.add("date >= ?", q.DateFrom.Format("2006-01-02"))
	}
	if !q.DateTo.IsZero() {
		w.add("date <= ?", q.DateTo.Format("2006-01-02"))
	}
	w.add("home_team_pts != 0")

	query := `
		SELECT id AS game_id, date, start_time, season, game_type, game_remarks,
			home_team, away_team, home_team_abb, away_team_abb,
			home_team_pts, away_team_pts
		FROM schedule
		` + w.String() + `
		ORDER BY start_time DESC NULLS LAST, date DESC
	`

	rows, err := r.db.DB().QueryContext(ctx, query, w.args...)
	if err != nil {
		return stats.RawTable{}, fmt.Errorf("querying schedule: %w", err)
	}
	defer rows.Close()

	return scanRawTable(rows)
}

// Game returns the schedule row of one game.
func (r *ScheduleRepository) Game(ctx context.Context, gameID string) (stats.RawTable, error) {
	query := `
		SELECT id AS game_id, date, start_time, season, game_type, game_remarks,
			home_team, away_team, home_team_abb, away_team_abb,
			home_team_pts, away_team_pts
		FROM schedule
		WHERE id = $1
	`

	rows, err := r.db.DB().QueryContext(ctx, query, gameID)
	if err != nil {
		return stats.RawTable{}, fmt.Errorf("querying game: %w", err)
	}
	defer rows.Close()

	table, err := scanRawTable(rows)
	if err != nil {
		return stats.RawTable{}, err
	}
	if table.Len() == 0 {
		return stats.RawTable{}, fmt.Errorf("game %s: %w", gameID, store.ErrNotFound)
	}
	return table, nil
}

// Seasons returns the distinct seasons, latest first.
func (r *ScheduleRepository) Seasons(ctx context.Context) ([]string, error) {
	rows, err := r.db.DB().QueryContext(ctx, `SELECT DISTINCT season FROM schedule ORDER BY season DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying seasons: %w", err)
	}
	defer rows.Close()

	seasons := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning season: %w", err)
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

// Champion returns the winner of the season's last game, or nil when the
// season has no games.
func (r *ScheduleRepository) Champion(ctx context.Context, season string) (*store.Champion, error) {
	query := `
		SELECT home_team, home_team_abb, away_team, away_team_abb, home_team_pts, away_team_pts
		FROM schedule
		WHERE season = $1
		ORDER BY date DESC
		LIMIT 1
	`

	var (
		homeName, homeAbb, awayName, awayAbb string
		homePts, awayPts                     sql.NullInt32
	)
	err := r.db.DB().QueryRowContext(ctx, query, season).Scan(
		&homeName, &homeAbb, &awayName, &awayAbb, &homePts, &awayPts,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying champion: %w", err)
	}

	if homePts.Int32 > awayPts.Int32 {
		return &store.Champion{TeamName: homeName, TeamAbbreviation: homeAbb}, nil
	}
	return &store.Champion{TeamName: awayName, TeamAbbreviation: awayAbb}, nil
}
