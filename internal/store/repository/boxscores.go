package repository

import (
	"context"
	"fmt"

	"github.com/fortuna/courtside/internal/stats"
	"github.com/fortuna/courtside/internal/store"
)

// scheduleColumns are the schedule fields joined onto box score rows.
const scheduleColumns = `
	s.date, s.season, s.game_type, s.game_remarks,
	s.home_team, s.away_team, s.home_team_abb, s.away_team_abb,
	s.home_team_pts, s.away_team_pts`

// playerOutcome derives 1/0 for a player line from the final score.
const playerOutcome = `
	CASE
		WHEN s.home_team_pts = s.away_team_pts THEN NULL
		WHEN (pb.team = s.home_team_abb) = (s.home_team_pts > s.away_team_pts) THEN '1'
		ELSE '0'
	END AS outcome`

// BoxScoreRepository handles player and team box score data access
type BoxScoreRepository struct {
	db *store.Database
}

// NewBoxScoreRepository creates a new box score repository
func NewBoxScoreRepository(db *store.Database) *BoxScoreRepository {
	return &BoxScoreRepository{db: db}
}

func (r *BoxScoreRepository) queryTable(ctx context.Context, what, query string, args ...any) (stats.RawTable, error) {
	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return stats.RawTable{}, fmt.Errorf("querying %s: %w", what, err)
	}
	defer rows.Close()

	table, err := scanRawTable(rows)
	if err != nil {
		return stats.RawTable{}, fmt.Errorf("reading %s: %w", what, err)
	}
	return table, nil
}

// TeamGame returns both team lines of a game.
func (r *BoxScoreRepository) TeamGame(ctx context.Context, gameID string) (stats.RawTable, error) {
	query := `
		SELECT tb.*
		FROM teams_boxscore tb
		WHERE tb.game_id = $1
		ORDER BY tb.location DESC
	`
	return r.queryTable(ctx, "team box score", query, gameID)
}

// PlayerGame returns every player line of a game with the headshot id,
// starters first, then by points.
func (r *BoxScoreRepository) PlayerGame(ctx context.Context, gameID string) (stats.RawTable, error) {
	query := `
		SELECT pb.*, p.id AS player_id
		FROM players_boxscore pb
		LEFT JOIN players p ON UPPER(pb.player_name) = UPPER(p.full_name)
		WHERE pb.game_id = $1
		ORDER BY (LOWER(pb.starter) IN ('1', '1.0', 'true', 't')) DESC,
			NULLIF(pb.pts, '')::int DESC NULLS LAST
	`
	return r.queryTable(ctx, "player box score", query, gameID)
}

// PlayerCareer returns every line of a player for a known team, joined
// with the schedule, newest first.
func (r *BoxScoreRepository) PlayerCareer(ctx context.Context, playerName string) (stats.RawTable, error) {
	query := `
		SELECT pb.*, p.id AS player_id, ` + scheduleColumns + `, ` + playerOutcome + `
		FROM players_boxscore pb
		JOIN schedule s ON pb.game_id = s.id
		LEFT JOIN players p ON UPPER(pb.player_name) = UPPER(p.full_name)
		WHERE UPPER(pb.player_name) = UPPER($1)
			AND pb.team IN (SELECT abbreviation FROM teams)
		ORDER BY s.date DESC
	`
	return r.queryTable(ctx, "player career", query, playerName)
}

// TeamCareer returns every line of a team joined with the schedule and
// the opponent's points, newest first.
func (r *BoxScoreRepository) TeamCareer(ctx context.Context, abbr string) (stats.RawTable, error) {
	query := `
		SELECT tb.*, ` + scheduleColumns + `, tb2.pts AS opponent_pts
		FROM teams_boxscore tb
		JOIN schedule s ON tb.game_id = s.id
		LEFT JOIN teams_boxscore tb2 ON tb2.game_id = tb.game_id AND tb2.team = tb.opponent AND tb2.team != tb.team
		WHERE tb.team = $1
		ORDER BY s.date DESC
	`
	return r.queryTable(ctx, "team career", query, abbr)
}

// SeasonRows returns the per-game lines of every player or team in a
// season for in-memory aggregation.
func (r *BoxScoreRepository) SeasonRows(ctx context.Context, kind stats.StatType, season, gameType string) (stats.RawTable, error) {
	var w whereClause
	seasonClause(&w, "s.", season)
	gameTypeClause(&w, "s.", gameType)

	var query string
	switch kind {
	case stats.StatPlayer:
		query = `
			SELECT pb.*, ` + scheduleColumns + `, ` + playerOutcome + `
			FROM players_boxscore pb
			JOIN schedule s ON pb.game_id = s.id
			` + w.String() + `
			ORDER BY s.date
		`
	case stats.StatTeam:
		w.add("tb.team IN (SELECT abbreviation FROM teams)")
		query = `
			SELECT tb.*, ` + scheduleColumns + `, tb2.pts AS opponent_pts
			FROM teams_boxscore tb
			JOIN schedule s ON tb.game_id = s.id
			LEFT JOIN teams_boxscore tb2 ON tb2.game_id = tb.game_id AND tb2.team = tb.opponent AND tb2.team != tb.team
			` + w.String() + `
			ORDER BY s.date
		`
	default:
		return stats.RawTable{}, fmt.Errorf("season rows: %w: %v", stats.ErrUnknownStatType, kind)
	}

	return r.queryTable(ctx, kind.String()+" season rows", query, w.args...)
}

// PlayerNames returns distinct player names containing q, case-insensitively.
func (r *BoxScoreRepository) PlayerNames(ctx context.Context, q string, limit int) ([]string, error) {
	query := `
		SELECT DISTINCT player_name
		FROM players_boxscore
		WHERE player_name ILIKE '%' || $1 || '%'
		ORDER BY player_name
		LIMIT $2
	`

	rows, err := r.db.DB().QueryContext(ctx, query, q, limit)
	if err != nil {
		return nil, fmt.Errorf("querying player names: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning player name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
