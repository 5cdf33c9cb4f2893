package store

import (
	"database/sql"
	"time"
)

// Team is a row of the teams table.
type Team struct {
	Name         string `json:"name" db:"name"`
	Abbreviation string `json:"abbreviation" db:"abbreviation"`
}

// ScheduleEntry is a row of the schedule table.
type ScheduleEntry struct {
	ID          string        `json:"id" db:"id"`
	Date        time.Time     `json:"date" db:"date"`
	StartTime   sql.NullTime  `json:"start_time,omitempty" db:"start_time"`
	Season      string        `json:"season" db:"season"`
	GameType    string        `json:"game_type" db:"game_type"`
	GameRemarks string        `json:"game_remarks,omitempty" db:"game_remarks"`
	HomeTeam    string        `json:"home_team" db:"home_team"`
	AwayTeam    string        `json:"away_team" db:"away_team"`
	HomeTeamAbb string        `json:"home_team_abb" db:"home_team_abb"`
	AwayTeamAbb string        `json:"away_team_abb" db:"away_team_abb"`
	HomeTeamPts sql.NullInt32 `json:"home_team_pts,omitempty" db:"home_team_pts"`
	AwayTeamPts sql.NullInt32 `json:"away_team_pts,omitempty" db:"away_team_pts"`
}

// BoxScoreLine is one scraped box score line keyed by source column
// (pts, fg, three_p, mp ...). Values stay text as scraped.
type BoxScoreLine map[string]string

// Clone returns a copy of the line.
func (l BoxScoreLine) Clone() BoxScoreLine {
	out := make(BoxScoreLine, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// ImportedGame is everything written for one game by an import.
type ImportedGame struct {
	Schedule ScheduleEntry  `json:"schedule"`
	Teams    []BoxScoreLine `json:"teams"`
	Players  []BoxScoreLine `json:"players"`
}

// Champion is the winner of a season's final game.
type Champion struct {
	TeamName         string `json:"team_name"`
	TeamAbbreviation string `json:"team_abbreviation"`
}

// Source box score columns shared by team and player lines.
var BoxScoreStatColumns = []string{
	"mp", "fg", "fga", "fg_pct", "three_p", "three_pa", "three_p_pct",
	"ft", "fta", "ft_pct", "orb", "drb", "trb", "ast", "stl", "blk",
	"tov", "pf", "pts",
}

// PlayerBoxScoreColumns are the writable players_boxscore columns.
var PlayerBoxScoreColumns = append([]string{
	"game_id", "player_name", "team", "opponent", "location", "starter", "plus_minus",
}, BoxScoreStatColumns...)

// TeamBoxScoreColumns are the writable teams_boxscore columns.
var TeamBoxScoreColumns = append([]string{
	"game_id", "team", "opponent", "location", "outcome",
}, BoxScoreStatColumns...)
