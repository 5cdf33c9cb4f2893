package stats

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Canonical column names, as produced by the column mappings.
const (
	ColGameID     = "game_id"
	ColDate       = "date"
	ColStartTime  = "start_time"
	ColSeason     = "season"
	ColGameType   = "game_type"
	ColRemarks    = "game_remarks"
	ColHomeTeam   = "home_team"
	ColAwayTeam   = "away_team"
	ColHomeAbbr   = "home_team_abb"
	ColAwayAbbr   = "away_team_abb"
	ColHomePoints = "home_team_pts"
	ColAwayPoints = "away_team_pts"

	ColPlayerName = "player_name"
	ColPlayerID   = "player_id"
	ColTeam       = "team"
	ColOpponent   = "opponent"
	ColLocation   = "location"
	ColStarter    = "starter"
	ColOutcome    = "outcome"
	ColOppPoints  = "opponent_pts"

	ColMinutesPlayed = "minutes_played"
	ColSecondsPlayed = "seconds_played"

	ColPoints            = "points"
	ColRebounds          = "rebounds"
	ColOffensiveRebounds = "offensive_rebounds"
	ColDefensiveRebounds = "defensive_rebounds"
	ColAssists           = "assists"
	ColSteals            = "steals"
	ColBlocks            = "blocks"
	ColTurnovers         = "turnovers"
	ColPersonalFouls     = "personal_fouls"
	ColPlusMinus         = "plus_minus"

	ColMadeFieldGoal       = "made_field_goal"
	ColAttemptedFieldGoal  = "attempted_field_goal"
	ColFieldGoalPercent    = "field_goal_percent"
	ColMadeThreePoint      = "made_three_point"
	ColAttemptedThreePoint = "attempted_three_point"
	ColThreePointPercent   = "three_point_percent"
	ColMadeTwoPoint        = "made_two_point"
	ColAttemptedTwoPoint   = "attempted_two_point"
	ColTwoPointPercent     = "two_point_percent"
	ColMadeFreeThrow       = "made_free_throw"
	ColAttemptedFreeThrow  = "attempted_free_throw"
	ColFreeThrowPercent    = "free_throw_percent"
)

// Sentinel filter values meaning "no constraint".
const (
	AllSeasons   = "All Seasons"
	AllGameTypes = "all"
	AllTeams     = "All Teams"
)

// Game type and remark values the filters know about (lower case).
const (
	GameTypeRegularSeason = "regular season"
	GameTypePlayoffs      = "playoffs"
	GameTypeTournament    = "in-season tournament"
	GameTypePlayIn        = "play-in"
	RemarkChampionship    = "championship game"
)

var (
	ErrUnknownStatType = errors.New("unknown stat type")
	ErrUnknownMetric   = errors.New("unknown metric")
)

// MissingColumnError reports a column an aggregation cannot proceed without.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q missing from row set", e.Column)
}

// StatType selects between team-level and player-level box scores.
type StatType int

const (
	StatTeam StatType = iota + 1
	StatPlayer
)

// ParseStatType converts "team" / "player" into a StatType.
func ParseStatType(s string) (StatType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "team", "teams":
		return StatTeam, nil
	case "player", "players":
		return StatPlayer, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStatType, s)
}

func (k StatType) String() string {
	switch k {
	case StatTeam:
		return "team"
	case StatPlayer:
		return "player"
	}
	return fmt.Sprintf("StatType(%d)", int(k))
}

// RawTable is a text row set as read from the data source or a scraped
// page. A blank value is a null.
type RawTable struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// Has reports whether the table carries the column.
func (t RawTable) Has(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Len returns the number of rows.
func (t RawTable) Len() int { return len(t.Rows) }

// ColumnSet records which canonical columns a row set carries.
type ColumnSet map[string]struct{}

// NewColumnSet builds a set from column names.
func NewColumnSet(cols ...string) ColumnSet {
	set := make(ColumnSet, len(cols))
	for _, c := range cols {
		set[c] = struct{}{}
	}
	return set
}

// Has reports whether col is in the set.
func (c ColumnSet) Has(col string) bool {
	_, ok := c[col]
	return ok
}

// RowSet is an immutable typed row set plus the columns it was built from.
type RowSet[T any] struct {
	Columns ColumnSet
	Rows    []T
}

// Has reports whether the row set carries the column.
func (s RowSet[T]) Has(col string) bool { return s.Columns.Has(col) }

// Len returns the number of rows.
func (s RowSet[T]) Len() int { return len(s.Rows) }

// withRows returns a row set of the same shape holding rows.
func (s RowSet[T]) withRows(rows []T) RowSet[T] {
	if rows == nil {
		rows = []T{}
	}
	return RowSet[T]{Columns: s.Columns, Rows: rows}
}

// Game is the schedule context of a single game.
type Game struct {
	GameID     string    `json:"game_id"`
	Date       time.Time `json:"date"`
	Season     string    `json:"season,omitempty"`
	GameType   string    `json:"game_type,omitempty"`
	Remarks    string    `json:"game_remarks,omitempty"`
	HomeTeam   string    `json:"home_team,omitempty"`
	AwayTeam   string    `json:"away_team,omitempty"`
	HomeAbbr   string    `json:"home_team_abb,omitempty"`
	AwayAbbr   string    `json:"away_team_abb,omitempty"`
	HomePoints *int      `json:"home_team_pts"`
	AwayPoints *int      `json:"away_team_pts"`
}

// ScheduleRow is one game's metadata.
type ScheduleRow struct {
	Game
	StartTime time.Time `json:"start_time"`
}

// BoxScoreRow is a single game's statistical line for a player or a team.
type BoxScoreRow struct {
	Game

	PlayerName string `json:"player_name,omitempty"`
	PlayerID   string `json:"player_id,omitempty"`
	Team       string `json:"team"`
	Opponent   string `json:"opponent"`
	Location   string `json:"location"`
	Starter    bool   `json:"starter"`

	SecondsPlayed *int `json:"seconds_played,omitempty"`
	MinutesPlayed *int `json:"minutes_played,omitempty"`

	Points            *int `json:"points"`
	Rebounds          *int `json:"rebounds"`
	OffensiveRebounds *int `json:"offensive_rebounds"`
	DefensiveRebounds *int `json:"defensive_rebounds"`
	Assists           *int `json:"assists"`
	Steals            *int `json:"steals"`
	Blocks            *int `json:"blocks"`
	Turnovers         *int `json:"turnovers"`
	PersonalFouls     *int `json:"personal_fouls"`
	PlusMinus         *int `json:"plus_minus,omitempty"`

	MadeFieldGoal       *int     `json:"made_field_goal"`
	AttemptedFieldGoal  *int     `json:"attempted_field_goal"`
	FieldGoalPercent    *float64 `json:"field_goal_percent"`
	MadeThreePoint      *int     `json:"made_three_point"`
	AttemptedThreePoint *int     `json:"attempted_three_point"`
	ThreePointPercent   *float64 `json:"three_point_percent"`
	MadeTwoPoint        *int     `json:"made_two_point"`
	AttemptedTwoPoint   *int     `json:"attempted_two_point"`
	TwoPointPercent     *float64 `json:"two_point_percent"`
	MadeFreeThrow       *int     `json:"made_free_throw"`
	AttemptedFreeThrow  *int     `json:"attempted_free_throw"`
	FreeThrowPercent    *float64 `json:"free_throw_percent"`

	// Outcome is 1 for a win and 0 for a loss.
	Outcome        *int `json:"outcome,omitempty"`
	OpponentPoints *int `json:"opponent_pts,omitempty"`
}

// Filterable is implemented by rows Filter can narrow.
type Filterable interface {
	GameInfo() Game
	TeamCode() string
	OpponentCode() string
}

func (g Game) GameInfo() Game { return g }

func (r ScheduleRow) TeamCode() string     { return "" }
func (r ScheduleRow) OpponentCode() string { return "" }

func (r BoxScoreRow) TeamCode() string     { return r.Team }
func (r BoxScoreRow) OpponentCode() string { return r.Opponent }

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
