package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fortuna/courtside/internal/stats"
	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/store/repository"
	"github.com/fortuna/courtside/internal/teams"
)

// fakeSource serves canned raw tables.
type fakeSource struct {
	games      stats.RawTable
	game       stats.RawTable
	teamGame   stats.RawTable
	playerGame stats.RawTable
	career     stats.RawTable
	teamCareer stats.RawTable
	seasonRows stats.RawTable
	seasons    []string
	champion   *store.Champion
	teams      []store.Team
	err        error

	lastQuery  repository.ScheduleQuery
	lastKind   stats.StatType
	teamsCalls int
}

func (f *fakeSource) Games(_ context.Context, q repository.ScheduleQuery) (stats.RawTable, error) {
	f.lastQuery = q
	return sqlGameType(f.games, q.GameType), f.err
}

// sqlGameType keeps the rows the repository's game type clause would:
// "regular season" also admits tournament games other than the final.
func sqlGameType(t stats.RawTable, gameType string) stats.RawTable {
	want := strings.ToLower(gameType)
	if want == "" || want == "all" {
		return t
	}
	out := stats.RawTable{Columns: t.Columns, Rows: []map[string]string{}}
	for _, r := range t.Rows {
		got := strings.ToLower(r["game_type"])
		keep := got == want
		if want == "regular season" && got == "in-season tournament" {
			keep = strings.ToLower(r["game_remarks"]) != "championship game"
		}
		if keep {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

func (f *fakeSource) Game(_ context.Context, id string) (stats.RawTable, error) {
	if f.err != nil {
		return stats.RawTable{}, f.err
	}
	if f.game.Len() == 0 {
		return stats.RawTable{}, notFound("game", id)
	}
	return f.game, nil
}

func (f *fakeSource) Seasons(context.Context) ([]string, error) { return f.seasons, f.err }

func (f *fakeSource) Champion(context.Context, string) (*store.Champion, error) {
	return f.champion, f.err
}

func (f *fakeSource) TeamGame(context.Context, string) (stats.RawTable, error) {
	return f.teamGame, f.err
}

func (f *fakeSource) PlayerGame(context.Context, string) (stats.RawTable, error) {
	return f.playerGame, f.err
}

func (f *fakeSource) PlayerCareer(context.Context, string) (stats.RawTable, error) {
	return f.career, f.err
}

func (f *fakeSource) TeamCareer(context.Context, string) (stats.RawTable, error) {
	return f.teamCareer, f.err
}

func (f *fakeSource) SeasonRows(_ context.Context, kind stats.StatType, _, gameType string) (stats.RawTable, error) {
	f.lastKind = kind
	return sqlGameType(f.seasonRows, gameType), f.err
}

func (f *fakeSource) PlayerNames(context.Context, string, int) ([]string, error) {
	return []string{"Jayson Tatum"}, f.err
}

func (f *fakeSource) Teams(context.Context) ([]store.Team, error) {
	f.teamsCalls++
	return f.teams, f.err
}

func testResolver(t *testing.T) *teams.Resolver {
	t.Helper()
	h, err := teams.DefaultHistory()
	require.NoError(t, err)
	return teams.NewResolver(h, nil)
}

var boxColumns = []string{
	"game_id", "date", "season", "game_type", "game_remarks",
	"home_team", "away_team", "home_team_abb", "away_team_abb", "home_team_pts", "away_team_pts",
	"player_name", "player_id", "team", "opponent", "location", "starter", "outcome",
	"mp", "pts", "fg", "fga", "three_p", "three_pa", "ft", "fta", "trb", "ast", "stl", "blk", "tov",
}

// boxLine is a source-named box score row for team BOS.
type boxLine struct {
	game, date, season, gameType string
	opp, loc, pts, outcome       string
}

func (l boxLine) raw() map[string]string {
	gameType := l.gameType
	if gameType == "" {
		gameType = "regular season"
	}
	home, away := "BOS", l.opp
	if l.loc == "away" {
		home, away = l.opp, "BOS"
	}
	return map[string]string{
		"game_id": l.game, "date": l.date, "season": l.season, "game_type": gameType,
		"home_team_abb": home, "away_team_abb": away,
		"player_name": "Jayson Tatum", "player_id": "1628369",
		"team": "BOS", "opponent": l.opp, "location": l.loc, "starter": "1", "outcome": l.outcome,
		"mp": "36:00", "pts": l.pts, "fg": "8", "fga": "16", "three_p": "2", "three_pa": "6",
		"ft": "2", "fta": "2", "trb": "8", "ast": "4", "stl": "1", "blk": "1", "tov": "3",
	}
}

func boxTable(lines ...boxLine) stats.RawTable {
	t := stats.RawTable{Columns: boxColumns, Rows: []map[string]string{}}
	for _, l := range lines {
		t.Rows = append(t.Rows, l.raw())
	}
	return t
}

// careerLines are four games across two seasons.
func careerLines() []boxLine {
	return []boxLine{
		{game: "g4", date: "2024-05-01", season: "2023-24", gameType: "playoffs", opp: "MIA", loc: "home", pts: "40", outcome: "1"},
		{game: "g3", date: "2024-01-10", season: "2023-24", opp: "LAL", loc: "away", pts: "10", outcome: "1"},
		{game: "g2", date: "2023-02-10", season: "2022-23", opp: "MIA", loc: "away", pts: "30", outcome: "0"},
		{game: "g1", date: "2023-01-10", season: "2022-23", opp: "LAL", loc: "home", pts: "20", outcome: "1"},
	}
}
