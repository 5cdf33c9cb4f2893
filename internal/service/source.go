package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fortuna/courtside/internal/stats"
	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/store/repository"
)

// Source is the read side of the box score store.
type Source interface {
	Games(ctx context.Context, q repository.ScheduleQuery) (stats.RawTable, error)
	Game(ctx context.Context, gameID string) (stats.RawTable, error)
	Seasons(ctx context.Context) ([]string, error)
	Champion(ctx context.Context, season string) (*store.Champion, error)

	TeamGame(ctx context.Context, gameID string) (stats.RawTable, error)
	PlayerGame(ctx context.Context, gameID string) (stats.RawTable, error)
	PlayerCareer(ctx context.Context, playerName string) (stats.RawTable, error)
	TeamCareer(ctx context.Context, abbr string) (stats.RawTable, error)
	SeasonRows(ctx context.Context, kind stats.StatType, season, gameType string) (stats.RawTable, error)
	PlayerNames(ctx context.Context, q string, limit int) ([]string, error)

	Teams(ctx context.Context) ([]store.Team, error)
}

// DBSource is the Postgres-backed Source.
type DBSource struct {
	*repository.ScheduleRepository
	*repository.BoxScoreRepository
	teams *repository.TeamRepository
}

// NewDBSource wires the repositories over db.
func NewDBSource(db *store.Database) *DBSource {
	return &DBSource{
		ScheduleRepository: repository.NewScheduleRepository(db),
		BoxScoreRepository: repository.NewBoxScoreRepository(db),
		teams:              repository.NewTeamRepository(db),
	}
}

// Teams returns the teams list ordered by name.
func (s *DBSource) Teams(ctx context.Context) ([]store.Team, error) {
	return s.teams.All(ctx)
}

const photoBaseURL = "https://cdn.nba.com/headshots/nba/latest/260x190/"

// PhotoURL returns the headshot for a player id, "" without one.
func PhotoURL(playerID string) string {
	if playerID == "" {
		return ""
	}
	return photoBaseURL + playerID + ".png"
}

// ReportOptions are the page filters of a player or team report.
type ReportOptions struct {
	Season   string
	GameType string
	Opponent string
	DateFrom time.Time
	DateTo   time.Time
	Metric   stats.Metric
}

func (o ReportOptions) filter() stats.FilterSpec {
	var f stats.FilterSpec
	if o.Season != "" {
		f = f.WithSeason(o.Season)
	}
	if o.GameType != "" {
		f = f.WithGameType(o.GameType)
	}
	if o.Opponent != "" {
		f = f.WithOpponent(o.Opponent)
	}
	return f.WithDates(o.DateFrom, o.DateTo)
}

func (o ReportOptions) metric() stats.Metric {
	if o.Metric == "" {
		return stats.MetricPoints
	}
	return o.Metric
}

// reportViews are the three row sets a report page reads from.
type reportViews struct {
	filtered        stats.RowSet[stats.BoxScoreRow]
	withoutOpponent stats.RowSet[stats.BoxScoreRow]
	withoutSeason   stats.RowSet[stats.BoxScoreRow]
}

func viewsOf(s stats.RowSet[stats.BoxScoreRow], f stats.FilterSpec) reportViews {
	noOpp := f
	noOpp.Opponent = nil
	noSeason := f
	noSeason.Season = nil
	return reportViews{
		filtered:        stats.Filter(s, f),
		withoutOpponent: stats.Filter(s, noOpp),
		withoutSeason:   stats.Filter(s, noSeason),
	}
}

// seasonsOf lists the distinct seasons of s, latest first.
func seasonsOf(s stats.RowSet[stats.BoxScoreRow]) []string {
	return distinct(s, func(r stats.BoxScoreRow) string { return r.Season }, true)
}

// opponentsOf lists the distinct opponents of s accepted by keep, sorted.
func opponentsOf(s stats.RowSet[stats.BoxScoreRow], keep func(string) bool) []string {
	return distinct(s, func(r stats.BoxScoreRow) string {
		if keep != nil && !keep(r.Opponent) {
			return ""
		}
		return r.Opponent
	}, false)
}

func distinct(s stats.RowSet[stats.BoxScoreRow], key func(stats.BoxScoreRow) string, desc bool) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range s.Rows {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sortStrings(out, desc)
	return out
}

func sortStrings(s []string, desc bool) {
	if desc {
		sort.Sort(sort.Reverse(sort.StringSlice(s)))
		return
	}
	sort.Strings(s)
}

func notFound(what, key string) error {
	return fmt.Errorf("%s %s: %w", what, strings.TrimSpace(key), store.ErrNotFound)
}
