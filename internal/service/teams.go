package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/stats"
	"github.com/fortuna/courtside/internal/teams"
)

const (
	teamsCacheKey   = "teams"
	seasonsCacheKey = "seasons"
)

// TeamDirectory serves the reference lists (teams, seasons) through the
// cache and keeps the resolver in step with the teams table.
type TeamDirectory struct {
	src      Source
	cache    *cache.Layered
	resolver *teams.Resolver
}

// NewTeamDirectory creates a directory. c may be nil.
func NewTeamDirectory(src Source, c *cache.Layered, resolver *teams.Resolver) *TeamDirectory {
	return &TeamDirectory{src: src, cache: c, resolver: resolver}
}

// Teams returns the teams list ordered by name.
func (d *TeamDirectory) Teams(ctx context.Context) ([]teams.Team, error) {
	if d.cache != nil {
		if list, ok := cache.GetJSON[[]teams.Team](ctx, d.cache, teamsCacheKey); ok {
			return list, nil
		}
	}

	rows, err := d.src.Teams(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching teams: %w", err)
	}
	list := make([]teams.Team, 0, len(rows))
	for _, t := range rows {
		list = append(list, teams.Team{Name: t.Name, Abbreviation: t.Abbreviation})
	}
	if len(list) == 0 {
		list = d.resolver.Teams()
	}

	if d.cache != nil {
		if err := cache.SetJSON(ctx, d.cache, teamsCacheKey, list); err != nil {
			log.Printf("⚠️  caching teams: %v", err)
		}
	}
	return list, nil
}

// Seasons returns every season with games, latest first.
func (d *TeamDirectory) Seasons(ctx context.Context) ([]string, error) {
	if d.cache != nil {
		if list, ok := cache.GetJSON[[]string](ctx, d.cache, seasonsCacheKey); ok {
			return list, nil
		}
	}

	list, err := d.src.Seasons(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching seasons: %w", err)
	}
	if d.cache != nil {
		if err := cache.SetJSON(ctx, d.cache, seasonsCacheKey, list); err != nil {
			log.Printf("⚠️  caching seasons: %v", err)
		}
	}
	return list, nil
}

// Invalidate drops the cached lists, e.g. after an import.
func (d *TeamDirectory) Invalidate(ctx context.Context) {
	if d.cache != nil {
		d.cache.Invalidate(ctx, teamsCacheKey, seasonsCacheKey)
	}
}

// Resolver returns a resolver over the current teams list.
func (d *TeamDirectory) Resolver(ctx context.Context) *teams.Resolver {
	list, err := d.Teams(ctx)
	if err != nil {
		log.Printf("⚠️  teams list unavailable, using history: %v", err)
		return d.resolver
	}
	return d.resolver.WithTeams(list)
}

// Resolution is a name resolved to an abbreviation.
type Resolution struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Known        bool   `json:"known"`
	LogoURL      string `json:"logo_url"`
}

// Resolve maps a team name (as of date, zero for current) to its
// abbreviation.
func (d *TeamDirectory) Resolve(ctx context.Context, name string, date time.Time) Resolution {
	r := d.Resolver(ctx)
	abbr := r.Abbreviation(name, date)
	return Resolution{
		Name:         name,
		Abbreviation: abbr,
		Known:        r.Known(abbr),
		LogoURL:      r.LogoURL(abbr),
	}
}

// TeamService builds team report pages
type TeamService struct {
	src      Source
	resolver *teams.Resolver
}

// NewTeamService creates a new team service
func NewTeamService(src Source, resolver *teams.Resolver) *TeamService {
	return &TeamService{src: src, resolver: resolver}
}

// TeamReport is everything shown for a team under one set of filters.
type TeamReport struct {
	Team         string `json:"team"`
	Abbreviation string `json:"abbreviation"`
	LogoURL      string `json:"logo_url"`

	Seasons   []string     `json:"seasons"`
	Opponents []string     `json:"opponents"`
	Metric    stats.Metric `json:"metric"`

	Record        stats.WinLoss           `json:"record"`
	Overall       stats.AggregateRecord   `json:"overall"`
	BySeason      []stats.AggregateRecord `json:"by_season"`
	Summary       stats.TotalsSummary     `json:"summary"`
	Highs         stats.Highs             `json:"highs"`
	Trend         []stats.AggregateRecord `json:"trend"`
	Shooting      []stats.ShootingSeason  `json:"shooting"`
	LocationSplit []stats.SplitValue      `json:"location_split"`
	WinPctSplit   []stats.SplitValue      `json:"win_pct_split"`
	VsOpponents   []stats.AggregateRecord `json:"vs_opponents"`
	GameLog       []stats.GameLogEntry    `json:"game_log"`
}

// Report loads a team's games and builds the report for opts. abbr may
// also be a team name.
func (s *TeamService) Report(ctx context.Context, abbr string, opts ReportOptions) (*TeamReport, error) {
	abbr = strings.TrimSpace(abbr)
	if len(abbr) != 3 {
		abbr = s.resolver.Abbreviation(abbr, time.Time{})
	}
	abbr = strings.ToUpper(abbr)

	raw, err := s.src.TeamCareer(ctx, abbr)
	if err != nil {
		return nil, fmt.Errorf("fetching team games: %w", err)
	}
	games := normalize(raw, stats.StatTeam)
	if games.Len() == 0 {
		return nil, notFound("team", abbr)
	}

	metric := opts.metric()
	rep := &TeamReport{
		Team:         s.resolver.Name(abbr),
		Abbreviation: abbr,
		LogoURL:      s.resolver.LogoURL(abbr),
		Seasons:      seasonsOf(games),
		Opponents:    opponentsOf(games, s.resolver.Known),
		Metric:       metric,
	}

	v := viewsOf(games, opts.filter())

	rep.Record = stats.Record(v.filtered)
	if rep.Overall, err = stats.Overall(v.filtered); err != nil {
		return nil, fmt.Errorf("team overall: %w", err)
	}
	if rep.BySeason, err = stats.SeasonTrend(v.filtered); err != nil {
		return nil, fmt.Errorf("team seasons: %w", err)
	}
	if rep.Summary, err = stats.Summary(v.filtered); err != nil {
		return nil, fmt.Errorf("team totals: %w", err)
	}
	if rep.Highs, err = stats.CareerHighs(v.filtered); err != nil {
		return nil, fmt.Errorf("team highs: %w", err)
	}
	if rep.Shooting, err = stats.ShootingBreakdown(v.filtered); err != nil {
		return nil, fmt.Errorf("team shooting: %w", err)
	}
	if rep.Trend, err = stats.SeasonTrend(v.withoutSeason); err != nil {
		return nil, fmt.Errorf("team trend: %w", err)
	}
	if rep.VsOpponents, err = stats.OpponentSplits(v.withoutOpponent); err != nil {
		return nil, fmt.Errorf("team opponents: %w", err)
	}

	rep.LocationSplit = stats.LocationSplit(v.withoutOpponent, metric, opts.Opponent)
	rep.WinPctSplit = stats.WinPctSplit(v.withoutOpponent, opts.Opponent)
	rep.GameLog = stats.GameLog(v.filtered)

	return rep, nil
}
