package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/courtside/internal/stats"
	"github.com/fortuna/courtside/internal/teams"
)

// PlayerService builds player report pages
type PlayerService struct {
	src      Source
	resolver *teams.Resolver
}

// NewPlayerService creates a new player service
func NewPlayerService(src Source, resolver *teams.Resolver) *PlayerService {
	return &PlayerService{src: src, resolver: resolver}
}

// PlayerReport is everything shown for a player under one set of filters.
type PlayerReport struct {
	Player     string    `json:"player"`
	PlayerID   string    `json:"player_id,omitempty"`
	PhotoURL   string    `json:"photo_url,omitempty"`
	LastPlayed time.Time `json:"last_played"`

	Seasons   []string     `json:"seasons"`
	Opponents []string     `json:"opponents"`
	Metric    stats.Metric `json:"metric"`

	Overall       stats.AggregateRecord   `json:"overall"`
	BySeasonTeam  []stats.AggregateRecord `json:"by_season_team"`
	Summary       stats.TotalsSummary     `json:"summary"`
	Highs         stats.Highs             `json:"highs"`
	Trend         []stats.AggregateRecord `json:"trend"`
	Shooting      []stats.ShootingSeason  `json:"shooting"`
	LocationSplit []stats.SplitValue      `json:"location_split"`
	WinPctSplit   []stats.SplitValue      `json:"win_pct_split"`
	VsOpponents   []stats.AggregateRecord `json:"vs_opponents"`
	GameLog       []stats.GameLogEntry    `json:"game_log"`
}

// Search returns player names containing q.
func (s *PlayerService) Search(ctx context.Context, q string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 25
	}
	names, err := s.src.PlayerNames(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("searching players: %w", err)
	}
	return names, nil
}

// Report loads a player's career and builds the report for opts.
//
// The season view, totals and game log use every filter. The location
// split and opponent table ignore the opponent filter; the trend ignores
// the season filter.
func (s *PlayerService) Report(ctx context.Context, name string, opts ReportOptions) (*PlayerReport, error) {
	raw, err := s.src.PlayerCareer(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("fetching player career: %w", err)
	}
	career := normalize(raw, stats.StatPlayer)
	if career.Len() == 0 {
		return nil, notFound("player", name)
	}

	first := career.Rows[0]
	metric := opts.metric()
	rep := &PlayerReport{
		Player:     first.PlayerName,
		PlayerID:   first.PlayerID,
		PhotoURL:   PhotoURL(first.PlayerID),
		LastPlayed: stats.LastPlayed(career),
		Seasons:    seasonsOf(career),
		Opponents:  opponentsOf(career, s.resolver.Known),
		Metric:     metric,
	}

	v := viewsOf(career, opts.filter())

	if rep.Overall, err = stats.Overall(v.filtered); err != nil {
		return nil, fmt.Errorf("player overall: %w", err)
	}
	if rep.BySeasonTeam, err = stats.Aggregate(v.filtered, stats.GroupKey{stats.BySeason, stats.ByTeam}); err != nil {
		return nil, fmt.Errorf("player seasons: %w", err)
	}
	if rep.Summary, err = stats.Summary(v.filtered); err != nil {
		return nil, fmt.Errorf("player totals: %w", err)
	}
	if rep.Highs, err = stats.CareerHighs(v.filtered); err != nil {
		return nil, fmt.Errorf("player highs: %w", err)
	}
	if rep.Shooting, err = stats.ShootingBreakdown(v.filtered); err != nil {
		return nil, fmt.Errorf("player shooting: %w", err)
	}
	if rep.Trend, err = stats.SeasonTrend(v.withoutSeason); err != nil {
		return nil, fmt.Errorf("player trend: %w", err)
	}
	if rep.VsOpponents, err = stats.OpponentSplits(v.withoutOpponent); err != nil {
		return nil, fmt.Errorf("player opponents: %w", err)
	}

	rep.LocationSplit = stats.LocationSplit(v.withoutOpponent, metric, opts.Opponent)
	rep.WinPctSplit = stats.WinPctSplit(v.withoutOpponent, opts.Opponent)
	rep.GameLog = stats.GameLog(v.filtered)

	return rep, nil
}
