package service

import (
	"context"
	"fmt"

	"github.com/fortuna/courtside/internal/stats"
	"github.com/fortuna/courtside/internal/store"
)

// SeasonService builds league-wide season tables
type SeasonService struct {
	src Source
}

// NewSeasonService creates a new season service
func NewSeasonService(src Source) *SeasonService {
	return &SeasonService{src: src}
}

// Leaderboard is a season's player or team table.
type Leaderboard struct {
	Season   string                  `json:"season"`
	Type     string                  `json:"type"`
	GameType string                  `json:"game_type"`
	MinGames int                     `json:"min_games"`
	SortedBy string                  `json:"sorted_by"`
	Records  []stats.AggregateRecord `json:"records"`
	Champion *store.Champion         `json:"champion,omitempty"`
}

// Leaders aggregates every player or team in season. Players are ranked
// by points per game and need minGames games; teams are ranked by wins
// and carry the season champion.
func (s *SeasonService) Leaders(ctx context.Context, season string, kind stats.StatType, gameType string, minGames int) (*Leaderboard, error) {
	raw, err := s.src.SeasonRows(ctx, kind, season, gameType)
	if err != nil {
		return nil, fmt.Errorf("fetching season rows: %w", err)
	}

	// The game type is applied by the source query only, keeping
	// non-final tournament games in the regular season table.
	var f stats.FilterSpec
	if season != "" {
		f = f.WithSeason(season)
	}
	rows := stats.Filter(normalize(raw, kind), f)

	board := &Leaderboard{
		Season:   season,
		Type:     kind.String(),
		GameType: gameType,
		MinGames: minGames,
	}

	var key stats.GroupKey
	switch kind {
	case stats.StatPlayer:
		key = stats.GroupKey{stats.ByPlayer}
		board.SortedBy = "ppg"
	case stats.StatTeam:
		key = stats.GroupKey{stats.ByTeam}
		board.SortedBy = "wins"
		board.MinGames = 0
	default:
		return nil, fmt.Errorf("leaders: %w: %v", stats.ErrUnknownStatType, kind)
	}

	recs, err := stats.Aggregate(rows, key)
	if err != nil {
		return nil, fmt.Errorf("aggregating %s season: %w", kind, err)
	}
	board.Records = stats.SeasonLeaders(recs, kind, minGames)

	if kind == stats.StatTeam {
		if board.Champion, err = s.src.Champion(ctx, season); err != nil {
			return nil, fmt.Errorf("fetching champion: %w", err)
		}
	}
	return board, nil
}

// DisplayPercentages returns a copy of recs with shooting and win
// percentages as rounded percent points (0.4551 -> 45.5).
func DisplayPercentages(recs []stats.AggregateRecord) []stats.AggregateRecord {
	out := make([]stats.AggregateRecord, len(recs))
	for i, r := range recs {
		r.FGPct = stats.PercentPoints(r.FGPct)
		r.TwoPPct = stats.PercentPoints(r.TwoPPct)
		r.ThreePPct = stats.PercentPoints(r.ThreePPct)
		r.FTPct = stats.PercentPoints(r.FTPct)
		r.WinPct = stats.PercentPoints(r.WinPct)
		out[i] = r
	}
	return out
}
