package service

import (
	"context"
	"fmt"

	"github.com/fortuna/courtside/internal/stats"
	"github.com/fortuna/courtside/internal/store"
	"github.com/fortuna/courtside/internal/store/repository"
	"github.com/fortuna/courtside/internal/teams"
)

// GameService handles schedule and game detail reads
type GameService struct {
	src      Source
	resolver *teams.Resolver
}

// NewGameService creates a new game service
func NewGameService(src Source, resolver *teams.Resolver) *GameService {
	return &GameService{src: src, resolver: resolver}
}

// Schedule returns played games matching f, newest first.
func (s *GameService) Schedule(ctx context.Context, f stats.FilterSpec) ([]stats.ScheduleRow, error) {
	q := repository.ScheduleQuery{}
	if f.Season != nil {
		q.Season = *f.Season
	}
	if f.GameType != nil {
		q.GameType = *f.GameType
	}
	if f.Team != nil {
		q.Team = *f.Team
	}
	if f.DateFrom != nil {
		q.DateFrom = *f.DateFrom
	}
	if f.DateTo != nil {
		q.DateTo = *f.DateTo
	}

	raw, err := s.src.Games(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetching schedule: %w", err)
	}

	// The query matched team names case-insensitively and already applied
	// the game type, widened for "regular season" to non-final tournament
	// games. Narrowing again here would drop those games.
	f.Team = nil
	f.GameType = nil
	return stats.Filter(stats.NormalizeSchedule(raw), f).Rows, nil
}

// PlayerLine is a player's line in a game with display extras.
type PlayerLine struct {
	stats.BoxScoreRow
	PhotoURL string `json:"photo_url,omitempty"`
	Minutes  string `json:"minutes,omitempty"`
}

// GameDetail is a game's schedule row with both box scores.
type GameDetail struct {
	Game        stats.ScheduleRow   `json:"game"`
	HomeLogoURL string              `json:"home_logo_url"`
	AwayLogoURL string              `json:"away_logo_url"`
	Teams       []stats.BoxScoreRow `json:"teams"`
	HomePlayers []PlayerLine        `json:"home_players"`
	AwayPlayers []PlayerLine        `json:"away_players"`
}

// Detail returns the team and player box scores of a game.
func (s *GameService) Detail(ctx context.Context, gameID string) (*GameDetail, error) {
	rawGame, err := s.src.Game(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("fetching game: %w", err)
	}
	sched := stats.NormalizeSchedule(rawGame)
	if sched.Len() == 0 {
		return nil, notFound("game", gameID)
	}
	game := sched.Rows[0]

	rawTeams, err := s.src.TeamGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("fetching team box score: %w", err)
	}
	rawPlayers, err := s.src.PlayerGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("fetching player box score: %w", err)
	}

	homeAbbr := game.HomeAbbr
	if homeAbbr == "" {
		homeAbbr = s.resolver.Abbreviation(game.HomeTeam, game.Date)
	}
	awayAbbr := game.AwayAbbr
	if awayAbbr == "" {
		awayAbbr = s.resolver.Abbreviation(game.AwayTeam, game.Date)
	}

	detail := &GameDetail{
		Game:        game,
		HomeLogoURL: s.resolver.LogoURL(homeAbbr),
		AwayLogoURL: s.resolver.LogoURL(awayAbbr),
		Teams:       normalize(rawTeams, stats.StatTeam).Rows,
		HomePlayers: []PlayerLine{},
		AwayPlayers: []PlayerLine{},
	}

	for _, r := range normalize(rawPlayers, stats.StatPlayer).Rows {
		line := PlayerLine{BoxScoreRow: r, PhotoURL: PhotoURL(r.PlayerID)}
		if r.SecondsPlayed != nil {
			line.Minutes = stats.FormatClock(*r.SecondsPlayed)
		}
		switch r.Team {
		case homeAbbr:
			detail.HomePlayers = append(detail.HomePlayers, line)
		case awayAbbr:
			detail.AwayPlayers = append(detail.AwayPlayers, line)
		}
	}

	return detail, nil
}

// Seasons returns every season with games, latest first.
func (s *GameService) Seasons(ctx context.Context) ([]string, error) {
	seasons, err := s.src.Seasons(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching seasons: %w", err)
	}
	return seasons, nil
}

// Champion returns the season's champion, nil when the season has no
// games yet.
func (s *GameService) Champion(ctx context.Context, season string) (*store.Champion, error) {
	champ, err := s.src.Champion(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("fetching champion: %w", err)
	}
	return champ, nil
}

// normalize renames and types a raw box score table.
func normalize(raw stats.RawTable, kind stats.StatType) stats.RowSet[stats.BoxScoreRow] {
	return stats.NormalizeBoxScores(stats.RenameColumns(raw, kind.Columns()), kind)
}
