package bref

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/courtside/internal/publisher"
	"github.com/fortuna/courtside/internal/store"
)

// Writer persists imported games
type Writer interface {
	Upsert(ctx context.Context, g *store.ImportedGame) error
}

// ImportEvent is published after a game is written.
type ImportEvent struct {
	GameID   string    `json:"game_id"`
	Date     string    `json:"date"`
	Season   string    `json:"season"`
	GameType string    `json:"game_type"`
	Home     string    `json:"home_team_abb"`
	Away     string    `json:"away_team_abb"`
	Players  int       `json:"players"`
	At       time.Time `json:"imported_at"`
}

// Importer fetches, parses and stores box score pages
type Importer struct {
	fetcher   Fetcher
	baseURL   string
	writer    Writer
	publisher publisher.Publisher
}

// NewImporter creates an importer. pub may be nil.
func NewImporter(fetcher Fetcher, baseURL string, writer Writer, pub publisher.Publisher) *Importer {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if pub == nil {
		pub = publisher.Nop{}
	}
	return &Importer{
		fetcher:   fetcher,
		baseURL:   baseURL,
		writer:    writer,
		publisher: pub,
	}
}

// GameIDsOn lists the games played on date.
func (i *Importer) GameIDsOn(ctx context.Context, date time.Time) ([]string, error) {
	html, err := i.fetcher.Fetch(ctx, DayURL(i.baseURL, date))
	if err != nil {
		return nil, fmt.Errorf("fetching games for %s: %w", date.Format("2006-01-02"), err)
	}
	doc, err := ParseHTML(html)
	if err != nil {
		return nil, err
	}
	return ParseGameIDs(doc), nil
}

// ImportGame fetches one game page and writes it.
func (i *Importer) ImportGame(ctx context.Context, gameID string, opts ParseOptions) (*store.ImportedGame, error) {
	html, err := i.fetcher.Fetch(ctx, BoxScoreURL(i.baseURL, gameID))
	if err != nil {
		return nil, fmt.Errorf("fetching game %s: %w", gameID, err)
	}
	doc, err := ParseHTML(html)
	if err != nil {
		return nil, err
	}

	game, err := ParseBoxScore(doc, gameID, opts)
	if err != nil {
		return nil, fmt.Errorf("parsing game %s: %w", gameID, err)
	}

	if err := i.writer.Upsert(ctx, game); err != nil {
		return nil, fmt.Errorf("storing game %s: %w", gameID, err)
	}

	s := game.Schedule
	event := ImportEvent{
		GameID:   s.ID,
		Date:     s.Date.Format("2006-01-02"),
		Season:   s.Season,
		GameType: s.GameType,
		Home:     s.HomeTeamAbb,
		Away:     s.AwayTeamAbb,
		Players:  len(game.Players),
		At:       time.Now().UTC(),
	}
	if err := i.publisher.PublishImport(ctx, event); err != nil {
		log.Printf("⚠️  Failed to publish import of %s: %v", gameID, err)
	}

	return game, nil
}
