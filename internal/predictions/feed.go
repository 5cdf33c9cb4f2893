package predictions

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	json "github.com/goccy/go-json"
)

const dateLayout = "2006-01-02"

// Metadata describes how a feed was produced.
type Metadata struct {
	GeneratedAt string `json:"generated_at,omitempty"`
	Model       string `json:"model,omitempty"`
	Version     string `json:"version,omitempty"`
	GameCount   int    `json:"game_count"`
}

// Side is one team of a predicted game.
type Side struct {
	Name           string  `json:"name"`
	Abbreviation   string  `json:"abbreviation"`
	WinProbability float64 `json:"win_probability"`
}

// Sides are the two teams of a game.
type Sides struct {
	Home Side `json:"home"`
	Away Side `json:"away"`
}

// Prediction is the model's pick.
type Prediction struct {
	WinnerName string `json:"winner_name"`
}

// MatchupStats are head-to-head numbers for the pairing.
type MatchupStats struct {
	GamesPlayed          *int     `json:"h2h_games_played,omitempty"`
	HomeWinPct           *float64 `json:"h2h_win_pct,omitempty"`
	DaysSinceLastMatchup *int     `json:"days_since_last_matchup,omitempty"`
}

// Game is one predicted game.
type Game struct {
	Date       string        `json:"date"`
	Teams      Sides         `json:"teams"`
	Prediction *Prediction   `json:"prediction,omitempty"`
	Matchup    *MatchupStats `json:"matchup_stats,omitempty"`
}

// Feed is a decoded predictions file.
type Feed struct {
	Source   string   `json:"source,omitempty"`
	Metadata Metadata `json:"metadata"`
	Games    []Game   `json:"games"`
}

// Empty is the feed served when no file can be read.
func Empty() Feed {
	return Feed{Games: []Game{}}
}

// Latest returns the newest *.json file in dir by modification time.
func Latest(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return "", err
	}

	var (
		newest  string
		modTime time.Time
	)
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		if newest == "" || info.ModTime().After(modTime) {
			newest, modTime = m, info.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("no prediction files in %s: %w", dir, os.ErrNotExist)
	}
	return newest, nil
}

// LoadFile decodes a feed file.
func LoadFile(path string) (Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Empty(), fmt.Errorf("reading feed: %w", err)
	}

	var f Feed
	if err := json.Unmarshal(data, &f); err != nil {
		return Empty(), fmt.Errorf("decoding feed %s: %w", filepath.Base(path), err)
	}
	if f.Games == nil {
		f.Games = []Game{}
	}
	f.Source = filepath.Base(path)
	return f, nil
}

// Load decodes the newest feed in dir.
func Load(dir string) (Feed, error) {
	path, err := Latest(dir)
	if err != nil {
		return Empty(), err
	}
	return LoadFile(path)
}

// Next returns the earliest game on or after today, nil when none.
func Next(f Feed, today time.Time) *Game {
	cutoff := today.Format(dateLayout)
	games := sortedByDate(f.Games)
	for i := range games {
		if games[i].Date >= cutoff {
			g := games[i]
			return &g
		}
	}
	return nil
}

func sortedByDate(games []Game) []Game {
	out := append([]Game(nil), games...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
