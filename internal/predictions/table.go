package predictions

import "time"

// Resolver maps team names to abbreviations and logos.
type Resolver interface {
	Abbreviation(name string, date time.Time) string
	LogoURL(abbr string) string
}

// TableRow is one line of the upcoming predictions table.
type TableRow struct {
	Date          string  `json:"date"`
	HomeTeam      string  `json:"home_team"`
	AwayTeam      string  `json:"away_team"`
	HomeWinPct    float64 `json:"home_win_prob"`
	AwayWinPct    float64 `json:"away_win_prob"`
	Winner        string  `json:"predicted_winner,omitempty"`
	WinnerLogoURL string  `json:"predicted_winner_logo,omitempty"`
}

// Table lists the feed's games by date, keeping the first game of each
// home/away pairing. Probabilities are in percent.
func Table(f Feed, r Resolver) []TableRow {
	type pair struct{ home, away string }
	seen := make(map[pair]struct{})

	rows := []TableRow{}
	for _, g := range sortedByDate(f.Games) {
		key := pair{g.Teams.Home.Name, g.Teams.Away.Name}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		row := TableRow{
			Date:       g.Date,
			HomeTeam:   g.Teams.Home.Name,
			AwayTeam:   g.Teams.Away.Name,
			HomeWinPct: g.Teams.Home.WinProbability * 100,
			AwayWinPct: g.Teams.Away.WinProbability * 100,
		}
		if g.Prediction != nil && g.Prediction.WinnerName != "" {
			row.Winner = g.Prediction.WinnerName
			if r != nil {
				row.WinnerLogoURL = r.LogoURL(r.Abbreviation(g.Prediction.WinnerName, time.Time{}))
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Matchup is the next game with logos resolved.
type Matchup struct {
	Game
	HomeLogoURL string `json:"home_logo_url"`
	AwayLogoURL string `json:"away_logo_url"`
}

// NextMatchup returns the next game with logos, nil when none.
func NextMatchup(f Feed, today time.Time, r Resolver) *Matchup {
	g := Next(f, today)
	if g == nil {
		return nil
	}
	m := &Matchup{Game: *g}
	if r != nil {
		m.HomeLogoURL = r.LogoURL(g.Teams.Home.Abbreviation)
		m.AwayLogoURL = r.LogoURL(g.Teams.Away.Abbreviation)
	}
	return m
}
