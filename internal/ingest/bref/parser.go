package bref

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/courtside/internal/store"
)

var (
	ErrNoScorebox = errors.New("scorebox not found")
	ErrNoBoxScore = errors.New("box score table not found")
)

var (
	teamHrefRe = regexp.MustCompile(`/teams/([A-Z]{3})/`)
	gameHrefRe = regexp.MustCompile(`^/boxscores/(\d{9}[A-Z]{3})\.html$`)
)

// statColumns maps the page's data-stat attributes to stored column names.
var statColumns = map[string]string{
	"mp":         "mp",
	"fg":         "fg",
	"fga":        "fga",
	"fg_pct":     "fg_pct",
	"fg3":        "three_p",
	"fg3a":       "three_pa",
	"fg3_pct":    "three_p_pct",
	"ft":         "ft",
	"fta":        "fta",
	"ft_pct":     "ft_pct",
	"orb":        "orb",
	"drb":        "drb",
	"trb":        "trb",
	"ast":        "ast",
	"stl":        "stl",
	"blk":        "blk",
	"tov":        "tov",
	"pf":         "pf",
	"pts":        "pts",
	"plus_minus": "plus_minus",
}

// meta date formats, with and without a start time
var metaLayouts = []string{
	"3:04 PM, January 2, 2006",
	"January 2, 2006",
}

// ParseOptions override values the page does not state reliably.
type ParseOptions struct {
	Season   string
	GameType string
}

type scoreboxTeam struct {
	name   string
	abbr   string
	points sql.NullInt32
}

// ParseGameIDs extracts the box score ids linked from a day index page.
func ParseGameIDs(doc *goquery.Document) []string {
	seen := make(map[string]struct{})
	ids := []string{}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		m := gameHrefRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		if _, ok := seen[m[1]]; ok {
			return
		}
		seen[m[1]] = struct{}{}
		ids = append(ids, m[1])
	})
	return ids
}

// ParseBoxScore extracts the schedule row and the team and player box
// score lines of one game page. The first scorebox team is the visitor.
func ParseBoxScore(doc *goquery.Document, gameID string, opts ParseOptions) (*store.ImportedGame, error) {
	away, home, err := parseScorebox(doc)
	if err != nil {
		return nil, err
	}

	sched := store.ScheduleEntry{
		ID:          gameID,
		HomeTeam:    home.name,
		AwayTeam:    away.name,
		HomeTeamAbb: home.abbr,
		AwayTeamAbb: away.abbr,
		HomeTeamPts: home.points,
		AwayTeamPts: away.points,
	}

	start, withTime, ok := parseMeta(doc)
	if !ok {
		start, ok = dateFromID(gameID)
	}
	if !ok {
		return nil, fmt.Errorf("game %s: no date on page", gameID)
	}
	sched.Date = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	if withTime {
		sched.StartTime = sql.NullTime{Time: start, Valid: true}
	}

	sched.Season = opts.Season
	if sched.Season == "" {
		sched.Season = SeasonOf(sched.Date)
	}
	sched.GameType, sched.GameRemarks = classify(strings.TrimSpace(doc.Find("#content h1").First().Text()))
	if opts.GameType != "" {
		sched.GameType = opts.GameType
	}

	game := &store.ImportedGame{Schedule: sched}
	sides := []struct {
		team, opp scoreboxTeam
		location  string
	}{
		{home, away, "home"},
		{away, home, "away"},
	}
	for _, side := range sides {
		table := doc.Find(fmt.Sprintf("table#box-%s-game-basic", side.team.abbr))
		if table.Length() == 0 {
			return nil, fmt.Errorf("game %s team %s: %w", gameID, side.team.abbr, ErrNoBoxScore)
		}

		base := store.BoxScoreLine{
			"game_id":  gameID,
			"team":     side.team.abbr,
			"opponent": side.opp.abbr,
			"location": side.location,
		}

		teamLine := base.Clone()
		teamLine["outcome"] = outcome(side.team.points, side.opp.points)
		readStats(table.Find("tfoot tr").First(), teamLine)
		delete(teamLine, "plus_minus")
		game.Teams = append(game.Teams, teamLine)

		game.Players = append(game.Players, parsePlayers(table, base)...)
	}

	return game, nil
}

func parseScorebox(doc *goquery.Document) (away, home scoreboxTeam, err error) {
	var found []scoreboxTeam
	doc.Find("div.scorebox > div").Each(func(_ int, div *goquery.Selection) {
		if div.HasClass("scorebox_meta") || len(found) == 2 {
			return
		}
		link := div.Find("strong a").First()
		if link.Length() == 0 {
			return
		}
		t := scoreboxTeam{name: strings.TrimSpace(link.Text())}
		if href, ok := link.Attr("href"); ok {
			if m := teamHrefRe.FindStringSubmatch(href); m != nil {
				t.abbr = m[1]
			}
		}
		if pts, err := strconv.Atoi(strings.TrimSpace(div.Find("div.score").First().Text())); err == nil {
			t.points = sql.NullInt32{Int32: int32(pts), Valid: true}
		}
		found = append(found, t)
	})

	if len(found) != 2 || found[0].abbr == "" || found[1].abbr == "" {
		return away, home, ErrNoScorebox
	}
	return found[0], found[1], nil
}

func parseMeta(doc *goquery.Document) (t time.Time, withTime, ok bool) {
	text := strings.TrimSpace(doc.Find("div.scorebox_meta div").First().Text())
	for i, layout := range metaLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed, i == 0, true
		}
	}
	return time.Time{}, false, false
}

// dateFromID reads the YYYYMMDD prefix of a game id.
func dateFromID(gameID string) (time.Time, bool) {
	if len(gameID) < 8 {
		return time.Time{}, false
	}
	t, err := time.Parse("20060102", gameID[:8])
	return t, err == nil
}

// SeasonOf returns the season label ("2023-24") of a game date. Seasons
// start in October.
func SeasonOf(d time.Time) string {
	start := d.Year()
	if d.Month() < time.October {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// classify derives the game type and remarks from the page heading.
func classify(heading string) (gameType, remarks string) {
	h := strings.ToLower(heading)
	switch {
	case strings.Contains(h, "play-in"):
		return "play-in", ""
	case strings.Contains(h, "in-season tournament"), strings.Contains(h, "nba cup"):
		if strings.Contains(h, "championship") || strings.Contains(h, " final") {
			return "in-season tournament", "championship game"
		}
		return "in-season tournament", ""
	case strings.Contains(h, "finals"), strings.Contains(h, "round"), strings.Contains(h, "semifinals"):
		return "playoffs", ""
	}
	return "regular season", ""
}

func parsePlayers(table *goquery.Selection, base store.BoxScoreLine) []store.BoxScoreLine {
	var lines []store.BoxScoreLine
	starter := true
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.HasClass("thead") {
			starter = false
			return
		}
		name := strings.TrimSpace(tr.Find(`th[data-stat="player"]`).Text())
		if name == "" || name == "Reserves" {
			return
		}

		line := base.Clone()
		line["player_name"] = name
		line["starter"] = strconv.FormatBool(starter)
		if reason := strings.TrimSpace(tr.Find(`td[data-stat="reason"]`).Text()); reason != "" {
			line["mp"] = reason
		} else {
			readStats(tr, line)
		}
		lines = append(lines, line)
	})
	return lines
}

func readStats(tr *goquery.Selection, line store.BoxScoreLine) {
	tr.Find("td[data-stat]").Each(func(_ int, td *goquery.Selection) {
		stat, _ := td.Attr("data-stat")
		col, ok := statColumns[stat]
		if !ok {
			return
		}
		line[col] = strings.TrimPrefix(strings.TrimSpace(td.Text()), "+")
	})
}

func outcome(pts, opp sql.NullInt32) string {
	if !pts.Valid || !opp.Valid || pts.Int32 == opp.Int32 {
		return ""
	}
	if pts.Int32 > opp.Int32 {
		return "1"
	}
	return "0"
}
