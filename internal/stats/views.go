package stats

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Location split labels.
const (
	SplitOverall = "Overall"
	SplitHome    = "Home"
	SplitAway    = "Away"
)

// SplitValue is one labelled value of a split view.
type SplitValue struct {
	Label string   `json:"label"`
	Value *float64 `json:"value"`
	Games int      `json:"games"`
}

// ShootingLine is made/attempted/percentage for one shot category.
type ShootingLine struct {
	Made             int      `json:"made"`
	Attempted        int      `json:"attempted"`
	MadePerGame      *float64 `json:"made_per_game"`
	AttemptedPerGame *float64 `json:"attempted_per_game"`
	Pct              *float64 `json:"pct"`
}

// ShootingSeason is a season's breakdown across the four shot categories.
type ShootingSeason struct {
	Season      string       `json:"season"`
	GamesPlayed int          `json:"games_played"`
	FieldGoal   ShootingLine `json:"field_goal"`
	TwoPoint    ShootingLine `json:"two_point"`
	ThreePoint  ShootingLine `json:"three_point"`
	FreeThrow   ShootingLine `json:"free_throw"`
}

// GameLogEntry is a box score line with its result from the row's side.
type GameLogEntry struct {
	BoxScoreRow
	Result  string `json:"result"`
	Minutes string `json:"minutes,omitempty"`
}

// SeasonTrend aggregates per season, ordered by season ascending.
func SeasonTrend(s RowSet[BoxScoreRow]) ([]AggregateRecord, error) {
	recs, err := Aggregate(s, GroupKey{BySeason})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Season < recs[j].Season })
	return recs, nil
}

// OpponentSplits aggregates per opponent, ordered by opponent.
func OpponentSplits(s RowSet[BoxScoreRow]) ([]AggregateRecord, error) {
	recs, err := Aggregate(s, GroupKey{ByOpponent})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Opponent < recs[j].Opponent })
	return recs, nil
}

// LocationSplit is the mean of metric over all rows, home rows, away rows
// and, when opponent is set, rows against that opponent. Each value is
// computed independently; they need not reconcile with Overall.
func LocationSplit(s RowSet[BoxScoreRow], metric Metric, opponent string) []SplitValue {
	out := []SplitValue{}
	if len(s.Rows) == 0 {
		return out
	}
	for _, sub := range locationSubsets(s.Rows, opponent) {
		var xs []float64
		for i := range sub.rows {
			if v := metric.Value(&sub.rows[i]); v != nil {
				xs = append(xs, *v)
			}
		}
		sv := SplitValue{Label: sub.label, Games: len(sub.rows)}
		if len(xs) > 0 {
			sv.Value = floatPtr(stat.Mean(xs, nil))
		}
		out = append(out, sv)
	}
	return out
}

// WinPctSplit is the win percentage over the same subsets as
// LocationSplit. A subset with no decided games has a null value.
func WinPctSplit(s RowSet[BoxScoreRow], opponent string) []SplitValue {
	out := []SplitValue{}
	if len(s.Rows) == 0 {
		return out
	}
	for _, sub := range locationSubsets(s.Rows, opponent) {
		wl := Record(RowSet[BoxScoreRow]{Columns: s.Columns, Rows: sub.rows})
		out = append(out, SplitValue{Label: sub.label, Value: wl.WinPct, Games: wl.Wins + wl.Losses})
	}
	return out
}

type subset struct {
	label string
	rows  []BoxScoreRow
}

func locationSubsets(rows []BoxScoreRow, opponent string) []subset {
	home := subset{label: SplitHome}
	away := subset{label: SplitAway}
	for _, r := range rows {
		switch r.Location {
		case "home":
			home.rows = append(home.rows, r)
		case "away":
			away.rows = append(away.rows, r)
		}
	}
	subs := []subset{{label: SplitOverall, rows: rows}, home, away}

	if opponent != "" && opponent != AllTeams {
		vs := subset{label: "vs " + opponent}
		for _, r := range rows {
			if r.Opponent == opponent {
				vs.rows = append(vs.rows, r)
			}
		}
		subs = append(subs, vs)
	}
	return subs
}

// ShootingBreakdown reports per-season shooting for field goals,
// two-pointers, three-pointers and free throws, ordered by season. Each
// percentage is sum(makes)/sum(attempts) for its own category.
func ShootingBreakdown(s RowSet[BoxScoreRow]) ([]ShootingSeason, error) {
	recs, err := SeasonTrend(s)
	if err != nil {
		return nil, err
	}
	out := make([]ShootingSeason, 0, len(recs))
	for _, r := range recs {
		out = append(out, ShootingSeason{
			Season:      r.Season,
			GamesPlayed: r.GamesPlayed,
			FieldGoal: ShootingLine{
				Made: r.Totals.FGM, Attempted: r.Totals.FGA,
				MadePerGame: r.FGPerGame, AttemptedPerGame: r.FGAPerGame, Pct: r.FGPct,
			},
			TwoPoint: ShootingLine{
				Made: r.Totals.TwoPM, Attempted: r.Totals.TwoPA,
				MadePerGame: r.TwoPPerGame, AttemptedPerGame: r.TwoPAPerGame, Pct: r.TwoPPct,
			},
			ThreePoint: ShootingLine{
				Made: r.Totals.ThreePM, Attempted: r.Totals.ThreePA,
				MadePerGame: r.ThreePPerGame, AttemptedPerGame: r.ThreePAPerGame, Pct: r.ThreePPct,
			},
			FreeThrow: ShootingLine{
				Made: r.Totals.FTM, Attempted: r.Totals.FTA,
				MadePerGame: r.FTPerGame, AttemptedPerGame: r.FTAPerGame, Pct: r.FTPct,
			},
		})
	}
	return out, nil
}

// GameLog lists rows newest first with a W/L result. The result comes from
// the outcome when present, otherwise from the final score and location.
func GameLog(s RowSet[BoxScoreRow]) []GameLogEntry {
	out := make([]GameLogEntry, 0, len(s.Rows))
	for _, r := range s.Rows {
		e := GameLogEntry{BoxScoreRow: r, Result: resultOf(r)}
		if r.SecondsPlayed != nil {
			e.Minutes = FormatClock(*r.SecondsPlayed)
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func resultOf(r BoxScoreRow) string {
	if r.Outcome != nil {
		if *r.Outcome == 1 {
			return "W"
		}
		return "L"
	}
	if r.HomePoints == nil || r.AwayPoints == nil {
		return ""
	}
	home := *r.HomePoints > *r.AwayPoints
	switch {
	case r.Location == "home", r.Team != "" && r.Team == r.HomeAbbr:
		return winLoss(home)
	case r.Location == "away", r.Team != "" && r.Team == r.AwayAbbr:
		return winLoss(*r.AwayPoints > *r.HomePoints)
	}
	return ""
}

func winLoss(won bool) string {
	if won {
		return "W"
	}
	return "L"
}

// SeasonLeaders orders season records for a leaderboard. Players below
// minGames are dropped and the rest ordered by points per game; teams are
// ordered by wins.
func SeasonLeaders(recs []AggregateRecord, kind StatType, minGames int) []AggregateRecord {
	out := make([]AggregateRecord, 0, len(recs))
	for _, r := range recs {
		if kind == StatPlayer && minGames > 0 && r.GamesPlayed < minGames {
			continue
		}
		out = append(out, r)
	}

	switch kind {
	case StatPlayer:
		sort.SliceStable(out, func(i, j int) bool { return deref(out[i].PPG) > deref(out[j].PPG) })
	case StatTeam:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Wins > out[j].Wins })
	}
	return out
}

// LastPlayed returns the most recent game date in the row set.
func LastPlayed(s RowSet[BoxScoreRow]) time.Time {
	var last time.Time
	for _, r := range s.Rows {
		if r.Date.After(last) {
			last = r.Date
		}
	}
	return last
}

func deref(v *float64) float64 {
	if v == nil {
		return -1
	}
	return *v
}
