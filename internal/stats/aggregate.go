package stats

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Dimension is one grouping column of an aggregation.
type Dimension int

const (
	ByPlayer Dimension = iota + 1
	ByTeam
	BySeason
	ByOpponent
)

func (d Dimension) column() string {
	switch d {
	case ByPlayer:
		return ColPlayerName
	case ByTeam:
		return ColTeam
	case BySeason:
		return ColSeason
	case ByOpponent:
		return ColOpponent
	}
	return ""
}

// GroupKey lists the dimensions to group by. An empty key aggregates the
// whole row set into a single record.
type GroupKey []Dimension

type groupID struct {
	player, team, season, opponent string
}

func (k GroupKey) idOf(r *BoxScoreRow) groupID {
	var id groupID
	for _, d := range k {
		switch d {
		case ByPlayer:
			id.player = r.PlayerName
		case ByTeam:
			id.team = r.Team
		case BySeason:
			id.season = r.Season
		case ByOpponent:
			id.opponent = r.Opponent
		}
	}
	return id
}

// Totals are summed counts over a group.
type Totals struct {
	Points    int `json:"points"`
	Rebounds  int `json:"rebounds"`
	Assists   int `json:"assists"`
	Steals    int `json:"steals"`
	Blocks    int `json:"blocks"`
	Turnovers int `json:"turnovers"`
	FGM       int `json:"fgm"`
	FGA       int `json:"fga"`
	TwoPM     int `json:"two_pm"`
	TwoPA     int `json:"two_pa"`
	ThreePM   int `json:"three_pm"`
	ThreePA   int `json:"three_pa"`
	FTM       int `json:"ftm"`
	FTA       int `json:"fta"`
}

// AggregateRecord is one group's rollup. Per-game fields are means over
// the group's non-null values; percentages are sum(makes)/sum(attempts)
// and null when nothing was attempted.
type AggregateRecord struct {
	Player   string `json:"player,omitempty"`
	Team     string `json:"team,omitempty"`
	Season   string `json:"season,omitempty"`
	Opponent string `json:"opponent,omitempty"`

	GamesPlayed int `json:"games_played"`

	PPG            *float64 `json:"ppg"`
	RPG            *float64 `json:"rpg"`
	ORPG           *float64 `json:"orpg"`
	DRPG           *float64 `json:"drpg"`
	APG            *float64 `json:"apg"`
	SPG            *float64 `json:"spg"`
	BPG            *float64 `json:"bpg"`
	TPG            *float64 `json:"tpg"`
	MinutesPerGame *float64 `json:"minutes_per_game,omitempty"`
	PointsAllowed  *float64 `json:"points_allowed,omitempty"`

	FGPerGame      *float64 `json:"fg_per_game"`
	FGAPerGame     *float64 `json:"fga_per_game"`
	TwoPPerGame    *float64 `json:"two_p_per_game"`
	TwoPAPerGame   *float64 `json:"two_pa_per_game"`
	ThreePPerGame  *float64 `json:"three_p_per_game"`
	ThreePAPerGame *float64 `json:"three_pa_per_game"`
	FTPerGame      *float64 `json:"ft_per_game"`
	FTAPerGame     *float64 `json:"fta_per_game"`

	FGPct     *float64 `json:"fg_pct"`
	TwoPPct   *float64 `json:"two_p_pct"`
	ThreePPct *float64 `json:"three_p_pct"`
	FTPct     *float64 `json:"ft_pct"`

	Totals Totals   `json:"totals"`
	Wins   int      `json:"wins"`
	Losses int      `json:"losses"`
	WinPct *float64 `json:"win_pct"`
}

// WinLoss is a win/loss record.
type WinLoss struct {
	Wins   int      `json:"wins"`
	Losses int      `json:"losses"`
	WinPct *float64 `json:"win_pct"`
}

// High is a single-game maximum and the first game reaching it.
type High struct {
	Value    *int      `json:"value"`
	Date     time.Time `json:"date"`
	Opponent string    `json:"opponent"`
}

// Highs are the tracked single-game maxima of a row set.
type Highs struct {
	Points            High `json:"points"`
	Rebounds          High `json:"rebounds"`
	Assists           High `json:"assists"`
	FieldGoalsMade    High `json:"field_goals_made"`
	ThreePointersMade High `json:"three_pointers_made"`
}

// requiredColumns must be present for any aggregation.
var requiredColumns = []string{
	ColGameID,
	ColPoints,
	ColRebounds,
	ColAssists,
	ColSteals,
	ColBlocks,
	ColTurnovers,
	ColMadeFieldGoal,
	ColAttemptedFieldGoal,
	ColMadeThreePoint,
	ColAttemptedThreePoint,
	ColMadeFreeThrow,
	ColAttemptedFreeThrow,
}

func requireColumns(cols ColumnSet, names ...string) error {
	for _, c := range names {
		if !cols.Has(c) {
			return &MissingColumnError{Column: c}
		}
	}
	return nil
}

// Aggregate produces one record per group, in order of each group's first
// row. An empty row set yields an empty slice.
func Aggregate(s RowSet[BoxScoreRow], key GroupKey) ([]AggregateRecord, error) {
	if len(s.Rows) == 0 {
		return []AggregateRecord{}, nil
	}
	if err := requireColumns(s.Columns, requiredColumns...); err != nil {
		return nil, err
	}
	for _, d := range key {
		if err := requireColumns(s.Columns, d.column()); err != nil {
			return nil, err
		}
	}

	var order []groupID
	groups := make(map[groupID][]*BoxScoreRow)
	for i := range s.Rows {
		r := &s.Rows[i]
		id := key.idOf(r)
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], r)
	}

	records := make([]AggregateRecord, 0, len(order))
	for _, id := range order {
		rec := aggregateGroup(groups[id])
		rec.Player, rec.Team, rec.Season, rec.Opponent = id.player, id.team, id.season, id.opponent
		records = append(records, rec)
	}
	return records, nil
}

// Overall aggregates the whole row set into one record. An empty row set
// yields a zero record.
func Overall(s RowSet[BoxScoreRow]) (AggregateRecord, error) {
	recs, err := Aggregate(s, nil)
	if err != nil || len(recs) == 0 {
		return AggregateRecord{}, err
	}
	return recs[0], nil
}

func aggregateGroup(rows []*BoxScoreRow) AggregateRecord {
	games := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		games[r.GameID] = struct{}{}
	}

	rec := AggregateRecord{
		GamesPlayed: len(games),

		PPG:  meanOf(rows, ColPoints),
		RPG:  meanOf(rows, ColRebounds),
		ORPG: meanOf(rows, ColOffensiveRebounds),
		DRPG: meanOf(rows, ColDefensiveRebounds),
		APG:  meanOf(rows, ColAssists),
		SPG:  meanOf(rows, ColSteals),
		BPG:  meanOf(rows, ColBlocks),
		TPG:  meanOf(rows, ColTurnovers),

		PointsAllowed: meanOf(rows, ColOppPoints),

		FGPerGame:      meanOf(rows, ColMadeFieldGoal),
		FGAPerGame:     meanOf(rows, ColAttemptedFieldGoal),
		TwoPPerGame:    meanOf(rows, ColMadeTwoPoint),
		TwoPAPerGame:   meanOf(rows, ColAttemptedTwoPoint),
		ThreePPerGame:  meanOf(rows, ColMadeThreePoint),
		ThreePAPerGame: meanOf(rows, ColAttemptedThreePoint),
		FTPerGame:      meanOf(rows, ColMadeFreeThrow),
		FTAPerGame:     meanOf(rows, ColAttemptedFreeThrow),

		FGPct:     shootingPct(rows, ColMadeFieldGoal, ColAttemptedFieldGoal),
		TwoPPct:   shootingPct(rows, ColMadeTwoPoint, ColAttemptedTwoPoint),
		ThreePPct: shootingPct(rows, ColMadeThreePoint, ColAttemptedThreePoint),
		FTPct:     shootingPct(rows, ColMadeFreeThrow, ColAttemptedFreeThrow),

		Totals: Totals{
			Points:    sumOf(rows, ColPoints),
			Rebounds:  sumOf(rows, ColRebounds),
			Assists:   sumOf(rows, ColAssists),
			Steals:    sumOf(rows, ColSteals),
			Blocks:    sumOf(rows, ColBlocks),
			Turnovers: sumOf(rows, ColTurnovers),
			FGM:       sumOf(rows, ColMadeFieldGoal),
			FGA:       sumOf(rows, ColAttemptedFieldGoal),
			TwoPM:     sumOf(rows, ColMadeTwoPoint),
			TwoPA:     sumOf(rows, ColAttemptedTwoPoint),
			ThreePM:   sumOf(rows, ColMadeThreePoint),
			ThreePA:   sumOf(rows, ColAttemptedThreePoint),
			FTM:       sumOf(rows, ColMadeFreeThrow),
			FTA:       sumOf(rows, ColAttemptedFreeThrow),
		},
	}

	if secs := meanOf(rows, ColSecondsPlayed); secs != nil {
		rec.MinutesPerGame = floatPtr(*secs / 60)
	}

	wl := recordOf(rows)
	rec.Wins, rec.Losses, rec.WinPct = wl.Wins, wl.Losses, wl.WinPct
	return rec
}

// TotalsSummary is a row set's summed counts alongside its record.
type TotalsSummary struct {
	GamesPlayed int    `json:"games_played"`
	Totals      Totals `json:"totals"`
	WinLoss
}

// Summary totals the whole row set.
func Summary(s RowSet[BoxScoreRow]) (TotalsSummary, error) {
	rec, err := Overall(s)
	if err != nil {
		return TotalsSummary{}, err
	}
	return TotalsSummary{
		GamesPlayed: rec.GamesPlayed,
		Totals:      rec.Totals,
		WinLoss:     WinLoss{Wins: rec.Wins, Losses: rec.Losses, WinPct: rec.WinPct},
	}, nil
}

// Record counts wins (outcome 1) and losses (outcome 0). Rows without an
// outcome count as neither.
func Record(s RowSet[BoxScoreRow]) WinLoss {
	rows := make([]*BoxScoreRow, len(s.Rows))
	for i := range s.Rows {
		rows[i] = &s.Rows[i]
	}
	return recordOf(rows)
}

func recordOf(rows []*BoxScoreRow) WinLoss {
	var wl WinLoss
	for _, r := range rows {
		if r.Outcome == nil {
			continue
		}
		switch *r.Outcome {
		case 1:
			wl.Wins++
		case 0:
			wl.Losses++
		}
	}
	wl.WinPct = ratio(float64(wl.Wins), float64(wl.Wins+wl.Losses))
	return wl
}

// CareerHighs finds the maximum points, rebounds, assists, field goals
// made and three-pointers made, each with the date and opponent of the
// first row reaching it.
func CareerHighs(s RowSet[BoxScoreRow]) (Highs, error) {
	if len(s.Rows) == 0 {
		return Highs{}, nil
	}
	if err := requireColumns(s.Columns, ColPoints, ColRebounds, ColAssists, ColMadeFieldGoal, ColMadeThreePoint); err != nil {
		return Highs{}, err
	}
	return Highs{
		Points:            highOf(s.Rows, ColPoints),
		Rebounds:          highOf(s.Rows, ColRebounds),
		Assists:           highOf(s.Rows, ColAssists),
		FieldGoalsMade:    highOf(s.Rows, ColMadeFieldGoal),
		ThreePointersMade: highOf(s.Rows, ColMadeThreePoint),
	}, nil
}

func highOf(rows []BoxScoreRow, col string) High {
	var h High
	for i := range rows {
		v := intValue(&rows[i], col)
		if v == nil {
			continue
		}
		if h.Value == nil || *v > *h.Value {
			h = High{Value: intPtr(*v), Date: rows[i].Date, Opponent: rows[i].Opponent}
		}
	}
	return h
}

func valuesOf(rows []*BoxScoreRow, col string) []float64 {
	xs := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v := intValue(r, col); v != nil {
			xs = append(xs, float64(*v))
		}
	}
	return xs
}

func meanOf(rows []*BoxScoreRow, col string) *float64 {
	xs := valuesOf(rows, col)
	if len(xs) == 0 {
		return nil
	}
	return floatPtr(stat.Mean(xs, nil))
}

func sumOf(rows []*BoxScoreRow, col string) int {
	return int(floats.Sum(valuesOf(rows, col)))
}

func shootingPct(rows []*BoxScoreRow, made, attempted string) *float64 {
	return ratio(floats.Sum(valuesOf(rows, made)), floats.Sum(valuesOf(rows, attempted)))
}
