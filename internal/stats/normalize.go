package stats

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Minutes-played values meaning the player did not take the floor.
var dnpTokens = map[string]struct{}{
	"did not play":     {},
	"not with team":    {},
	"did not dress":    {},
	"player suspended": {},
}

var truthyTokens = map[string]struct{}{
	"1":    {},
	"1.0":  {},
	"true": {},
	"t":    {},
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05.999999-07",
}

// ParseCount parses an integer count. Blank or malformed input is null.
func ParseCount(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	return intPtr(int(f))
}

// ParseFloat parses a float, tolerating a trailing percent sign. NaN and
// infinities are null.
func ParseFloat(s string) *float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// ParseBool is true only for an exact truthy token ("1", "true", "t").
func ParseBool(s string) bool {
	_, ok := truthyTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// ParseMinutes converts a "MM:SS" minutes-played value to seconds. DNP
// markers count as zero; a bare number is taken as minutes.
func ParseMinutes(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, ok := dnpTokens[strings.ToLower(s)]; ok {
		return intPtr(0)
	}
	if mins, secs, ok := strings.Cut(s, ":"); ok {
		m, err := strconv.Atoi(mins)
		if err != nil || m < 0 {
			return nil
		}
		sec, err := strconv.Atoi(secs)
		if err != nil || sec < 0 || sec >= 60 {
			return nil
		}
		return intPtr(m*60 + sec)
	}
	f := ParseFloat(s)
	if f == nil || *f < 0 {
		return nil
	}
	return intPtr(int(math.Round(*f * 60)))
}

// ParseDate accepts ISO dates and the timestamp renderings the database
// driver produces. The second result is false when s is blank or malformed.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizePercentage maps a percentage into [0,1]: values above 1 are
// divided by 100. NaN becomes null. Applying it twice is the same as once
// for any input up to 100.
func NormalizePercentage(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	if *v > 1.0 {
		return floatPtr(*v / 100.0)
	}
	return floatPtr(*v)
}

// IsPercentColumn reports whether a column name carries a percentage suffix.
func IsPercentColumn(col string) bool {
	return strings.HasSuffix(col, "_pct") || strings.HasSuffix(col, "_percent")
}

// NormalizeBoxScores types a renamed box score table. Count columns become
// integers, percentage columns floats in [0,1], "starter" a boolean.
// Unparseable values become null. Two-point makes and attempts are always
// derived from field goals minus three-pointers.
func NormalizeBoxScores(t RawTable, kind StatType) RowSet[BoxScoreRow] {
	cols := NewColumnSet(t.Columns...)
	if cols.Has("id") && !cols.Has(ColGameID) {
		cols[ColGameID] = struct{}{}
	}
	derivesTwo := cols.Has(ColMadeFieldGoal) && cols.Has(ColMadeThreePoint) &&
		cols.Has(ColAttemptedFieldGoal) && cols.Has(ColAttemptedThreePoint)
	if derivesTwo {
		cols[ColMadeTwoPoint] = struct{}{}
		cols[ColAttemptedTwoPoint] = struct{}{}
		cols[ColTwoPointPercent] = struct{}{}
	}
	if kind == StatPlayer && (cols.Has(ColMinutesPlayed) || cols.Has(ColSecondsPlayed)) {
		cols[ColSecondsPlayed] = struct{}{}
	}

	rows := make([]BoxScoreRow, 0, len(t.Rows))
	for _, raw := range t.Rows {
		r := BoxScoreRow{Game: gameFrom(raw)}
		r.PlayerName = strings.TrimSpace(raw[ColPlayerName])
		r.PlayerID = strings.TrimSpace(raw[ColPlayerID])
		r.Team = strings.TrimSpace(raw[ColTeam])
		r.Opponent = strings.TrimSpace(raw[ColOpponent])
		r.Location = strings.ToLower(strings.TrimSpace(raw[ColLocation]))
		r.Starter = ParseBool(raw[ColStarter])

		for col, field := range countFields {
			if cols.Has(col) {
				*field(&r) = ParseCount(raw[col])
			}
		}
		for col, field := range percentFields {
			if cols.Has(col) {
				*field(&r) = NormalizePercentage(ParseFloat(raw[col]))
			}
		}

		if o := ParseCount(raw[ColOutcome]); o != nil && (*o == 0 || *o == 1) {
			r.Outcome = o
		}

		switch kind {
		case StatPlayer:
			if v, ok := raw[ColSecondsPlayed]; ok && strings.TrimSpace(v) != "" {
				r.SecondsPlayed = ParseCount(v)
			} else {
				r.SecondsPlayed = ParseMinutes(raw[ColMinutesPlayed])
			}
		case StatTeam:
			r.MinutesPlayed = ParseCount(raw[ColMinutesPlayed])
		}

		if derivesTwo {
			deriveTwoPoint(&r)
		}
		rows = append(rows, r)
	}

	return RowSet[BoxScoreRow]{Columns: cols, Rows: rows}
}

// NormalizeSchedule types a schedule table.
func NormalizeSchedule(t RawTable) RowSet[ScheduleRow] {
	cols := NewColumnSet(t.Columns...)
	if cols.Has("id") {
		cols[ColGameID] = struct{}{}
	}

	rows := make([]ScheduleRow, 0, len(t.Rows))
	for _, raw := range t.Rows {
		row := ScheduleRow{Game: gameFrom(raw)}
		if ts, ok := ParseDate(raw[ColStartTime]); ok {
			row.StartTime = ts
		}
		rows = append(rows, row)
	}
	return RowSet[ScheduleRow]{Columns: cols, Rows: rows}
}

func gameFrom(raw map[string]string) Game {
	g := Game{
		GameID:     strings.TrimSpace(raw[ColGameID]),
		Season:     strings.TrimSpace(raw[ColSeason]),
		GameType:   strings.TrimSpace(raw[ColGameType]),
		Remarks:    strings.TrimSpace(raw[ColRemarks]),
		HomeTeam:   strings.TrimSpace(raw[ColHomeTeam]),
		AwayTeam:   strings.TrimSpace(raw[ColAwayTeam]),
		HomeAbbr:   strings.TrimSpace(raw[ColHomeAbbr]),
		AwayAbbr:   strings.TrimSpace(raw[ColAwayAbbr]),
		HomePoints: ParseCount(raw[ColHomePoints]),
		AwayPoints: ParseCount(raw[ColAwayPoints]),
	}
	if g.GameID == "" {
		g.GameID = strings.TrimSpace(raw["id"])
	}
	if d, ok := ParseDate(raw[ColDate]); ok {
		g.Date = d
	}
	return g
}

func deriveTwoPoint(r *BoxScoreRow) {
	r.MadeTwoPoint, r.AttemptedTwoPoint, r.TwoPointPercent = nil, nil, nil
	if r.MadeFieldGoal != nil && r.MadeThreePoint != nil {
		r.MadeTwoPoint = intPtr(*r.MadeFieldGoal - *r.MadeThreePoint)
	}
	if r.AttemptedFieldGoal != nil && r.AttemptedThreePoint != nil {
		r.AttemptedTwoPoint = intPtr(*r.AttemptedFieldGoal - *r.AttemptedThreePoint)
	}
	if r.MadeTwoPoint != nil && r.AttemptedTwoPoint != nil {
		r.TwoPointPercent = ratio(float64(*r.MadeTwoPoint), float64(*r.AttemptedTwoPoint))
	}
}

// ratio is made/attempted, null when nothing was attempted.
func ratio(made, attempted float64) *float64 {
	if attempted == 0 {
		return nil
	}
	return floatPtr(made / attempted)
}
