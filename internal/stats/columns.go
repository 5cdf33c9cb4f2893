package stats

// ColumnMapping renames raw source columns to canonical names.
type ColumnMapping map[string]string

// TeamColumns returns the team box score mapping.
func TeamColumns() ColumnMapping {
	return ColumnMapping{
		"pts":         ColPoints,
		"mp":          ColMinutesPlayed,
		"fg":          ColMadeFieldGoal,
		"fga":         ColAttemptedFieldGoal,
		"fg_pct":      ColFieldGoalPercent,
		"three_p":     ColMadeThreePoint,
		"three_pa":    ColAttemptedThreePoint,
		"three_p_pct": ColThreePointPercent,
		"two_p":       ColMadeTwoPoint,
		"two_pa":      ColAttemptedTwoPoint,
		"two_p_pct":   ColTwoPointPercent,
		"ft":          ColMadeFreeThrow,
		"fta":         ColAttemptedFreeThrow,
		"ft_pct":      ColFreeThrowPercent,
		"orb":         ColOffensiveRebounds,
		"drb":         ColDefensiveRebounds,
		"trb":         ColRebounds,
		"ast":         ColAssists,
		"stl":         ColSteals,
		"blk":         ColBlocks,
		"tov":         ColTurnovers,
		"pf":          ColPersonalFouls,
	}
}

// PlayerColumns returns the player box score mapping. "starter" and
// "plus_minus" keep their names.
func PlayerColumns() ColumnMapping {
	m := TeamColumns()
	m["plus_minus"] = ColPlusMinus
	return m
}

// Columns returns the mapping for the box score granularity.
func (k StatType) Columns() ColumnMapping {
	switch k {
	case StatTeam:
		return TeamColumns()
	case StatPlayer:
		return PlayerColumns()
	}
	return ColumnMapping{}
}

// RenameColumns renames the mapped columns present in t. Unmapped columns
// pass through and mapped columns absent from t are skipped. The input is
// not modified.
func RenameColumns(t RawTable, m ColumnMapping) RawTable {
	out := RawTable{
		Columns: make([]string, len(t.Columns)),
		Rows:    make([]map[string]string, len(t.Rows)),
	}
	for i, c := range t.Columns {
		out.Columns[i] = rename(c, m)
	}
	for i, row := range t.Rows {
		renamed := make(map[string]string, len(row))
		for k, v := range row {
			renamed[rename(k, m)] = v
		}
		out.Rows[i] = renamed
	}
	return out
}

func rename(col string, m ColumnMapping) string {
	if to, ok := m[col]; ok {
		return to
	}
	return col
}

// countFields addresses the integer stat columns of a BoxScoreRow.
var countFields = map[string]func(*BoxScoreRow) **int{
	ColPoints:              func(r *BoxScoreRow) **int { return &r.Points },
	ColRebounds:            func(r *BoxScoreRow) **int { return &r.Rebounds },
	ColOffensiveRebounds:   func(r *BoxScoreRow) **int { return &r.OffensiveRebounds },
	ColDefensiveRebounds:   func(r *BoxScoreRow) **int { return &r.DefensiveRebounds },
	ColAssists:             func(r *BoxScoreRow) **int { return &r.Assists },
	ColSteals:              func(r *BoxScoreRow) **int { return &r.Steals },
	ColBlocks:              func(r *BoxScoreRow) **int { return &r.Blocks },
	ColTurnovers:           func(r *BoxScoreRow) **int { return &r.Turnovers },
	ColPersonalFouls:       func(r *BoxScoreRow) **int { return &r.PersonalFouls },
	ColPlusMinus:           func(r *BoxScoreRow) **int { return &r.PlusMinus },
	ColMadeFieldGoal:       func(r *BoxScoreRow) **int { return &r.MadeFieldGoal },
	ColAttemptedFieldGoal:  func(r *BoxScoreRow) **int { return &r.AttemptedFieldGoal },
	ColMadeThreePoint:      func(r *BoxScoreRow) **int { return &r.MadeThreePoint },
	ColAttemptedThreePoint: func(r *BoxScoreRow) **int { return &r.AttemptedThreePoint },
	ColMadeFreeThrow:       func(r *BoxScoreRow) **int { return &r.MadeFreeThrow },
	ColAttemptedFreeThrow:  func(r *BoxScoreRow) **int { return &r.AttemptedFreeThrow },
	ColOppPoints:           func(r *BoxScoreRow) **int { return &r.OpponentPoints },
}

// percentFields addresses the percentage columns of a BoxScoreRow.
var percentFields = map[string]func(*BoxScoreRow) **float64{
	ColFieldGoalPercent:  func(r *BoxScoreRow) **float64 { return &r.FieldGoalPercent },
	ColThreePointPercent: func(r *BoxScoreRow) **float64 { return &r.ThreePointPercent },
	ColFreeThrowPercent:  func(r *BoxScoreRow) **float64 { return &r.FreeThrowPercent },
}

// intValue reads a count column; derived two-point columns included.
func intValue(r *BoxScoreRow, col string) *int {
	switch col {
	case ColMadeTwoPoint:
		return r.MadeTwoPoint
	case ColAttemptedTwoPoint:
		return r.AttemptedTwoPoint
	case ColSecondsPlayed:
		return r.SecondsPlayed
	case ColMinutesPlayed:
		return r.MinutesPlayed
	case ColOutcome:
		return r.Outcome
	}
	if f, ok := countFields[col]; ok {
		return *f(r)
	}
	return nil
}
