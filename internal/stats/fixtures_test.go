package stats

import (
	"strconv"
)

var playerTestColumns = []string{
	ColGameID, ColDate, ColSeason, ColGameType, ColRemarks,
	ColPlayerName, ColTeam, ColOpponent, ColLocation, ColStarter,
	ColMinutesPlayed, ColPoints, ColRebounds, ColAssists, ColSteals,
	ColBlocks, ColTurnovers, ColMadeFieldGoal, ColAttemptedFieldGoal,
	ColMadeThreePoint, ColAttemptedThreePoint, ColMadeFreeThrow,
	ColAttemptedFreeThrow, ColOutcome,
}

type line struct {
	game, date, season, gameType, remarks string
	player, team, opp, loc                string
	pts, fgm, fga, tpm, tpa               int
	outcome                               string
}

func (l line) raw() map[string]string {
	gt := l.gameType
	if gt == "" {
		gt = "regular season"
	}
	player := l.player
	if player == "" {
		player = "Test Player"
	}
	return map[string]string{
		ColGameID:              l.game,
		ColDate:                l.date,
		ColSeason:              l.season,
		ColGameType:            gt,
		ColRemarks:             l.remarks,
		ColPlayerName:          player,
		ColTeam:                l.team,
		ColOpponent:            l.opp,
		ColLocation:            l.loc,
		ColStarter:             "true",
		ColMinutesPlayed:       "30:00",
		ColPoints:              strconv.Itoa(l.pts),
		ColRebounds:            "5",
		ColAssists:             "4",
		ColSteals:              "1",
		ColBlocks:              "0",
		ColTurnovers:           "2",
		ColMadeFieldGoal:       strconv.Itoa(l.fgm),
		ColAttemptedFieldGoal:  strconv.Itoa(l.fga),
		ColMadeThreePoint:      strconv.Itoa(l.tpm),
		ColAttemptedThreePoint: strconv.Itoa(l.tpa),
		ColMadeFreeThrow:       "2",
		ColAttemptedFreeThrow:  "2",
		ColOutcome:             l.outcome,
	}
}

func playerSet(lines ...line) RowSet[BoxScoreRow] {
	t := RawTable{Columns: playerTestColumns}
	for _, l := range lines {
		t.Rows = append(t.Rows, l.raw())
	}
	return NormalizeBoxScores(t, StatPlayer)
}

func ptr[T any](v T) *T { return &v }

// teamSet builds team-level rows: no player column, minutes as whole
// team minutes.
func teamSet(lines ...line) RowSet[BoxScoreRow] {
	cols := make([]string, 0, len(playerTestColumns))
	for _, c := range playerTestColumns {
		if c != ColPlayerName {
			cols = append(cols, c)
		}
	}
	t := RawTable{Columns: cols}
	for _, l := range lines {
		r := l.raw()
		delete(r, ColPlayerName)
		r[ColMinutesPlayed] = "240"
		t.Rows = append(t.Rows, r)
	}
	return NormalizeBoxScores(t, StatTeam)
}
