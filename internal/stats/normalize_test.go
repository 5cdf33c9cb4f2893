package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCount(t *testing.T) {
	assert.Equal(t, 12, *ParseCount("12"))
	assert.Equal(t, 7, *ParseCount(" 7.0 "))
	assert.Nil(t, ParseCount(""))
	assert.Nil(t, ParseCount("abc"))
	assert.Nil(t, ParseCount("7.5"))
	assert.Nil(t, ParseCount("NaN"))
}

func TestParseFloat(t *testing.T) {
	assert.InDelta(t, 0.45, *ParseFloat("0.45"), 1e-9)
	assert.InDelta(t, 45.0, *ParseFloat("45%"), 1e-9)
	assert.Nil(t, ParseFloat(""))
	assert.Nil(t, ParseFloat("nan"))
	assert.Nil(t, ParseFloat("Inf"))
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "1.0", "true", "True", "t"} {
		assert.True(t, ParseBool(s), s)
	}
	for _, s := range []string{"0", "", "yes", "2", "false"} {
		assert.False(t, ParseBool(s), s)
	}
}

func TestParseMinutes(t *testing.T) {
	assert.Equal(t, 34*60+12, *ParseMinutes("34:12"))
	assert.Equal(t, 0, *ParseMinutes("Did Not Play"))
	assert.Equal(t, 1800, *ParseMinutes("30"))
	assert.Nil(t, ParseMinutes(""))
	assert.Nil(t, ParseMinutes("12:75"))
	assert.Nil(t, ParseMinutes("x:10"))
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2024-01-15")
	require.True(t, ok)
	assert.Equal(t, 15, d.Day())

	_, ok = ParseDate("2024-01-15T19:30:00Z")
	assert.True(t, ok)

	_, ok = ParseDate("not a date")
	assert.False(t, ok)
}

func TestNormalizePercentage(t *testing.T) {
	assert.InDelta(t, 0.45, *NormalizePercentage(ptr(45.0)), 1e-9)
	assert.InDelta(t, 0.45, *NormalizePercentage(ptr(0.45)), 1e-9)
	assert.InDelta(t, 1.0, *NormalizePercentage(ptr(1.0)), 1e-9)
	assert.Nil(t, NormalizePercentage(nil))
	assert.Nil(t, NormalizePercentage(ptr(math.NaN())))
}

func TestNormalizePercentage_Idempotent(t *testing.T) {
	for _, v := range []float64{0, 0.3, 1, 1.5, 45, 99.9, 100} {
		once := NormalizePercentage(ptr(v))
		twice := NormalizePercentage(once)
		require.NotNil(t, twice)
		assert.InDelta(t, *once, *twice, 1e-12, "value %v", v)
		assert.GreaterOrEqual(t, *twice, 0.0)
		assert.LessOrEqual(t, *twice, 1.0)
	}
}

func TestNormalizeBoxScores_TypesValues(t *testing.T) {
	raw := RawTable{
		Columns: []string{ColGameID, ColDate, ColPlayerName, ColStarter, ColMinutesPlayed,
			ColPoints, ColMadeFieldGoal, ColAttemptedFieldGoal, ColFieldGoalPercent,
			ColMadeThreePoint, ColAttemptedThreePoint, ColOutcome},
		Rows: []map[string]string{
			{
				ColGameID: "202401150LAL", ColDate: "2024-01-15", ColPlayerName: "A",
				ColStarter: "1", ColMinutesPlayed: "25:30", ColPoints: "22",
				ColMadeFieldGoal: "8", ColAttemptedFieldGoal: "16", ColFieldGoalPercent: "50",
				ColMadeThreePoint: "2", ColAttemptedThreePoint: "6", ColOutcome: "1",
			},
			{
				ColGameID: "202401170LAL", ColDate: "2024-01-17", ColPlayerName: "A",
				ColStarter: "0", ColMinutesPlayed: "Did Not Play", ColPoints: "",
				ColMadeFieldGoal: "", ColAttemptedFieldGoal: "", ColFieldGoalPercent: "",
				ColMadeThreePoint: "", ColAttemptedThreePoint: "", ColOutcome: "7",
			},
		},
	}

	s := NormalizeBoxScores(raw, StatPlayer)
	require.Equal(t, 2, s.Len())
	assert.True(t, s.Has(ColMadeTwoPoint))
	assert.True(t, s.Has(ColSecondsPlayed))

	r := s.Rows[0]
	assert.True(t, r.Starter)
	assert.Equal(t, 1530, *r.SecondsPlayed)
	assert.Equal(t, 22, *r.Points)
	assert.InDelta(t, 0.5, *r.FieldGoalPercent, 1e-9)
	assert.Equal(t, 6, *r.MadeTwoPoint)
	assert.Equal(t, 10, *r.AttemptedTwoPoint)
	assert.InDelta(t, 0.6, *r.TwoPointPercent, 1e-9)
	assert.Equal(t, 1, *r.Outcome)

	r = s.Rows[1]
	assert.False(t, r.Starter)
	assert.Equal(t, 0, *r.SecondsPlayed)
	assert.Nil(t, r.Points)
	assert.Nil(t, r.FieldGoalPercent)
	assert.Nil(t, r.MadeTwoPoint)
	assert.Nil(t, r.TwoPointPercent)
	assert.Nil(t, r.Outcome)
}

func TestNormalizeBoxScores_TwoPointZeroAttempts(t *testing.T) {
	s := playerSet(line{game: "g1", date: "2024-01-01", fgm: 3, fga: 3, tpm: 3, tpa: 3})
	r := s.Rows[0]
	assert.Equal(t, 0, *r.AttemptedTwoPoint)
	assert.Nil(t, r.TwoPointPercent)
}

func TestNormalizeBoxScores_TeamMinutes(t *testing.T) {
	raw := RawTable{
		Columns: []string{ColGameID, ColTeam, ColMinutesPlayed},
		Rows:    []map[string]string{{ColGameID: "g", ColTeam: "BOS", ColMinutesPlayed: "240"}},
	}
	s := NormalizeBoxScores(raw, StatTeam)
	assert.Equal(t, 240, *s.Rows[0].MinutesPlayed)
	assert.Nil(t, s.Rows[0].SecondsPlayed)
	assert.False(t, s.Has(ColSecondsPlayed))
}

func TestNormalizeBoxScores_DoesNotMutateInput(t *testing.T) {
	raw := RawTable{
		Columns: []string{ColGameID, ColPoints},
		Rows:    []map[string]string{{ColGameID: "g", ColPoints: "10"}},
	}
	_ = NormalizeBoxScores(raw, StatTeam)
	assert.Equal(t, []string{ColGameID, ColPoints}, raw.Columns)
	assert.Equal(t, "10", raw.Rows[0][ColPoints])
}

func TestNormalizeSchedule(t *testing.T) {
	raw := RawTable{
		Columns: []string{"id", ColDate, ColStartTime, ColHomeTeam, ColAwayTeam, ColHomePoints, ColAwayPoints},
		Rows: []map[string]string{{
			"id": "202401150BOS", ColDate: "2024-01-15", ColStartTime: "2024-01-15 19:30:00",
			ColHomeTeam: "Boston Celtics", ColAwayTeam: "Miami Heat",
			ColHomePoints: "110", ColAwayPoints: "",
		}},
	}
	s := NormalizeSchedule(raw)
	require.Equal(t, 1, s.Len())
	assert.True(t, s.Has(ColGameID))
	r := s.Rows[0]
	assert.Equal(t, "202401150BOS", r.GameID)
	assert.Equal(t, 19, r.StartTime.Hour())
	assert.Equal(t, 110, *r.HomePoints)
	assert.Nil(t, r.AwayPoints)
}

func TestRenameColumns(t *testing.T) {
	raw := RawTable{
		Columns: []string{"game_id", "pts", "fg_pct", "extra"},
		Rows:    []map[string]string{{"game_id": "g", "pts": "12", "fg_pct": "0.5", "extra": "x"}},
	}
	out := RenameColumns(raw, TeamColumns())

	assert.Equal(t, []string{"game_id", ColPoints, ColFieldGoalPercent, "extra"}, out.Columns)
	assert.Equal(t, "12", out.Rows[0][ColPoints])
	assert.Equal(t, "x", out.Rows[0]["extra"])
	assert.Equal(t, "12", raw.Rows[0]["pts"], "input untouched")
}

func TestPlayerColumns_AddsPlusMinus(t *testing.T) {
	assert.Equal(t, ColPlusMinus, PlayerColumns()["plus_minus"])
	_, ok := TeamColumns()["plus_minus"]
	assert.False(t, ok)
	assert.Equal(t, PlayerColumns(), StatPlayer.Columns())
}

func TestParseStatType(t *testing.T) {
	k, err := ParseStatType("Player")
	require.NoError(t, err)
	assert.Equal(t, StatPlayer, k)

	k, err = ParseStatType("teams")
	require.NoError(t, err)
	assert.Equal(t, StatTeam, k)

	_, err = ParseStatType("league")
	assert.ErrorIs(t, err, ErrUnknownStatType)
}
