package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/courtside/internal/stats"
	"github.com/fortuna/courtside/internal/store"
)

func TestPlayerReport_FilteredViews(t *testing.T) {
	src := &fakeSource{career: boxTable(careerLines()...)}
	svc := NewPlayerService(src, testResolver(t))

	rep, err := svc.Report(context.Background(), "jayson tatum", ReportOptions{
		Season:   "2023-24",
		GameType: "regular season",
		Opponent: "LAL",
	})
	require.NoError(t, err)

	assert.Equal(t, "Jayson Tatum", rep.Player)
	assert.Equal(t, "https://cdn.nba.com/headshots/nba/latest/260x190/1628369.png", rep.PhotoURL)
	assert.Equal(t, []string{"2023-24", "2022-23"}, rep.Seasons)
	assert.Equal(t, []string{"LAL", "MIA"}, rep.Opponents)
	assert.Equal(t, stats.MetricPoints, rep.Metric)
	assert.Equal(t, 2024, rep.LastPlayed.Year())

	// g3 only
	assert.Equal(t, 1, rep.Overall.GamesPlayed)
	require.NotNil(t, rep.Overall.PPG)
	assert.InDelta(t, 10.0, *rep.Overall.PPG, 1e-9)
	require.Len(t, rep.GameLog, 1)
	assert.Equal(t, "W", rep.GameLog[0].Result)
	assert.Equal(t, "36:00", rep.GameLog[0].Minutes)

	// season filter dropped: g1 and g3
	require.Len(t, rep.Trend, 2)
	assert.Equal(t, "2022-23", rep.Trend[0].Season)
	assert.Equal(t, "2023-24", rep.Trend[1].Season)

	labels := make([]string, 0, len(rep.LocationSplit))
	for _, sv := range rep.LocationSplit {
		labels = append(labels, sv.Label)
	}
	assert.Equal(t, []string{"Overall", "Home", "Away", "vs LAL"}, labels)
}

func TestPlayerReport_NoFilters(t *testing.T) {
	src := &fakeSource{career: boxTable(careerLines()...)}
	svc := NewPlayerService(src, testResolver(t))

	rep, err := svc.Report(context.Background(), "Jayson Tatum", ReportOptions{Metric: stats.MetricRebounds})
	require.NoError(t, err)

	assert.Equal(t, 4, rep.Overall.GamesPlayed)
	assert.Equal(t, 3, rep.Summary.Wins)
	assert.Equal(t, 1, rep.Summary.Losses)
	assert.Equal(t, 100, rep.Summary.Totals.Points)
	require.NotNil(t, rep.Highs.Points.Value)
	assert.Equal(t, 40, *rep.Highs.Points.Value)
	assert.Len(t, rep.VsOpponents, 2)
	assert.Len(t, rep.BySeasonTeam, 2)

	require.NotEmpty(t, rep.LocationSplit)
	require.NotNil(t, rep.LocationSplit[0].Value)
	assert.InDelta(t, 8.0, *rep.LocationSplit[0].Value, 1e-9)

	require.Len(t, rep.GameLog, 4)
	assert.Equal(t, "g4", rep.GameLog[0].GameID)
}

func TestPlayerReport_EmptyFilterResult(t *testing.T) {
	src := &fakeSource{career: boxTable(careerLines()...)}
	svc := NewPlayerService(src, testResolver(t))

	rep, err := svc.Report(context.Background(), "Jayson Tatum", ReportOptions{Season: "1999-00"})
	require.NoError(t, err)

	assert.Equal(t, 0, rep.Overall.GamesPlayed)
	assert.Empty(t, rep.GameLog)
	assert.Empty(t, rep.LocationSplit)
	assert.Len(t, rep.Trend, 2, "trend ignores the season filter")
}

func TestPlayerReport_NotFound(t *testing.T) {
	src := &fakeSource{career: boxTable()}
	svc := NewPlayerService(src, testResolver(t))

	_, err := svc.Report(context.Background(), "Nobody", ReportOptions{})
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestPlayerReport_SourceError(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewPlayerService(&fakeSource{err: boom}, testResolver(t))

	_, err := svc.Report(context.Background(), "Jayson Tatum", ReportOptions{})
	assert.ErrorIs(t, err, boom)
}

func TestPlayerReport_MissingColumn(t *testing.T) {
	career := boxTable(careerLines()...)
	cols := make([]string, 0, len(career.Columns))
	for _, c := range career.Columns {
		if c != "trb" {
			cols = append(cols, c)
		}
	}
	career.Columns = cols

	svc := NewPlayerService(&fakeSource{career: career}, testResolver(t))
	_, err := svc.Report(context.Background(), "Jayson Tatum", ReportOptions{})

	var missing *stats.MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, stats.ColRebounds, missing.Column)
}

func TestPlayerSearch(t *testing.T) {
	svc := NewPlayerService(&fakeSource{}, testResolver(t))
	names, err := svc.Search(context.Background(), "tat", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jayson Tatum"}, names)
}
