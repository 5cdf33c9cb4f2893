package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/store"
)

func TestTeamDirectory_CachesTeams(t *testing.T) {
	src := &fakeSource{teams: []store.Team{{Name: "Boston Celtics", Abbreviation: "BOS"}}}
	dir := NewTeamDirectory(src, cache.NewLayered(nil, 16, time.Minute), testResolver(t))

	for i := 0; i < 3; i++ {
		list, err := dir.Teams(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "BOS", list[0].Abbreviation)
	}
	assert.Equal(t, 1, src.teamsCalls)

	dir.Invalidate(context.Background())
	_, err := dir.Teams(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.teamsCalls)
}

func TestTeamDirectory_FallsBackToHistory(t *testing.T) {
	dir := NewTeamDirectory(&fakeSource{}, nil, testResolver(t))

	list, err := dir.Teams(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 30)
}

func TestTeamDirectory_Resolve(t *testing.T) {
	dir := NewTeamDirectory(&fakeSource{}, nil, testResolver(t))

	r := dir.Resolve(context.Background(), "Charlotte Bobcats", time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "CHA", r.Abbreviation)
	assert.True(t, r.Known)
	assert.True(t, strings.HasSuffix(r.LogoURL, "/CHA.svg"))

	r = dir.Resolve(context.Background(), "Gotham Knights", time.Time{})
	assert.Equal(t, "GOT", r.Abbreviation)
	assert.False(t, r.Known)
}

func TestTeamDirectory_ResolverUsesTeamsList(t *testing.T) {
	src := &fakeSource{teams: []store.Team{{Name: "Phoenix Suns", Abbreviation: "PHO"}}}
	dir := NewTeamDirectory(src, nil, testResolver(t))

	assert.Equal(t, "PHO", dir.Resolver(context.Background()).Abbreviation("Phoenix Suns", time.Time{}))
}

func TestTeamDirectory_Seasons(t *testing.T) {
	src := &fakeSource{seasons: []string{"2023-24"}}
	dir := NewTeamDirectory(src, cache.NewLayered(nil, 16, time.Minute), testResolver(t))

	seasons, err := dir.Seasons(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-24"}, seasons)
}

func TestTeamReport(t *testing.T) {
	src := &fakeSource{teamCareer: boxTable(careerLines()...)}
	svc := NewTeamService(src, testResolver(t))

	rep, err := svc.Report(context.Background(), "bos", ReportOptions{GameType: "regular season"})
	require.NoError(t, err)

	assert.Equal(t, "BOS", rep.Abbreviation)
	assert.Equal(t, "Boston Celtics", rep.Team)
	assert.Equal(t, 2, rep.Record.Wins)
	assert.Equal(t, 1, rep.Record.Losses)
	assert.Equal(t, 3, rep.Overall.GamesPlayed)
	assert.Len(t, rep.BySeason, 2)
	assert.Len(t, rep.GameLog, 3)
	assert.Equal(t, []string{"LAL", "MIA"}, rep.Opponents)
}

func TestTeamReport_ByName(t *testing.T) {
	src := &fakeSource{teamCareer: boxTable(careerLines()...)}
	svc := NewTeamService(src, testResolver(t))

	rep, err := svc.Report(context.Background(), "Boston Celtics", ReportOptions{})
	require.NoError(t, err)
	assert.Equal(t, "BOS", rep.Abbreviation)
}

func TestTeamReport_NotFound(t *testing.T) {
	svc := NewTeamService(&fakeSource{}, testResolver(t))

	_, err := svc.Report(context.Background(), "XYZ", ReportOptions{})
	assert.True(t, errors.Is(err, store.ErrNotFound))
}
