package predictions

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `{
  "metadata": {"generated_at": "2025-01-01T08:00:00", "model": "xgb", "version": "1.2", "game_count": 3},
  "games": [
    {"date": "2025-01-05",
     "teams": {"home": {"name": "Boston Celtics", "abbreviation": "BOS", "win_probability": 0.64},
               "away": {"name": "Miami Heat", "abbreviation": "MIA", "win_probability": 0.36}},
     "prediction": {"winner_name": "Boston Celtics"},
     "matchup_stats": {"h2h_games_played": 12, "h2h_win_pct": 0.58, "days_since_last_matchup": 40}},
    {"date": "2025-01-03",
     "teams": {"home": {"name": "Denver Nuggets", "abbreviation": "DEN", "win_probability": 0.55},
               "away": {"name": "Utah Jazz", "abbreviation": "UTA", "win_probability": 0.45}},
     "prediction": {"winner_name": "Denver Nuggets"}},
    {"date": "2025-01-09",
     "teams": {"home": {"name": "Boston Celtics", "abbreviation": "BOS", "win_probability": 0.5},
               "away": {"name": "Miami Heat", "abbreviation": "MIA", "win_probability": 0.5}}}
  ]
}`

func writeFeed(t *testing.T, dir, name, body string, mod time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	require.NoError(t, os.Chtimes(path, mod, mod))
	return path
}

type stubResolver struct{}

func (stubResolver) Abbreviation(name string, _ time.Time) string {
	return strings.ToUpper(name[:3])
}

func (stubResolver) LogoURL(abbr string) string { return "logos/" + abbr + ".svg" }

func TestLoad_NewestFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeFeed(t, dir, "old.json", `{"metadata": {"model": "old"}, "games": []}`, now.Add(-time.Hour))
	writeFeed(t, dir, "new.json", sampleFeed, now)
	writeFeed(t, dir, "notes.txt", "ignored", now.Add(time.Hour))

	f, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "new.json", f.Source)
	assert.Equal(t, "xgb", f.Metadata.Model)
	assert.Equal(t, 3, f.Metadata.GameCount)
	require.Len(t, f.Games, 3)
	require.NotNil(t, f.Games[0].Matchup)
	assert.Equal(t, 12, *f.Games[0].Matchup.GamesPlayed)
}

func TestLoad_EmptyDirAndBrokenFile(t *testing.T) {
	dir := t.TempDir()

	f, err := Load(dir)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, f.Games)

	writeFeed(t, dir, "bad.json", "{not json", time.Now())
	f, err = Load(dir)
	assert.Error(t, err)
	assert.NotNil(t, f.Games)
}

func TestNext(t *testing.T) {
	f, err := LoadFile(writeFeed(t, t.TempDir(), "p.json", sampleFeed, time.Now()))
	require.NoError(t, err)

	g := Next(f, time.Date(2025, 1, 4, 15, 0, 0, 0, time.UTC))
	require.NotNil(t, g)
	assert.Equal(t, "2025-01-05", g.Date)

	g = Next(f, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC))
	require.NotNil(t, g)
	assert.Equal(t, "2025-01-03", g.Date, "today counts")

	assert.Nil(t, Next(f, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func TestNextMatchup_Logos(t *testing.T) {
	f, err := LoadFile(writeFeed(t, t.TempDir(), "p.json", sampleFeed, time.Now()))
	require.NoError(t, err)

	m := NextMatchup(f, time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC), stubResolver{})
	require.NotNil(t, m)
	assert.Equal(t, "logos/BOS.svg", m.HomeLogoURL)
	assert.Equal(t, "logos/MIA.svg", m.AwayLogoURL)
}

func TestTable(t *testing.T) {
	f, err := LoadFile(writeFeed(t, t.TempDir(), "p.json", sampleFeed, time.Now()))
	require.NoError(t, err)

	rows := Table(f, stubResolver{})
	require.Len(t, rows, 2, "second BOS-MIA game dropped")

	assert.Equal(t, "2025-01-03", rows[0].Date)
	assert.Equal(t, "2025-01-05", rows[1].Date)
	assert.InDelta(t, 64.0, rows[1].HomeWinPct, 1e-9)
	assert.Equal(t, "Boston Celtics", rows[1].Winner)
	assert.Equal(t, "logos/BOS.svg", rows[1].WinnerLogoURL)
}

func TestStore_ReloadNotifies(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	assert.Empty(t, s.Current().Games)

	ch := s.Subscribe()
	writeFeed(t, dir, "p.json", sampleFeed, time.Now())
	s.Reload()

	select {
	case f := <-ch:
		assert.Len(t, f.Games, 3)
	case <-time.After(time.Second):
		t.Fatal("no feed delivered")
	}
	assert.Len(t, s.Current().Games, 3)
}

func TestStore_Unsubscribe(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	gone := s.Subscribe()
	kept := s.Subscribe()
	s.Unsubscribe(gone)
	s.Unsubscribe(gone)

	writeFeed(t, dir, "p.json", sampleFeed, time.Now())
	s.Reload()

	select {
	case f := <-kept:
		assert.Len(t, f.Games, 3)
	case <-time.After(time.Second):
		t.Fatal("no feed delivered")
	}
	select {
	case <-gone:
		t.Fatal("unsubscribed channel received a feed")
	default:
	}

	s.mu.RLock()
	assert.Len(t, s.subscribers, 1)
	s.mu.RUnlock()
}

func TestStore_WatchPicksUpNewFile(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	ch := s.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	writeFeed(t, dir, "p.json", sampleFeed, time.Now())

	deadline := time.After(5 * time.Second)
	for {
		select {
		case f := <-ch:
			if len(f.Games) == 3 {
				cancel()
				require.NoError(t, <-done)
				return
			}
		case <-deadline:
			t.Fatal("watcher did not reload the feed")
		}
	}
}
