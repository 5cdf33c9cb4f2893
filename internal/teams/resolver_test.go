package teams

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestResolver(t *testing.T, teams ...Team) *Resolver {
	t.Helper()
	h, err := DefaultHistory()
	require.NoError(t, err)
	return NewResolver(h, teams)
}

func TestDefaultHistory(t *testing.T) {
	h, err := DefaultHistory()
	require.NoError(t, err)
	assert.Len(t, h.Franchises, 30)
	assert.NotEmpty(t, h.LogoBaseURL)
}

func TestAbbreviation_TimeScoped(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		name string
		date string
		want string
	}{
		{"Charlotte Hornets", "2010-01-01", "CHA"},
		{"Charlotte Hornets", "2020-01-01", "CHO"},
		{"Charlotte Hornets", "1995-06-01", "CHH"},
		{"Charlotte Bobcats", "2010-01-01", "CHA"},
		{"New Orleans Hornets", "2006-02-01", "NOK"},
		{"New Orleans Hornets", "2010-02-01", "NOH"},
		{"New Orleans Pelicans", "2010-02-01", "NOH"},
		{"Seattle SuperSonics", "2005-01-01", "SEA"},
		{"Oklahoma City Thunder", "2005-01-01", "SEA"},
		{"New Jersey Nets", "2015-01-01", "BKN"},
		{"Boston Celtics", "1950-01-01", "BOS"},
	}
	for _, tt := range tests {
		t.Run(tt.name+"@"+tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Abbreviation(tt.name, day(tt.date)))
		})
	}
}

func TestAbbreviation_Undated(t *testing.T) {
	r := newTestResolver(t)

	assert.Equal(t, "CHO", r.Abbreviation("Charlotte Hornets", time.Time{}))
	assert.Equal(t, "SEA", r.Abbreviation("Seattle SuperSonics", time.Time{}))
	assert.Equal(t, "VAN", r.Abbreviation("Vancover Grizzlies", time.Time{}))
	assert.Equal(t, "LAL", r.Abbreviation("  los angeles   lakers ", time.Time{}))
}

func TestAbbreviation_PassThroughAndFallback(t *testing.T) {
	r := newTestResolver(t)

	assert.Equal(t, "", r.Abbreviation("", time.Time{}))
	assert.Equal(t, "XYZ", r.Abbreviation("XYZ", time.Time{}))
	assert.Equal(t, "QQ", r.Abbreviation("qq", time.Time{}))
	assert.Equal(t, "GOT", r.Abbreviation("Gotham Knights", time.Time{}))
}

func TestAbbreviation_Partial(t *testing.T) {
	r := newTestResolver(t)

	assert.Equal(t, "LAL", r.Abbreviation("Lakers", time.Time{}))
	assert.Equal(t, "CHA", r.Abbreviation("Charlotte", day("2010-01-01")))
	assert.Equal(t, "CHO", r.Abbreviation("charlotte", time.Time{}))
}

func TestAbbreviation_TeamsListWinsUndated(t *testing.T) {
	r := newTestResolver(t, Team{Name: "Phoenix Suns", Abbreviation: "PHO"})

	assert.Equal(t, "PHO", r.Abbreviation("Phoenix Suns", time.Time{}))
	assert.Equal(t, "PHX", r.Abbreviation("Phoenix Suns", day("2020-01-01")))
}

func TestName(t *testing.T) {
	r := newTestResolver(t, Team{Name: "Boston Celtics", Abbreviation: "BOS"})

	assert.Equal(t, "Boston Celtics", r.Name("bos"))
	assert.Equal(t, "New Orleans Hornets", r.Name("NOH"))
	assert.Equal(t, "Charlotte Bobcats", r.Name("CHA"))
	assert.Equal(t, "ZZZ", r.Name("ZZZ"))
	assert.Equal(t, "Miami Heat", r.Name("Miami Heat"))
}

func TestKnownAndTeams(t *testing.T) {
	r := newTestResolver(t)

	assert.True(t, r.Known("KCK"))
	assert.False(t, r.Known("ZZZ"))

	current := r.Teams()
	require.Len(t, current, 30)
	assert.Equal(t, "Atlanta Hawks", current[0].Name)

	listed := r.WithTeams([]Team{{Name: "Utah Jazz", Abbreviation: "UTA"}, {Name: "Boston Celtics", Abbreviation: "BOS"}})
	assert.Equal(t, []Team{{Name: "Boston Celtics", Abbreviation: "BOS"}, {Name: "Utah Jazz", Abbreviation: "UTA"}}, listed.Teams())
	assert.Len(t, r.Teams(), 30, "original resolver unchanged")
}

func TestLogoURL(t *testing.T) {
	r := newTestResolver(t)
	assert.Equal(t,
		"https://raw.githubusercontent.com/HTilki/NBAStatsApp/bff918fd85d639dcb23449669f26c0b536a43635/images/teams_logos/BOS.svg",
		r.LogoURL("BOS"))
	assert.Equal(t, "", r.LogoURL(""))
}

func TestLoadHistory_Invalid(t *testing.T) {
	_, err := LoadHistory([]byte("franchises:\n  - franchise: X\n    eras:\n      - {name: A, abbreviation: AAA, from: nope}\n"))
	assert.Error(t, err)

	_, err = LoadHistory([]byte("franchises:\n  - franchise: X\n    eras:\n      - {name: A, from: \"2000-01-01\"}\n"))
	assert.Error(t, err)
}
