package teams

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed history.yaml
var historyYAML []byte

const dateLayout = "2006-01-02"

// Team is a name/abbreviation pair as listed in the teams table.
type Team struct {
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// Era is one name/abbreviation a franchise played under, over [From, To).
// A zero To means the era is current.
type Era struct {
	Name         string   `yaml:"name"`
	Abbreviation string   `yaml:"abbreviation"`
	From         string   `yaml:"from"`
	To           string   `yaml:"to"`
	Aliases      []string `yaml:"aliases"`

	from, to time.Time
}

// Contains reports whether d falls inside the era.
func (e Era) Contains(d time.Time) bool {
	if d.Before(e.from) {
		return false
	}
	return e.to.IsZero() || d.Before(e.to)
}

// Current reports whether the era is still running.
func (e Era) Current() bool { return e.to.IsZero() }

// Franchise groups the eras of one club.
type Franchise struct {
	Name string `yaml:"franchise"`
	Eras []Era  `yaml:"eras"`
}

// History is the packaged abbreviation history.
type History struct {
	LogoBaseURL string      `yaml:"logo_base_url"`
	Franchises  []Franchise `yaml:"franchises"`
}

// DefaultHistory decodes the embedded history.
func DefaultHistory() (*History, error) {
	return LoadHistory(historyYAML)
}

// LoadHistory decodes and validates a YAML history document.
func LoadHistory(data []byte) (*History, error) {
	var h History
	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decoding team history: %w", err)
	}

	for fi := range h.Franchises {
		f := &h.Franchises[fi]
		for ei := range f.Eras {
			e := &f.Eras[ei]
			if e.Name == "" || e.Abbreviation == "" {
				return nil, fmt.Errorf("franchise %q era %d: name and abbreviation are required", f.Name, ei)
			}
			from, err := time.Parse(dateLayout, e.From)
			if err != nil {
				return nil, fmt.Errorf("franchise %q era %s: invalid from date: %w", f.Name, e.Abbreviation, err)
			}
			e.from = from
			if e.To != "" {
				to, err := time.Parse(dateLayout, e.To)
				if err != nil {
					return nil, fmt.Errorf("franchise %q era %s: invalid to date: %w", f.Name, e.Abbreviation, err)
				}
				e.to = to
			}
		}
	}
	return &h, nil
}

type eraRef struct {
	franchise int
	era       int
}

// Resolver maps team names to abbreviations and back. It is immutable
// once built and safe for concurrent use.
type Resolver struct {
	history *History
	teams   []Team
	byName  map[string][]eraRef
}

// NewResolver builds a resolver over the history. teams, when given, is
// the authoritative current teams list and is consulted first for
// undated lookups.
func NewResolver(h *History, teams []Team) *Resolver {
	r := &Resolver{
		history: h,
		teams:   append([]Team(nil), teams...),
		byName:  make(map[string][]eraRef),
	}
	for fi, f := range h.Franchises {
		for ei, e := range f.Eras {
			ref := eraRef{franchise: fi, era: ei}
			r.byName[normalize(e.Name)] = append(r.byName[normalize(e.Name)], ref)
			for _, alias := range e.Aliases {
				r.byName[normalize(alias)] = append(r.byName[normalize(alias)], ref)
			}
		}
	}
	return r
}

// WithTeams returns a copy of the resolver using the given teams list.
func (r *Resolver) WithTeams(teams []Team) *Resolver {
	return &Resolver{
		history: r.history,
		teams:   append([]Team(nil), teams...),
		byName:  r.byName,
	}
}

func (r *Resolver) eraOf(ref eraRef) Era {
	return r.history.Franchises[ref.franchise].Eras[ref.era]
}

// Abbreviation resolves a team name to the abbreviation in use on date. A
// zero date asks for the current abbreviation.
//
// Unknown names fall back to their first three characters upper-cased so
// display code never fails; that value is not guaranteed to be a real
// abbreviation.
func (r *Resolver) Abbreviation(name string, date time.Time) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if isAbbreviation(name) {
		return name
	}

	key := normalize(name)

	if date.IsZero() {
		for _, t := range r.teams {
			if normalize(t.Name) == key {
				return t.Abbreviation
			}
		}
	}

	if refs, ok := r.byName[key]; ok {
		return r.resolveExact(refs, date)
	}

	if abbr, ok := r.resolvePartial(key, date); ok {
		return abbr
	}

	return fallback(name)
}

func (r *Resolver) resolveExact(refs []eraRef, date time.Time) string {
	if date.IsZero() {
		for _, ref := range refs {
			if e := r.eraOf(ref); e.Current() {
				return e.Abbreviation
			}
		}
		return r.eraOf(refs[len(refs)-1]).Abbreviation
	}

	for _, ref := range refs {
		if e := r.eraOf(ref); e.Contains(date) {
			return e.Abbreviation
		}
	}

	// The club played under another name on that date.
	seen := make(map[int]bool)
	for _, ref := range refs {
		if seen[ref.franchise] {
			continue
		}
		seen[ref.franchise] = true
		for _, e := range r.history.Franchises[ref.franchise].Eras {
			if e.Contains(date) {
				return e.Abbreviation
			}
		}
	}

	// Outside every known era: the latest era of that name starting on or
	// before the date, else its earliest.
	best := r.eraOf(refs[0])
	for _, ref := range refs[1:] {
		e := r.eraOf(ref)
		if !e.from.After(date) && e.from.After(best.from) {
			best = e
		}
	}
	return best.Abbreviation
}

func (r *Resolver) resolvePartial(key string, date time.Time) (string, bool) {
	var matches []Era
	for _, f := range r.history.Franchises {
		for _, e := range f.Eras {
			if strings.Contains(normalize(e.Name), key) {
				matches = append(matches, e)
			}
		}
	}
	if len(matches) == 0 {
		return "", false
	}
	for _, e := range matches {
		if (date.IsZero() && e.Current()) || (!date.IsZero() && e.Contains(date)) {
			return e.Abbreviation, true
		}
	}
	return matches[0].Abbreviation, true
}

// Name returns the team name for an abbreviation: the teams list first,
// then the most recent era using it. Unknown input is returned unchanged.
func (r *Resolver) Name(abbr string) string {
	abbr = strings.TrimSpace(abbr)
	if len(abbr) > 3 {
		return abbr
	}
	for _, t := range r.teams {
		if strings.EqualFold(t.Abbreviation, abbr) {
			return t.Name
		}
	}
	var (
		name   string
		latest time.Time
	)
	for _, f := range r.history.Franchises {
		for _, e := range f.Eras {
			if strings.EqualFold(e.Abbreviation, abbr) && (name == "" || e.from.After(latest)) {
				name, latest = e.Name, e.from
			}
		}
	}
	if name == "" {
		return abbr
	}
	return name
}

// Known reports whether abbr appears in the teams list or the history.
func (r *Resolver) Known(abbr string) bool {
	for _, t := range r.teams {
		if strings.EqualFold(t.Abbreviation, abbr) {
			return true
		}
	}
	for _, f := range r.history.Franchises {
		for _, e := range f.Eras {
			if strings.EqualFold(e.Abbreviation, abbr) {
				return true
			}
		}
	}
	return false
}

// Teams returns the teams list, or the current era of every franchise
// when none was supplied, ordered by name.
func (r *Resolver) Teams() []Team {
	out := append([]Team(nil), r.teams...)
	if len(out) == 0 {
		for _, f := range r.history.Franchises {
			for _, e := range f.Eras {
				if e.Current() {
					out = append(out, Team{Name: e.Name, Abbreviation: e.Abbreviation})
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LogoURL returns the logo image for an abbreviation.
func (r *Resolver) LogoURL(abbr string) string {
	if abbr == "" {
		return ""
	}
	return strings.TrimRight(r.history.LogoBaseURL, "/") + "/" + abbr + ".svg"
}

func isAbbreviation(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, c := range s {
		if !unicode.IsUpper(c) {
			return false
		}
	}
	return true
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func fallback(name string) string {
	runes := []rune(name)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return strings.ToUpper(string(runes))
}
