package stats

import (
	"strings"
	"time"
)

// FilterSpec is a set of optional predicates combined with AND. A nil
// field places no constraint on its dimension.
type FilterSpec struct {
	Season   *string    `json:"season,omitempty"`
	GameType *string    `json:"game_type,omitempty"`
	Team     *string    `json:"team,omitempty"`
	Opponent *string    `json:"opponent,omitempty"`
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`
}

func (f FilterSpec) WithSeason(season string) FilterSpec {
	f.Season = &season
	return f
}

func (f FilterSpec) WithGameType(gameType string) FilterSpec {
	f.GameType = &gameType
	return f
}

func (f FilterSpec) WithTeam(team string) FilterSpec {
	f.Team = &team
	return f
}

func (f FilterSpec) WithOpponent(opponent string) FilterSpec {
	f.Opponent = &opponent
	return f
}

// WithDates sets inclusive date bounds. A zero time leaves that bound open.
func (f FilterSpec) WithDates(from, to time.Time) FilterSpec {
	if !from.IsZero() {
		f.DateFrom = &from
	}
	if !to.IsZero() {
		f.DateTo = &to
	}
	return f
}

// Union returns f with every predicate set in g added. Where both constrain
// the same dimension, g wins.
func (f FilterSpec) Union(g FilterSpec) FilterSpec {
	if g.Season != nil {
		f.Season = g.Season
	}
	if g.GameType != nil {
		f.GameType = g.GameType
	}
	if g.Team != nil {
		f.Team = g.Team
	}
	if g.Opponent != nil {
		f.Opponent = g.Opponent
	}
	if g.DateFrom != nil {
		f.DateFrom = g.DateFrom
	}
	if g.DateTo != nil {
		f.DateTo = g.DateTo
	}
	return f
}

// Filter returns the rows of s satisfying every predicate in f. A
// predicate whose column the row set lacks is ignored, as are sentinel
// values ("All Seasons", "all", "All Teams").
//
// game_type "regular season" first widens to regular season plus
// non-championship in-season tournament games, then narrows to an exact
// game type match, so tournament games never survive it.
func Filter[T Filterable](s RowSet[T], f FilterSpec) RowSet[T] {
	preds := predicates[T](s.Columns, f)
	if len(preds) == 0 {
		return s.withRows(append([]T(nil), s.Rows...))
	}

	out := make([]T, 0, len(s.Rows))
rows:
	for _, row := range s.Rows {
		for _, keep := range preds {
			if !keep(row) {
				continue rows
			}
		}
		out = append(out, row)
	}
	return s.withRows(out)
}

func predicates[T Filterable](cols ColumnSet, f FilterSpec) []func(T) bool {
	var preds []func(T) bool

	if f.Season != nil && *f.Season != AllSeasons && cols.Has(ColSeason) {
		season := *f.Season
		preds = append(preds, func(r T) bool { return r.GameInfo().Season == season })
	}

	if f.GameType != nil && cols.Has(ColGameType) {
		target := strings.ToLower(strings.TrimSpace(*f.GameType))
		if target != AllGameTypes {
			if target == GameTypeRegularSeason {
				preds = append(preds, func(r T) bool {
					g := r.GameInfo()
					gt := strings.ToLower(g.GameType)
					return gt == GameTypeRegularSeason ||
						(gt == GameTypeTournament && strings.ToLower(g.Remarks) != RemarkChampionship)
				})
			}
			preds = append(preds, func(r T) bool {
				return strings.ToLower(r.GameInfo().GameType) == target
			})
		}
	}

	if f.Team != nil {
		team := *f.Team
		switch {
		case cols.Has(ColTeam):
			preds = append(preds, func(r T) bool { return r.TeamCode() == team })
		case cols.Has(ColHomeTeam) && cols.Has(ColAwayTeam):
			preds = append(preds, func(r T) bool {
				g := r.GameInfo()
				return g.HomeTeam == team || g.AwayTeam == team
			})
		}
	}

	if f.Opponent != nil && *f.Opponent != AllTeams && cols.Has(ColOpponent) {
		opp := *f.Opponent
		preds = append(preds, func(r T) bool { return r.OpponentCode() == opp })
	}

	if cols.Has(ColDate) {
		if f.DateFrom != nil {
			from := dayOf(*f.DateFrom)
			preds = append(preds, func(r T) bool {
				d := r.GameInfo().Date
				return !d.IsZero() && !dayOf(d).Before(from)
			})
		}
		if f.DateTo != nil {
			to := dayOf(*f.DateTo)
			preds = append(preds, func(r T) bool {
				d := r.GameInfo().Date
				return !d.IsZero() && !dayOf(d).After(to)
			})
		}
	}

	return preds
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
