package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/courtside/internal/store"
)

// TeamRepository handles team data access
type TeamRepository struct {
	db *store.Database
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *store.Database) *TeamRepository {
	return &TeamRepository{db: db}
}

// All returns every team ordered by name
func (r *TeamRepository) All(ctx context.Context) ([]store.Team, error) {
	rows, err := r.db.DB().QueryContext(ctx, `SELECT name, abbreviation FROM teams ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	teams := []store.Team{}
	for rows.Next() {
		var t store.Team
		if err := rows.Scan(&t.Name, &t.Abbreviation); err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, t)
	}

	return teams, rows.Err()
}

// ByAbbreviation finds a team by abbreviation
func (r *TeamRepository) ByAbbreviation(ctx context.Context, abbr string) (*store.Team, error) {
	t := &store.Team{}
	err := r.db.DB().QueryRowContext(ctx,
		`SELECT name, abbreviation FROM teams WHERE UPPER(abbreviation) = UPPER($1)`, abbr,
	).Scan(&t.Name, &t.Abbreviation)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("team %s: %w", abbr, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying team: %w", err)
	}

	return t, nil
}
