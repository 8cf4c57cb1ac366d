package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mkarsky/brain-battle/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match references unknown tournament")
	ErrMatchTeamInvalid       = errors.New("match references unknown team")
	ErrMatchSameTeam          = errors.New("match teams must be distinct")
)

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListAll(ctx context.Context) ([]models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error)
	Update(ctx context.Context, match *models.Match) error
	Delete(ctx context.Context, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchSelectColumns = `
	m.id, m.tournament_id, m.team1_id, m.team2_id, m.winner_id, m.score,
	m.round_number, m.scheduled_date, m.scheduled_time, m.location,
	t1.name, t1.created_at, t2.name, t2.created_at`

const matchJoins = `
	JOIN teams t1 ON t1.id = m.team1_id
	JOIN teams t2 ON t2.id = m.team2_id`

func (r *postgresMatchRepository) Create(ctx context.Context, m *models.Match) error {
	query := `
		INSERT INTO matches (tournament_id, team1_id, team2_id, round_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		m.TournamentID, m.Team1ID, m.Team2ID, m.RoundNumber,
	).Scan(&m.ID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + matchSelectColumns + `
		FROM matches m` + matchJoins + `
		WHERE m.id = $1`

	m := &models.Match{}
	err := r.scanMatch(r.db.QueryRowContext(ctx, query, id), m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return m, nil
}

// ListAll возвращает матчи всех турниров для страницы расписания.
// NULL-значения дат сортируются по правилам Postgres (в конец).
func (r *postgresMatchRepository) ListAll(ctx context.Context) ([]models.Match, error) {
	query := `SELECT` + matchSelectColumns + `, tr.name
		FROM matches m` + matchJoins + `
		JOIN tournaments tr ON tr.id = m.tournament_id
		ORDER BY m.scheduled_date, m.scheduled_time, m.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := r.scanMatchRow(rows, &m, true); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error) {
	query := `SELECT` + matchSelectColumns + `
		FROM matches m` + matchJoins + `
		WHERE m.tournament_id = $1
		ORDER BY m.round_number, m.id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := r.scanMatchRow(rows, &m, false); scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, m *models.Match) error {
	query := `
		UPDATE matches SET
			score = $1,
			winner_id = $2,
			scheduled_date = $3,
			scheduled_time = $4,
			location = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		m.Score, m.WinnerID, m.ScheduledDate, m.ScheduledTime, m.Location, m.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM matches WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresMatchRepository) scanMatch(row rowScanner, m *models.Match) error {
	var t1, t2 models.Team
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.Team1ID, &m.Team2ID, &m.WinnerID, &m.Score,
		&m.RoundNumber, &m.ScheduledDate, &m.ScheduledTime, &m.Location,
		&t1.Name, &t1.CreatedAt, &t2.Name, &t2.CreatedAt,
	)
	if err != nil {
		return err
	}
	t1.ID = m.Team1ID
	t2.ID = m.Team2ID
	m.Team1 = &t1
	m.Team2 = &t2
	return nil
}

func (r *postgresMatchRepository) scanMatchRow(rows *sql.Rows, m *models.Match, withTournamentName bool) error {
	var t1, t2 models.Team
	dest := []interface{}{
		&m.ID, &m.TournamentID, &m.Team1ID, &m.Team2ID, &m.WinnerID, &m.Score,
		&m.RoundNumber, &m.ScheduledDate, &m.ScheduledTime, &m.Location,
		&t1.Name, &t1.CreatedAt, &t2.Name, &t2.CreatedAt,
	}
	if withTournamentName {
		dest = append(dest, &m.TournamentName)
	}
	if err := rows.Scan(dest...); err != nil {
		return fmt.Errorf("failed to scan match row: %w", err)
	}
	t1.ID = m.Team1ID
	t2.ID = m.Team2ID
	m.Team1 = &t1
	m.Team2 = &t2
	return nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23503":
			if pqErr.Constraint == "matches_tournament_id_fkey" {
				return ErrMatchTournamentInvalid
			}
			return ErrMatchTeamInvalid
		case "23514":
			if pqErr.Constraint == "chk_match_distinct_teams" {
				return ErrMatchSameTeam
			}
		}
	}
	return fmt.Errorf("match query failed: %w", err)
}
