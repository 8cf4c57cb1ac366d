package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mkarsky/brain-battle/models"
	"github.com/mkarsky/brain-battle/repositories"
)

type CreateTeamInput struct {
	Name string `json:"name"`
}

type UpdateTeamInput struct {
	Name *string `json:"name"`
}

// AddTeamInput — либо team_id существующей команды, либо имя новой.
type AddTeamInput struct {
	TeamID *int    `json:"team_id"`
	Name   *string `json:"name"`
}

type TeamService interface {
	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	ListAllTeams(ctx context.Context) ([]models.Team, error)
	ListTournamentTeams(ctx context.Context, tournamentID int) ([]models.Team, error)
	AddTeamToTournament(ctx context.Context, tournamentID int, input AddTeamInput) (team *models.Team, created bool, err error)
	RemoveTeamFromTournament(ctx context.Context, tournamentID, teamID int) error
	UpdateTeam(ctx context.Context, id int, input UpdateTeamInput) (*models.Team, error)
	DeleteTeam(ctx context.Context, id int) error
}

type teamService struct {
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
}

func NewTeamService(
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
) TeamService {
	return &teamService{
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	team := &models.Team{Name: name}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

// ListAllTeams возвращает все команды с денормализованными именами турниров.
// Команды и связи загружаются параллельно.
func (s *teamService) ListAllTeams(ctx context.Context) ([]models.Team, error) {
	var (
		teams []models.Team
		links []repositories.TeamTournamentLink
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.teamRepo.ListAll(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		links, err = s.teamRepo.ListLinks(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	linksByTeam := make(map[int][]repositories.TeamTournamentLink, len(teams))
	for _, l := range links {
		linksByTeam[l.TeamID] = append(linksByTeam[l.TeamID], l)
	}

	for i := range teams {
		teamLinks := linksByTeam[teams[i].ID]
		teams[i].TournamentIDs = make([]int, 0, len(teamLinks))
		teams[i].TournamentNames = make([]string, 0, len(teamLinks))
		for _, l := range teamLinks {
			teams[i].TournamentIDs = append(teams[i].TournamentIDs, l.TournamentID)
			teams[i].TournamentNames = append(teams[i].TournamentNames, l.TournamentName)
		}
	}
	return teams, nil
}

func (s *teamService) ListTournamentTeams(ctx context.Context, tournamentID int) ([]models.Team, error) {
	if err := s.checkTournamentExists(ctx, tournamentID); err != nil {
		return nil, err
	}

	teams, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for tournament %d: %w", tournamentID, err)
	}
	return teams, nil
}

func (s *teamService) AddTeamToTournament(ctx context.Context, tournamentID int, input AddTeamInput) (*models.Team, bool, error) {
	if err := s.checkTournamentExists(ctx, tournamentID); err != nil {
		return nil, false, err
	}

	// Привязка существующей команды по ID.
	if input.TeamID != nil {
		team, err := s.teamRepo.GetByID(ctx, *input.TeamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return nil, false, ErrTeamNotFound
			}
			return nil, false, fmt.Errorf("failed to get team %d: %w", *input.TeamID, err)
		}
		if err := s.teamRepo.Link(ctx, tournamentID, team.ID); err != nil {
			return nil, false, fmt.Errorf("failed to link team %d to tournament %d: %w", team.ID, tournamentID, err)
		}
		return team, false, nil
	}

	// Создание новой команды с привязкой.
	if input.Name != nil {
		team, err := s.CreateTeam(ctx, CreateTeamInput{Name: *input.Name})
		if err != nil {
			return nil, false, err
		}
		if err := s.teamRepo.Link(ctx, tournamentID, team.ID); err != nil {
			return nil, false, fmt.Errorf("failed to link new team %d to tournament %d: %w", team.ID, tournamentID, err)
		}
		return team, true, nil
	}

	return nil, false, ErrTeamLinkRequired
}

func (s *teamService) RemoveTeamFromTournament(ctx context.Context, tournamentID, teamID int) error {
	if err := s.checkTournamentExists(ctx, tournamentID); err != nil {
		return err
	}
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to get team %d: %w", teamID, err)
	}

	if err := s.teamRepo.Unlink(ctx, tournamentID, teamID); err != nil {
		return fmt.Errorf("failed to remove team %d from tournament %d: %w", teamID, tournamentID, err)
	}
	return nil
}

func (s *teamService) UpdateTeam(ctx context.Context, id int, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		team.Name = name
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to update team %d: %w", id, err)
	}
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, id int) error {
	err := s.teamRepo.Delete(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNotFound):
			return ErrTeamNotFound
		case errors.Is(err, repositories.ErrTeamInUse):
			return ErrTeamInUse
		default:
			return fmt.Errorf("failed to delete team %d: %w", id, err)
		}
	}
	return nil
}

func (s *teamService) checkTournamentExists(ctx context.Context, tournamentID int) error {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	return nil
}
