package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkarsky/brain-battle/brackets"
	"github.com/mkarsky/brain-battle/live"
	"github.com/mkarsky/brain-battle/models"
	"github.com/mkarsky/brain-battle/repositories"
)

type CreateMatchInput struct {
	Team1ID     int  `json:"team1_id"`
	Team2ID     int  `json:"team2_id"`
	RoundNumber *int `json:"round_number"`
}

type UpdateMatchInput struct {
	Score         *string `json:"score"`
	WinnerID      *int    `json:"winner_id"`
	ScheduledDate *string `json:"scheduled_date"`
	ScheduledTime *string `json:"scheduled_time"`
	Location      *string `json:"location"`
}

type MatchService interface {
	CreateMatch(ctx context.Context, tournamentID int, input CreateMatchInput) (*models.Match, error)
	ListAllMatches(ctx context.Context) ([]models.Match, error)
	ListTournamentMatches(ctx context.Context, tournamentID int) ([]models.Match, error)
	GetMatchByID(ctx context.Context, id int) (*models.Match, error)
	UpdateMatch(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error)
	DeleteMatch(ctx context.Context, id int) error
	GenerateMatches(ctx context.Context, tournamentID int) ([]models.Match, error)
}

type matchService struct {
	matchRepo      repositories.MatchRepository
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	pairing        brackets.PairingGenerator
	hub            *live.Hub
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	pairing brackets.PairingGenerator,
	hub *live.Hub,
) MatchService {
	return &matchService{
		matchRepo:      matchRepo,
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		pairing:        pairing,
		hub:            hub,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, tournamentID int, input CreateMatchInput) (*models.Match, error) {
	if input.Team1ID == 0 || input.Team2ID == 0 {
		return nil, ErrMatchTeamsRequired
	}
	if input.Team1ID == input.Team2ID {
		return nil, ErrMatchSameTeam
	}
	if err := s.checkTournamentExists(ctx, tournamentID); err != nil {
		return nil, err
	}

	roundNumber := 1
	if input.RoundNumber != nil && *input.RoundNumber > 0 {
		roundNumber = *input.RoundNumber
	}

	match := &models.Match{
		TournamentID: tournamentID,
		Team1ID:      input.Team1ID,
		Team2ID:      input.Team2ID,
		RoundNumber:  roundNumber,
	}

	if err := s.matchRepo.Create(ctx, match); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchTeamInvalid):
			return nil, ErrTeamNotFound
		case errors.Is(err, repositories.ErrMatchSameTeam):
			return nil, ErrMatchSameTeam
		default:
			return nil, fmt.Errorf("failed to create match: %w", err)
		}
	}

	created, err := s.matchRepo.GetByID(ctx, match.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload created match %d: %w", match.ID, err)
	}

	s.hub.BroadcastToRoom(live.TournamentRoom(tournamentID), live.EventMatchCreated, created)
	return created, nil
}

func (s *matchService) ListAllMatches(ctx context.Context) ([]models.Match, error) {
	matches, err := s.matchRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) ListTournamentMatches(ctx context.Context, tournamentID int) ([]models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *matchService) GetMatchByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return match, nil
}

func (s *matchService) UpdateMatch(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error) {
	match, err := s.GetMatchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Score != nil {
		match.Score = input.Score
	}
	if input.WinnerID != nil {
		// Победителем может быть только участник матча.
		if *input.WinnerID != match.Team1ID && *input.WinnerID != match.Team2ID {
			return nil, ErrMatchInvalidWinner
		}
		match.WinnerID = input.WinnerID
	}
	if input.ScheduledDate != nil {
		match.ScheduledDate = input.ScheduledDate
	}
	if input.ScheduledTime != nil {
		match.ScheduledTime = input.ScheduledTime
	}
	if input.Location != nil {
		match.Location = input.Location
	}

	if err := s.matchRepo.Update(ctx, match); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to update match %d: %w", id, err)
	}

	s.hub.BroadcastToRoom(live.TournamentRoom(match.TournamentID), live.EventMatchUpdated, match)
	return match, nil
}

func (s *matchService) DeleteMatch(ctx context.Context, id int) error {
	match, err := s.GetMatchByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.matchRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to delete match %d: %w", id, err)
	}

	s.hub.BroadcastToRoom(live.TournamentRoom(match.TournamentID), live.EventMatchDeleted, match)
	return nil
}

// GenerateMatches строит первый раунд для текущего состава турнира
// и сохраняет все полученные матчи. Возвращает их в порядке создания.
func (s *matchService) GenerateMatches(ctx context.Context, tournamentID int) ([]models.Match, error) {
	if err := s.checkTournamentExists(ctx, tournamentID); err != nil {
		return nil, err
	}

	roster, err := s.teamRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster for tournament %d: %w", tournamentID, err)
	}

	pairs, err := s.pairing.GeneratePairs(roster)
	if err != nil {
		if errors.Is(err, brackets.ErrInsufficientTeams) {
			return nil, ErrInsufficientTeams
		}
		return nil, fmt.Errorf("failed to generate pairs for tournament %d: %w", tournamentID, err)
	}

	teamsByID := make(map[int]models.Team, len(roster))
	for _, t := range roster {
		teamsByID[t.ID] = t
	}

	matches := make([]models.Match, 0, len(pairs))
	for _, pair := range pairs {
		match := &models.Match{
			TournamentID: tournamentID,
			Team1ID:      pair.Team1ID,
			Team2ID:      pair.Team2ID,
			RoundNumber:  1,
		}
		if err := s.matchRepo.Create(ctx, match); err != nil {
			return nil, fmt.Errorf("failed to persist generated match: %w", err)
		}

		t1 := teamsByID[pair.Team1ID]
		t2 := teamsByID[pair.Team2ID]
		match.Team1 = &t1
		match.Team2 = &t2
		matches = append(matches, *match)
	}

	s.hub.BroadcastToRoom(live.TournamentRoom(tournamentID), live.EventMatchesGenerated, matches)
	return matches, nil
}

func (s *matchService) checkTournamentExists(ctx context.Context, tournamentID int) error {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	return nil
}
