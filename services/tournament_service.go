package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mkarsky/brain-battle/live"
	"github.com/mkarsky/brain-battle/models"
	"github.com/mkarsky/brain-battle/repositories"
	"github.com/mkarsky/brain-battle/storage"
)

type CreateTournamentInput struct {
	Name     string  `json:"name"`
	GameType string  `json:"game_type"`
	Date     *string `json:"date"`
}

type UpdateTournamentInput struct {
	Name     *string `json:"name"`
	GameType *string `json:"game_type"`
	Status   *string `json:"status"`
	Date     *string `json:"date"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]models.Tournament, error)
	GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error)
	UpdateTournament(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id int) error
	UploadTournamentLogo(ctx context.Context, id int, file io.Reader, contentType string) (*models.Tournament, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	uploader       storage.FileUploader
	hub            *live.Hub
}

// NewTournamentService создаёт сервис турниров. uploader может быть nil,
// тогда загрузка логотипов отключена.
func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	uploader storage.FileUploader,
	hub *live.Hub,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		uploader:       uploader,
		hub:            hub,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	gameType := strings.TrimSpace(input.GameType)
	if gameType == "" {
		return nil, ErrTournamentGameTypeRequired
	}

	date := time.Now().UTC()
	if input.Date != nil {
		parsed, err := parseTournamentDate(*input.Date)
		if err != nil {
			return nil, err
		}
		date = parsed
	}

	tournament := &models.Tournament{
		Name:     name,
		GameType: gameType,
		Date:     date,
		Status:   models.StatusPlanned,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	s.populateLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	for i := range tournaments {
		s.populateLogoURL(&tournaments[i])
	}
	return tournaments, nil
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	s.populateLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTournamentNameRequired
		}
		tournament.Name = name
	}
	if input.GameType != nil {
		gameType := strings.TrimSpace(*input.GameType)
		if gameType == "" {
			return nil, ErrTournamentGameTypeRequired
		}
		tournament.GameType = gameType
	}
	if input.Status != nil {
		status := models.TournamentStatus(*input.Status)
		if !status.Valid() {
			return nil, ErrTournamentInvalidStatus
		}
		tournament.Status = status
	}
	if input.Date != nil {
		date, err := parseTournamentDate(*input.Date)
		if err != nil {
			return nil, err
		}
		tournament.Date = date
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to update tournament %d: %w", id, err)
	}

	s.hub.BroadcastToRoom(live.TournamentRoom(id), live.EventTournamentUpdated, tournament)
	return tournament, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id int) error {
	err := s.tournamentRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}
	return nil
}

func (s *tournamentService) UploadTournamentLogo(ctx context.Context, id int, file io.Reader, contentType string) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, ErrLogoStorageDisabled
	}

	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("tournaments/%d/logo_%d", id, time.Now().UnixNano())
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload tournament logo: %w", err)
	}

	oldKey := tournament.LogoKey
	if err := s.tournamentRepo.UpdateLogoKey(ctx, id, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to store tournament logo key: %w", err)
	}

	// Старый логотип больше не нужен; ошибка удаления не фатальна.
	if oldKey != nil && *oldKey != result.Key {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	tournament.LogoKey = &result.Key
	s.populateLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) populateLogoURL(t *models.Tournament) {
	if s.uploader == nil || t.LogoKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*t.LogoKey)
	if url != "" {
		t.LogoURL = &url
	}
}

// parseTournamentDate принимает ISO-8601 метку времени, с зоной или без.
func parseTournamentDate(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrTournamentInvalidDate, raw)
}
