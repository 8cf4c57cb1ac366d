package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mkarsky/brain-battle/brackets"
	"github.com/mkarsky/brain-battle/live"
	"github.com/mkarsky/brain-battle/models"
	"github.com/mkarsky/brain-battle/repositories"
)

// fakeStore — общее in-memory состояние для фейковых репозиториев.
// Эмулирует каскады и ограничения внешних ключей так же, как схема БД.
type fakeStore struct {
	tournaments map[int]models.Tournament
	teams       map[int]models.Team
	links       []link
	matches     map[int]models.Match
	nextID      int
}

type link struct {
	tournamentID int
	teamID       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tournaments: make(map[int]models.Tournament),
		teams:       make(map[int]models.Team),
		matches:     make(map[int]models.Match),
	}
}

func (s *fakeStore) id() int {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) teamCount(tournamentID int) int {
	count := 0
	for _, l := range s.links {
		if l.tournamentID == tournamentID {
			count++
		}
	}
	return count
}

// --- TournamentRepository ---

type fakeTournamentRepo struct {
	store *fakeStore
}

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	t.ID = r.store.id()
	t.CreatedAt = time.Now()
	r.store.tournaments[t.ID] = *t
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := r.store.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	t.TeamCount = r.store.teamCount(id)
	return &t, nil
}

func (r *fakeTournamentRepo) List(_ context.Context) ([]models.Tournament, error) {
	tournaments := make([]models.Tournament, 0, len(r.store.tournaments))
	for id, t := range r.store.tournaments {
		t.TeamCount = r.store.teamCount(id)
		tournaments = append(tournaments, t)
	}
	sort.Slice(tournaments, func(i, j int) bool {
		if !tournaments[i].Date.Equal(tournaments[j].Date) {
			return tournaments[i].Date.After(tournaments[j].Date)
		}
		return tournaments[i].ID > tournaments[j].ID
	})
	return tournaments, nil
}

func (r *fakeTournamentRepo) Update(_ context.Context, t *models.Tournament) error {
	if _, ok := r.store.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	r.store.tournaments[t.ID] = *t
	return nil
}

func (r *fakeTournamentRepo) UpdateLogoKey(_ context.Context, tournamentID int, logoKey *string) error {
	t, ok := r.store.tournaments[tournamentID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.LogoKey = logoKey
	r.store.tournaments[tournamentID] = t
	return nil
}

// Delete каскадно убирает матчи и связи турнира, как FK ON DELETE CASCADE.
func (r *fakeTournamentRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.store.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.store.tournaments, id)
	for matchID, m := range r.store.matches {
		if m.TournamentID == id {
			delete(r.store.matches, matchID)
		}
	}
	remaining := r.store.links[:0]
	for _, l := range r.store.links {
		if l.tournamentID != id {
			remaining = append(remaining, l)
		}
	}
	r.store.links = remaining
	return nil
}

// --- TeamRepository ---

type fakeTeamRepo struct {
	store *fakeStore
}

func (r *fakeTeamRepo) Create(_ context.Context, team *models.Team) error {
	team.ID = r.store.id()
	team.CreatedAt = time.Now()
	r.store.teams[team.ID] = *team
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	team, ok := r.store.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return &team, nil
}

func (r *fakeTeamRepo) ListAll(_ context.Context) ([]models.Team, error) {
	teams := make([]models.Team, 0, len(r.store.teams))
	for _, t := range r.store.teams {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool {
		if teams[i].Name != teams[j].Name {
			return teams[i].Name < teams[j].Name
		}
		return teams[i].ID < teams[j].ID
	})
	return teams, nil
}

func (r *fakeTeamRepo) ListByTournament(_ context.Context, tournamentID int) ([]models.Team, error) {
	teams := make([]models.Team, 0)
	for _, l := range r.store.links {
		if l.tournamentID == tournamentID {
			teams = append(teams, r.store.teams[l.teamID])
		}
	}
	return teams, nil
}

func (r *fakeTeamRepo) ListLinks(_ context.Context) ([]repositories.TeamTournamentLink, error) {
	links := make([]repositories.TeamTournamentLink, 0, len(r.store.links))
	for _, l := range r.store.links {
		links = append(links, repositories.TeamTournamentLink{
			TeamID:         l.teamID,
			TournamentID:   l.tournamentID,
			TournamentName: r.store.tournaments[l.tournamentID].Name,
		})
	}
	return links, nil
}

func (r *fakeTeamRepo) Link(_ context.Context, tournamentID, teamID int) error {
	for _, l := range r.store.links {
		if l.tournamentID == tournamentID && l.teamID == teamID {
			return nil
		}
	}
	r.store.links = append(r.store.links, link{tournamentID: tournamentID, teamID: teamID})
	return nil
}

func (r *fakeTeamRepo) Unlink(_ context.Context, tournamentID, teamID int) error {
	remaining := r.store.links[:0]
	for _, l := range r.store.links {
		if l.tournamentID != tournamentID || l.teamID != teamID {
			remaining = append(remaining, l)
		}
	}
	r.store.links = remaining
	return nil
}

func (r *fakeTeamRepo) Update(_ context.Context, team *models.Team) error {
	if _, ok := r.store.teams[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	r.store.teams[team.ID] = *team
	return nil
}

// Delete отклоняется, пока на команду ссылаются матчи (как FK RESTRICT).
func (r *fakeTeamRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.store.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	for _, m := range r.store.matches {
		if m.Team1ID == id || m.Team2ID == id || (m.WinnerID != nil && *m.WinnerID == id) {
			return repositories.ErrTeamInUse
		}
	}
	delete(r.store.teams, id)
	remaining := r.store.links[:0]
	for _, l := range r.store.links {
		if l.teamID != id {
			remaining = append(remaining, l)
		}
	}
	r.store.links = remaining
	return nil
}

// --- MatchRepository ---

type fakeMatchRepo struct {
	store *fakeStore
}

func (r *fakeMatchRepo) Create(_ context.Context, m *models.Match) error {
	if m.Team1ID == m.Team2ID {
		return repositories.ErrMatchSameTeam
	}
	if _, ok := r.store.tournaments[m.TournamentID]; !ok {
		return repositories.ErrMatchTournamentInvalid
	}
	for _, teamID := range []int{m.Team1ID, m.Team2ID} {
		if _, ok := r.store.teams[teamID]; !ok {
			return repositories.ErrMatchTeamInvalid
		}
	}
	m.ID = r.store.id()
	r.store.matches[m.ID] = *m
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	m, ok := r.store.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	r.embedTeams(&m)
	return &m, nil
}

func (r *fakeMatchRepo) ListAll(_ context.Context) ([]models.Match, error) {
	matches := make([]models.Match, 0, len(r.store.matches))
	for _, m := range r.store.matches {
		r.embedTeams(&m)
		name := r.store.tournaments[m.TournamentID].Name
		m.TournamentName = &name
		matches = append(matches, m)
	}
	sort.Slice(matches, func(i, j int) bool {
		di, dj := derefOrEmpty(matches[i].ScheduledDate), derefOrEmpty(matches[j].ScheduledDate)
		if di != dj {
			return di < dj
		}
		ti, tj := derefOrEmpty(matches[i].ScheduledTime), derefOrEmpty(matches[j].ScheduledTime)
		if ti != tj {
			return ti < tj
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

func (r *fakeMatchRepo) ListByTournament(_ context.Context, tournamentID int) ([]models.Match, error) {
	matches := make([]models.Match, 0)
	for _, m := range r.store.matches {
		if m.TournamentID == tournamentID {
			r.embedTeams(&m)
			matches = append(matches, m)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].RoundNumber != matches[j].RoundNumber {
			return matches[i].RoundNumber < matches[j].RoundNumber
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

func (r *fakeMatchRepo) Update(_ context.Context, m *models.Match) error {
	stored, ok := r.store.matches[m.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	stored.Score = m.Score
	stored.WinnerID = m.WinnerID
	stored.ScheduledDate = m.ScheduledDate
	stored.ScheduledTime = m.ScheduledTime
	stored.Location = m.Location
	r.store.matches[m.ID] = stored
	return nil
}

func (r *fakeMatchRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.store.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.store.matches, id)
	return nil
}

func (r *fakeMatchRepo) embedTeams(m *models.Match) {
	t1 := r.store.teams[m.Team1ID]
	t2 := r.store.teams[m.Team2ID]
	m.Team1 = &t1
	m.Team2 = &t2
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// --- Сборка сервисов поверх фейков ---

type testEnv struct {
	store             *fakeStore
	tournamentRepo    *fakeTournamentRepo
	teamRepo          *fakeTeamRepo
	matchRepo         *fakeMatchRepo
	tournamentService TournamentService
	teamService       TeamService
	matchService      MatchService
}

func newTestEnv() *testEnv {
	store := newFakeStore()
	tournamentRepo := &fakeTournamentRepo{store: store}
	teamRepo := &fakeTeamRepo{store: store}
	matchRepo := &fakeMatchRepo{store: store}
	hub := live.NewHub(slog.Default())

	return &testEnv{
		store:             store,
		tournamentRepo:    tournamentRepo,
		teamRepo:          teamRepo,
		matchRepo:         matchRepo,
		tournamentService: NewTournamentService(tournamentRepo, nil, hub),
		teamService:       NewTeamService(teamRepo, tournamentRepo),
		matchService: NewMatchService(
			matchRepo, teamRepo, tournamentRepo,
			brackets.NewRandomPairingGenerator(), hub,
		),
	}
}

// seedTournamentWithTeams создаёт турнир и n привязанных к нему команд.
func seedTournamentWithTeams(t *testing.T, env *testEnv, n int) (*models.Tournament, []models.Team) {
	t.Helper()
	ctx := context.Background()

	tournament, err := env.tournamentService.CreateTournament(ctx, CreateTournamentInput{
		Name:     "Seeded Cup",
		GameType: "quiz",
	})
	require.NoError(t, err)

	teams := make([]models.Team, 0, n)
	for i := 1; i <= n; i++ {
		name := fmt.Sprintf("Team %d", i)
		team, created, err := env.teamService.AddTeamToTournament(ctx, tournament.ID, AddTeamInput{Name: &name})
		require.NoError(t, err)
		require.True(t, created)
		teams = append(teams, *team)
	}
	return tournament, teams
}
