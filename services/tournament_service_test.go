package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarsky/brain-battle/models"
)

func TestCreateTournamentDefaults(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	created, err := env.tournamentService.CreateTournament(ctx, CreateTournamentInput{
		Name:     "Spring Cup",
		GameType: "quiz",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPlanned, created.Status)
	assert.False(t, created.Date.IsZero())

	fetched, err := env.tournamentService.GetTournamentByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spring Cup", fetched.Name)
	assert.Equal(t, "quiz", fetched.GameType)
	assert.Equal(t, 0, fetched.TeamCount)
}

func TestCreateTournamentValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.tournamentService.CreateTournament(ctx, CreateTournamentInput{GameType: "quiz"})
	assert.ErrorIs(t, err, ErrTournamentNameRequired)

	_, err = env.tournamentService.CreateTournament(ctx, CreateTournamentInput{Name: "  "})
	assert.ErrorIs(t, err, ErrTournamentNameRequired)

	_, err = env.tournamentService.CreateTournament(ctx, CreateTournamentInput{Name: "Cup"})
	assert.ErrorIs(t, err, ErrTournamentGameTypeRequired)

	badDate := "next tuesday"
	_, err = env.tournamentService.CreateTournament(ctx, CreateTournamentInput{
		Name: "Cup", GameType: "quiz", Date: &badDate,
	})
	assert.ErrorIs(t, err, ErrTournamentInvalidDate)
}

func TestCreateTournamentDateFormats(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	tests := []struct {
		name string
		date string
		want time.Time
	}{
		{"rfc3339 with zone", "2026-03-15T10:00:00Z", time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)},
		{"naive timestamp", "2026-03-15T10:00:00", time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)},
		{"date only", "2026-03-15", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			created, err := env.tournamentService.CreateTournament(ctx, CreateTournamentInput{
				Name: "Cup " + tc.name, GameType: "quiz", Date: &tc.date,
			})
			require.NoError(t, err)
			assert.True(t, created.Date.Equal(tc.want), "got %s", created.Date)
		})
	}
}

func TestUpdateTournamentPartial(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	created, err := env.tournamentService.CreateTournament(ctx, CreateTournamentInput{
		Name: "Cup", GameType: "quiz",
	})
	require.NoError(t, err)

	status := "Active"
	updated, err := env.tournamentService.UpdateTournament(ctx, created.ID, UpdateTournamentInput{
		Status: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, updated.Status)
	assert.Equal(t, "Cup", updated.Name)
	assert.Equal(t, "quiz", updated.GameType)

	name := "Renamed Cup"
	updated, err = env.tournamentService.UpdateTournament(ctx, created.ID, UpdateTournamentInput{
		Name: &name,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Cup", updated.Name)
	assert.Equal(t, models.StatusActive, updated.Status)
}

func TestUpdateTournamentInvalidStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	created, err := env.tournamentService.CreateTournament(ctx, CreateTournamentInput{
		Name: "Cup", GameType: "quiz",
	})
	require.NoError(t, err)

	status := "Cancelled"
	_, err = env.tournamentService.UpdateTournament(ctx, created.ID, UpdateTournamentInput{
		Status: &status,
	})
	assert.ErrorIs(t, err, ErrTournamentInvalidStatus)
}

func TestGetTournamentNotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.tournamentService.GetTournamentByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

// Удаление турнира сносит его матчи и связи с командами,
// но сами команды остаются.
func TestDeleteTournamentCascades(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	tournament, teams := seedTournamentWithTeams(t, env, 4)
	_, err := env.matchService.GenerateMatches(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, env.store.matches, 2)

	err = env.tournamentService.DeleteTournament(ctx, tournament.ID)
	require.NoError(t, err)

	assert.Empty(t, env.store.matches)
	assert.Empty(t, env.store.links)
	for _, team := range teams {
		_, err := env.teamService.UpdateTeam(ctx, team.ID, UpdateTeamInput{})
		assert.NoError(t, err, "team %d should survive tournament delete", team.ID)
	}

	err = env.tournamentService.DeleteTournament(ctx, tournament.ID)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestListTournamentsNewestFirst(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	older := "2026-01-10"
	newer := "2026-05-10"
	_, err := env.tournamentService.CreateTournament(ctx, CreateTournamentInput{
		Name: "Older", GameType: "quiz", Date: &older,
	})
	require.NoError(t, err)
	_, err = env.tournamentService.CreateTournament(ctx, CreateTournamentInput{
		Name: "Newer", GameType: "quiz", Date: &newer,
	})
	require.NoError(t, err)

	list, err := env.tournamentService.ListTournaments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Newer", list[0].Name)
	assert.Equal(t, "Older", list[1].Name)
}

func TestUploadLogoWithoutStorage(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	created, err := env.tournamentService.CreateTournament(ctx, CreateTournamentInput{
		Name: "Cup", GameType: "quiz",
	})
	require.NoError(t, err)

	_, err = env.tournamentService.UploadTournamentLogo(ctx, created.ID, strings.NewReader("png"), "image/png")
	assert.ErrorIs(t, err, ErrLogoStorageDisabled)
}
