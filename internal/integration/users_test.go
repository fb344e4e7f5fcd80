//go:build integration_test

package integration

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fittrack/internal/users"
)

func (s *IntegrationTestSuite) TestUserProviderLinking() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t := s.T()
	repo := users.NewRepo(s.dbPool)
	email := "linker-" + uuid.NewString()[:8] + "@example.com"

	devLogin, err := repo.FindOrCreate(ctx, users.ExternalProfile{
		Provider:   users.ProviderDev,
		ProviderID: "dev-" + email,
		Email:      email,
		Name:       "Local Linker",
	})
	require.NoError(t, err)
	assert.Equal(t, users.ProviderDev, devLogin.Provider)
	assert.Equal(t, users.RoleUser, devLogin.Role)
	assert.Nil(t, devLogin.AvatarURL)

	// same email from another provider links to the existing user
	googleID := uuid.NewString()
	linked, err := repo.FindOrCreate(ctx, users.ExternalProfile{
		Provider:   users.ProviderGoogle,
		ProviderID: googleID,
		Email:      "  " + strings.ToUpper(email) + " ",
		Name:       "Google Linker",
		AvatarURL:  "https://example.com/avatar.png",
	})
	require.NoError(t, err)
	assert.Equal(t, devLogin.ID, linked.ID)
	assert.Equal(t, users.ProviderGoogle, linked.Provider)
	assert.Equal(t, googleID, linked.ProviderID)
	assert.Equal(t, "Local Linker", linked.Name)
	require.NotNil(t, linked.AvatarURL)
	assert.Equal(t, "https://example.com/avatar.png", *linked.AvatarURL)

	// from now on the provider identity finds the user and refreshes the name
	again, err := repo.FindOrCreate(ctx, users.ExternalProfile{
		Provider:   users.ProviderGoogle,
		ProviderID: googleID,
		Email:      email,
		Name:       "Renamed Linker",
	})
	require.NoError(t, err)
	assert.Equal(t, devLogin.ID, again.ID)
	assert.Equal(t, "Renamed Linker", again.Name)
	require.NotNil(t, again.AvatarURL)

	byEmail, err := repo.GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, devLogin.ID, byEmail.ID)
	assert.Equal(t, users.ProviderGoogle, byEmail.Provider)

	_, err = repo.FindOrCreate(ctx, users.ExternalProfile{Provider: users.ProviderGoogle, Email: email})
	assert.ErrorIs(t, err, users.ErrInvalidProfile)
}
