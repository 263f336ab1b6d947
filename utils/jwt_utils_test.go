package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatdesk/api/models"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	profile := &models.Profile{ID: "0b9f3c1e-4f7a-4e55-9d4e-5b1f8d0f2a11", Email: "owner@example.com"}

	token, err := m.GenerateJWT(profile)
	require.NoError(t, err)

	claims, err := m.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, claims.UserID)
	assert.Equal(t, profile.Email, claims.Email)
	assert.Equal(t, profile.ID, claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret", time.Hour).GenerateJWT(&models.Profile{ID: "u1", Email: "a@b.c"})
	require.NoError(t, err)

	_, err = NewTokenManager("other", time.Hour).ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.GenerateJWT(&models.Profile{ID: "u1", Email: "a@b.c"})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateJWT(token)
	assert.Error(t, err)
}

func TestParseTimeRange(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	start, end, err := ParseTimeRange("", "", now)
	require.NoError(t, err)
	assert.Equal(t, now, end)
	assert.Equal(t, now.Add(-7*24*time.Hour), start)

	start, end, err = ParseTimeRange("2026-10-01T00:00:00Z", "2026-10-02T00:00:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	_, _, err = ParseTimeRange("yesterday", "", now)
	assert.Error(t, err)

	_, _, err = ParseTimeRange("2026-10-03T00:00:00Z", "2026-10-02T00:00:00Z", now)
	assert.Error(t, err)
}

func TestIsValidIntervalRejectsInjection(t *testing.T) {
	assert.True(t, IsValidInterval("Day"))
	assert.False(t, IsValidInterval("day"))
	assert.False(t, IsValidInterval("Day) OR 1=1 --"))
}
