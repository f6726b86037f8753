package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/maintenance-tracker/internal/domain"
)

func TestIssueAndParseSession(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, expiresAt, err := tm.IssueSession("Priya Admin", domain.RoleAdmin)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "Priya Admin", claims.Name)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestIssueSessionValidation(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	_, _, err := tm.IssueSession("   ", domain.RoleTeacher)
	assert.Error(t, err)

	_, _, err = tm.IssueSession("J. Doe", domain.Role("JANITOR"))
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 60).IssueSession("J. Doe", domain.RoleTeacher)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 60).ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	_, err := tm.ParseToken("not-a-jwt")
	assert.Error(t, err)
}

func TestTTLDefaultsWhenNonPositive(t *testing.T) {
	tm := NewTokenManager("test-secret", 0)
	_, expiresAt, err := tm.IssueSession("J. Doe", domain.RoleTeacher)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(480*time.Minute), expiresAt, 5*time.Second)
}
