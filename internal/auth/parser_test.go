package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/procure-proposals/internal/model"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestParse(t *testing.T) {
	parser := NewParser("test-secret")
	userID := uuid.New()
	orgID := uuid.New()

	token := signToken(t, "test-secret", jwt.MapClaims{
		"sub":     userID.String(),
		"role":    "VENDOR",
		"org_ids": []string{orgID.String()},
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	principal, err := parser.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID, principal.UserID)
	assert.Equal(t, model.RoleVendor, principal.Role)
	assert.Equal(t, []uuid.UUID{orgID}, principal.OrgIDs)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	parser := NewParser("test-secret")
	token := signToken(t, "other-secret", jwt.MapClaims{
		"sub":  uuid.New().String(),
		"role": "ADMIN",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	_, err := parser.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	parser := NewParser("test-secret")
	token := signToken(t, "test-secret", jwt.MapClaims{
		"sub":  uuid.New().String(),
		"role": "ADMIN",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})

	_, err := parser.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsUnknownRole(t *testing.T) {
	parser := NewParser("test-secret")
	token := signToken(t, "test-secret", jwt.MapClaims{
		"sub":  uuid.New().String(),
		"role": "SUPERUSER",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	_, err := parser.Parse(token)
	assert.Error(t, err)
}
