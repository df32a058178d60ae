package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
)

func TestOperatorLogin(t *testing.T) {
	db := testDB(t)
	svc := services.NewAuthService(db)

	op, err := svc.CreateOperator("admin@example.com", "s3cret", "admin")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", op.Password, "only the hash is stored")

	pair, err := svc.Login("admin@example.com", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := auth.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, op.ID, claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	_, err = svc.Login("admin@example.com", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, err = svc.Login("nobody@example.com", "s3cret")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestTokenRefresh(t *testing.T) {
	db := testDB(t)
	svc := services.NewAuthService(db)

	_, err := svc.CreateOperator("admin@example.com", "s3cret", "admin")
	require.NoError(t, err)
	pair, err := svc.Login("admin@example.com", "s3cret")
	require.NoError(t, err)

	fresh, err := svc.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)

	_, err = svc.Refresh("not-a-token")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}
