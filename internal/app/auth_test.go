package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glabank/banking-service/internal/domain"
	"github.com/glabank/banking-service/internal/store/memory"
)

const testJWTSecret = "test-secret"

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(memory.New(), testJWTSecret, time.Hour)

	user, token, err := svc.Register(ctx, domain.RegisterRequest{
		Email:    "Alice@Example.com",
		Password: "hunter22",
		Name:     "Alice",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice@example.com", user.Email, "email must be lowercased")
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	// Login works with any email casing.
	loggedIn, token, err := svc.Login(ctx, domain.LoginRequest{
		Email:    "ALICE@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(memory.New(), testJWTSecret, time.Hour)

	_, _, err := svc.Register(ctx, domain.RegisterRequest{Email: "a@b.com", Password: "secret1"})
	require.ErrorIs(t, err, ErrMissingFields)

	_, _, err = svc.Register(ctx, domain.RegisterRequest{Email: "a@b.com", Password: "short", Name: "A"})
	require.ErrorIs(t, err, ErrPasswordTooShort)

	_, _, err = svc.Register(ctx, domain.RegisterRequest{Email: "a@b.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, domain.RegisterRequest{Email: "a@b.com", Password: "secret1", Name: "A"})
	require.ErrorIs(t, err, ErrEmailExists)
}

func TestLoginBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(memory.New(), testJWTSecret, time.Hour)

	_, _, err := svc.Register(ctx, domain.RegisterRequest{Email: "a@b.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	// Unknown email and wrong password are indistinguishable.
	_, _, err = svc.Login(ctx, domain.LoginRequest{Email: "nobody@b.com", Password: "secret1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, domain.LoginRequest{Email: "a@b.com", Password: "wrong11"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(memory.New(), testJWTSecret, time.Hour)

	user, token, err := svc.Register(ctx, domain.RegisterRequest{Email: "a@b.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	authed, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(memory.New(), testJWTSecret, time.Hour)

	_, err := svc.Authenticate(ctx, "not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)

	// A token signed with a different secret must be rejected.
	other := NewAuthService(memory.New(), "other-secret", time.Hour)
	_, token, err := other.Register(ctx, domain.RegisterRequest{Email: "a@b.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(memory.New(), testJWTSecret, time.Hour)
	svc.jwtExpiry = -time.Minute

	_, token, err := svc.Register(ctx, domain.RegisterRequest{Email: "a@b.com", Password: "secret1", Name: "A"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, token)
	require.ErrorIs(t, err, ErrTokenExpired)
}
