package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/itemmanager/apiserver/internal/auth"
	"github.com/itemmanager/apiserver/internal/store"
	"github.com/itemmanager/apiserver/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*AuthService, *fakeUserRepo, *auth.TokenService) {
	t.Helper()
	repo := newFakeUserRepo()
	tokens := auth.NewTokenService("test-secret", auth.NewMemoryRevocationList())
	return NewAuthService(repo, tokens), repo, tokens
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, repo, tokens := newAuthService(t)

	session, err := svc.Register(ctx, "  A@B.com ", "pw123456", "  Alice ")
	require.NoError(t, err)

	assert.Equal(t, "a@b.com", session.User.Email)
	assert.Equal(t, "Alice", session.User.Name)
	stored := repo.users[session.User.ID]
	assert.NotEqual(t, "pw123456", stored.PasswordHash)

	access, err := tokens.Verify(ctx, session.AccessToken, auth.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, access.UserID)

	refresh, err := tokens.Verify(ctx, session.RefreshToken, auth.TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, refresh.UserID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newAuthService(t)

	_, err := svc.Register(ctx, "a@b.com", "pw123456", "A")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "A@b.com", "pw123456", "B")
	assert.ErrorIs(t, err, ErrEmailTaken)

	repo.createErr = store.ErrConflict
	_, err = svc.Register(ctx, "c@d.com", "pw123456", "C")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterPasswordTooLong(t *testing.T) {
	svc, _, _ := newAuthService(t)

	_, err := svc.Register(context.Background(), "a@b.com", strings.Repeat("x", 73), "A")
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, validation.Errors{"Password must be at most 72 bytes long"}, verrs)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, tokens := newAuthService(t)

	registered, err := svc.Register(ctx, "a@b.com", "pw123456", "A")
	require.NoError(t, err)

	session, err := svc.Login(ctx, " A@B.COM", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, session.User.ID)

	verified, err := tokens.Verify(ctx, session.AccessToken, auth.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, verified.UserID)

	_, err = svc.Login(ctx, "a@b.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@b.com", "pw123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	svc, _, tokens := newAuthService(t)

	session, err := svc.Register(ctx, "a@b.com", "pw123456", "A")
	require.NoError(t, err)

	refresh, err := tokens.Verify(ctx, session.RefreshToken, auth.TokenTypeRefresh)
	require.NoError(t, err)
	newAccess, err := svc.Refresh(ctx, refresh)
	require.NoError(t, err)

	access, err := tokens.Verify(ctx, newAccess, auth.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, access.UserID)

	require.NoError(t, svc.Logout(ctx, access))
	_, err = tokens.Verify(ctx, newAccess, auth.TokenTypeAccess)
	assert.ErrorIs(t, err, auth.ErrRevokedToken)

	// The first access token and the refresh token stay valid.
	_, err = tokens.Verify(ctx, session.AccessToken, auth.TokenTypeAccess)
	assert.NoError(t, err)
	_, err = tokens.Verify(ctx, session.RefreshToken, auth.TokenTypeRefresh)
	assert.NoError(t, err)
}

func TestMe(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthService(t)

	session, err := svc.Register(ctx, "a@b.com", "pw123456", "A")
	require.NoError(t, err)

	user, err := svc.Me(ctx, session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)

	_, err = svc.Me(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
