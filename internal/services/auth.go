package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/itemmanager/apiserver/internal/auth"
	"github.com/itemmanager/apiserver/internal/store"
	"github.com/itemmanager/apiserver/internal/validation"
	"github.com/itemmanager/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// Session is the result of a successful registration or login.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         types.User
}

// AuthService encapsulates account and session use-cases.
type AuthService struct {
	repo   UserRepository
	tokens *auth.TokenService
}

func NewAuthService(repo UserRepository, tokens *auth.TokenService) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

// NormalizeEmail trims and lowercases an address before it reaches the store.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and opens a session for it. Callers validate
// the payload first.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (Session, error) {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return Session{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return Session{}, ErrEmailTaken
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return Session{}, validation.Errors{"Password must be at most 72 bytes long"}
		}
		return Session{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Email:        email,
		Name:         name,
		PasswordHash: hashed,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return Session{}, ErrEmailTaken
		}
		return Session{}, fmt.Errorf("create user: %w", err)
	}

	return s.openSession(user)
}

// Login checks credentials and opens a session. Unknown addresses and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("find user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return Session{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return Session{}, ErrInvalidCredentials
	}

	return s.openSession(user)
}

// Refresh issues a new access token for the subject of a verified refresh
// token. The refresh token itself stays valid.
func (s *AuthService) Refresh(_ context.Context, refresh auth.Verified) (string, error) {
	return s.tokens.IssueAccessToken(refresh.UserID)
}

// Logout revokes the presented access token.
func (s *AuthService) Logout(ctx context.Context, access auth.Verified) error {
	if err := s.tokens.Revoke(ctx, access); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Me loads the account a verified token belongs to.
func (s *AuthService) Me(ctx context.Context, userID int64) (types.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUserNotFound
		}
		return types.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *AuthService) openSession(user types.User) (Session, error) {
	access, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return Session{}, err
	}
	refresh, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{AccessToken: access, RefreshToken: refresh, User: user}, nil
}
