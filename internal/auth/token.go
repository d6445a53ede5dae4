package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AccessTokenTTL  = time.Hour
	RefreshTokenTTL = 30 * 24 * time.Hour
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrMissingToken   = errors.New("missing authorization header")
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
	ErrExpiredToken   = errors.New("token has expired")
	ErrRevokedToken   = errors.New("token has been revoked")
)

// Claims is the JWT payload for both token types.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64     `json:"user_id,omitempty"`
	Type   TokenType `json:"type"`
}

// Verified holds what a successfully verified token asserts.
type Verified struct {
	Subject   string
	UserID    int64
	JTI       string
	Type      TokenType
	ExpiresAt time.Time
}

// TokenService issues and verifies HS256 tokens and consults the revocation
// list on every verification.
type TokenService struct {
	secret      []byte
	revocations RevocationChecker
	now         func() time.Time
}

func NewTokenService(secret string, revocations RevocationChecker) *TokenService {
	return &TokenService{
		secret:      []byte(secret),
		revocations: revocations,
		now:         time.Now,
	}
}

// IssueAccessToken signs a one-hour token for userID that also carries the
// numeric user_id claim.
func (s *TokenService) IssueAccessToken(userID int64) (string, error) {
	return s.issue(userID, TokenTypeAccess, AccessTokenTTL)
}

// IssueRefreshToken signs a thirty-day token usable only on the refresh
// endpoint.
func (s *TokenService) IssueRefreshToken(userID int64) (string, error) {
	return s.issue(userID, TokenTypeRefresh, RefreshTokenTTL)
}

func (s *TokenService) issue(userID int64, tokenType TokenType, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Type: tokenType,
	}
	if tokenType == TokenTypeAccess {
		claims.UserID = userID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// Verify checks signature, expiry, token type and revocation, in that order.
func (s *TokenService) Verify(ctx context.Context, tokenString string, expected TokenType) (Verified, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Verified{}, ErrExpiredToken
		}
		return Verified{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Verified{}, ErrInvalidToken
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" || claims.ID == "" {
		return Verified{}, fmt.Errorf("%w: missing subject or jti", ErrInvalidToken)
	}
	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || userID < 1 {
		return Verified{}, fmt.Errorf("%w: malformed subject", ErrInvalidToken)
	}
	if claims.Type != expected {
		return Verified{}, ErrWrongTokenType
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return Verified{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return Verified{}, ErrRevokedToken
	}

	return Verified{
		Subject:   subject,
		UserID:    userID,
		JTI:       claims.ID,
		Type:      claims.Type,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke adds the token's jti to the revocation list.
func (s *TokenService) Revoke(ctx context.Context, token Verified) error {
	return s.revocations.Revoke(ctx, token.JTI, token.ExpiresAt)
}

func (s *TokenService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.revocations.IsRevoked(ctx, jti)
}
