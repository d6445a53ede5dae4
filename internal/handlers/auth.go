package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/itemmanager/apiserver/internal/auth"
	"github.com/itemmanager/apiserver/internal/logging"
	"github.com/itemmanager/apiserver/internal/services"
	"github.com/itemmanager/apiserver/internal/validation"
	"github.com/itemmanager/apiserver/types"
)

const (
	msgNoData             = "No data provided"
	msgInternal           = "Internal server error"
	msgMissingAuthHeader  = "Missing Authorization Header"
	msgInvalidToken       = "Invalid token"
	msgExpiredToken       = "Token has expired"
	msgRevokedToken       = "Token has been revoked"
	msgOnlyAccessTokens   = "Only access tokens are allowed"
	msgOnlyRefreshTokens  = "Only refresh tokens are allowed"
	msgEmailTaken         = "User with this email already exists"
	msgInvalidCredentials = "Invalid email or password"
	msgUserNotFound       = "User not found"
	msgRegistered         = "User registered successfully"
	msgLoggedIn           = "Login successful"
	msgLoggedOut          = "Successfully logged out"
)

// AuthHandler provides account and session endpoints.
type AuthHandler struct {
	authService *services.AuthService
	log         *logging.Logger
}

func NewAuthHandler(authService *services.AuthService, log *logging.Logger) *AuthHandler {
	if log == nil {
		log = logging.NewNop()
	}
	return &AuthHandler{authService: authService, log: log}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, authService *services.AuthService, tokens *auth.TokenService, log *logging.Logger) {
	handler := NewAuthHandler(authService, log)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.With(RequireToken(tokens, auth.TokenTypeRefresh, log)).Post("/refresh", handler.Refresh)
	r.With(RequireToken(tokens, auth.TokenTypeAccess, log)).Delete("/logout", handler.Logout)
	r.With(RequireToken(tokens, auth.TokenTypeAccess, log)).Get("/me", handler.Me)
}

// RequireToken verifies the bearer token and injects it into the request
// context. Only tokens of the expected type pass.
func RequireToken(tokens *auth.TokenService, expected auth.TokenType, log *logging.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logging.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, msgMissingAuthHeader)
				return
			}

			verified, err := tokens.Verify(r.Context(), tokenString, expected)
			if err != nil {
				writeTokenError(log, w, r, expected, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withToken(r.Context(), verified)))
		})
	}
}

func writeTokenError(log *logging.Logger, w http.ResponseWriter, r *http.Request, expected auth.TokenType, err error) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		writeError(w, http.StatusUnauthorized, msgExpiredToken)
	case errors.Is(err, auth.ErrRevokedToken):
		writeError(w, http.StatusUnauthorized, msgRevokedToken)
	case errors.Is(err, auth.ErrWrongTokenType):
		if expected == auth.TokenTypeRefresh {
			writeError(w, http.StatusUnprocessableEntity, msgOnlyRefreshTokens)
			return
		}
		writeError(w, http.StatusUnprocessableEntity, msgOnlyAccessTokens)
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnprocessableEntity, msgInvalidToken)
	default:
		writeInternalError(log, w, r, msgInternal, err)
	}
}

// Register creates a new user account and returns a token pair.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	fields, ok := decodeFields(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msgNoData)
		return
	}
	if errs := validation.User(fields, false); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	email, _ := fields["email"].(string)
	password, _ := fields["password"].(string)
	name, _ := fields["name"].(string)

	session, err := h.authService.Register(r.Context(), email, password, name)
	if err != nil {
		var errs validation.Errors
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			writeError(w, http.StatusConflict, msgEmailTaken)
		case errors.As(err, &errs):
			writeValidationErrors(w, errs)
		default:
			writeInternalError(h.log, w, r, msgInternal, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, newSessionResponse(msgRegistered, session))
}

// Login verifies credentials and returns a token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	fields, ok := decodeFields(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msgNoData)
		return
	}
	if errs := validation.User(fields, true); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	email, _ := fields["email"].(string)
	password, _ := fields["password"].(string)

	session, err := h.authService.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		writeInternalError(h.log, w, r, msgInternal, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionResponse(msgLoggedIn, session))
}

// Refresh exchanges a refresh token for a new access token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgMissingAuthHeader)
		return
	}

	access, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		writeInternalError(h.log, w, r, msgInternal, err)
		return
	}

	writeJSON(w, http.StatusOK, RefreshResponse{AccessToken: access})
}

// Logout revokes the access token used for the request.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgMissingAuthHeader)
		return
	}

	if err := h.authService.Logout(r.Context(), token); err != nil {
		writeInternalError(h.log, w, r, msgInternal, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: msgLoggedOut})
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token, ok := tokenFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgMissingAuthHeader)
		return
	}

	user, err := h.authService.Me(r.Context(), token.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		writeInternalError(h.log, w, r, msgInternal, err)
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{User: user})
}

type SessionResponse struct {
	Message      string     `json:"message"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	User         types.User `json:"user"`
}

func newSessionResponse(message string, session services.Session) SessionResponse {
	return SessionResponse{
		Message:      message,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		User:         session.User,
	}
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

type UserResponse struct {
	User types.User `json:"user"`
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", auth.ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", auth.ErrMissingToken
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", auth.ErrMissingToken
	}
	return token, nil
}
