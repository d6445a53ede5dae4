package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/itemmanager/apiserver/internal/auth"
	"github.com/itemmanager/apiserver/internal/logging"
	"github.com/itemmanager/apiserver/internal/validation"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type contextKey string

const contextTokenKey contextKey = "token"

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationErrorResponse struct {
	Errors []string `json:"errors"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func withToken(ctx context.Context, token auth.Verified) context.Context {
	return context.WithValue(ctx, contextTokenKey, token)
}

// tokenFromContext returns the token verified by RequireToken.
func tokenFromContext(ctx context.Context) (auth.Verified, bool) {
	token, ok := ctx.Value(contextTokenKey).(auth.Verified)
	return token, ok
}

// decodeFields reads a JSON object from the request body. It reports false
// for a missing, malformed, non-object or empty body.
func decodeFields(r *http.Request) (validation.Fields, bool) {
	if r.Body == nil {
		return nil, false
	}
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.UseNumber()

	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil {
		return nil, false
	}
	if len(fields) == 0 {
		return nil, false
	}
	return validation.Fields(fields), true
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeValidationErrors(w http.ResponseWriter, errs validation.Errors) {
	writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{Errors: errs})
}

// writeInternalError logs err and answers 500 with message only.
func writeInternalError(log *logging.Logger, w http.ResponseWriter, r *http.Request, message string, err error) {
	log.WithContext(r.Context()).Error(message, zap.Error(err))
	writeError(w, http.StatusInternalServerError, message)
}
