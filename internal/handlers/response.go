package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ivv-intern/storefront/internal/apperror"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// MessageResponse is returned by endpoints without a payload.
type MessageResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, kind apperror.Kind, message string, logger *slog.Logger) {
	WriteJSON(w, apperror.HTTPStatus(kind), ErrorResponse{Error: message, Code: string(kind)}, logger)
}

// WriteAppError maps err to its status code and writes it. Internal errors
// are logged with their cause and reported without it.
func WriteAppError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	kind := apperror.KindOf(err)
	if kind == apperror.KindInternal {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "kind", kind, "error", err)
	}
	WriteError(w, kind, apperror.PublicMessage(err), logger)
}

// decodeJSON reads a JSON body into dst. An empty body is allowed when
// optional is set and leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.InvalidArgument("request body too large")
		}
		return apperror.InvalidArgument(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}
