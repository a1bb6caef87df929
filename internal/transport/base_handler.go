package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/pkg/logger"
)

// Response is the envelope every API endpoint answers with.
type Response struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`
	Error      *ErrorBody  `json:"error,omitempty"`
}

type ErrorBody struct {
	Type    internal.ErrorType `json:"type"`
	Code    internal.ErrorCode `json:"code"`
	Message string             `json:"message"`
	Details interface{}        `json:"details,omitempty"`
	Cause   string             `json:"cause,omitempty"`
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
	// Debug adds the underlying cause of internal errors to responses.
	// It must stay off in production.
	Debug bool
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger, debug bool) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg, Debug: debug}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteSuccess wraps data in the success envelope.
func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	h.WriteJSON(w, status, Response{Success: true, Data: data, Message: message})
}

func (h *BaseHandler) WritePaginated(w http.ResponseWriter, data interface{}, pagination interface{}, message string) {
	h.WriteJSON(w, http.StatusOK, Response{Success: true, Data: data, Pagination: pagination, Message: message})
}

// WriteError writes an AppError in the error envelope.
func (h *BaseHandler) WriteError(w http.ResponseWriter, appErr *internal.AppError) {
	body := &ErrorBody{
		Type:    appErr.Type,
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}
	if h.Debug && appErr.Cause != nil {
		body.Cause = appErr.Cause.Error()
	}
	h.WriteJSON(w, appErr.StatusCode, Response{Success: false, Error: body})
}

// HandleServiceError maps any error coming out of a service to a response.
// Errors that are not AppErrors are treated as internal failures.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		appErr = internal.NewInternalError("Internal server error", err)
	}

	log := logger.From(r.Context())
	if appErr.StatusCode >= http.StatusInternalServerError {
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		log.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "type", appErr.Type, "code", appErr.Code)
	}

	h.WriteError(w, appErr)
}

// DecodeJSON reads the request body into dst.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return internal.ErrInvalidRequestBody
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return internal.ErrInvalidRequestBody
		}
		return internal.ErrInvalidRequestBody.WithCause(err)
	}
	return nil
}

// RequireUser returns the authenticated user id or answers 401.
func (h *BaseHandler) RequireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := internal.UserIDFromContext(r.Context())
	if userID == "" {
		h.WriteError(w, internal.ErrMissingToken)
		return "", false
	}
	return userID, true
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}
