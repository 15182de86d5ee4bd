package errors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"pingwards-backend/pkg/common"
)

// ErrorResponse represents the API error response format
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ErrorHandler handles errors and sends appropriate HTTP responses
type ErrorHandler struct {
	logger        *zap.Logger
	debug         bool
	defaultStatus int
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{
		logger:        logger,
		debug:         debug,
		defaultStatus: http.StatusInternalServerError,
	}
}

// Handle processes an error and sends an HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	requestID, ok := common.GetRequestID(r.Context())
	if !ok {
		requestID = r.Header.Get("X-Request-ID")
	}

	var status int
	var response ErrorResponse

	if appErr := GetAppError(err); appErr != nil {
		status = appErr.HTTPStatus
		if status == 0 {
			status = h.defaultStatus
		}

		response = ErrorResponse{
			Error:     true,
			Type:      string(appErr.Type),
			Message:   appErr.Message,
			Details:   appErr.Details,
			RequestID: requestID,
		}

		h.logError(r, status, appErr)
	} else {
		status = h.defaultStatus
		message := "internal server error"
		if h.debug {
			message = err.Error()
		}

		response = ErrorResponse{
			Error:     true,
			Type:      string(ErrorTypeInternal),
			Message:   message,
			RequestID: requestID,
		}

		h.logger.Error("Unhandled error",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(response); encErr != nil {
		h.logger.Error("Failed to encode error response", zap.Error(encErr))
	}
}

func (h *ErrorHandler) logError(r *http.Request, status int, appErr *AppError) {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("errorType", string(appErr.Type)),
	}
	if appErr.Cause != nil {
		fields = append(fields, zap.NamedError("cause", appErr.Cause))
	}

	// Client errors are expected; only infrastructure failures are alarming
	if status >= 500 {
		h.logger.Error(appErr.Message, fields...)
	} else {
		h.logger.Warn(appErr.Message, fields...)
	}
}
