package framework

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/fitglue/bike-miles/pkg/bootstrap"
	"github.com/fitglue/bike-miles/pkg/infrastructure/sentry"
)

// ExecutionIDHeader carries the execution id back to the caller.
const ExecutionIDHeader = "X-Execution-ID"

// FrameworkContext contains dependencies injected by the framework
type FrameworkContext struct {
	Service     *bootstrap.Service
	Logger      *slog.Logger
	ExecutionID string
}

// HandlerFunc is the signature for a wrapped HTTP handler. A returned error
// is rendered as a JSON error document; see StatusError.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, fwCtx *FrameworkContext) error

// StatusError is a handler failure with the status and message to report.
// Details, when set, carries the underlying cause to the client.
type StatusError struct {
	Status  int
	Message string
	Details string
	Err     error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *StatusError) Unwrap() error { return e.Err }

// NewError returns a StatusError without details.
func NewError(status int, message string, err error) *StatusError {
	return &StatusError{Status: status, Message: message, Err: err}
}

// NewErrorWithDetails returns a StatusError whose details are err's message.
func NewErrorWithDetails(status int, message string, err error) *StatusError {
	e := &StatusError{Status: status, Message: message, Err: err}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Wrap adapts handler to http.Handler with a per-request execution id and
// logger. Errors become JSON responses; 5xx errors are reported to Sentry.
func Wrap(name string, svc *bootstrap.Service, handler HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		execID := uuid.NewString()
		w.Header().Set(ExecutionIDHeader, execID)

		logger := svc.Logger.With("handler", name, "execution_id", execID)
		logger.Debug("Request started", "method", r.Method, "path", r.URL.Path)

		fwCtx := &FrameworkContext{
			Service:     svc,
			Logger:      logger,
			ExecutionID: execID,
		}

		err := handler(w, r, fwCtx)
		if err == nil {
			logger.Debug("Request completed")
			return
		}

		var se *StatusError
		if !errors.As(err, &se) {
			se = NewErrorWithDetails(http.StatusInternalServerError, "Internal server error", err)
		}

		if se.Status >= http.StatusInternalServerError {
			logger.Error("Request failed", "status", se.Status, "error", err)
			sentry.CaptureException(err, map[string]interface{}{
				"handler":      name,
				"execution_id": execID,
			}, logger)
		} else {
			logger.Info("Request rejected", "status", se.Status, "error", err)
		}

		WriteJSON(w, se.Status, errorBody{Error: se.Message, Details: se.Details})
	})
}
