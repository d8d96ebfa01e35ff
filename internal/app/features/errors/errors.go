// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/kinderhub/internal/app/system/inputval"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Notification is the JSON body of every error response. Clients show
// Error as a transient message.
type Notification struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ErrorLogger logs a failure once, at the handler boundary, and writes the
// matching notification.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	f := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		f = append(f, zap.String("request_id", id))
	}
	return f
}

// LogServerError logs at error level and responds 500.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Error(msg, e.fields(r, err)...)
	WriteJSON(w, http.StatusInternalServerError, Notification{Error: userMsg})
}

// LogUnavailable logs at warn level and responds 503.
func (e *ErrorLogger) LogUnavailable(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Warn(msg, e.fields(r, err)...)
	WriteJSON(w, http.StatusServiceUnavailable, Notification{Error: userMsg})
}

// LogBadRequest logs at info level and responds 400.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Info(msg, e.fields(r, err)...)
	WriteJSON(w, http.StatusBadRequest, Notification{Error: userMsg})
}

// LogNotFound logs at info level and responds 404.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.log.Info(msg, e.fields(r, err)...)
	WriteJSON(w, http.StatusNotFound, Notification{Error: userMsg})
}

// WriteValidation responds 400 with the first message and every field
// message. Validation failures are expected input and are not logged.
func WriteValidation(w http.ResponseWriter, res *inputval.Result) {
	WriteJSON(w, http.StatusBadRequest, Notification{Error: res.First(), Fields: res.Fields})
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
