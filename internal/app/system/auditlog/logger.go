// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/kinderhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Category groups audit events so each group can be switched off.
type Category string

const (
	CategoryAuth  Category = "auth"
	CategoryAdmin Category = "admin"
)

const (
	EventAdminLogin       = "admin_login"
	EventAdminLoginFailed = "admin_login_failed"
	EventLogout           = "logout"
	EventResourceCreated  = "resource_created"
	EventResourceUpdated  = "resource_updated"
	EventResourceDeleted  = "resource_deleted"
)

// Event is a single audit record.
type Event struct {
	Category      Category
	EventType     string
	IP            string
	UserAgent     string
	Success       bool
	FailureReason string
	Details       map[string]string
}

// Config holds audit logging configuration. Each value is "on" or "off";
// anything else counts as "on".
type Config struct {
	Auth  string
	Admin string
}

// Logger writes audit events as structured zap entries tagged audit=true.
type Logger struct {
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(zapLog *zap.Logger, config Config) *Logger {
	return &Logger{zapLog: zapLog, config: config}
}

// NewNopLogger returns a logger that records nothing.
func NewNopLogger() *Logger {
	return New(zap.NewNop(), Config{Auth: "off", Admin: "off"})
}

// Log records event unless its category is switched off.
// A nil Logger is a no-op.
func (l *Logger) Log(_ context.Context, event Event) {
	if l == nil {
		return
	}

	setting := "on"
	switch event.Category {
	case CategoryAuth:
		setting = l.config.Auth
	case CategoryAdmin:
		setting = l.config.Admin
	}
	if setting == "off" {
		return
	}

	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", string(event.Category)),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

func (l *Logger) fromRequest(r *http.Request, cat Category, typ string, ok bool) Event {
	return Event{
		Category:  cat,
		EventType: typ,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   ok,
	}
}

// --- Session events ---

// AdminLogin logs a Guest→Admin transition.
func (l *Logger) AdminLogin(ctx context.Context, r *http.Request) {
	l.Log(ctx, l.fromRequest(r, CategoryAuth, EventAdminLogin, true))
}

// AdminLoginFailed logs a rejected admin password.
func (l *Logger) AdminLoginFailed(ctx context.Context, r *http.Request) {
	e := l.fromRequest(r, CategoryAuth, EventAdminLoginFailed, false)
	e.FailureReason = "incorrect password"
	l.Log(ctx, e)
}

// Logout logs an Admin→Guest transition.
func (l *Logger) Logout(ctx context.Context, r *http.Request) {
	l.Log(ctx, l.fromRequest(r, CategoryAuth, EventLogout, true))
}

// --- Catalog admin events ---

// ResourceCreated logs an admin create.
func (l *Logger) ResourceCreated(ctx context.Context, r *http.Request, resourceID, title string) {
	e := l.fromRequest(r, CategoryAdmin, EventResourceCreated, true)
	e.Details = map[string]string{"resource_id": resourceID, "title": title}
	l.Log(ctx, e)
}

// ResourceUpdated logs an admin edit.
func (l *Logger) ResourceUpdated(ctx context.Context, r *http.Request, resourceID string) {
	e := l.fromRequest(r, CategoryAdmin, EventResourceUpdated, true)
	e.Details = map[string]string{"resource_id": resourceID}
	l.Log(ctx, e)
}

// ResourceDeleted logs an admin delete.
func (l *Logger) ResourceDeleted(ctx context.Context, r *http.Request, resourceID string) {
	e := l.fromRequest(r, CategoryAdmin, EventResourceDeleted, true)
	e.Details = map[string]string{"resource_id": resourceID}
	l.Log(ctx, e)
}
