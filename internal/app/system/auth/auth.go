package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Roles                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// Role is the per-session authorization flag. It is not tied to any
// account: whoever knows the admin secret gets Admin for that browser.
type Role string

const (
	RoleGuest Role = "guest"
	RoleAdmin Role = "admin"
)

// IncorrectPasswordMessage is shown to the user after a failed login.
const IncorrectPasswordMessage = "Incorrect password"

// ErrIncorrectPassword is returned by Login when the secret does not match.
var ErrIncorrectPassword = errors.New("incorrect password")

const (
	DefaultSessionName = "kinderhub-session"

	isAdminKey = "is_admin"
)

type ctxKey string

const (
	roleKey    ctxKey = "role"
	sessionKey ctxKey = "session"
)

// CurrentRole returns the role placed in the request by LoadSession.
// Requests that never went through LoadSession are guests.
func CurrentRole(r *http.Request) Role {
	if role, ok := r.Context().Value(roleKey).(Role); ok {
		return role
	}
	return RoleGuest
}

// IsAdmin reports whether the request carries an admin session.
func IsAdmin(r *http.Request) bool {
	return CurrentRole(r) == RoleAdmin
}

// WithRole returns r with role in its context. Handler tests use it to
// skip the cookie round trip.
func WithRole(r *http.Request, role Role) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), roleKey, role))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Gate                                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// GateConfig configures NewGate.
type GateConfig struct {
	SessionKey  string
	SessionName string
	Domain      string
	Secure      bool

	// AdminSecret is compared in constant time unless AdminSecretHash (a
	// bcrypt hash) is set, in which case the hash wins.
	AdminSecret     string
	AdminSecretHash string

	// EnforceWrites makes RequireAdmin reject guests. When false the admin
	// flag only shapes what clients show.
	EnforceWrites bool
}

// Gate owns the session cookie store and the admin secret.
type Gate struct {
	store   *sessions.CookieStore
	name    string
	secret  []byte
	hash    []byte
	enforce bool
	log     *zap.Logger
}

// NewGate builds the cookie store. Cookies are Secure + SameSite=None when
// cfg.Secure is set, and SameSite=Lax otherwise so plain-http localhost works.
func NewGate(cfg GateConfig, logger *zap.Logger) (*Gate, error) {
	if cfg.SessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(cfg.SessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(cfg.SessionKey)))
	}
	if cfg.AdminSecretHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.AdminSecretHash)); err != nil {
			return nil, fmt.Errorf("admin_secret_hash is not a bcrypt hash: %w", err)
		}
	}
	if cfg.AdminSecret == "" && cfg.AdminSecretHash == "" {
		logger.Warn("no admin secret configured; nobody can enter admin mode")
	}
	if !cfg.EnforceWrites {
		logger.Warn("admin writes are not enforced server-side; any client can create, edit and delete resources")
	}

	name := cfg.SessionName
	if name == "" {
		name = DefaultSessionName
	}

	store := sessions.NewCookieStore([]byte(cfg.SessionKey))
	store.Options = &sessions.Options{
		Domain:   cfg.Domain,
		Path:     "/",
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.Secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", cfg.Secure),
		zap.String("domain", cfg.Domain),
		zap.Bool("enforce_admin_writes", cfg.EnforceWrites))

	return &Gate{
		store:   store,
		name:    name,
		secret:  []byte(cfg.AdminSecret),
		hash:    []byte(cfg.AdminSecretHash),
		enforce: cfg.EnforceWrites,
		log:     logger,
	}, nil
}

// EnforcesWrites reports whether RequireAdmin rejects guests.
func (g *Gate) EnforcesWrites() bool { return g.enforce }

// CheckPassword compares pw against the configured secret.
func (g *Gate) CheckPassword(pw string) bool {
	if len(g.hash) > 0 {
		return bcrypt.CompareHashAndPassword(g.hash, []byte(pw)) == nil
	}
	if len(g.secret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(g.secret, []byte(pw)) == 1
}

// Session returns the cookie session for r. A cookie that no longer
// decodes (rotated key, tampering) yields a fresh session.
func (g *Gate) Session(r *http.Request) *sessions.Session {
	if s, ok := r.Context().Value(sessionKey).(*sessions.Session); ok {
		return s
	}
	s, err := g.store.Get(r, g.name)
	if err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			g.log.Debug("discarding undecodable session cookie", zap.Error(err))
		} else {
			g.log.Warn("session get failed", zap.Error(err))
		}
	}
	return s
}

// LoadSession puts the session and the caller's role in the request context.
func (g *Gate) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := g.Session(r)
		role := RoleGuest
		if admin, _ := s.Values[isAdminKey].(bool); admin {
			role = RoleAdmin
		}
		ctx := context.WithValue(r.Context(), sessionKey, s)
		ctx = context.WithValue(ctx, roleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Login switches the session to Admin when password matches. On mismatch
// the session is left as it was and ErrIncorrectPassword is returned.
func (g *Gate) Login(w http.ResponseWriter, r *http.Request, password string) error {
	if !g.CheckPassword(password) {
		return ErrIncorrectPassword
	}
	s := g.Session(r)
	s.Values[isAdminKey] = true
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Logout drops the admin flag. Other session values (filter preferences)
// survive.
func (g *Gate) Logout(w http.ResponseWriter, r *http.Request) error {
	s := g.Session(r)
	delete(s.Values, isAdminKey)
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// RequireAdmin rejects guests with 401 when writes are enforced and passes
// every request through otherwise. It expects LoadSession upstream.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.enforce && !IsAdmin(r) {
			g.log.Info("admin write rejected",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "admin session required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
