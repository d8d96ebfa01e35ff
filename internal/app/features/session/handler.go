// internal/app/features/session/handler.go
package session

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/kinderhub/internal/app/features/errors"
	"github.com/dalemusser/kinderhub/internal/app/system/auditlog"
	"github.com/dalemusser/kinderhub/internal/app/system/auth"
	"github.com/dalemusser/kinderhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Handler serves the Guest/Admin session endpoints.
type Handler struct {
	Gate    *auth.Gate
	Limiter *ratelimit.Limiter // login attempts per client IP; nil means unlimited
	Audit   *auditlog.Logger
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(gate *auth.Gate, limiter *ratelimit.Limiter, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Gate:    gate,
		Limiter: limiter,
		Audit:   audit,
		ErrLog:  errLog,
		Log:     logger,
	}
}

const tooManyAttemptsMessage = "Too many login attempts. Please try again later."

// stateResponse tells clients whether to show admin controls. WritesEnforced
// is false when the server accepts resource writes from guests too.
type stateResponse struct {
	Admin          bool `json:"admin"`
	WritesEnforced bool `json:"writes_enforced"`
}

func (h *Handler) state(admin bool) stateResponse {
	return stateResponse{Admin: admin, WritesEnforced: h.Gate.EnforcesWrites()}
}

// ServeState handles GET /session.
func (h *Handler) ServeState(w http.ResponseWriter, r *http.Request) {
	uierrors.WriteJSON(w, http.StatusOK, h.state(auth.IsAdmin(r)))
}

// HandleLogin handles POST /session/login (form: password).
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.")
		return
	}

	ip := ratelimit.ClientIP(r)
	if !h.Limiter.Allow(ip) {
		wait := h.Limiter.RetryAfter(ip)
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		h.Log.Warn("admin login rate limited", zap.String("ip", ip))
		uierrors.WriteJSON(w, http.StatusTooManyRequests, uierrors.Notification{Error: tooManyAttemptsMessage})
		return
	}

	err := h.Gate.Login(w, r, r.PostFormValue("password"))
	switch {
	case errors.Is(err, auth.ErrIncorrectPassword):
		h.Audit.AdminLoginFailed(r.Context(), r)
		uierrors.WriteJSON(w, http.StatusUnauthorized, uierrors.Notification{Error: auth.IncorrectPasswordMessage})
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "login: save session", err, "Could not start admin session.")
		return
	}

	h.Limiter.Reset(ip)
	h.Audit.AdminLogin(r.Context(), r)
	uierrors.WriteJSON(w, http.StatusOK, h.state(true))
}

// HandleLogout handles POST /session/logout. It always ends as Guest.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Gate.Logout(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
	h.Audit.Logout(r.Context(), r)
	uierrors.WriteJSON(w, http.StatusOK, h.state(false))
}
