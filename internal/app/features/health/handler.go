package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// pingTimeout is the only deadline the service puts on a store call.
const pingTimeout = 2 * time.Second

// Pinger checks that the resource store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MongoPinger pings the primary.
type MongoPinger struct{ Client *mongo.Client }

func (p MongoPinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx, readpref.Primary())
}

// SQLPinger pings a database/sql handle.
type SQLPinger struct{ DB *sql.DB }

func (p SQLPinger) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}

// CatalogState is the part of the catalog the health check reports.
type CatalogState interface {
	Loaded() bool
	LoadErr() error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Store   Pinger
	Backend string
	Catalog CatalogState
	Log     *zap.Logger
}

// NewHandler constructs a health Handler. backend names the store
// ("mongo" or "sqlite") in the response.
func NewHandler(store Pinger, backend string, cat CatalogState, logger *zap.Logger) *Handler {
	return &Handler{
		Store:   store,
		Backend: backend,
		Catalog: cat,
		Log:     logger,
	}
}

type healthResponse struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	Backend       string `json:"backend"`
	CatalogLoaded bool   `json:"catalog_loaded"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "backend":"mongo", "catalog_loaded":true }
//
// On store failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…" }
//
// A catalog whose last load failed is reported but does not fail the check;
// the store ping decides.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Backend:  h.Backend,
	}
	if h.Catalog != nil {
		resp.CatalogLoaded = h.Catalog.Loaded() && h.Catalog.LoadErr() == nil
	}

	if err := h.Store.Ping(ctx); err != nil {
		h.Log.Error("health-check: store ping failed", zap.String("backend", h.Backend), zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	_ = json.NewEncoder(w).Encode(resp)
}
