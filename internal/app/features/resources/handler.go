// internal/app/features/resources/handler.go
package resources

import (
	uierrors "github.com/dalemusser/kinderhub/internal/app/features/errors"
	"github.com/dalemusser/kinderhub/internal/app/system/auditlog"
	"github.com/dalemusser/kinderhub/internal/app/system/auth"
	"github.com/dalemusser/kinderhub/internal/app/system/catalog"
	"go.uber.org/zap"
)

// Handler owns every catalog endpoint: the public list, likes, reload and
// the admin create/edit/delete intents.
//
// It is constructed once at startup in bootstrap, sharing the process-wide
// Catalog and the session Gate.
type Handler struct {
	Catalog *catalog.Catalog
	Gate    *auth.Gate
	Audit   *auditlog.Logger
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
}

// NewHandler constructs a Handler.
func NewHandler(cat *catalog.Catalog, gate *auth.Gate, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Catalog: cat,
		Gate:    gate,
		Audit:   audit,
		Log:     logger,
		ErrLog:  errLog,
	}
}
