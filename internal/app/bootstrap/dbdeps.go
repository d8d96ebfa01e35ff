// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"database/sql"

	"github.com/dalemusser/kinderhub/internal/app/features/health"
	resourcestore "github.com/dalemusser/kinderhub/internal/app/store/resources"
	"github.com/dalemusser/kinderhub/internal/app/system/catalog"
	"github.com/dalemusser/kinderhub/internal/app/system/events"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
// Exactly one of the Mongo pair or SQL is set, per store_backend.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	SQL           *sql.DB

	Resources resourcestore.Repository
	Pinger    health.Pinger
	Events    events.Publisher
	Catalog   *catalog.Catalog
}
