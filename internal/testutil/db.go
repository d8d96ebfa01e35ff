package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	resourcestore "github.com/dalemusser/kinderhub/internal/app/store/resources"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoURIEnv names the variable that enables MongoDB-backed tests.
const MongoURIEnv = "KINDERHUB_TEST_MONGO_URI"

// TestContext returns a context bounded for a single test.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// NewSQLiteStore returns a repository on a private in-memory SQLite
// database with the schema applied. It is closed when the test ends.
func NewSQLiteStore(t *testing.T) *resourcestore.SQLStore {
	t.Helper()

	db, err := resourcestore.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := resourcestore.NewSQL(db)
	ctx, cancel := TestContext()
	defer cancel()
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return store
}

// SetupTestDB connects to the MongoDB named by KINDERHUB_TEST_MONGO_URI and
// returns a fresh, uniquely named database that is dropped after the test.
// The test is skipped when the variable is unset.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv(MongoURIEnv)
	if uri == "" {
		t.Skipf("%s not set; skipping MongoDB test", MongoURIEnv)
	}

	ctx, cancel := TestContext()
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("mongo connect: %v", err)
	}
	db := client.Database("kinderhub_test_" + primitive.NewObjectID().Hex())

	t.Cleanup(func() {
		ctx, cancel := TestContext()
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}
