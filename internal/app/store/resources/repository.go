// internal/app/store/resources/repository.go
package resourcestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/kinderhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository is the data-access facade over the remote resource store.
// Every call may fail; failures are returned as-is with no retry.
type Repository interface {
	ListAll(ctx context.Context) ([]models.Resource, error)
	ListBySubject(ctx context.Context, subject models.Subject) ([]models.Resource, error)
	Create(ctx context.Context, in models.ResourceInput) (primitive.ObjectID, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.ResourcePatch) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Like(ctx context.Context, id primitive.ObjectID) (int, error)
}

var (
	// ErrUnavailable wraps any network or service failure of the store.
	ErrUnavailable = errors.New("resource store unavailable")
	// ErrNotFound is returned when a mutation targets a missing record.
	ErrNotFound = errors.New("resource not found")
)

var (
	_ Repository = (*Store)(nil)
	_ Repository = (*SQLStore)(nil)
)

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

// normalize makes sure every record carries a non-nil tag slice so
// clients always see a JSON array.
func normalize(rs []models.Resource) []models.Resource {
	if rs == nil {
		return []models.Resource{}
	}
	for i := range rs {
		if rs[i].Tags == nil {
			rs[i].Tags = []string{}
		}
	}
	return rs
}
