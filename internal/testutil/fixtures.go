package testutil

import (
	"context"
	"net/http"
	"testing"

	resourcestore "github.com/dalemusser/kinderhub/internal/app/store/resources"
	"github.com/dalemusser/kinderhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	repo resourcestore.Repository
	t    *testing.T
}

// NewFixtures creates a new Fixtures instance writing through repo.
func NewFixtures(t *testing.T, repo resourcestore.Repository) *Fixtures {
	t.Helper()
	return &Fixtures{repo: repo, t: t}
}

// Repo returns the underlying repository for direct access in tests.
func (f *Fixtures) Repo() resourcestore.Repository {
	return f.repo
}

// CreateResource creates a test resource with the given title and subject.
// Returns the resource as stored, with its generated ID.
func (f *Fixtures) CreateResource(ctx context.Context, title string, subject models.Subject) models.Resource {
	f.t.Helper()
	return f.CreateResourceWithDetails(ctx, models.ResourceInput{
		Title:       title,
		Subject:     subject,
		Type:        models.ResourceTypeWorksheet,
		URL:         "https://example.com/" + title,
		Description: "Description of " + title,
	})
}

// CreateResourceWithDetails creates a test resource from a full input.
func (f *Fixtures) CreateResourceWithDetails(ctx context.Context, in models.ResourceInput) models.Resource {
	f.t.Helper()

	id, err := f.repo.Create(ctx, in)
	if err != nil {
		f.t.Fatalf("failed to create test resource: %v", err)
	}
	return in.Resource(id)
}
