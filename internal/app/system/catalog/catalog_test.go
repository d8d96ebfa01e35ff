package catalog_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	resourcestore "github.com/dalemusser/kinderhub/internal/app/store/resources"
	"github.com/dalemusser/kinderhub/internal/app/system/catalog"
	"github.com/dalemusser/kinderhub/internal/app/system/events"
	"github.com/dalemusser/kinderhub/internal/app/system/filter"
	"github.com/dalemusser/kinderhub/internal/domain/models"
	"github.com/dalemusser/kinderhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// flakyRepo delegates to a real store but lets a test replace ListAll.
type flakyRepo struct {
	resourcestore.Repository
	listAll func(ctx context.Context) ([]models.Resource, error)
}

func (f *flakyRepo) ListAll(ctx context.Context) ([]models.Resource, error) {
	if f.listAll != nil {
		return f.listAll(ctx)
	}
	return f.Repository.ListAll(ctx)
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recorder) Close() error { return nil }

func (r *recorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Kind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

var errNetwork = errors.New("network down")

func newCatalog(t *testing.T, policy catalog.WritePolicy) (*catalog.Catalog, *testutil.Fixtures, *recorder) {
	t.Helper()
	repo := testutil.NewSQLiteStore(t)
	rec := &recorder{}
	return catalog.New(repo, rec, policy, nil), testutil.NewFixtures(t, repo), rec
}

func TestParseWritePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    catalog.WritePolicy
		wantErr bool
	}{
		{"", catalog.PolicyMerge, false},
		{"merge", catalog.PolicyMerge, false},
		{"refetch", catalog.PolicyRefetch, false},
		{"Merge", "", true},
		{"poll", "", true},
	}
	for _, tt := range tests {
		got, err := catalog.ParseWritePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseWritePolicy(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestCatalog_SubjectFilterAfterLoad(t *testing.T) {
	c, f, _ := newCatalog(t, catalog.PolicyMerge)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.CreateResource(ctx, "Feelings Wheel", models.SubjectSEL)
	want := f.CreateResource(ctx, "Calm Down Corner", models.SubjectPositiveDiscipline)
	f.CreateResource(ctx, "Block Play", models.SubjectPlayBasedLearning)

	if err := c.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if n := len(c.Resources()); n != 3 {
		t.Fatalf("expected 3 resources, got %d", n)
	}

	got := c.Visible(filter.Criteria{Subject: models.SubjectSelector(models.SubjectPositiveDiscipline)})
	if len(got) != 1 || got[0].ID != want.ID {
		t.Errorf("expected only %q, got %+v", want.Title, got)
	}
	if !c.Loaded() || c.LoadErr() != nil {
		t.Errorf("Loaded=%v LoadErr=%v", c.Loaded(), c.LoadErr())
	}
}

func TestCatalog_CreatePrepends(t *testing.T) {
	c, f, rec := newCatalog(t, catalog.PolicyMerge)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.CreateResource(ctx, "Existing", models.SubjectPlayBasedLearning)
	if err := c.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	r, err := c.Create(ctx, models.ResourceInput{
		Title:       "Fun Math Sheets",
		Subject:     models.SubjectSEL,
		Type:        models.ResourceTypeWorksheet,
		URL:         "https://example.com/math",
		Description: "Counting practice",
		Tags:        models.ParseTags("a, b"),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if r.ID == primitive.NilObjectID {
		t.Error("expected an assigned ID")
	}

	items := c.Resources()
	if len(items) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(items))
	}
	head := items[0]
	if head.Title != "Fun Math Sheets" || head.ID != r.ID {
		t.Errorf("head: got %+v", head)
	}
	if !slices.Equal(head.Tags, []string{"a", "b"}) {
		t.Errorf("tags: got %v", head.Tags)
	}
	if head.Likes != 0 {
		t.Errorf("likes: got %d, want 0", head.Likes)
	}
	if k := rec.kinds(); !slices.Equal(k, []events.Kind{events.ResourceCreated}) {
		t.Errorf("events: got %v", k)
	}
}

func TestCatalog_DeleteShrinks(t *testing.T) {
	c, f, rec := newCatalog(t, catalog.PolicyMerge)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.CreateResource(ctx, "One", models.SubjectSEL)
	gone := f.CreateResource(ctx, "Two", models.SubjectSEL)
	f.CreateResource(ctx, "Three", models.SubjectSEL)
	if err := c.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	before := len(c.Resources())

	if err := c.Delete(ctx, gone.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	after := c.Resources()
	if len(after) != before-1 {
		t.Errorf("length: got %d, want %d", len(after), before-1)
	}
	for _, r := range after {
		if r.ID == gone.ID {
			t.Errorf("deleted id %s still present", gone.ID.Hex())
		}
	}
	if len(rec.events) != 1 || rec.events[0].Title != "Two" {
		t.Errorf("expected one delete event carrying the old title, got %+v", rec.events)
	}
}

func TestCatalog_FailedLoadKeepsState(t *testing.T) {
	store := testutil.NewSQLiteStore(t)
	repo := &flakyRepo{Repository: store}
	c := catalog.New(repo, nil, catalog.PolicyMerge, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// First load fails: state stays empty and the error is recorded.
	repo.listAll = func(context.Context) ([]models.Resource, error) { return nil, errNetwork }
	if err := c.Load(ctx); !errors.Is(err, errNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if got := c.Resources(); len(got) != 0 {
		t.Errorf("expected empty catalog, got %d items", len(got))
	}
	if !errors.Is(c.LoadErr(), errNetwork) || c.Loaded() {
		t.Errorf("LoadErr=%v Loaded=%v", c.LoadErr(), c.Loaded())
	}

	// A successful load clears the error.
	repo.listAll = nil
	testutil.NewFixtures(t, store).CreateResource(ctx, "Kept", models.SubjectSEL)
	if err := c.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.LoadErr() != nil {
		t.Errorf("LoadErr should be cleared, got %v", c.LoadErr())
	}

	// A later failure keeps the previous contents.
	repo.listAll = func(context.Context) ([]models.Resource, error) { return nil, errNetwork }
	if err := c.Load(ctx); err == nil {
		t.Fatal("expected error")
	}
	got := c.Resources()
	if len(got) != 1 || got[0].Title != "Kept" {
		t.Errorf("previous contents lost: %+v", got)
	}
	if c.LoadErr() == nil {
		t.Error("expected LoadErr to be recorded")
	}
}

func TestCatalog_CancelledLoadIsDiscarded(t *testing.T) {
	store := testutil.NewSQLiteStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	testutil.NewFixtures(t, store).CreateResource(ctx, "Visible", models.SubjectSEL)

	repo := &flakyRepo{Repository: store}
	c := catalog.New(repo, nil, catalog.PolicyMerge, nil)
	if err := c.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	loadCtx, stop := context.WithCancel(context.Background())
	repo.listAll = func(context.Context) ([]models.Resource, error) {
		stop() // the caller went away mid-flight
		return []models.Resource{}, nil
	}
	if err := c.Load(loadCtx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(c.Resources()) != 1 {
		t.Error("cancelled load replaced the catalog")
	}
}

func TestCatalog_RepositoryFailureLeavesStateUnchanged(t *testing.T) {
	c, f, rec := newCatalog(t, catalog.PolicyMerge)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	r := f.CreateResource(ctx, "Only", models.SubjectSEL)
	if err := c.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	title := "Renamed"
	err := c.Update(ctx, primitive.NewObjectID(), models.ResourcePatch{Title: &title})
	if !errors.Is(err, resourcestore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := c.Like(ctx, primitive.NewObjectID()); !errors.Is(err, resourcestore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	got := c.Resources()
	if len(got) != 1 || got[0].Title != r.Title || got[0].Likes != 0 {
		t.Errorf("state changed: %+v", got)
	}
	if len(rec.kinds()) != 0 {
		t.Errorf("no events expected, got %v", rec.kinds())
	}
}

func TestCatalog_UpdateAndLike(t *testing.T) {
	c, f, rec := newCatalog(t, catalog.PolicyMerge)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	r := f.CreateResource(ctx, "Draft", models.SubjectSEL)
	if err := c.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	in := models.ResourceInput{
		Title:       "Final",
		Subject:     models.SubjectDifferentiatedInstruction,
		Type:        models.ResourceTypeVideo,
		URL:         "https://example.com/final",
		Description: "Edited",
		Tags:        []string{"x"},
	}
	if err := c.Update(ctx, r.ID, models.FullPatch(in)); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	for want := 1; want <= 3; want++ {
		got, err := c.Like(ctx, r.ID)
		if err != nil {
			t.Fatalf("Like failed: %v", err)
		}
		if got != want {
			t.Errorf("likes: got %d, want %d", got, want)
		}
	}

	got, ok := c.Find(r.ID)
	if !ok {
		t.Fatal("resource missing")
	}
	if got.Title != "Final" || got.Type != models.ResourceTypeVideo || got.Likes != 3 {
		t.Errorf("unexpected local state: %+v", got)
	}

	want := []events.Kind{events.ResourceUpdated, events.ResourceLiked, events.ResourceLiked, events.ResourceLiked}
	if k := rec.kinds(); !slices.Equal(k, want) {
		t.Errorf("events: got %v, want %v", k, want)
	}
}

func TestCatalog_RefetchPolicy(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, tt := range []struct {
		policy    catalog.WritePolicy
		wantCount int
	}{
		{catalog.PolicyMerge, 1},
		{catalog.PolicyRefetch, 2},
	} {
		t.Run(string(tt.policy), func(t *testing.T) {
			c, f, _ := newCatalog(t, tt.policy)
			if err := c.Load(ctx); err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			// Written behind the catalog's back; only a re-read sees it.
			f.CreateResource(ctx, "Out of band", models.SubjectSEL)

			if _, err := c.Create(ctx, models.ResourceInput{
				Title: "Through catalog", Subject: models.SubjectSEL, Type: models.ResourceTypeGame,
				URL: "https://example.com/g", Description: "d",
			}); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if n := len(c.Resources()); n != tt.wantCount {
				t.Errorf("got %d resources, want %d", n, tt.wantCount)
			}
		})
	}
}

func TestCatalog_PublishFailureDoesNotFailWrite(t *testing.T) {
	repo := testutil.NewSQLiteStore(t)
	rec := &recorder{err: errors.New("broker gone")}
	c := catalog.New(repo, rec, catalog.PolicyMerge, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := c.Create(ctx, models.ResourceInput{
		Title: "t", Subject: models.SubjectSEL, Type: models.ResourceTypeArticle,
		URL: "https://example.com/t", Description: "d",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(c.Resources()) != 1 {
		t.Error("expected local state to include the new resource")
	}
}

func TestCatalog_LikesNeverNegative(t *testing.T) {
	c, _, _ := newCatalog(t, catalog.PolicyMerge)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	r, err := c.Create(ctx, models.ResourceInput{
		Title: "neg", Subject: models.SubjectSEL, Type: models.ResourceTypeGame,
		URL: "https://example.com/n", Description: "d", Likes: -5,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	c.ApplyLike(r.ID, -1)
	for _, got := range c.Resources() {
		if got.Likes < 0 {
			t.Errorf("negative likes on %q: %d", got.Title, got.Likes)
		}
	}
}

func TestCatalog_ApplyOnMissingIDIsSilent(t *testing.T) {
	c, _, _ := newCatalog(t, catalog.PolicyMerge)
	id := primitive.NewObjectID()
	c.ApplyCreate(models.Resource{Title: "a"}, id)

	title := "b"
	c.ApplyUpdate(primitive.NewObjectID(), models.ResourcePatch{Title: &title})
	c.ApplyDelete(primitive.NewObjectID())

	got := c.Resources()
	if len(got) != 1 || got[0].Title != "a" || got[0].ID != id {
		t.Errorf("unexpected state: %+v", got)
	}
}

func TestCatalog_ResourcesIsACopy(t *testing.T) {
	c, _, _ := newCatalog(t, catalog.PolicyMerge)
	c.ApplyCreate(models.Resource{Title: "a"}, primitive.NewObjectID())

	snap := c.Resources()
	snap[0].Title = "mutated"
	if c.Resources()[0].Title != "a" {
		t.Error("snapshot aliases internal state")
	}
}
