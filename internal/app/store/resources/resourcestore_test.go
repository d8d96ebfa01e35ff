package resourcestore_test

import (
	"errors"
	"testing"

	resourcestore "github.com/dalemusser/kinderhub/internal/app/store/resources"
	"github.com/dalemusser/kinderhub/internal/domain/models"
	"github.com/dalemusser/kinderhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// backends runs each repository test against SQLite and, when configured,
// MongoDB.
var backends = []struct {
	name string
	open func(t *testing.T) resourcestore.Repository
}{
	{"sqlite", func(t *testing.T) resourcestore.Repository { return testutil.NewSQLiteStore(t) }},
	{"mongo", func(t *testing.T) resourcestore.Repository { return resourcestore.New(testutil.SetupTestDB(t)) }},
}

func forEachBackend(t *testing.T, fn func(t *testing.T, repo resourcestore.Repository)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			fn(t, b.open(t))
		})
	}
}

func sampleInput(title string, subject models.Subject) models.ResourceInput {
	return models.ResourceInput{
		Title:       title,
		Subject:     subject,
		Type:        models.ResourceTypeGame,
		URL:         "https://example.com/" + title,
		Description: "About " + title,
		Tags:        []string{"kindergarten", "fun"},
	}
}

func TestStore_CreateAndListAll(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo resourcestore.Repository) {
		ctx, cancel := testutil.TestContext()
		defer cancel()

		id, err := repo.Create(ctx, sampleInput("Feelings Bingo", models.SubjectSEL))
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if id == primitive.NilObjectID {
			t.Fatal("expected ID to be assigned")
		}
		if _, err := repo.Create(ctx, sampleInput("Calm Corner", models.SubjectPositiveDiscipline)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		all, err := repo.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll failed: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected 2 resources, got %d", len(all))
		}
		got := all[0]
		if got.ID != id {
			t.Errorf("ID: got %s, want %s", got.ID.Hex(), id.Hex())
		}
		if got.Title != "Feelings Bingo" || got.Subject != models.SubjectSEL || got.Type != models.ResourceTypeGame {
			t.Errorf("unexpected record: %+v", got)
		}
		if len(got.Tags) != 2 || got.Tags[0] != "kindergarten" {
			t.Errorf("Tags: got %v", got.Tags)
		}
		if got.Likes != 0 {
			t.Errorf("Likes: got %d, want 0", got.Likes)
		}
		if got.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}
		if got.UpdatedAt != nil {
			t.Error("expected UpdatedAt to be unset after create")
		}
	})
}

func TestStore_Create_NegativeLikesClamped(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo resourcestore.Repository) {
		ctx, cancel := testutil.TestContext()
		defer cancel()

		in := sampleInput("Counting", models.SubjectSEL)
		in.Likes = -3
		if _, err := repo.Create(ctx, in); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		all, err := repo.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll failed: %v", err)
		}
		if all[0].Likes != 0 {
			t.Errorf("Likes: got %d, want 0", all[0].Likes)
		}
	})
}

func TestStore_ListBySubject(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo resourcestore.Repository) {
		ctx, cancel := testutil.TestContext()
		defer cancel()

		f := testutil.NewFixtures(t, repo)
		f.CreateResource(ctx, "a", models.SubjectSEL)
		want := f.CreateResource(ctx, "b", models.SubjectPlayBasedLearning)
		f.CreateResource(ctx, "c", models.SubjectSEL)

		got, err := repo.ListBySubject(ctx, models.SubjectPlayBasedLearning)
		if err != nil {
			t.Fatalf("ListBySubject failed: %v", err)
		}
		if len(got) != 1 || got[0].ID != want.ID {
			t.Errorf("expected only %s, got %+v", want.ID.Hex(), got)
		}

		none, err := repo.ListBySubject(ctx, models.SubjectDifferentiatedInstruction)
		if err != nil {
			t.Fatalf("ListBySubject failed: %v", err)
		}
		if none == nil || len(none) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", none)
		}
	})
}

func TestStore_Update(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo resourcestore.Repository) {
		ctx, cancel := testutil.TestContext()
		defer cancel()

		f := testutil.NewFixtures(t, repo)
		r := f.CreateResource(ctx, "Old Title", models.SubjectSEL)

		title := "New Title"
		subject := models.SubjectDifferentiatedInstruction
		if err := repo.Update(ctx, r.ID, models.ResourcePatch{Title: &title, Subject: &subject, Tags: []string{"x"}}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		all, err := repo.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll failed: %v", err)
		}
		got := all[0]
		if got.Title != "New Title" || got.Subject != subject {
			t.Errorf("fields not updated: %+v", got)
		}
		if got.Description != r.Description {
			t.Errorf("Description should be untouched, got %q", got.Description)
		}
		if len(got.Tags) != 1 || got.Tags[0] != "x" {
			t.Errorf("Tags: got %v", got.Tags)
		}
		if got.UpdatedAt == nil || got.UpdatedAt.IsZero() {
			t.Error("expected UpdatedAt to be set")
		}
	})
}

func TestStore_Update_NotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo resourcestore.Repository) {
		ctx, cancel := testutil.TestContext()
		defer cancel()

		title := "x"
		err := repo.Update(ctx, primitive.NewObjectID(), models.ResourcePatch{Title: &title})
		if !errors.Is(err, resourcestore.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestStore_Delete(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo resourcestore.Repository) {
		ctx, cancel := testutil.TestContext()
		defer cancel()

		f := testutil.NewFixtures(t, repo)
		r := f.CreateResource(ctx, "Gone", models.SubjectSEL)
		keep := f.CreateResource(ctx, "Kept", models.SubjectSEL)

		if err := repo.Delete(ctx, r.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		// Deleting again is a silent no-op.
		if err := repo.Delete(ctx, r.ID); err != nil {
			t.Errorf("second Delete: expected nil, got %v", err)
		}

		all, err := repo.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll failed: %v", err)
		}
		if len(all) != 1 || all[0].ID != keep.ID {
			t.Errorf("unexpected remaining resources: %+v", all)
		}
	})
}

func TestStore_Like(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo resourcestore.Repository) {
		ctx, cancel := testutil.TestContext()
		defer cancel()

		r := testutil.NewFixtures(t, repo).CreateResource(ctx, "Liked", models.SubjectSEL)

		for want := 1; want <= 2; want++ {
			got, err := repo.Like(ctx, r.ID)
			if err != nil {
				t.Fatalf("Like failed: %v", err)
			}
			if got != want {
				t.Errorf("likes: got %d, want %d", got, want)
			}
		}

		if _, err := repo.Like(ctx, primitive.NewObjectID()); !errors.Is(err, resourcestore.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestStore_Unavailable(t *testing.T) {
	db, err := resourcestore.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	repo := resourcestore.NewSQL(db)
	// Closed database stands in for a network failure.
	db.Close()

	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := repo.ListAll(ctx); !errors.Is(err, resourcestore.ErrUnavailable) {
		t.Errorf("ListAll: expected ErrUnavailable, got %v", err)
	}
	if _, err := repo.Create(ctx, sampleInput("x", models.SubjectSEL)); !errors.Is(err, resourcestore.ErrUnavailable) {
		t.Errorf("Create: expected ErrUnavailable, got %v", err)
	}
	if err := repo.Delete(ctx, primitive.NewObjectID()); !errors.Is(err, resourcestore.ErrUnavailable) {
		t.Errorf("Delete: expected ErrUnavailable, got %v", err)
	}
}

func TestStore_ListAll_CreationOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo resourcestore.Repository) {
		ctx, cancel := testutil.TestContext()
		defer cancel()

		titles := []string{"Zebra Counting", "Apple Sorting", "Mindful Minute", "Block Tower"}
		for _, title := range titles {
			if _, err := repo.Create(ctx, sampleInput(title, models.SubjectSEL)); err != nil {
				t.Fatalf("Create %q failed: %v", title, err)
			}
		}

		for name, list := range map[string]func() ([]models.Resource, error){
			"ListAll":       func() ([]models.Resource, error) { return repo.ListAll(ctx) },
			"ListBySubject": func() ([]models.Resource, error) { return repo.ListBySubject(ctx, models.SubjectSEL) },
		} {
			got, err := list()
			if err != nil {
				t.Fatalf("%s failed: %v", name, err)
			}
			if len(got) != len(titles) {
				t.Fatalf("%s: expected %d resources, got %d", name, len(titles), len(got))
			}
			for i, want := range titles {
				if got[i].Title != want {
					t.Errorf("%s[%d]: got %q, want %q", name, i, got[i].Title, want)
				}
			}
		}
	})
}
