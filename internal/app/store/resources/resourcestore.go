// internal/app/store/resources/resourcestore.go
package resourcestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/kinderhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding one document per resource.
const CollectionName = "resources"

// Store is the MongoDB-backed Repository.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// creationOrder lists resources oldest first, served by idx_resources_created.
// _id breaks ties between inserts within the same millisecond.
var creationOrder = bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}

// ListAll returns every resource, oldest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Resource, error) {
	out, err := s.find(ctx, bson.M{})
	if err != nil {
		return nil, unavailable("list resources", err)
	}
	return out, nil
}

// ListBySubject returns the resources whose subject equals subject, oldest first.
func (s *Store) ListBySubject(ctx context.Context, subject models.Subject) ([]models.Resource, error) {
	out, err := s.find(ctx, bson.M{"subject": subject})
	if err != nil {
		return nil, unavailable("list resources by subject", err)
	}
	return out, nil
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Resource, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(creationOrder))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var resources []models.Resource
	if err := cur.All(ctx, &resources); err != nil {
		return nil, err
	}
	return normalize(resources), nil
}

// Create inserts a new resource, stamping CreatedAt and clamping likes at 0.
func (s *Store) Create(ctx context.Context, in models.ResourceInput) (primitive.ObjectID, error) {
	r := in.Resource(primitive.NewObjectID())
	r.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return primitive.NilObjectID, unavailable("create resource", err)
	}
	return r.ID, nil
}

// Update overwrites the fields named in patch and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, patch models.ResourcePatch) error {
	// Build a selective $set so we don't clobber unset fields.
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Subject != nil {
		set["subject"] = *patch.Subject
	}
	if patch.Type != nil {
		set["type"] = *patch.Type
	}
	if patch.URL != nil {
		set["url"] = *patch.URL
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Tags != nil {
		set["tags"] = patch.Tags
	}
	if patch.Likes != nil {
		set["likes"] = max(*patch.Likes, 0)
	}
	set["updated_at"] = time.Now().UTC()

	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return unavailable("update resource", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a resource. Deleting a missing id is a silent no-op.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.c.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return unavailable("delete resource", err)
	}
	return nil
}

// Like atomically increments the like counter and returns the new value.
func (s *Store) Like(ctx context.Context, id primitive.ObjectID) (int, error) {
	var r models.Resource
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"likes": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, unavailable("like resource", err)
	}
	return r.Likes, nil
}
