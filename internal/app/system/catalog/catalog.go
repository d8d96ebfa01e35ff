// Package catalog holds the process-wide in-memory mirror of the resource
// store and the write operations that keep it in step with the store.
//
// State is replaced wholesale by Load and patched locally by the Apply*
// methods. The intent methods (Create, Update, Delete, Like) call the
// repository first and only touch local state when the store call
// succeeded; how they touch it is decided by the WritePolicy.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	resourcestore "github.com/dalemusser/kinderhub/internal/app/store/resources"
	"github.com/dalemusser/kinderhub/internal/app/system/events"
	"github.com/dalemusser/kinderhub/internal/app/system/filter"
	"github.com/dalemusser/kinderhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// WritePolicy selects how local state follows a successful write.
type WritePolicy string

const (
	// PolicyMerge applies the change locally and never re-reads the store.
	PolicyMerge WritePolicy = "merge"
	// PolicyRefetch reloads the whole catalog after every successful write.
	PolicyRefetch WritePolicy = "refetch"
)

// ParseWritePolicy maps a config value to a WritePolicy. Empty means merge.
func ParseWritePolicy(s string) (WritePolicy, error) {
	switch WritePolicy(s) {
	case "", PolicyMerge:
		return PolicyMerge, nil
	case PolicyRefetch:
		return PolicyRefetch, nil
	default:
		return "", fmt.Errorf("unknown catalog write policy %q (want %q or %q)", s, PolicyMerge, PolicyRefetch)
	}
}

// Catalog is safe for concurrent use.
type Catalog struct {
	repo   resourcestore.Repository
	pub    events.Publisher
	policy WritePolicy
	log    *zap.Logger

	mu      sync.RWMutex
	items   []models.Resource
	loadErr error
	loaded  bool
}

// New returns an empty catalog. A nil publisher discards events and a nil
// logger is replaced with a no-op logger.
func New(repo resourcestore.Repository, pub events.Publisher, policy WritePolicy, logger *zap.Logger) *Catalog {
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == "" {
		policy = PolicyMerge
	}
	return &Catalog{
		repo:   repo,
		pub:    pub,
		policy: policy,
		log:    logger,
		items:  []models.Resource{},
	}
}

// Policy reports the configured write policy.
func (c *Catalog) Policy() WritePolicy { return c.policy }

/*─────────────────────────────────────────────────────────────────────────────*
| State                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// Load fetches every record and replaces the local sequence. On failure the
// previous sequence is kept and the error is remembered until the next
// successful load. If ctx ends while the fetch is in flight the result is
// dropped without touching state.
func (c *Catalog) Load(ctx context.Context) error {
	items, err := c.repo.ListAll(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		c.log.Debug("catalog load discarded", zap.Error(ctxErr))
		return ctxErr
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.loadErr = err
		c.log.Warn("catalog load failed; keeping previous contents",
			zap.Int("kept", len(c.items)),
			zap.Error(err))
		return err
	}
	if items == nil {
		items = []models.Resource{}
	}
	c.items = items
	c.loadErr = nil
	c.loaded = true
	c.log.Debug("catalog loaded", zap.Int("count", len(items)))
	return nil
}

// ApplyCreate puts r at the head of the sequence under the given id.
func (c *Catalog) ApplyCreate(r models.Resource, id primitive.ObjectID) {
	r.ID = id
	c.mu.Lock()
	c.items = slices.Insert(slices.Clone(c.items), 0, r)
	c.mu.Unlock()
}

// ApplyUpdate merges patch into the element with the given id. A missing id
// is ignored.
func (c *Catalog) ApplyUpdate(id primitive.ObjectID, patch models.ResourcePatch) {
	c.replace(id, func(r models.Resource) models.Resource {
		r = models.Merge(r, patch)
		now := time.Now().UTC()
		r.UpdatedAt = &now
		return r
	})
}

// ApplyLike sets the like count of the element with the given id.
func (c *Catalog) ApplyLike(id primitive.ObjectID, likes int) {
	c.replace(id, func(r models.Resource) models.Resource {
		r.Likes = max(likes, 0)
		return r
	})
}

// ApplyDelete removes the element with the given id. A missing id is
// ignored.
func (c *Catalog) ApplyDelete(id primitive.ObjectID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return
	}
	c.items = slices.Delete(slices.Clone(c.items), i, i+1)
}

func (c *Catalog) replace(id primitive.ObjectID, fn func(models.Resource) models.Resource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return
	}
	next := slices.Clone(c.items)
	next[i] = fn(next[i])
	c.items = next
}

// indexOf must be called with mu held.
func (c *Catalog) indexOf(id primitive.ObjectID) int {
	return slices.IndexFunc(c.items, func(r models.Resource) bool { return r.ID == id })
}

// Resources returns a copy of the current sequence.
func (c *Catalog) Resources() []models.Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Find returns the element with the given id.
func (c *Catalog) Find(id primitive.ObjectID) (models.Resource, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	return models.Resource{}, false
}

// LoadErr returns the error of the most recent failed load, or nil once a
// later load succeeded.
func (c *Catalog) LoadErr() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadErr
}

// Loaded reports whether any load has succeeded.
func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Visible runs the filter over a snapshot of the sequence.
func (c *Catalog) Visible(crit filter.Criteria) []models.Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filter.Apply(c.items, crit)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Intents                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// Create persists in and returns the record as it now appears locally.
func (c *Catalog) Create(ctx context.Context, in models.ResourceInput) (models.Resource, error) {
	id, err := c.repo.Create(ctx, in)
	if err != nil {
		return models.Resource{}, err
	}

	r := in.Resource(id)
	r.CreatedAt = time.Now().UTC()
	if c.policy == PolicyRefetch {
		c.refetch(ctx, "create")
		if got, ok := c.Find(id); ok {
			r = got
		}
	} else {
		c.ApplyCreate(r, id)
	}

	c.publish(ctx, events.NewEvent(events.ResourceCreated, id).WithResource(r))
	return r, nil
}

// Update persists patch for id.
func (c *Catalog) Update(ctx context.Context, id primitive.ObjectID, patch models.ResourcePatch) error {
	if err := c.repo.Update(ctx, id, patch); err != nil {
		return err
	}

	if c.policy == PolicyRefetch {
		c.refetch(ctx, "update")
	} else {
		c.ApplyUpdate(id, patch)
	}

	e := events.NewEvent(events.ResourceUpdated, id)
	if r, ok := c.Find(id); ok {
		e = e.WithResource(r)
	}
	c.publish(ctx, e)
	return nil
}

// Delete removes id from the store and then from local state.
func (c *Catalog) Delete(ctx context.Context, id primitive.ObjectID) error {
	old, had := c.Find(id)
	if err := c.repo.Delete(ctx, id); err != nil {
		return err
	}

	if c.policy == PolicyRefetch {
		c.refetch(ctx, "delete")
	} else {
		c.ApplyDelete(id)
	}

	e := events.NewEvent(events.ResourceDeleted, id)
	if had {
		e = e.WithResource(old)
	}
	c.publish(ctx, e)
	return nil
}

// Like increments the like count of id and returns the new count.
func (c *Catalog) Like(ctx context.Context, id primitive.ObjectID) (int, error) {
	likes, err := c.repo.Like(ctx, id)
	if err != nil {
		return 0, err
	}

	if c.policy == PolicyRefetch {
		c.refetch(ctx, "like")
	} else {
		c.ApplyLike(id, likes)
	}

	e := events.NewEvent(events.ResourceLiked, id)
	if r, ok := c.Find(id); ok {
		e = e.WithResource(r)
	}
	e.Likes = &likes
	c.publish(ctx, e)
	return likes, nil
}

// refetch reloads after a write. The write itself already succeeded, so a
// failed reload is logged and recorded by Load but not returned.
func (c *Catalog) refetch(ctx context.Context, op string) {
	if err := c.Load(ctx); err != nil {
		c.log.Warn("reload after write failed", zap.String("op", op), zap.Error(err))
	}
}

func (c *Catalog) publish(ctx context.Context, e events.Event) {
	if err := c.pub.Publish(ctx, e); err != nil {
		c.log.Warn("change event not published",
			zap.String("kind", string(e.Kind)),
			zap.String("resource_id", e.ResourceID),
			zap.Error(err))
	}
}
