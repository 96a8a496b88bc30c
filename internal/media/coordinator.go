package media

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/worklink-dev/worklink/internal/apperr"
)

// Store persists media rows.
type Store interface {
	Insert(ctx context.Context, o Object) error
	ListByOwner(ctx context.Context, category, ownerID string) ([]Object, error)
	Delete(ctx context.Context, ids []string) error
}

// Coordinator owns the media lifecycle: upload with validation and optional
// image recompression, and best-effort cleanup when entities go away.
type Coordinator struct {
	store   Store
	backend Backend
	rules   map[string]Rule
}

func NewCoordinator(store Store, backend Backend) *Coordinator {
	return &Coordinator{store: store, backend: backend, rules: DefaultRules}
}

// Upload validates, optionally recompresses, stores under a temporary id,
// inserts the DB row and finally renames the object to its persistent id.
func (c *Coordinator) Upload(ctx context.Context, category, ownerID, filename string, data []byte, compress bool) (Object, error) {
	ext, err := Validate(c.rules, filename, int64(len(data)), category)
	if err != nil {
		return Object{}, err
	}
	if compress && IsCompressible(ext) {
		data = CompressImage(data, c.rules[category].MaxSize)
	}

	tempID, err := c.backend.Store(data, category, ext)
	if err != nil {
		return Object{}, apperr.Dependency("store media object", err)
	}

	obj := Object{
		ID:        uuid.NewString(),
		Category:  category,
		OwnerID:   ownerID,
		Ext:       ext,
		Mime:      MimeFor(ext),
		Size:      int64(len(data)),
		CreatedAt: time.Now().UTC(),
	}
	path, err := c.backend.Finalize(category, tempID, obj.ID, ext)
	if err != nil {
		return Object{}, apperr.Dependency("finalize media object", err)
	}
	obj.Path = path

	if err := c.store.Insert(ctx, obj); err != nil {
		// Row never existed; remove the orphaned object.
		if derr := c.backend.Delete(category, obj.ID, ext); derr != nil {
			log.Printf("media: failed to remove orphaned object %s: %v", obj.ID, derr)
		}
		return Object{}, apperr.Dependency("insert media row", err)
	}
	return obj, nil
}

// List returns the media rows for an entity.
func (c *Coordinator) List(ctx context.Context, category, ownerID string) ([]Object, error) {
	objs, err := c.store.ListByOwner(ctx, category, ownerID)
	if err != nil {
		return nil, apperr.Dependency("list media", err)
	}
	return objs, nil
}

// DeleteBatch removes media best-effort: DB rows first, then the stored
// objects, so a failed object delete can never leave a row pointing at a
// missing file the other way around. Individual failures are logged.
func (c *Coordinator) DeleteBatch(ctx context.Context, category string, refs []Ref) int {
	if len(refs) == 0 {
		return 0
	}
	ids := make([]string, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	if err := c.store.Delete(ctx, ids); err != nil {
		log.Printf("media: failed to delete %d %s rows: %v", len(ids), category, err)
		return 0
	}
	deleted := 0
	for _, r := range refs {
		if err := c.backend.Delete(category, r.ID, r.Ext); err != nil {
			log.Printf("media: failed to delete object %s.%s: %v", r.ID, r.Ext, err)
			continue
		}
		deleted++
	}
	return deleted
}

// DeleteForEntity removes all media belonging to one entity.
func (c *Coordinator) DeleteForEntity(ctx context.Context, category, ownerID string) int {
	objs, err := c.store.ListByOwner(ctx, category, ownerID)
	if err != nil {
		log.Printf("media: failed to list %s media for %s: %v", category, ownerID, err)
		return 0
	}
	refs := make([]Ref, 0, len(objs))
	for _, o := range objs {
		refs = append(refs, Ref{ID: o.ID, Ext: o.Ext})
	}
	return c.DeleteBatch(ctx, category, refs)
}

// DeletePostingTree removes the media of a posting and of all its
// applications and assignments.
func (c *Coordinator) DeletePostingTree(ctx context.Context, postingID string, applicationIDs, assignmentIDs []string) int {
	deleted := c.DeleteForEntity(ctx, CategoryPosting, postingID)
	for _, id := range applicationIDs {
		deleted += c.DeleteForEntity(ctx, CategoryApplication, id)
	}
	for _, id := range assignmentIDs {
		deleted += c.DeleteForEntity(ctx, CategoryAssignment, id)
	}
	return deleted
}
