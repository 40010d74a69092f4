package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"esgishoma-backend-go/internal/blob"
	"esgishoma-backend-go/internal/store"

	"github.com/google/uuid"
)

// Record is what the lifecycle layer needs from an entity: an id and the
// soft-delete stamp. models.Meta provides it by embedding.
type Record interface {
	RecordID() string
	SetRecordID(string)
	Deleted() *time.Time
	SetDeleted(*time.Time)
}

// RecordOf ties the pointer type *T to the Record interface so Collection can
// mutate records in place.
type RecordOf[T any] interface {
	*T
	Record
}

// BlobCarrier marks entities whose payload field (image or PDF data URI) is
// offloaded to the blob store.
type BlobCarrier interface {
	PayloadRef() string
	SetPayloadRef(string)
}

// DeletePolicy declares what the "delete" operation means for a collection.
type DeletePolicy int

const (
	// PolicySoft stamps DeletedAt and keeps the record (trash view).
	PolicySoft DeletePolicy = iota
	// PolicyHard removes the record outright; contact messages use this.
	PolicyHard
)

// Collection is one entity collection stored as a whole JSON document. All
// mutations require a valid admin session token and are serialized by a
// per-collection mutex (the documented single-writer constraint).
type Collection[T any, P RecordOf[T]] struct {
	store  *store.Store
	blobs  *blob.Store
	tokens TokenService
	key    string
	policy DeletePolicy

	mu sync.Mutex
}

func NewCollection[T any, P RecordOf[T]](st *store.Store, blobs *blob.Store, tokens TokenService, key string, policy DeletePolicy) *Collection[T, P] {
	return &Collection[T, P]{store: st, blobs: blobs, tokens: tokens, key: key, policy: policy}
}

func (c *Collection[T, P]) Key() string { return c.key }

// List returns the collection with blob placeholders resolved. Soft-deleted
// records are excluded unless includeDeleted is set.
func (c *Collection[T, P]) List(ctx context.Context, includeDeleted bool) ([]T, error) {
	items := store.Read(c.store, c.key, []T{})
	out := make([]T, 0, len(items))
	for i := range items {
		ptr := P(&items[i])
		if !includeDeleted && ptr.Deleted() != nil {
			continue
		}
		if err := c.resolvePayload(ctx, ptr); err != nil {
			return nil, err
		}
		out = append(out, items[i])
	}
	return out, nil
}

// Get returns the record by id, deleted or not, with its payload resolved.
func (c *Collection[T, P]) Get(ctx context.Context, id string) (*T, error) {
	items := store.Read(c.store, c.key, []T{})
	for i := range items {
		ptr := P(&items[i])
		if ptr.RecordID() == id {
			if err := c.resolvePayload(ctx, ptr); err != nil {
				return nil, err
			}
			return &items[i], nil
		}
	}
	return nil, ErrNotFound("Record not found")
}

// Save upserts by id: an existing record is replaced field-for-field with
// DeletedAt reset to nil, a new one is appended. Inline data-URI payloads are
// migrated to the blob store before the metadata document is written.
func (c *Collection[T, P]) Save(ctx context.Context, token string, item T) (*T, error) {
	if _, err := c.tokens.RequireAdmin(token); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ptr := P(&item)
	if strings.TrimSpace(ptr.RecordID()) == "" {
		ptr.SetRecordID(uuid.NewString())
	}
	ptr.SetDeleted(nil)
	if err := c.offloadPayload(ctx, ptr); err != nil {
		return nil, err
	}

	items := store.Read(c.store, c.key, []T{})
	replaced := false
	for i := range items {
		if P(&items[i]).RecordID() == ptr.RecordID() {
			items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, item)
	}
	if err := store.Write(c.store, c.key, items); err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete applies the collection's declared policy: soft delete for most
// entities, permanent removal where PolicyHard is configured. Unknown ids are
// a no-op.
func (c *Collection[T, P]) Delete(ctx context.Context, token, id string) error {
	if c.policy == PolicyHard {
		return c.PermanentDelete(ctx, token, id)
	}
	return c.SoftDelete(ctx, token, id)
}

func (c *Collection[T, P]) SoftDelete(ctx context.Context, token, id string) error {
	if _, err := c.tokens.RequireAdmin(token); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	items := store.Read(c.store, c.key, []T{})
	for i := range items {
		ptr := P(&items[i])
		if ptr.RecordID() == id {
			now := c.tokens.now().UTC()
			ptr.SetDeleted(&now)
			return store.Write(c.store, c.key, items)
		}
	}
	return nil
}

func (c *Collection[T, P]) Restore(ctx context.Context, token, id string) error {
	if _, err := c.tokens.RequireAdmin(token); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	items := store.Read(c.store, c.key, []T{})
	for i := range items {
		ptr := P(&items[i])
		if ptr.RecordID() == id {
			ptr.SetDeleted(nil)
			return store.Write(c.store, c.key, items)
		}
	}
	return nil
}

// PermanentDelete removes the record and its companion blob, if any.
func (c *Collection[T, P]) PermanentDelete(ctx context.Context, token, id string) error {
	if _, err := c.tokens.RequireAdmin(token); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	items := store.Read(c.store, c.key, []T{})
	kept := make([]T, 0, len(items))
	removed := false
	for i := range items {
		if P(&items[i]).RecordID() == strings.TrimSpace(id) {
			removed = true
			continue
		}
		kept = append(kept, items[i])
	}
	if !removed {
		return nil
	}
	if err := store.Write(c.store, c.key, kept); err != nil {
		return err
	}
	if c.blobs != nil {
		if err := c.blobs.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Trash returns only soft-deleted records, for the admin trash view.
func (c *Collection[T, P]) Trash(ctx context.Context, token string) (any, error) {
	if _, err := c.tokens.RequireAdmin(token); err != nil {
		return nil, err
	}
	items := store.Read(c.store, c.key, []T{})
	out := make([]T, 0)
	for i := range items {
		ptr := P(&items[i])
		if ptr.Deleted() == nil {
			continue
		}
		if err := c.resolvePayload(ctx, ptr); err != nil {
			return nil, err
		}
		out = append(out, items[i])
	}
	return out, nil
}

// offloadPayload moves an inline data-URI payload into the blob store and
// leaves the placeholder behind in the metadata record.
func (c *Collection[T, P]) offloadPayload(ctx context.Context, ptr P) error {
	carrier, ok := any(ptr).(BlobCarrier)
	if !ok || c.blobs == nil {
		return nil
	}
	payload := carrier.PayloadRef()
	if !strings.HasPrefix(payload, "data:") {
		return nil
	}
	if err := c.blobs.Save(ctx, ptr.RecordID(), payload); err != nil {
		return err
	}
	carrier.SetPayloadRef(blob.Placeholder)
	return nil
}

// resolvePayload substitutes the real payload back for the placeholder. A
// missing blob leaves the placeholder in place rather than failing the read.
func (c *Collection[T, P]) resolvePayload(ctx context.Context, ptr P) error {
	carrier, ok := any(ptr).(BlobCarrier)
	if !ok || c.blobs == nil {
		return nil
	}
	if carrier.PayloadRef() != blob.Placeholder {
		return nil
	}
	payload, err := c.blobs.Get(ctx, ptr.RecordID())
	if err != nil {
		return err
	}
	if payload != "" {
		carrier.SetPayloadRef(payload)
	}
	return nil
}
