package staging

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"sellerconsole/internal/catalog"
)

// ErrPreviewNotFound is returned for revoked or expired previews.
var ErrPreviewNotFound = errors.New("staging: preview not found")

// Previews holds the bytes of staged images for one seller until they are
// uploaded or discarded. Each preview keeps the original file and a small
// thumbnail for the draft screen.
type Previews struct {
	store    *Store
	sellerID string
}

var _ catalog.Blobs = (*Previews)(nil)

// Previews returns the preview area of a seller.
func (s *Store) Previews(sellerID string) *Previews {
	return &Previews{store: s, sellerID: sellerID}
}

// Put stores a staged file and its thumbnail and returns its handle.
func (p *Previews) Put(ctx context.Context, f catalog.File, thumb []byte) (catalog.StagedFile, error) {
	id := uuid.NewString()
	key := p.key(id)

	_, err := p.store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]any{
			"data":  f.Data,
			"thumb": thumb,
			"name":  f.Name,
			"type":  f.ContentType,
		})
		pipe.Expire(ctx, key, p.store.ttl)
		return nil
	})
	if err != nil {
		return catalog.StagedFile{}, fmt.Errorf("preview put: %w", err)
	}

	return catalog.StagedFile{
		ID:          id,
		Name:        f.Name,
		ContentType: f.ContentType,
		Size:        int64(len(f.Data)),
	}, nil
}

// Read returns the original bytes of a staged file.
func (p *Previews) Read(ctx context.Context, id string) ([]byte, error) {
	return p.field(ctx, id, "data")
}

// Thumb returns the thumbnail of a staged file.
func (p *Previews) Thumb(ctx context.Context, id string) ([]byte, error) {
	return p.field(ctx, id, "thumb")
}

// Revoke deletes previews. Unknown ids are ignored.
func (p *Previews) Revoke(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = p.key(id)
	}
	if err := p.store.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("preview revoke: %w", err)
	}
	return nil
}

func (p *Previews) field(ctx context.Context, id, name string) ([]byte, error) {
	val, err := p.store.client.HGet(ctx, p.key(id), name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPreviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("preview %s: %w", name, err)
	}
	return val, nil
}

func (p *Previews) key(id string) string {
	return previewPrefix + p.sellerID + ":" + id
}
