// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package staging keeps work-in-progress forms and staged image previews in
// Valkey between requests. Everything is scoped to one seller and expires
// on its own; nothing here is durable.
package staging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sellerconsole/internal/catalog"
)

const (
	// DefaultTTL is how long an untouched draft survives.
	DefaultTTL = 2 * time.Hour

	draftPrefix   = "draft:"
	optionsPrefix = "options:"
	variantPrefix = "variantform:"
	previewPrefix = "preview:"
)

// ErrDraftNotFound is returned when a draft expired or never existed.
var ErrDraftNotFound = errors.New("staging: draft not found")

// Store is the Valkey-backed staging area.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a staging store. A zero ttl selects DefaultTTL.
func New(client *redis.Client, ttl time.Duration) *Store {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

// SaveDraft stores a product draft and refreshes its TTL.
func (s *Store) SaveDraft(ctx context.Context, sellerID string, d *catalog.ProductDraft) error {
	return s.put(ctx, draftKey(sellerID, d.ID), d)
}

// LoadDraft fetches a product draft.
func (s *Store) LoadDraft(ctx context.Context, sellerID, id string) (*catalog.ProductDraft, error) {
	var d catalog.ProductDraft
	if err := s.get(ctx, draftKey(sellerID, id), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// DeleteDraft drops a product draft. Its previews must be revoked separately.
func (s *Store) DeleteDraft(ctx context.Context, sellerID, id string) error {
	return s.del(ctx, draftKey(sellerID, id))
}

// SaveOptions stores the axes being edited in the options drawer of a product.
func (s *Store) SaveOptions(ctx context.Context, sellerID, productID string, c *catalog.Composer) error {
	return s.put(ctx, optionsKey(sellerID, productID), c)
}

// LoadOptions fetches the options drawer state of a product.
func (s *Store) LoadOptions(ctx context.Context, sellerID, productID string) (*catalog.Composer, error) {
	var c catalog.Composer
	if err := s.get(ctx, optionsKey(sellerID, productID), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteOptions drops the options drawer state of a product.
func (s *Store) DeleteOptions(ctx context.Context, sellerID, productID string) error {
	return s.del(ctx, optionsKey(sellerID, productID))
}

// SaveVariantForm stores a variant form under formID.
func (s *Store) SaveVariantForm(ctx context.Context, sellerID, formID string, f *catalog.VariantForm) error {
	return s.put(ctx, variantKey(sellerID, formID), f)
}

// LoadVariantForm fetches a variant form.
func (s *Store) LoadVariantForm(ctx context.Context, sellerID, formID string) (*catalog.VariantForm, error) {
	var f catalog.VariantForm
	if err := s.get(ctx, variantKey(sellerID, formID), &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteVariantForm drops a variant form.
func (s *Store) DeleteVariantForm(ctx context.Context, sellerID, formID string) error {
	return s.del(ctx, variantKey(sellerID, formID))
}

func (s *Store) put(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("staging marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("staging set %s: %w", key, err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string, v any) error {
	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrDraftNotFound
	}
	if err != nil {
		return fmt.Errorf("staging get %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("staging unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *Store) del(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("staging del %s: %w", key, err)
	}
	return nil
}

func draftKey(sellerID, id string) string   { return draftPrefix + sellerID + ":" + id }
func optionsKey(sellerID, id string) string { return optionsPrefix + sellerID + ":" + id }
func variantKey(sellerID, id string) string { return variantPrefix + sellerID + ":" + id }
