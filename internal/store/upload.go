// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store holds the console's own PostgreSQL data: the ledger of
// image uploads, used to find images that were uploaded for a draft but
// never attached to a product.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"sellerconsole/internal/catalog"
	"sellerconsole/internal/models"
)

// UploadStore handles upload ledger operations.
type UploadStore struct {
	db *sqlx.DB
}

// NewUploadStore wraps an open pgx connection pool.
func NewUploadStore(db *sql.DB) *UploadStore {
	return &UploadStore{db: sqlx.NewDb(db, "pgx")}
}

// Record stores freshly uploaded URLs as pending. URLs already in the
// ledger are left as they are.
func (s *UploadStore) Record(ctx context.Context, sellerID, draftID string, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record uploads: %w", err)
	}
	defer tx.Rollback()

	for _, u := range urls {
		row := models.Upload{
			ID:       uuid.New(),
			SellerID: sellerID,
			URL:      u,
			DraftID:  draftID,
			Status:   models.UploadPending,
		}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO uploads (id, seller_id, url, draft_id, status)
			VALUES (:id, :seller_id, :url, :draft_id, :status)
			ON CONFLICT (url) DO NOTHING
		`, row)
		if err != nil {
			return fmt.Errorf("record upload %s: %w", u, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record uploads commit: %w", err)
	}
	return nil
}

// Attach marks URLs as used by a saved product or variant.
func (s *UploadStore) Attach(ctx context.Context, urls []string) (int64, error) {
	if len(urls) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`
		UPDATE uploads SET status = ?, updated_at = now()
		WHERE url IN (?) AND status <> ?
	`, models.UploadAttached, urls, models.UploadAttached)
	if err != nil {
		return 0, fmt.Errorf("attach uploads: %w", err)
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("attach uploads: %w", err)
	}
	return res.RowsAffected()
}

// MarkOrphaned flags pending uploads created before cutoff.
func (s *UploadStore) MarkOrphaned(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE uploads SET status = $1, updated_at = now()
		WHERE status = $2 AND created_at < $3
	`, models.UploadOrphaned, models.UploadPending, cutoff)
	if err != nil {
		return 0, fmt.Errorf("mark orphaned: %w", err)
	}
	return res.RowsAffected()
}

// ListOrphaned returns up to limit orphaned uploads, oldest first.
func (s *UploadStore) ListOrphaned(ctx context.Context, limit int) ([]models.Upload, error) {
	var uploads []models.Upload
	err := s.db.SelectContext(ctx, &uploads, `
		SELECT id, seller_id, url, draft_id, status, created_at, updated_at
		FROM uploads
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2
	`, models.UploadOrphaned, limit)
	if err != nil {
		return nil, fmt.Errorf("list orphaned: %w", err)
	}
	return uploads, nil
}

// FindByURL returns the ledger row of a URL, or nil if it is not tracked.
func (s *UploadStore) FindByURL(ctx context.Context, url string) (*models.Upload, error) {
	var u models.Upload
	err := s.db.GetContext(ctx, &u, `
		SELECT id, seller_id, url, draft_id, status, created_at, updated_at
		FROM uploads WHERE url = $1
	`, url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find upload: %w", err)
	}
	return &u, nil
}

// Delete removes a ledger row.
func (s *UploadStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM uploads WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}

// Ledgered records every URL its uploader returns.
type Ledgered struct {
	up       catalog.Uploader
	store    *UploadStore
	sellerID string
	draftID  string
}

var _ catalog.Uploader = (*Ledgered)(nil)

// Track wraps up so uploads made for draftID are recorded as pending.
func (s *UploadStore) Track(up catalog.Uploader, sellerID, draftID string) *Ledgered {
	return &Ledgered{up: up, store: s, sellerID: sellerID, draftID: draftID}
}

// UploadImages uploads through the wrapped uploader. A ledger failure is
// logged and does not fail the upload.
func (l *Ledgered) UploadImages(ctx context.Context, files []catalog.File) ([]string, error) {
	urls, err := l.up.UploadImages(ctx, files)
	if err != nil {
		return nil, err
	}
	if err := l.store.Record(ctx, l.sellerID, l.draftID, urls); err != nil {
		slog.Warn("upload ledger record failed", "seller", l.sellerID, "draft", l.draftID, "error", err)
	}
	return urls, nil
}
