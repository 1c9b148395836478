package models

import (
	"time"

	"github.com/google/uuid"
)

// UploadStatus tracks whether an uploaded image ended up on a product.
type UploadStatus string

const (
	UploadPending  UploadStatus = "pending"
	UploadAttached UploadStatus = "attached"
	UploadOrphaned UploadStatus = "orphaned"
)

// Upload is one image URL the console uploaded on a seller's behalf.
type Upload struct {
	ID        uuid.UUID    `db:"id"`
	SellerID  string       `db:"seller_id"`
	URL       string       `db:"url"`
	DraftID   string       `db:"draft_id"`
	Status    UploadStatus `db:"status"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
}
