package avatar

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-avatars/pkg/types"
)

// Record models the user_avatars row.
type Record struct {
	bun.BaseModel `bun:"table:user_avatars"`

	ID          uuid.UUID `bun:",pk,type:uuid"`
	UserID      uuid.UUID `bun:"user_id,type:uuid"`
	StorageKey  string    `bun:"storage_key"`
	ContentType string    `bun:"content_type"`
	Primary     bool      `bun:"is_primary"`
	CreatedAt   time.Time `bun:"created_at"`
	CreatedBy   uuid.UUID `bun:"created_by,type:uuid"`
	UpdatedAt   time.Time `bun:"updated_at"`
	UpdatedBy   uuid.UUID `bun:"updated_by,type:uuid"`
}

// FromAvatar converts a domain avatar into its persisted representation.
func FromAvatar(a types.Avatar) *Record {
	return fromDomain(a)
}

// ToAvatar converts a persisted row into a domain avatar.
func ToAvatar(rec *Record) *types.Avatar {
	return toDomain(rec)
}
