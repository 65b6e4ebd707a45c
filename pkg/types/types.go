package types

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Avatar is the domain view of a stored avatar image.
type Avatar struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	StorageKey  string
	ContentType string
	Primary     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   uuid.UUID
	UpdatedBy   uuid.UUID
}

// AvatarSet pairs the current primary avatar with the user's capped,
// primary-first listing. Primary is nil when the user has no avatars.
type AvatarSet struct {
	Primary *Avatar
	Avatars []Avatar
}

// Contains reports whether the set holds the supplied avatar id.
func (s AvatarSet) Contains(id uuid.UUID) bool {
	for _, a := range s.Avatars {
		if a.ID == id {
			return true
		}
	}
	return false
}

// AvatarRepository persists and retrieves avatar records. Implementations must
// keep the one-primary-per-user invariant: creating a primary record or calling
// SetPrimary demotes every other record for that user in the same transaction.
type AvatarRepository interface {
	GetByID(ctx context.Context, userID, avatarID uuid.UUID) (*Avatar, error)
	GetPrimary(ctx context.Context, userID uuid.UUID) (*Avatar, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]Avatar, error)
	CountForUser(ctx context.Context, userID uuid.UUID) (int, error)
	Create(ctx context.Context, avatar Avatar) (*Avatar, error)
	SetPrimary(ctx context.Context, userID, avatarID uuid.UUID, actor uuid.UUID) (*Avatar, error)
	DeleteByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
}

// Upload carries a submitted image file into the command layer without tying
// it to any particular HTTP framework's multipart types.
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// FileStore abstracts the blob storage backing avatar originals and cached
// renditions. Save failures should wrap the store's unavailability sentinel so
// callers can distinguish them from validation problems.
type FileStore interface {
	Save(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	URL(key string) string
}

// ThumbnailRenderer produces (and caches) resized renditions of a stored
// avatar, returning the public URL of the rendition at the requested size.
type ThumbnailRenderer interface {
	RenditionURL(ctx context.Context, avatar Avatar, size int) (string, error)
}

// UserRef identifies a user resolvable through the host application's
// directory. Staff gates the default for-user management policy.
type UserRef struct {
	ID       uuid.UUID
	Username string
	Active   bool
	Staff    bool
}

// UserDirectory resolves usernames to users. FindByUsername returns (nil, nil)
// when no user matches so handlers can render not-found without leaking
// whether the lookup or the policy failed.
type UserDirectory interface {
	FindByUsername(ctx context.Context, username string) (*UserRef, error)
}

// ActorRef identifies who triggered a command.
type ActorRef struct {
	ID   uuid.UUID
	Type string
}

// IsStaff reports whether the actor carries a staff/admin role.
func (a ActorRef) IsStaff() bool {
	switch strings.ToLower(strings.TrimSpace(a.Type)) {
	case "staff", "admin", "system_admin":
		return true
	}
	return false
}

// AvatarEvent is emitted after avatar mutations ("updated" and "deleted").
type AvatarEvent struct {
	UserID     uuid.UUID
	ActorID    uuid.UUID
	Avatar     Avatar
	OccurredAt time.Time
}

// Hooks groups optional callbacks invoked after key workflows complete.
// Subscribers such as cache invalidation or audit trails register these at
// startup through the service configuration.
type Hooks struct {
	AfterAvatarUpdated func(context.Context, AvatarEvent)
	AfterAvatarDeleted func(context.Context, AvatarEvent)
	AfterActivity      func(context.Context, ActivityRecord)
}

// ActivityRecord describes audit sink inputs shared across sink and query
// layers.
type ActivityRecord struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ActorID    uuid.UUID
	Verb       string
	ObjectType string
	ObjectID   string
	Channel    string
	IP         string
	Data       map[string]any
	OccurredAt time.Time
}

// ActivitySink is the minimal DI contract for emitting audit activity. Keep it
// stable and limited to Log so hosts can swap sinks without breaking changes.
type ActivitySink interface {
	Log(context.Context, ActivityRecord) error
}

// Pagination bounds activity feed reads.
type Pagination struct {
	Limit  int
	Offset int
}

// ActivityFilter narrows the activity feed.
type ActivityFilter struct {
	UserID     uuid.UUID
	ActorID    uuid.UUID
	Verbs      []string
	Channel    string
	Since      time.Time
	Until      time.Time
	Pagination Pagination
}

// ActivityPage is one page of the activity feed.
type ActivityPage struct {
	Records    []ActivityRecord
	Total      int
	NextOffset int
	HasMore    bool
}

// ActivityRepository is the read-side contract for the activity feed.
type ActivityRepository interface {
	ListActivity(ctx context.Context, filter ActivityFilter) (ActivityPage, error)
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used by the service.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID returns a randomly generated UUID.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

var (
	// ErrUserIDRequired indicates a user identifier was omitted.
	ErrUserIDRequired = errors.New("go-avatars: user id required")
	// ErrActorRequired indicates an actor reference was not supplied.
	ErrActorRequired = errors.New("go-avatars: actor reference required")
	// ErrAvatarNotFound indicates the requested avatar does not exist within
	// the permitted scope.
	ErrAvatarNotFound = errors.New("go-avatars: avatar not found")
	// ErrUserNotFound indicates the named user does not exist or is inactive.
	ErrUserNotFound = errors.New("go-avatars: user not found")
	// ErrMissingAvatarRepository occurs when no avatar repository was supplied.
	ErrMissingAvatarRepository = errors.New("go-avatars: missing avatar repository")
	// ErrMissingFileStore occurs when upload commands lack a blob store.
	ErrMissingFileStore = errors.New("go-avatars: missing file store")
	// ErrMissingThumbnailRenderer occurs when render paths lack a renderer.
	ErrMissingThumbnailRenderer = errors.New("go-avatars: missing thumbnail renderer")
	// ErrMissingUserDirectory occurs when username lookups lack a directory.
	ErrMissingUserDirectory = errors.New("go-avatars: missing user directory")
	// ErrMissingActivitySink occurs when no activity sink was supplied.
	ErrMissingActivitySink = errors.New("go-avatars: missing activity sink")
	// ErrServiceNotReady indicates required dependencies are not wired in.
	ErrServiceNotReady = errors.New("go-avatars: service not ready")
)
