package types

// Default settings values. They mirror the conventional avatar defaults hosts
// expect: an 80px display size and a generous per-user cap.
const (
	DefaultSize       = 80
	DefaultMaxPerUser = 42
	DefaultMaxBytes   = 5 << 20
	DefaultURL        = "/static/avatars/default.png"
	DefaultPrefix     = "avatars"
)

// Settings is the explicit configuration surface for the avatar service.
// Hosts construct one and pass it through the service config; zero values are
// filled in by Normalize.
type Settings struct {
	// DefaultSize is the pixel size used when a rendition size is not given.
	DefaultSize int
	// MaxPerUser bounds how many avatars a user may keep. A cap of 1 means
	// only the primary avatar is ever listed.
	MaxPerUser int
	// MaxBytes bounds the accepted upload size.
	MaxBytes int64
	// DefaultURL is where render-primary redirects when a user has no
	// avatars.
	DefaultURL string
	// StoragePrefix roots all storage keys written by the service.
	StoragePrefix string
	// AllowedContentTypes lists the accepted upload MIME types.
	AllowedContentTypes []string
	// Template overrides for the HTML handlers.
	AddTemplate    string
	ChangeTemplate string
	DeleteTemplate string
}

// Normalize fills zero values with defaults and returns the result.
func (s Settings) Normalize() Settings {
	if s.DefaultSize <= 0 {
		s.DefaultSize = DefaultSize
	}
	if s.MaxPerUser <= 0 {
		s.MaxPerUser = DefaultMaxPerUser
	}
	if s.MaxBytes <= 0 {
		s.MaxBytes = DefaultMaxBytes
	}
	if s.DefaultURL == "" {
		s.DefaultURL = DefaultURL
	}
	if s.StoragePrefix == "" {
		s.StoragePrefix = DefaultPrefix
	}
	if len(s.AllowedContentTypes) == 0 {
		s.AllowedContentTypes = []string{"image/png", "image/jpeg", "image/gif"}
	}
	if s.AddTemplate == "" {
		s.AddTemplate = "avatars/add"
	}
	if s.ChangeTemplate == "" {
		s.ChangeTemplate = "avatars/change"
	}
	if s.DeleteTemplate == "" {
		s.DeleteTemplate = "avatars/confirm_delete"
	}
	return s
}
