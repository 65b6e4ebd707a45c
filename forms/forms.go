// Package forms holds the pluggable validators applied to avatar form
// submissions. Hosts swap any of them through the service configuration to
// tighten or relax the defaults.
package forms

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-avatars/pkg/types"
)

var (
	// ErrFileRequired indicates no file accompanied the upload form.
	ErrFileRequired = errors.New("forms: avatar file required")
	// ErrContentType indicates the uploaded file's MIME type is not accepted.
	ErrContentType = errors.New("forms: unsupported content type")
	// ErrFileTooLarge indicates the upload exceeds the configured byte cap.
	ErrFileTooLarge = errors.New("forms: file too large")
	// ErrTooManyAvatars indicates the user already holds the maximum number
	// of avatars.
	ErrTooManyAvatars = errors.New("forms: avatar limit reached")
	// ErrChoiceRequired indicates a selection form was submitted empty.
	ErrChoiceRequired = errors.New("forms: choice required")
	// ErrInvalidChoice indicates a selected avatar does not belong to the
	// user's current set.
	ErrInvalidChoice = errors.New("forms: invalid choice")
)

// UploadValidator screens an upload before any storage work happens. current
// is how many avatars the user already holds.
type UploadValidator interface {
	ValidateUpload(upload types.Upload, current int, settings types.Settings) error
}

// UploadValidatorFunc adapts a function to UploadValidator.
type UploadValidatorFunc func(types.Upload, int, types.Settings) error

// ValidateUpload implements UploadValidator.
func (f UploadValidatorFunc) ValidateUpload(u types.Upload, current int, s types.Settings) error {
	return f(u, current, s)
}

// PrimaryChoiceValidator checks a set-primary selection against the user's
// current avatar set.
type PrimaryChoiceValidator interface {
	ValidatePrimaryChoice(choice uuid.UUID, set types.AvatarSet) error
}

// PrimaryChoiceValidatorFunc adapts a function to PrimaryChoiceValidator.
type PrimaryChoiceValidatorFunc func(uuid.UUID, types.AvatarSet) error

// ValidatePrimaryChoice implements PrimaryChoiceValidator.
func (f PrimaryChoiceValidatorFunc) ValidatePrimaryChoice(choice uuid.UUID, set types.AvatarSet) error {
	return f(choice, set)
}

// DeleteChoicesValidator checks a delete selection against the user's current
// avatar set.
type DeleteChoicesValidator interface {
	ValidateDeleteChoices(choices []uuid.UUID, set types.AvatarSet) error
}

// DeleteChoicesValidatorFunc adapts a function to DeleteChoicesValidator.
type DeleteChoicesValidatorFunc func([]uuid.UUID, types.AvatarSet) error

// ValidateDeleteChoices implements DeleteChoicesValidator.
func (f DeleteChoicesValidatorFunc) ValidateDeleteChoices(choices []uuid.UUID, set types.AvatarSet) error {
	return f(choices, set)
}

// DefaultUploadValidator enforces the content-type allowlist, the byte cap,
// and the per-user avatar cap.
type DefaultUploadValidator struct{}

// ValidateUpload implements UploadValidator.
func (DefaultUploadValidator) ValidateUpload(u types.Upload, current int, s types.Settings) error {
	if u.Filename == "" || u.Open == nil {
		return ErrFileRequired
	}
	if !allowedContentType(u.ContentType, s.AllowedContentTypes) {
		return fmt.Errorf("%w: %s", ErrContentType, u.ContentType)
	}
	if u.Size > s.MaxBytes {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, u.Size, s.MaxBytes)
	}
	if current >= s.MaxPerUser {
		return fmt.Errorf("%w: %d of %d", ErrTooManyAvatars, current, s.MaxPerUser)
	}
	return nil
}

// DefaultPrimaryChoiceValidator requires the choice to be one of the user's
// own avatars.
type DefaultPrimaryChoiceValidator struct{}

// ValidatePrimaryChoice implements PrimaryChoiceValidator.
func (DefaultPrimaryChoiceValidator) ValidatePrimaryChoice(choice uuid.UUID, set types.AvatarSet) error {
	if choice == uuid.Nil {
		return ErrChoiceRequired
	}
	if !set.Contains(choice) {
		return fmt.Errorf("%w: %s", ErrInvalidChoice, choice)
	}
	return nil
}

// DefaultDeleteChoicesValidator requires at least one choice and all choices
// to belong to the user's set.
type DefaultDeleteChoicesValidator struct{}

// ValidateDeleteChoices implements DeleteChoicesValidator.
func (DefaultDeleteChoicesValidator) ValidateDeleteChoices(choices []uuid.UUID, set types.AvatarSet) error {
	if len(choices) == 0 {
		return ErrChoiceRequired
	}
	for _, id := range choices {
		if !set.Contains(id) {
			return fmt.Errorf("%w: %s", ErrInvalidChoice, id)
		}
	}
	return nil
}

func allowedContentType(ct string, allowed []string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	for _, a := range allowed {
		if ct == strings.ToLower(a) {
			return true
		}
	}
	return false
}

// ParseChoices splits a comma-separated list of avatar IDs as submitted by
// the delete form. Invalid entries surface as ErrInvalidChoice.
func ParseChoices(raw string) ([]uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := uuid.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidChoice, p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
