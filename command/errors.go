package command

import (
	"errors"

	"github.com/goliatone/go-avatars/pkg/types"
)

var (
	// ErrUserIDRequired occurs when a command omits the target user.
	ErrUserIDRequired = types.ErrUserIDRequired
	// ErrActorRequired indicates an actor reference was not supplied.
	ErrActorRequired = types.ErrActorRequired
	// ErrAvatarNotFound indicates the requested avatar was not found.
	ErrAvatarNotFound = types.ErrAvatarNotFound
	// ErrUploadRequired occurs when the add command lacks a file payload.
	ErrUploadRequired = errors.New("go-avatars: upload payload required")
	// ErrUploadDisabled indicates avatar uploads are disabled via feature gate.
	ErrUploadDisabled = errors.New("go-avatars: upload disabled")
	// ErrAvatarIDRequired occurs when the set-primary command omits a choice.
	ErrAvatarIDRequired = errors.New("go-avatars: avatar id required")
	// ErrAvatarIDsRequired occurs when the delete command omits its targets.
	ErrAvatarIDsRequired = errors.New("go-avatars: avatar ids required")
)
