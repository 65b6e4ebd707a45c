// Package goauth bridges go-auth's user repositories and sessions into the
// avatar service's directory and actor contracts.
package goauth

import (
	"context"

	auth "github.com/goliatone/go-auth"
	"github.com/goliatone/go-avatars/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
)

// Directory wraps a go-auth Users repository so it satisfies the avatar
// service's UserDirectory interface.
type Directory struct {
	users auth.Users
}

// NewDirectory builds a Directory over the given users repository.
func NewDirectory(users auth.Users) *Directory {
	return &Directory{users: users}
}

var _ types.UserDirectory = (*Directory)(nil)

// FindByUsername resolves a username through go-auth. Unknown usernames
// return (nil, nil) so callers can render not-found uniformly.
func (d *Directory) FindByUsername(ctx context.Context, username string) (*types.UserRef, error) {
	record, err := d.users.GetByIdentifier(ctx, username)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toUserRef(record), nil
}

func toUserRef(user *auth.User) *types.UserRef {
	if user == nil {
		return nil
	}
	return &types.UserRef{
		ID:       user.ID,
		Username: user.Username,
		Active:   user.Status == auth.UserStatusActive,
		Staff:    user.Role == auth.RoleAdmin,
	}
}
