package types

import (
	"context"
	"errors"
)

// ErrManageDenied reports that the manage policy rejected a for-user action.
var ErrManageDenied = errors.New("go-avatars: avatar management denied")

// ManagePolicy governs whether an actor may manage avatars owned by the
// target user. The for-user handlers consult it before any mutation.
type ManagePolicy interface {
	Authorize(ctx context.Context, actor ActorRef, target UserRef) error
}

// ManagePolicyFunc adapts bare functions to ManagePolicy.
type ManagePolicyFunc func(ctx context.Context, actor ActorRef, target UserRef) error

// Authorize implements ManagePolicy.
func (f ManagePolicyFunc) Authorize(ctx context.Context, actor ActorRef, target UserRef) error {
	return f(ctx, actor, target)
}

// StaffOrSelfPolicy is the default manage policy: staff actors may manage any
// user's avatars, everyone else only their own.
type StaffOrSelfPolicy struct{}

// Authorize implements ManagePolicy.
func (StaffOrSelfPolicy) Authorize(_ context.Context, actor ActorRef, target UserRef) error {
	if actor.IsStaff() || actor.ID == target.ID {
		return nil
	}
	return ErrManageDenied
}

// AllowAllManagePolicy allows every actor/target combination. Useful in tests
// and single-tenant tools.
type AllowAllManagePolicy struct{}

// Authorize implements ManagePolicy.
func (AllowAllManagePolicy) Authorize(context.Context, ActorRef, UserRef) error {
	return nil
}

// EnsureManagePolicy returns a non-nil policy so constructors can accept nil.
func EnsureManagePolicy(p ManagePolicy) ManagePolicy {
	if p == nil {
		return StaffOrSelfPolicy{}
	}
	return p
}
