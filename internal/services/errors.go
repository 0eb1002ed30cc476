package services

import "errors"

// Domain errors surfaced to handlers. Handlers translate these into HTTP
// status codes; everything else is treated as an internal error.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrGroupNotFound    = errors.New("group not found")
	ErrEmailExists      = errors.New("user with this email already exists")
	ErrAlreadyMember    = errors.New("user already in group")
	ErrGroupFull        = errors.New("group is full")
	ErrNotMember        = errors.New("user is not a group member")
	ErrAdminCannotLeave = errors.New("group admin cannot leave the group")
	ErrEmptyMessage     = errors.New("message body is empty")
)
