package service

import "errors"

var (
	// ErrProjectNotFound covers both a missing project and a project the
	// subject may not act on. The two cases are never distinguished.
	ErrProjectNotFound = errors.New("project not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrMemberNotFound  = errors.New("team member not found in this project")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrAlreadyMember   = errors.New("user is already a member")
	ErrOwnerRemoval    = errors.New("cannot remove the project owner")
	ErrValidation      = errors.New("validation failed")
)
