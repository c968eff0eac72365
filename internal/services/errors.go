package services

import "errors"

var (
	ErrEmailExists      = errors.New("email already in use by another account")
	ErrUsernameExists   = errors.New("username already taken")
	ErrInvalidLogin     = errors.New("invalid email or password")
	ErrUserNotFound     = errors.New("user not found")
	ErrListingNotFound  = errors.New("listing not found")
	ErrInquiryNotFound  = errors.New("inquiry not found")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrNoListingOwner   = errors.New("listing has no resolvable owner")
	ErrNotAuthorized    = errors.New("not authorized to perform this action")
	ErrSelfInquiry      = errors.New("cannot send an inquiry to your own listing")
	ErrMessageTooLong   = errors.New("message exceeds maximum length")
	ErrEmptyMessage     = errors.New("message body cannot be empty")
	ErrInvalidRecipient = errors.New("recipient not found")
)
