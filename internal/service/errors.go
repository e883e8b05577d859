package service

import "errors"

// Sentinel errors returned across the service boundary. The HTTP layer maps
// them to status codes; reason strings stay free of storage paths and
// credentials.
var (
	// File lifecycle.
	ErrFileNotFound       = errors.New("file not found")
	ErrFileAccessDenied   = errors.New("access denied")
	ErrFileTypeNotAllowed = errors.New("file type not allowed for your role")
	ErrFileSizeExceeded   = errors.New("file size exceeds limit for your role")
	ErrFileUploadFailed   = errors.New("file upload failed")

	// Identity and user management.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username already exists")
	ErrInsufficientRole   = errors.New("insufficient permissions")
)
