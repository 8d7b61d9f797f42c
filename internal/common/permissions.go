package common

// File permission constants for consistent security across the application
const (
	// FilePermissionSecure is used for sensitive files (config with credentials)
	FilePermissionSecure = 0600

	// DirPermissionSecure is used for directories containing sensitive files
	DirPermissionSecure = 0700
)
