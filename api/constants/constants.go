package constants

// Common error messages
const (
	ErrInvalidSession   = "Your session has expired or is invalid. Please login again"
	ErrMissingUserID    = "Missing or invalid user_id in body"
	ErrUserIDRequired   = "user_id required"
	ErrMethodNotAllowed = "Method Not Allowed"
	ErrDBConnection     = "Failed to connect to database"
)

// Content Types
const (
	ContentTypeJSON      = "application/json"
	ContentTypeMultipart = "multipart/form-data"
	ContentTypeText      = "Content-Type"
)

// Request body keys
const (
	KeyUserID = "user_id"
)

// Date formats
const (
	DateTimeFormat = "2006-01-02 15:04:05"
	DateFormat     = "2006-01-02"
)
