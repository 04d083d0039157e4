package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrUnauthorized    = 1003
	ErrForbidden       = 1004
	ErrConflict        = 1005
	ErrTooManyRequests = 1006
	ErrBadRequest      = 1007
	ErrServiceUnavail  = 1008
	ErrRequestTimeout  = 1009

	// Auth errors (2000-2999)
	ErrAuthInvalidCredentials = 2000
	ErrAuthEmailExists        = 2001
	ErrAuthInvalidToken       = 2002
	ErrAuthTokenExpired       = 2003
	ErrAuthMissingToken       = 2004
	ErrAuthInvalidEmail       = 2005

	// User errors (3000-3999)
	ErrUserNotFound     = 3000
	ErrUserInvalidInput = 3001

	// Drive errors (4000-4999)
	ErrDriveAccessDenied      = 4000
	ErrDriveInsufficientRole  = 4001
	ErrDriveItemNotFound      = 4002
	ErrDriveLinkNotFound      = 4003
	ErrDriveLinkExpired       = 4004
	ErrDrivePersistenceFailed = 4005
	ErrDriveOrphanedBlob      = 4006
	ErrDriveUnknownBackend    = 4007
	ErrDriveInvalidItemType   = 4008
	ErrDriveNotInTrash        = 4009
	ErrDriveNoFile            = 4010
	ErrDriveRecipientNotFound = 4011
	ErrDriveInvalidRole       = 4012
	ErrDriveInvalidParent     = 4013
	ErrDriveInvalidToken      = 4014
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:    {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:       {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrConflict:        {ErrConflict, http.StatusConflict, "Resource conflict"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},
	ErrRequestTimeout:  {ErrRequestTimeout, http.StatusGatewayTimeout, "Request timed out"},

	// Auth errors
	ErrAuthInvalidCredentials: {ErrAuthInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	// Duplicate email is reported as 400 by the signup contract, not 409.
	ErrAuthEmailExists:  {ErrAuthEmailExists, http.StatusBadRequest, "Email already in use"},
	ErrAuthInvalidToken: {ErrAuthInvalidToken, http.StatusUnauthorized, "Invalid token"},
	ErrAuthTokenExpired: {ErrAuthTokenExpired, http.StatusUnauthorized, "Token expired"},
	ErrAuthMissingToken: {ErrAuthMissingToken, http.StatusUnauthorized, "Missing token"},
	ErrAuthInvalidEmail: {ErrAuthInvalidEmail, http.StatusBadRequest, "Invalid email format"},

	// User errors
	ErrUserNotFound:     {ErrUserNotFound, http.StatusNotFound, "User not found"},
	ErrUserInvalidInput: {ErrUserInvalidInput, http.StatusBadRequest, "Invalid user input"},

	// Drive errors
	ErrDriveAccessDenied:      {ErrDriveAccessDenied, http.StatusForbidden, "Access denied"},
	ErrDriveInsufficientRole:  {ErrDriveInsufficientRole, http.StatusForbidden, "Insufficient permissions"},
	ErrDriveItemNotFound:      {ErrDriveItemNotFound, http.StatusNotFound, "Item not found"},
	ErrDriveLinkNotFound:      {ErrDriveLinkNotFound, http.StatusNotFound, "Link not found"},
	ErrDriveLinkExpired:       {ErrDriveLinkExpired, http.StatusGone, "Link has expired"},
	ErrDrivePersistenceFailed: {ErrDrivePersistenceFailed, http.StatusInternalServerError, "Upload failed on both object storage and local fallback"},
	ErrDriveOrphanedBlob:      {ErrDriveOrphanedBlob, http.StatusInternalServerError, "File bytes were stored but the file record could not be saved"},
	ErrDriveUnknownBackend:    {ErrDriveUnknownBackend, http.StatusInternalServerError, "Unknown storage backend"},
	ErrDriveInvalidItemType:   {ErrDriveInvalidItemType, http.StatusBadRequest, "Invalid item type"},
	ErrDriveNotInTrash:        {ErrDriveNotInTrash, http.StatusBadRequest, "Item is not in trash"},
	ErrDriveNoFile:            {ErrDriveNoFile, http.StatusBadRequest, "No file uploaded"},
	ErrDriveRecipientNotFound: {ErrDriveRecipientNotFound, http.StatusNotFound, "Recipient not found"},
	ErrDriveInvalidRole:       {ErrDriveInvalidRole, http.StatusBadRequest, "Role must be viewer or editor"},
	ErrDriveInvalidParent:     {ErrDriveInvalidParent, http.StatusBadRequest, "Invalid parent folder"},
	ErrDriveInvalidToken:      {ErrDriveInvalidToken, http.StatusForbidden, "Invalid or expired download token"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// IsServerError checks if the code represents a server error (5xx)
func IsServerError(code int) bool {
	status := GetHTTPStatus(code)
	return status >= 500
}

// FormatError formats an error message with code
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
