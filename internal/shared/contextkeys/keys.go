package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "bookmark-sync context key " + string(c)
}

// UserIDKey is the key for the authenticated user identity in context.Context.
// Bookmark ownership is always checked against this value.
const UserIDKey = contextKey("userID")

// UserEmailKey is the key for the authenticated user's email in context.Context.
const UserEmailKey = contextKey("userEmail")

// RequestIDKey is the key for the HTTP request ID in context.Context.
const RequestIDKey = contextKey("requestID")

// SessionIDKey is the key for the sync session (host context) ID in context.Context.
const SessionIDKey = contextKey("sessionID")

// ComponentKey is the key for the originating component name in context.Context.
const ComponentKey = contextKey("component")

// OperationKey is the key for the current operation name in context.Context.
const OperationKey = contextKey("operation")
