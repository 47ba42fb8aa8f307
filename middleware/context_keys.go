package middleware

// Context keys set by the auth middlewares and read by handlers.
const (
	// UserIDKey is the gin context key for the authenticated user's ID.
	UserIDKey = "userID"
	// UsernameKey is the gin context key for the authenticated username.
	UsernameKey = "username"
)
