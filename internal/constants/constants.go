package constants

const (
	// ContextKeyUserID is the session and gin context key holding the principal id.
	ContextKeyUserID = "user_id"

	// SessionCookieName is the cookie carrying the session token.
	SessionCookieName = "task_session"

	MinPasswordLength = 8

	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// DateLayout is used when dates are rendered into messages and activity content.
	DateLayout = "2006-01-02"
)
