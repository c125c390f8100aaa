package common

// AuthorizationHeaderName carries the session token as "Bearer <token>".
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the session token in the Authorization header.
const BearerPrefix = "Bearer "

// DefaultUserRole is the account-level role given to every registered user.
// Team-scoped roles live on members, not on users.
const DefaultUserRole = "USER"
