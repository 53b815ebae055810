package domain

import "time"

// Claims is the identity claim set carried inside a session token. ID is a
// per-issuance nonce so two logins in the same second never share a token.
type Claims struct {
	ID        string
	Subject   string
	IsAdmin   bool
	ExpiresAt time.Time
}

// ActiveToken is a session token that has been issued and not yet revoked.
type ActiveToken struct {
	Token     string
	CreatedAt time.Time
}

// Identity is the caller resolved from a bearer token for one request.
type Identity struct {
	Username string
	IsAdmin  bool
	RawToken string
}
