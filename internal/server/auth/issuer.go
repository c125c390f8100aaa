package auth

import "time"

// Issuer binds a signing secret and token lifetime so callers only deal
// with user ids.
type Issuer struct {
	secretKey []byte
	validity  time.Duration
}

func NewIssuer(secretKey []byte, validity time.Duration) *Issuer {
	return &Issuer{secretKey: secretKey, validity: validity}
}

// Issue returns a signed session token for userID.
func (i *Issuer) Issue(userID, role string) (string, error) {
	return GenerateToken(userID, role, i.secretKey, i.validity)
}

// Validate returns the user id carried by token, or an error wrapping
// common.ErrorUnauthorized.
func (i *Issuer) Validate(token string) (string, error) {
	return GetUserIDFromToken(token, i.secretKey)
}
