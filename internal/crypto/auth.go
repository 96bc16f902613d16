package crypto

import (
	"errors"
	"net/http"
	"strings"
)

// Authorizer adds credentials to an outgoing exchange request. body is the
// exact request body (nil for GET).
type Authorizer interface {
	Authorize(req *http.Request, body []byte) error
}

// NewAuthorizer picks the scheme from the shape of the secret: a PEM private
// key selects CDP JWT auth, anything else legacy HMAC.
func NewAuthorizer(apiKey, secret string) (Authorizer, error) {
	if apiKey == "" || secret == "" {
		return nil, errors.New("crypto: API key and secret are required")
	}
	if strings.Contains(secret, "BEGIN") {
		return NewJWTAuth(apiKey, secret)
	}
	return &HMACAuth{Key: apiKey, Secret: secret}, nil
}
