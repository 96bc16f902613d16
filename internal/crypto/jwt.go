package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtLifetime is the validity window Coinbase accepts for request tokens.
const jwtLifetime = 2 * time.Minute

// JWTAuth signs requests with a Coinbase Developer Platform key: a per-request
// ES256 JWT bound to the method, host and path.
type JWTAuth struct {
	keyName string
	key     *ecdsa.PrivateKey
}

// NewJWTAuth parses a PEM-encoded EC private key (SEC1 or PKCS#8).
func NewJWTAuth(keyName, pemKey string) (*JWTAuth, error) {
	key, err := jwt.ParseECPrivateKeyFromPEM([]byte(pemKey))
	if err != nil {
		return nil, fmt.Errorf("crypto: parse EC private key: %w", err)
	}
	return &JWTAuth{keyName: keyName, key: key}, nil
}

// Token returns a signed JWT for one request.
func (j *JWTAuth) Token(method, host, path string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("crypto: generating nonce: %w", err)
	}
	return j.TokenAt(method, host, path, time.Now(), hex.EncodeToString(nonce))
}

// TokenAt is like Token but lets the caller supply the clock and nonce.
func (j *JWTAuth) TokenAt(method, host, path string, now time.Time, nonce string) (string, error) {
	claims := jwt.MapClaims{
		"sub": j.keyName,
		"iss": "cdp",
		"nbf": now.Unix(),
		"exp": now.Add(jwtLifetime).Unix(),
		"uri": method + " " + host + path,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	tok.Header["kid"] = j.keyName
	tok.Header["nonce"] = nonce

	signed, err := tok.SignedString(j.key)
	if err != nil {
		return "", fmt.Errorf("crypto: sign JWT: %w", err)
	}
	return signed, nil
}

// Authorize implements Authorizer.
func (j *JWTAuth) Authorize(req *http.Request, _ []byte) error {
	tok, err := j.Token(req.Method, req.URL.Host, req.URL.Path)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	return nil
}

// PublicKey returns the verification key, for tests and diagnostics.
func (j *JWTAuth) PublicKey() *ecdsa.PublicKey {
	return &j.key.PublicKey
}

// String returns a redacted representation suitable for logging.
func (j *JWTAuth) String() string {
	return fmt.Sprintf("JWTAuth{key=%s}", redact(j.keyName))
}
