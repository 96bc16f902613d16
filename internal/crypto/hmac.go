package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// HMACAuth signs requests with a legacy Coinbase API key and secret.
type HMACAuth struct {
	Key    string
	Secret string
}

// Headers returns the authentication headers for a request. The signature
// is hex(HMAC-SHA256(secret, timestamp+method+path+body)); path excludes the
// query string.
//
// Returned header keys:
//   - CB-ACCESS-KEY
//   - CB-ACCESS-SIGN
//   - CB-ACCESS-TIMESTAMP
func (h *HMACAuth) Headers(method, path, body string) map[string]string {
	return h.HeadersAt(method, path, body, time.Now().Unix())
}

// HeadersAt is like Headers but lets the caller supply the Unix timestamp
// (useful for deterministic testing).
func (h *HMACAuth) HeadersAt(method, path, body string, unixTS int64) map[string]string {
	ts := strconv.FormatInt(unixTS, 10)

	message := ts + method + path + body
	sig := hmacSHA256Hex([]byte(h.Secret), message)

	return map[string]string{
		"CB-ACCESS-KEY":       h.Key,
		"CB-ACCESS-SIGN":      sig,
		"CB-ACCESS-TIMESTAMP": ts,
	}
}

// Authorize implements Authorizer.
func (h *HMACAuth) Authorize(req *http.Request, body []byte) error {
	for k, v := range h.Headers(req.Method, req.URL.Path, string(body)) {
		req.Header.Set(k, v)
	}
	return nil
}

// String returns a redacted representation suitable for logging.
func (h *HMACAuth) String() string {
	return fmt.Sprintf("HMACAuth{key=%s, secret=%s}", redact(h.Key), redact(h.Secret))
}

func hmacSHA256Hex(key []byte, message string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func redact(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}
