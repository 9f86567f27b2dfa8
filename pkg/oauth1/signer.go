package oauth1

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"net/url"
)

// SignatureMethod is the only signature method this package speaks.
const SignatureMethod = "HMAC-SHA1"

// SigningKey derives the HMAC key from the consumer secret. The token secret
// half is always empty for launch requests.
func SigningKey(secret string) string {
	return Encode(secret) + "&"
}

// Sign computes the base64 HMAC-SHA1 signature of the request.
func Sign(method, rawURL string, params url.Values, secret string) (string, error) {
	base, err := BaseString(method, rawURL, params)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha1.New, []byte(SigningKey(secret)))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// Verify recomputes the signature and compares it with candidate in constant
// time. The error is non-nil only for configuration problems.
func Verify(candidate, method, rawURL string, params url.Values, secret string) (bool, error) {
	expected, err := Sign(method, rawURL, params, secret)
	if err != nil {
		return false, err
	}
	return Equal(candidate, expected), nil
}

// Equal compares two signatures without leaking the position of the first
// differing byte.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
