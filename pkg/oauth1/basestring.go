package oauth1

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Reserved protocol parameter names.
const (
	ParamConsumerKey     = "oauth_consumer_key"
	ParamSignature       = "oauth_signature"
	ParamSignatureMethod = "oauth_signature_method"
	ParamNonce           = "oauth_nonce"
	ParamTimestamp       = "oauth_timestamp"
	ParamVersion         = "oauth_version"
)

var allowedMethods = map[string]struct{}{
	"GET":    {},
	"POST":   {},
	"PUT":    {},
	"DELETE": {},
	"HEAD":   {},
	"PATCH":  {},
}

// CheckMethod returns the upper-cased method, or ErrConfiguration when it is
// not one of GET, POST, PUT, DELETE, HEAD or PATCH.
func CheckMethod(method string) (string, error) {
	m := strings.ToUpper(method)
	if _, ok := allowedMethods[m]; !ok {
		return "", fmt.Errorf("%w: unsupported method %q", ErrConfiguration, method)
	}
	return m, nil
}

// BaseString builds the signature base string for a request:
//
//	ENC(METHOD) & ENC(url) & ENC(name=value&name=value...)
//
// The oauth_signature parameter never takes part. Names are encoded and then
// sorted bytewise; a name with several values emits one pair per value, the
// values in natural order. params is not modified.
func BaseString(method, rawURL string, params url.Values) (string, error) {
	m, err := CheckMethod(method)
	if err != nil {
		return "", err
	}

	return Encode(m) + "&" + Encode(rawURL) + "&" + Encode(NormalizeParameters(params)), nil
}

// NormalizeParameters renders the parameter string part of the base string.
func NormalizeParameters(params url.Values) string {
	encoded := make(map[string][]string, len(params))
	names := make([]string, 0, len(params))
	for name, values := range params {
		if name == ParamSignature {
			continue
		}
		key := Encode(name)
		if _, seen := encoded[key]; !seen {
			names = append(names, key)
		}
		encoded[key] = append(encoded[key], EncodeAll(values)...)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		values := encoded[name]
		if len(values) > 1 {
			sort.SliceStable(values, func(i, j int) bool {
				return NaturalLess(values[i], values[j])
			})
		}
		for _, v := range values {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(name)
			sb.WriteByte('=')
			sb.WriteString(v)
		}
	}
	return sb.String()
}
