package oauth1

const upperHex = "0123456789ABCDEF"

// Encode percent-encodes s per RFC 3986. Only the unreserved set
// [A-Za-z0-9._~-] is left as is; space becomes %20, never '+'.
func Encode(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if shouldEncode(s[i]) {
			n += 3
		} else {
			n++
		}
	}
	if n == len(s) {
		return s
	}

	b := make([]byte, n)
	j := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEncode(c) {
			b[j] = '%'
			b[j+1] = upperHex[c>>4]
			b[j+2] = upperHex[c&15]
			j += 3
		} else {
			b[j] = c
			j++
		}
	}
	return string(b)
}

// EncodeAll encodes every value, preserving order.
func EncodeAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = Encode(v)
	}
	return out
}

func shouldEncode(c byte) bool {
	if 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' || '0' <= c && c <= '9' {
		return false
	}
	switch c {
	case '-', '_', '.', '~':
		return false
	}
	return true
}
