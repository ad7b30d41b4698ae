package payfast

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// SignatureField is the form field carrying the gateway signature. It is
// excluded from the canonical string it signs.
const SignatureField = "signature"

// CanonicalString builds the string the gateway signature covers: keys
// sorted, empty values and the signature field dropped, values trimmed and
// URL-encoded, with the passphrase appended last.
func CanonicalString(fields map[string]string, passphrase string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == SignatureField {
			continue
		}
		if strings.TrimSpace(fields[k]) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(strings.TrimSpace(fields[k])))
	}
	if passphrase != "" {
		b.WriteString("&passphrase=")
		b.WriteString(url.QueryEscape(passphrase))
	}
	return b.String()
}

// Sign computes the gateway signature for the given fields.
func Sign(fields map[string]string, passphrase string) string {
	sum := md5.Sum([]byte(CanonicalString(fields, passphrase)))
	return hex.EncodeToString(sum[:])
}

// VerifySignature recomputes the signature over fields and compares it in
// constant time against the submitted one. Comparison is case-insensitive on
// the hex digest.
func VerifySignature(fields map[string]string, passphrase string) bool {
	submitted := strings.ToLower(strings.TrimSpace(fields[SignatureField]))
	if submitted == "" {
		return false
	}
	expected := Sign(fields, passphrase)
	return hmac.Equal([]byte(expected), []byte(submitted))
}
