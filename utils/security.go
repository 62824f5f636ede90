package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashIdentifier derives a stable pseudonymous token from a sensitive
// identifier (a cleaned CPF) using HMAC-SHA256 keyed with the configured
// salt. The same (value, salt) pair always yields the same token; rotating
// the salt makes old and new tokens unlinkable. Empty or blank input yields
// "", which signals "no usable identity" rather than an error.
func HashIdentifier(value, salt string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}
