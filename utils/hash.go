package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// CreateSHA256Hash hashes the parts as one stream, with a zero byte between
// parts so that ("ab","c") and ("a","bc") differ.
func CreateSHA256Hash(parts ...string) string {
	hash := sha256.New()
	for i, part := range parts {
		if i > 0 {
			hash.Write([]byte{0})
		}
		hash.Write([]byte(part))
	}
	return hex.EncodeToString(hash.Sum(nil))
}
