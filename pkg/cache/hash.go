package cache

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// KeyLength is the number of hex characters in a cache key.
const KeyLength = 12

// Key computes the cache key of a diagram description: the first
// [KeyLength] hex characters of the MD5 digest of the trimmed text.
// Descriptions that differ only in surrounding whitespace share a key.
func Key(description string) string {
	sum := md5.Sum([]byte(strings.TrimSpace(description)))
	return hex.EncodeToString(sum[:])[:KeyLength]
}

// Filename returns the image file name for key.
func Filename(key string) string {
	return filePrefix + key + fileExt
}

const (
	filePrefix = "diagram_"
	fileExt    = ".svg"
)

// keyFromFilename extracts the key from a cached image file name.
func keyFromFilename(name string) (string, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileExt) {
		return "", false
	}
	key := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt)
	if len(key) != KeyLength {
		return "", false
	}
	return key, true
}
