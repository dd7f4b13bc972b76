package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// KeyPrefix constants for different cache record types
const (
	PrefixObject = "object"
)

// GenerateKey hashes a logical key into a fixed-width storage key
func GenerateKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// GenerateKeyWithPrefix generates a logical key with a record-type prefix
func GenerateKeyWithPrefix(prefix, key string) string {
	return prefix + ":" + key
}

// ObjectKey is the cache key recording the URL of a remote object. The
// provider is part of the key so dry-run URLs never leak into real runs.
func ObjectKey(provider, blobKey string) string {
	return GenerateKeyWithPrefix(PrefixObject, provider+"/"+blobKey)
}
