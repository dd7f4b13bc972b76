package manifest

import "errors"

// Sentinel errors for the manifest package
var (
	// ErrManifestNotFound indicates the manifest file does not exist
	ErrManifestNotFound = errors.New("manifest file not found")

	// ErrManifestCorrupted indicates the manifest file is not valid JSON
	ErrManifestCorrupted = errors.New("manifest file is corrupted")

	// ErrSchemaViolation indicates the manifest does not match its schema
	ErrSchemaViolation = errors.New("manifest does not match schema")

	// ErrVersionMismatch indicates an incompatible manifest version
	ErrVersionMismatch = errors.New("manifest version mismatch")
)
