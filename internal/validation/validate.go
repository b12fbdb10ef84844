// Package validation provides key normalization and input validation logic.
//
// Object keys are normalized and validated before any request is built, so
// that path traversal sequences and malformed keys never reach the wire.
package validation

import (
	"strings"
	"unicode"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
)

// maxKeyLength is the S3 object key limit in bytes.
const maxKeyLength = 1024

// NormalizeKey canonicalizes an object key: leading slashes are stripped and
// runs of slashes are collapsed. Normalization is idempotent:
// NormalizeKey(NormalizeKey(k)) == NormalizeKey(k) for every k.
func NormalizeKey(key string) string {
	key = strings.TrimLeft(key, "/")
	for strings.Contains(key, "//") {
		key = strings.ReplaceAll(key, "//", "/")
	}
	return key
}

// ValidateKey validates a normalized object key according to S3 rules.
// This includes preventing path traversal and rejecting control characters.
func ValidateKey(key string) error {
	if key == "" {
		return errors.New(errors.CodeInvalidInput, "validateKey").
			WithMessage("object key cannot be empty")
	}

	if hasPathTraversal(key) {
		return errors.New(errors.CodeInvalidInput, "validateKey").
			WithKey(key).
			WithMessage("object key cannot contain path traversal sequences")
	}

	if len(key) > maxKeyLength {
		return errors.New(errors.CodeInvalidInput, "validateKey").
			WithKey(key).
			WithMessage("object key cannot exceed 1024 bytes")
	}

	// S3 keys can contain any UTF-8 character but control characters
	// break header and URL encoding.
	if hasControlCharacters(key) {
		return errors.New(errors.CodeInvalidInput, "validateKey").
			WithKey(key).
			WithMessage("object key cannot contain control characters")
	}

	return nil
}

// ValidateBucketName validates that a bucket name is DNS-compliant according
// to the common S3 rules (3-63 chars, lowercase letters, digits, dots, hyphens).
func ValidateBucketName(bucket string) error {
	if bucket == "" {
		return errors.New(errors.CodeInvalidInput, "validateBucketName").
			WithMessage("bucket name cannot be empty")
	}
	if len(bucket) < 3 || len(bucket) > 63 {
		return errors.New(errors.CodeInvalidInput, "validateBucketName").
			WithMessage("bucket name must be between 3 and 63 characters long")
	}
	for _, char := range bucket {
		if !isValidBucketChar(char) {
			return errors.New(errors.CodeInvalidInput, "validateBucketName").
				WithMessage("bucket name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}
	if bucket[0] == '-' || bucket[0] == '.' || bucket[len(bucket)-1] == '-' || bucket[len(bucket)-1] == '.' {
		return errors.New(errors.CodeInvalidInput, "validateBucketName").
			WithMessage("bucket name cannot start or end with a hyphen or dot")
	}
	if hasAdjacentSpecialChars(bucket) {
		return errors.New(errors.CodeInvalidInput, "validateBucketName").
			WithMessage("bucket name cannot contain two adjacent periods or hyphens")
	}
	return nil
}

// ValidateMetadata validates custom metadata keys and values according to S3 rules.
// Keys become x-amz-meta-* headers, so they must be header-safe.
func ValidateMetadata(metadata map[string]string) error {
	for key, value := range metadata {
		if key == "" {
			return errors.New(errors.CodeInvalidInput, "validateMetadata").
				WithMessage("metadata key cannot be empty")
		}
		if len(key) > 128 {
			return errors.New(errors.CodeInvalidInput, "validateMetadata").
				WithMessage("metadata key cannot exceed 128 characters")
		}
		for _, char := range key {
			if char <= ' ' || char > '~' {
				return errors.New(errors.CodeInvalidInput, "validateMetadata").
					WithMessage("metadata key can only contain printable ASCII characters without spaces")
			}
		}
		if len(value) > 2048 {
			return errors.New(errors.CodeInvalidInput, "validateMetadata").
				WithMessage("metadata value cannot exceed 2048 characters")
		}
		for _, char := range value {
			if unicode.IsControl(char) {
				return errors.New(errors.CodeInvalidInput, "validateMetadata").
					WithMessage("metadata value cannot contain control characters")
			}
		}
	}
	return nil
}

// isValidBucketChar checks if a character is valid in a bucket name
func isValidBucketChar(char rune) bool {
	return (char >= '0' && char <= '9') || (char >= 'a' && char <= 'z') || char == '.' || char == '-'
}

// hasAdjacentSpecialChars checks for adjacent special characters
func hasAdjacentSpecialChars(bucket string) bool {
	for i := 0; i < len(bucket)-1; i++ {
		if (bucket[i] == '.' && bucket[i+1] == '.') || (bucket[i] == '-' && bucket[i+1] == '-') {
			return true
		}
	}
	return false
}

// hasPathTraversal checks for ".." path segments in object keys.
func hasPathTraversal(key string) bool {
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return true
		}
	}
	return false
}

// hasControlCharacters checks for control characters in the key
func hasControlCharacters(key string) bool {
	for _, char := range key {
		if unicode.IsControl(char) {
			return true
		}
	}
	return false
}
