package middleware

import (
	"fmt"
	"strings"
)

// Input validation and sanitization utilities

// MaxUploadBytes caps a single multipart submission (logs plus images).
const MaxUploadBytes = 32 << 20 // 32 MiB

// ValidateImageMIME checks that an uploaded attachment claims an image type.
func ValidateImageMIME(mimeType string) error {
	if !strings.HasPrefix(mimeType, "image/") {
		return fmt.Errorf("unsupported attachment type: %s (images only)", mimeType)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidatePageSize clamps pagination size to sane bounds
func ValidatePageSize(size int) int {
	if size <= 0 {
		return 20 // default
	}
	if size > 100 {
		return 100 // max
	}
	return size
}

// ValidatePage clamps the page number
func ValidatePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}
