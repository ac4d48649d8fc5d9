package parser

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

// GenerateDocID creates a stable document ID from a format prefix, the file
// name and a content hash.
func GenerateDocID(prefix, filename string, content []byte) string {
	base := filepath.Base(filename)
	name := SanitizeID(strings.TrimSuffix(base, filepath.Ext(base)))

	// 12 hex chars = 48 bits, 50% collision at ~16M docs
	shortHash := ContentHash(content)[:12]

	return fmt.Sprintf("%s.%s.%s", prefix, name, shortHash)
}

// SanitizeID makes a string safe for use as an identifier: lower case
// letters, digits and dashes.
func SanitizeID(s string) string {
	var buf bytes.Buffer
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z':
			buf.WriteRune(r)
		case r >= '0' && r <= '9':
			buf.WriteRune(r)
		case r == '-' || r == '_' || r == ' ' || r == '.':
			buf.WriteRune('-')
		}
	}
	return buf.String()
}

// ContentHash computes a SHA256 hash of the content.
func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
