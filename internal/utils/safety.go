package utils

import "strings"

// IsContentSafe scans the plaintext preview against the configured denylist.
// The envelope itself is never inspected; only the preview the sender chose
// to attach gets scanned.
func IsContentSafe(text string, denylist []string) bool {
	if text == "" {
		return true
	}

	lower := strings.ToLower(text)
	for _, kw := range denylist {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return false
		}
	}
	return true
}
