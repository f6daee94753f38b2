// Package logging provides utilities for secure logging with data masking.
package logging

import (
	"strings"
)

// MaskKey redacts an access key token for logs and list responses.
// The last group stays visible so an admin can tell keys apart.
//
//	"ABCD-EFGH-JKLM-NPQR" -> "****NPQR"
func MaskKey(token string) string {
	if len(token) < 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}

// MaskHeader redacts sensitive header values based on header name.
// Returns the redacted value suitable for logging.
//
// Rules:
// - Password/secret headers: "[REDACTED]" (no partial reveal)
// - Token/API key headers: "****" + last4chars (e.g., "****ab3f")
// - Other headers: returned unchanged
func MaskHeader(name, value string) string {
	lowerName := strings.ToLower(name)

	// Password/secret headers - full redaction
	if strings.Contains(lowerName, "password") ||
		strings.Contains(lowerName, "secret") ||
		strings.Contains(lowerName, "private-key") {
		return "[REDACTED]"
	}

	// Token/API key headers - show last 4 chars
	if lowerName == "authorization" ||
		lowerName == "cookie" ||
		lowerName == "x-api-key" ||
		lowerName == "x-access-key" {
		return MaskKey(value)
	}

	// All other headers - return unchanged
	return value
}
