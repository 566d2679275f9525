package validation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Input limits enforced by the API.
const (
	MaxScreenNameLength = 15
	MaxMessageLength    = 10000   // characters in a direct message
	MaxJSONPayload      = 1048576 // 1MB for JSON request bodies
)

// ValidateScreenName checks a screen name, with or without a leading "@":
// 1 to 15 letters, digits or underscores.
func ValidateScreenName(name string) error {
	name = strings.TrimPrefix(strings.TrimSpace(name), "@")
	if name == "" {
		return fmt.Errorf("screen name cannot be empty")
	}
	if n := utf8.RuneCountInString(name); n > MaxScreenNameLength {
		return fmt.Errorf("invalid screen name %q: must be at most %d characters (got %d)", name, MaxScreenNameLength, n)
	}
	for _, r := range name {
		if r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		return fmt.Errorf("invalid screen name %q: must be letters, digits or underscores", name)
	}
	return nil
}

// ValidateUserID checks that id is a positive 64-bit integer in decimal.
func ValidateUserID(id string) error {
	id = strings.TrimSpace(id)
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return fmt.Errorf("invalid user id %q: must be a positive integer", id)
	}
	return nil
}

// ValidateMessageText checks the length of a direct message. Empty text is
// rejected.
func ValidateMessageText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("message text is required")
	}
	if n := utf8.RuneCountInString(text); n > MaxMessageLength {
		return fmt.Errorf("message text exceeds maximum length of %d characters (got %d)", MaxMessageLength, n)
	}
	return nil
}

// ValidateJSONPayload validates JSON payload size
func ValidateJSONPayload(payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("JSON payload cannot be empty")
	}

	// Use byte length for JSON payloads as they're transmitted as UTF-8
	if n := len(payload); n > MaxJSONPayload {
		return fmt.Errorf("JSON payload exceeds maximum size of %d bytes (got %d)", MaxJSONPayload, n)
	}
	return nil
}
