package util

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// sessionIDLength is the default nanoid length.
const sessionIDLength = 21

// NewSessionID returns a fresh URL-safe nanoid.
func NewSessionID() (string, error) {
	return gonanoid.New(sessionIDLength)
}

// IsSessionID reports whether s has the shape of an id from NewSessionID.
func IsSessionID(s string) bool {
	return isNanoid(s)
}

func isNanoid(s string) bool {
	if len(s) != sessionIDLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}
