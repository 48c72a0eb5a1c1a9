package domain

import "errors"

// ErrSessionNotFound is returned when a session ID has no registry entry
var ErrSessionNotFound = errors.New("chat session not found")
