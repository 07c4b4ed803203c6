package service

import "github.com/google/uuid"

// IDGenerator produces unique string identifiers.
type IDGenerator func() string

// UUIDv7 returns a generator of time-ordered RFC 9562 UUIDs.
func UUIDv7() IDGenerator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}
