// Package idgen provides ID generation implementations.
package idgen

import "github.com/google/uuid"

// UUID generates random UUIDv4 identifiers.
type UUID struct{}

// New returns a new UUID string.
func (UUID) New() string {
	return uuid.NewString()
}
