package platform

import (
	"github.com/google/uuid"
)

// NewID returns a random UUID string used as the primary key of every row.
func NewID() string {
	return uuid.New().String()
}

// IsID reports whether s looks like an ID produced by NewID.
func IsID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
