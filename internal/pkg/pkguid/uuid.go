package pkguid

import "github.com/google/uuid"

// UUID generates version 7 UUIDs, which sort by creation time.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

// Generate panics only if the system random source fails.
func (*UUID) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
