package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a ULID string. ULIDs sort lexicographically by creation
// time, which keeps lead records and JWT IDs naturally ordered.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
