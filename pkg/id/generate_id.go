// Package id issues and checks account identifiers: 32 lowercase hex characters.
package id

import (
	"encoding/hex"

	"github.com/google/uuid"
)

const Len = 32

// NewAccount returns a fresh account id for a loan. The bytes are a UUIDv7, so
// ids issued by one process sort in creation order.
func NewAccount() string {
	u, err := uuid.NewV7()
	if err != nil {
		u = uuid.New()
	}
	return hex.EncodeToString(u[:])
}

// Valid reports whether s has the account id shape. Any party (employer,
// borrower, lender, loan) is addressed this way.
func Valid(s string) bool {
	if len(s) != Len {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
