package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost keeps a login hash around a quarter second on current server
// hardware.
const defaultCost = 12

// Hasher hashes and verifies local password credentials with bcrypt.
// The cost is injectable so tests can run at bcrypt.MinCost.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the production cost.
func NewHasher() *Hasher {
	return NewHasherWithCost(defaultCost)
}

// NewHasherWithCost returns a Hasher with an explicit bcrypt cost.
// Out-of-range costs fall back to the default.
func NewHasherWithCost(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of plain. The salt and cost are embedded in
// the returned string, so it can be stored as-is.
func (h *Hasher) Hash(plain string) (string, error) {
	if len(plain) > 72 {
		// bcrypt silently truncates beyond 72 bytes; reject instead.
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plain matches the stored hash. A malformed or empty
// hash verifies as false, never as an error: callers treat every mismatch
// identically so login failures stay indistinguishable.
func (h *Hasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
