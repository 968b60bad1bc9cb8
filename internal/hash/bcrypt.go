package hash

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/abenov/accounts-server/internal/model"
)

// DefaultCost is the work factor used when none is configured.
const DefaultCost = bcrypt.DefaultCost

var _ model.Hasher = (*Bcrypt)(nil)

// Bcrypt implements password hashing with a configurable cost.
type Bcrypt struct {
	cost int
}

// NewBcrypt creates a bcrypt hasher. Costs outside the valid range fall back
// to the library default.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

// Hash derives a one-way digest of the password.
func (b *Bcrypt) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether the password matches the stored digest.
func (b *Bcrypt) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
