package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/abenov/accounts-server/internal/model"
)

// CodeLength is the fixed width of issued recovery codes.
const CodeLength = 6

var codeSpace = big.NewInt(1000000)

var _ model.CodeGenerator = (*Generator)(nil)

// Generator produces zero-padded numeric one-time codes.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns a uniformly distributed 6-digit code, zero-padded.
func (g *Generator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
