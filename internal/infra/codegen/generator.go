package codegen

import (
	"crypto/rand"
	"io"
	"strings"

	"discount-code-service/internal/domain"
	"discount-code-service/internal/domain/ports/adapter"
)

// A character set that avoids ambiguous characters like O/0 and I/1.
// Exactly 32 symbols: 256 is a whole multiple of 32, so the modulo map
// below is uniform with zero bias.
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var _ adapter.CodeGenerator = (*Generator)(nil)

// Generator draws cryptographically random codes over the fixed alphabet.
type Generator struct{}

func New() *Generator { return &Generator{} }

// Generate returns a single random code of exactly length symbols.
func (g *Generator) Generate(length int) (string, error) {
	if length < 1 {
		return "", domain.ErrInvalidArgument
	}

	buffer := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}
	for i := 0; i < length; i++ {
		buffer[i] = alphabet[int(buffer[i])%len(alphabet)]
	}
	return string(buffer), nil
}

// GenerateBatch returns count case-insensitively distinct codes of the
// given length. It retries until the set is full; at these lengths the
// collision probability is negligible (birthday bound over 32^7).
func (g *Generator) GenerateBatch(count, length int) ([]string, error) {
	if count < 1 {
		return nil, domain.ErrInvalidArgument
	}

	seen := make(map[string]struct{}, count)
	out := make([]string, 0, count)
	for len(out) < count {
		code, err := g.Generate(length)
		if err != nil {
			return nil, err
		}
		key := strings.ToUpper(code)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, code)
	}
	return out, nil
}
