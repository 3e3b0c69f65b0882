package secret

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

const (
	TokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// no I, O, 0 or 1, codes are read out over the phone
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	ClaimTokenLength = 32
	AccessCodeLength = 6
)

// ErrCollision is returned by an insert callback when the generated value is
// already taken. Unique retries on it.
var ErrCollision = errors.New("secret: collision")

// Source produces random strings.
type Source interface {
	Generate() (string, error)
}

type Generator struct {
	Length   int
	Alphabet string

	rand io.Reader
}

func New(length int, alphabet string) *Generator {
	return &Generator{Length: length, Alphabet: alphabet, rand: rand.Reader}
}

// ClaimTokens returns the generator for claim tokens.
func ClaimTokens() *Generator {
	return New(ClaimTokenLength, TokenAlphabet)
}

// AccessCodes returns the generator for day-scoped booking codes.
func AccessCodes() *Generator {
	return New(AccessCodeLength, CodeAlphabet)
}

func (g *Generator) Generate() (string, error) {
	if g.Length <= 0 || len(g.Alphabet) == 0 {
		return "", fmt.Errorf("secret: invalid generator (length %d, alphabet %d)", g.Length, len(g.Alphabet))
	}
	r := g.rand
	if r == nil {
		r = rand.Reader
	}

	max := big.NewInt(int64(len(g.Alphabet)))
	out := make([]byte, g.Length)
	for i := range out {
		n, err := rand.Int(r, max)
		if err != nil {
			return "", fmt.Errorf("secret: read random: %w", err)
		}
		out[i] = g.Alphabet[n.Int64()]
	}
	return string(out), nil
}

// Unique generates values until insert accepts one. Attempts are unbounded;
// any error other than ErrCollision stops the loop.
func Unique(src Source, insert func(value string) error) (string, error) {
	for {
		value, err := src.Generate()
		if err != nil {
			return "", err
		}

		err = insert(value)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrCollision) {
			return "", err
		}
	}
}
