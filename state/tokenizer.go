package state

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"

	apperrors "github.com/jrsteele09/gitfiti/internal/errors"
)

const (
	// SeedLength is the number of characters in a state seed.
	SeedLength = 10

	// SeedAlphabet holds the 15 symbols seeds are drawn from. There is no "e".
	SeedAlphabet = "0123456789abcdf"

	// TokenLength is the length of a state token: the seed followed by a
	// hex-encoded SHA-256 digest.
	TokenLength = SeedLength + sha256.Size*2
)

// Tokenizer issues and checks the OAuth state parameter.
//
// A token is seed || hex(sha256(seed || pepper)). Verification needs nothing
// but the pepper, so no per-login state is kept on the server. Tokens do not
// expire and are not single-use: a captured token stays valid for as long as
// the pepper does.
type Tokenizer struct {
	pepper []byte
	random io.Reader
}

type Option func(*Tokenizer)

// WithRandom replaces crypto/rand as the source of seed characters.
func WithRandom(r io.Reader) Option {
	return func(t *Tokenizer) {
		t.random = r
	}
}

// NewTokenizer returns a Tokenizer keyed with pepper.
func NewTokenizer(pepper string, opts ...Option) (*Tokenizer, error) {
	if pepper == "" {
		return nil, apperrors.Wrapf(apperrors.ErrConfigurationMissing, "state pepper is empty")
	}
	t := &Tokenizer{
		pepper: []byte(pepper),
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// GenerateSeed returns SeedLength characters chosen independently and
// uniformly from SeedAlphabet.
func (t *Tokenizer) GenerateSeed() (string, error) {
	alphabetSize := big.NewInt(int64(len(SeedAlphabet)))
	seed := make([]byte, SeedLength)
	for i := range seed {
		n, err := rand.Int(t.random, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("generate state seed: %w", err)
		}
		seed[i] = SeedAlphabet[n.Int64()]
	}
	return string(seed), nil
}

// TokenFromSeed appends the peppered digest of seed to seed.
func (t *Tokenizer) TokenFromSeed(seed string) string {
	h := sha256.New()
	h.Write([]byte(seed))
	h.Write(t.pepper)
	return seed + hex.EncodeToString(h.Sum(nil))
}

// Generate returns a token for a freshly generated seed.
func (t *Tokenizer) Generate() (string, error) {
	seed, err := t.GenerateSeed()
	if err != nil {
		return "", err
	}
	return t.TokenFromSeed(seed), nil
}

// Verify reports whether candidate was produced by TokenFromSeed under the
// current pepper. Empty, truncated or tampered input yields false.
func (t *Tokenizer) Verify(candidate string) bool {
	if len(candidate) < SeedLength {
		return false
	}
	expected := t.TokenFromSeed(candidate[:SeedLength])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(candidate)) == 1
}
