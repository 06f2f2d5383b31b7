package certs

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

// codeAlphabet avoids 0/O, 1/I and L so codes read unambiguously over the
// phone or from a printout.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const codeSuffixLen = 8

// maxCodeAttempts bounds collision redraws before giving up loudly.
const maxCodeAttempts = 5

type codeChecker interface {
	CodeExists(code string) (bool, error)
}

// CodeGenerator mints verification codes in the form
// <PREFIX>-<YEAR>-<8 chars>, collision-checked against the store.
type CodeGenerator struct {
	prefix string
	store  codeChecker
}

func NewCodeGenerator(prefix string, store codeChecker) *CodeGenerator {
	return &CodeGenerator{prefix: strings.ToUpper(prefix), store: store}
}

// Generate returns a globally unique verification code. A collision is
// astronomically unlikely but still redrawn; after maxCodeAttempts the
// error names the attempt budget so the failure is diagnosable.
func (g *CodeGenerator) Generate() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := g.mint()
		if err != nil {
			return "", fmt.Errorf("%w: minting verification code: %v", ErrRender, err)
		}

		exists, err := g.store.CodeExists(code)
		if err != nil {
			return "", fmt.Errorf("%w: verification code uniqueness check: %v", ErrRender, err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: could not mint a unique verification code in %d attempts", ErrRender, maxCodeAttempts)
}

func (g *CodeGenerator) mint() (string, error) {
	buf := make([]byte, codeSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return fmt.Sprintf("%s-%d-%s", g.prefix, time.Now().Year(), string(buf)), nil
}

// NormalizeCode upper-cases and trims a user-supplied code for lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
