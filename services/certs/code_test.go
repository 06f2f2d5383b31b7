package certs

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCodeChecker struct {
	existing map[string]bool
	collideN int // report a collision for the first N lookups
	lookups  int
	checkErr error
}

func (f *fakeCodeChecker) CodeExists(code string) (bool, error) {
	f.lookups++
	if f.checkErr != nil {
		return false, f.checkErr
	}
	if f.lookups <= f.collideN {
		return true, nil
	}
	return f.existing[code], nil
}

func TestGenerateCodeFormat(t *testing.T) {
	gen := NewCodeGenerator("cert", &fakeCodeChecker{})

	code, err := gen.Generate()
	require.NoError(t, err)

	pattern := regexp.MustCompile(`^[A-Z]+-\d{4}-[A-Z0-9]{8}$`)
	assert.Regexp(t, pattern, code)
	assert.Contains(t, code, fmt.Sprintf("CERT-%d-", time.Now().Year()))
}

func TestGenerateCodeRedrawsOnCollision(t *testing.T) {
	checker := &fakeCodeChecker{collideN: 3}
	gen := NewCodeGenerator("CERT", checker)

	code, err := gen.Generate()
	require.NoError(t, err)
	assert.NotEmpty(t, code)
	assert.Equal(t, 4, checker.lookups)
}

func TestGenerateCodeGivesUpAfterBudget(t *testing.T) {
	checker := &fakeCodeChecker{collideN: 1000}
	gen := NewCodeGenerator("CERT", checker)

	_, err := gen.Generate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRender))
	assert.Equal(t, maxCodeAttempts, checker.lookups)
}

func TestGenerateCodeSurfacesStoreError(t *testing.T) {
	checker := &fakeCodeChecker{checkErr: errors.New("connection refused")}
	gen := NewCodeGenerator("CERT", checker)

	_, err := gen.Generate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRender))
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "CERT-2026-ABCD2345", NormalizeCode("  cert-2026-abcd2345 "))
}
