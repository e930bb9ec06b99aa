package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCertificateHandle(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		h := GenerateCertificateHandle()
		assert.Len(t, h, CertificateHandleLength)
		for _, r := range h {
			assert.True(t, strings.ContainsRune(CertificateAlphabet, r), "unexpected character %q in handle %s", r, h)
		}
		seen[h] = true
	}
	// With a 36^10 space, 100 draws colliding would point at a broken generator
	assert.Greater(t, len(seen), 90)
}

func TestCertificateAlphabetExcludesAmbiguousCharacters(t *testing.T) {
	for _, r := range "01IlOoSsUuVvXxYyAaEei" {
		assert.False(t, strings.ContainsRune(CertificateAlphabet, r), "alphabet must not contain %q", r)
	}
}

func TestGeneratePvbHandle(t *testing.T) {
	h := GeneratePvbHandle()
	assert.True(t, strings.HasPrefix(h, "pvb-"))
	assert.Len(t, h, len("pvb-")+8)
}

func TestIsValidHandle(t *testing.T) {
	valid := []string{"abc", "zomer-2025", "a1b2c3", strings.Repeat("x", 48)}
	for _, h := range valid {
		assert.True(t, IsValidHandle(h), "expected %q to be valid", h)
	}

	invalid := []string{"", "ab", "UPPER", "with space", "ümlaut", strings.Repeat("x", 49)}
	for _, h := range invalid {
		assert.False(t, IsValidHandle(h), "expected %q to be invalid", h)
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "zomer-cursus-2025", Slugify("Zomer Cursus 2025"))
	assert.Equal(t, "zeilen", Slugify("  Zeilen!  "))
	assert.Equal(t, "a-b", Slugify("A --- B"))
}
