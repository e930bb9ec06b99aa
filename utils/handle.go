package utils

import (
	"math/rand"
	"regexp"
	"strings"
	"time"
)

// CertificateAlphabet excludes ambiguous characters (0/O, 1/I/l, etc.) so
// handles stay readable on printed diplomas
const CertificateAlphabet = "6789BCDFGHJKLMNPQRTWbcdfghjkmnpqrtwz"

// CertificateHandleLength is the exact length of every certificate handle
const CertificateHandleLength = 10

var (
	handleRegex    = regexp.MustCompile(`^[a-z0-9-]+$`)
	slugStripRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	dashRunRegex   = regexp.MustCompile(`-{2,}`)

	rng = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// GenerateCertificateHandle generates a random 10-character certificate
// handle. Uniqueness is enforced by the database constraint, not here;
// callers must retry on a duplicate-key error.
func GenerateCertificateHandle() string {
	b := make([]byte, CertificateHandleLength)
	for i := range b {
		b[i] = CertificateAlphabet[rng.Intn(len(CertificateAlphabet))]
	}
	return string(b)
}

// GeneratePvbHandle generates a handle for a PvB aanvraag (pvb- prefix plus
// eight characters from the certificate alphabet)
func GeneratePvbHandle() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = CertificateAlphabet[rng.Intn(len(CertificateAlphabet))]
	}
	return "pvb-" + string(b)
}

// IsValidHandle reports whether h is a valid slug handle: lowercase
// alphanumerics and dashes, length 3-48
func IsValidHandle(h string) bool {
	if len(h) < 3 || len(h) > 48 {
		return false
	}
	return handleRegex.MatchString(h)
}

// Slugify derives a handle from a free-form label
func Slugify(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.ReplaceAll(s, " ", "-")
	s = slugStripRegex.ReplaceAllString(s, "")
	s = dashRunRegex.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 48 {
		s = strings.Trim(s[:48], "-")
	}
	return s
}
