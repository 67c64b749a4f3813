package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/centinela/sentinel-backend/internal/domain/errors"
)

// Fingerprint identifies document content by its SHA-256 digest. Two
// submissions with the same content share one fingerprint, which the
// registry uses as its upsert key.
type Fingerprint struct {
	hex string
}

var sha256HexRegex = regexp.MustCompile(`^[a-f0-9]{64}$`)

// NewFingerprint validates a hex-encoded SHA-256 digest.
func NewFingerprint(value string) (Fingerprint, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return Fingerprint{}, errors.NewValidationError("EMPTY_FINGERPRINT",
			"fingerprint cannot be empty")
	}
	if !sha256HexRegex.MatchString(normalized) {
		return Fingerprint{}, errors.NewValidationError("INVALID_FINGERPRINT",
			"fingerprint must be a 64-character hexadecimal SHA-256 digest")
	}
	return Fingerprint{hex: normalized}, nil
}

// ComputeFingerprint digests document content. Empty content is rejected;
// an analysis of nothing is a caller bug, not a scoreable submission.
func ComputeFingerprint(content string) (Fingerprint, error) {
	if content == "" {
		return Fingerprint{}, errors.NewValidationError("EMPTY_CONTENT",
			"document content cannot be empty")
	}
	sum := sha256.Sum256([]byte(content))
	return Fingerprint{hex: hex.EncodeToString(sum[:])}, nil
}

// MustFingerprint parses a digest and panics on error. Test helper.
func MustFingerprint(value string) Fingerprint {
	f, err := NewFingerprint(value)
	if err != nil {
		panic(err)
	}
	return f
}

func (f Fingerprint) String() string { return f.hex }

func (f Fingerprint) IsEmpty() bool { return f.hex == "" }

func (f Fingerprint) Equal(other Fingerprint) bool { return f.hex == other.hex }
