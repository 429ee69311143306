package compose

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Fingerprint returns the hex-encoded SHA-256 digest of a stack definition.
// Snapshots store it so two starts can be compared without keeping the full
// definition around.
func Fingerprint(body []byte) (string, error) {
	if len(body) == 0 {
		return "", errors.New("cannot fingerprint an empty definition")
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}
