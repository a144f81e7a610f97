package gateway

import (
	"strings"

	"github.com/google/uuid"
)

// NewNonce returns a 32-character random hex token.
func NewNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
