// Package keystore loads RSA key material and normalizes it into the
// armor-free, whitespace-free base64 form the gateway protocol works with.
package keystore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"sync"

	"vbank-adapter/internal/logger"

	"go.uber.org/zap"
)

const (
	DefaultPrivateKeyPath = "keys/private_key.pem"
	DefaultPublicKeyPath  = "keys/public_key.pem"
)

var ErrKeyNotFound = errors.New("key not found")

var armorRegex = regexp.MustCompile(`-----(BEGIN|END) (RSA )?(PRIVATE|PUBLIC) KEY-----`)

// Material is a stripped base64 key blob. It prints redacted; use string(m)
// to reach the raw value.
type Material string

func (m Material) String() string {
	if m == "" {
		return ""
	}
	return "[REDACTED]"
}

// Armor re-wraps the stripped key into a PEM block with the given label,
// e.g. "PRIVATE KEY" or "PUBLIC KEY".
func (m Material) Armor(label string) string {
	var b strings.Builder
	b.WriteString("-----BEGIN " + label + "-----\n")
	raw := string(m)
	for len(raw) > 64 {
		b.WriteString(raw[:64])
		b.WriteByte('\n')
		raw = raw[64:]
	}
	if raw != "" {
		b.WriteString(raw)
		b.WriteByte('\n')
	}
	b.WriteString("-----END " + label + "-----\n")
	return b.String()
}

// Strip removes plain and RSA-prefixed PEM armor and every whitespace character.
func Strip(pemText string) Material {
	body := armorRegex.ReplaceAllString(pemText, "")
	return Material(strings.Join(strings.Fields(body), ""))
}

type Paths struct {
	Private string
	Public  string
	// GatewayKey is the gateway's verification key, PEM or already stripped.
	GatewayKey string
}

// Store caches loaded key material for the life of the process. Concurrent
// first loads may read the same file twice; both converge on one value.
type Store struct {
	privatePath string
	publicPath  string
	gatewayKey  Material
	cache       sync.Map
}

func New(p Paths) *Store {
	if p.GatewayKey == "" {
		logger.L().Warn("gateway public key is empty; webhook verification will fail")
	}
	return &Store{
		privatePath: p.Private,
		publicPath:  p.Public,
		gatewayKey:  Strip(p.GatewayKey),
	}
}

// PrivateKey returns the application signing key from the configured location.
func (s *Store) PrivateKey() (Material, error) {
	return s.LoadPrivateKey("")
}

// LoadPrivateKey loads the application private key. An empty path falls back
// to the configured path, then DefaultPrivateKeyPath.
func (s *Store) LoadPrivateKey(path string) (Material, error) {
	return s.load(resolve(path, s.privatePath, DefaultPrivateKeyPath))
}

// PublicKeyForUpload returns the application public key registered with the gateway.
func (s *Store) PublicKeyForUpload() (Material, error) {
	return s.LoadPublicKeyForUpload("")
}

func (s *Store) LoadPublicKeyForUpload(path string) (Material, error) {
	return s.load(resolve(path, s.publicPath, DefaultPublicKeyPath))
}

// GatewayPublicKey returns the gateway's notification verification key.
func (s *Store) GatewayPublicKey() (Material, error) {
	if s.gatewayKey == "" {
		return "", fmt.Errorf("%w: gateway public key not configured", ErrKeyNotFound)
	}
	return s.gatewayKey, nil
}

func (s *Store) load(path string) (Material, error) {
	if v, ok := s.cache.Load(path); ok {
		return v.(Material), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrKeyNotFound, path)
		}
		return "", fmt.Errorf("read key %s: %w", path, err)
	}

	m := Strip(string(raw))
	if m == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrKeyNotFound, path)
	}

	actual, _ := s.cache.LoadOrStore(path, m)
	logger.L().Debug("key material loaded", zap.String("path", path))
	return actual.(Material), nil
}

func resolve(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
