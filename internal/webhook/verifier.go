// Package webhook authenticates and handles asynchronous notifications sent by
// the virtual-banking gateway.
package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"vbank-adapter/internal/keystore"
	"vbank-adapter/internal/logger"
	"vbank-adapter/internal/metrics"
	"vbank-adapter/internal/signature"

	"go.uber.org/zap"
)

var ErrInvalidPayload = errors.New("invalid notification payload")

// Notification is the raw field set of one inbound notification, including sign.
// Numbers are kept as json.Number so they are signed exactly as received.
type Notification map[string]any

// ParseNotification decodes a JSON object body. Anything other than a single
// object is rejected.
func ParseNotification(body []byte) (Notification, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var n Notification
	if err := dec.Decode(&n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if n == nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrInvalidPayload)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidPayload)
	}
	return n, nil
}

// Sign returns the raw (still URL-encoded) sign field, if it is a string.
func (n Notification) Sign() (string, bool) {
	s, ok := n[signature.SignField].(string)
	return s, ok
}

// Decode fills out with the typed view of the notification. Call it only
// after the notification has been verified.
func (n Notification) Decode(out *PaymentNotification) error {
	raw, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// KeySource supplies the gateway's verification key.
type KeySource interface {
	GatewayPublicKey() (keystore.Material, error)
}

// Verifier is stateless apart from the key source and safe for concurrent use.
// It does not deduplicate; replay handling belongs to the consumer.
type Verifier struct {
	keys    KeySource
	metrics *metrics.Metrics
}

func NewVerifier(keys KeySource, m *metrics.Metrics) *Verifier {
	return &Verifier{keys: keys, metrics: m}
}

const (
	resultValid   = "valid"
	resultInvalid = "invalid"
	resultFault   = "fault"
)

// Verify reports whether n carries a genuine gateway signature. A missing,
// undecodable or mismatching sign is (false, nil). An error means the
// verification key itself is unavailable or unusable.
func (v *Verifier) Verify(n Notification) (bool, error) {
	encoded, ok := n.Sign()
	if !ok || encoded == "" {
		v.metrics.ObserveVerification(resultInvalid)
		return false, nil
	}

	// PathUnescape keeps '+' as part of the base64 alphabet.
	sig, err := url.PathUnescape(encoded)
	if err != nil {
		v.metrics.ObserveVerification(resultInvalid)
		return false, nil
	}

	key, err := v.keys.GatewayPublicKey()
	if err != nil {
		v.metrics.ObserveVerification(resultFault)
		logger.L().Error("gateway public key unavailable", zap.Error(err))
		return false, err
	}

	valid, err := signature.Verify(signature.CanonicalizeInbound(n), sig, key)
	switch {
	case err != nil:
		v.metrics.ObserveVerification(resultFault)
		logger.L().Error("notification verification fault", zap.Error(err))
	case valid:
		v.metrics.ObserveVerification(resultValid)
	default:
		v.metrics.ObserveVerification(resultInvalid)
	}
	return valid, err
}
