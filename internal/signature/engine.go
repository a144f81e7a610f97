package signature

import (
	"crypto"
	"crypto/md5"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"vbank-adapter/internal/keystore"
)

// ErrEngineFault marks a failure of the RSA primitive itself (unparseable key,
// unsupported parameters). It is a configuration problem, not a verification result.
var ErrEngineFault = errors.New("signature engine fault")

// Sign canonicalizes params in outbound mode and signs the result with the
// application private key. The returned signature is base64.
func Sign(p Params, privateKey keystore.Material) (string, error) {
	return SignCanonical(CanonicalizeOutbound(p), privateKey)
}

// SignCanonical signs an already canonical string. The RSA input is the
// uppercase hex MD5 text of canonical, hashed again with SHA1 (SHA1withRSA).
func SignCanonical(canonical string, privateKey keystore.Material) (string, error) {
	key, err := parsePrivateKey(privateKey)
	if err != nil {
		return "", err
	}

	hashed := sha1.Sum([]byte(DigestHex(canonical)))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA1, hashed[:])
	if err != nil {
		return "", fmt.Errorf("%w: sign: %v", ErrEngineFault, err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Verify checks a base64 signature over canonical against publicKey.
// A mismatch or malformed signature is (false, nil); an error is returned
// only when the key itself cannot be used.
func Verify(canonical, signatureB64 string, publicKey keystore.Material) (bool, error) {
	key, err := parsePublicKey(publicKey)
	if err != nil {
		return false, err
	}

	sig, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil || len(sig) == 0 {
		return false, nil
	}

	hashed := sha1.Sum([]byte(DigestHex(canonical)))
	return rsa.VerifyPKCS1v15(key, crypto.SHA1, hashed[:], sig) == nil, nil
}

// DigestHex returns the MD5 of s as uppercase hex text.
func DigestHex(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

func parsePrivateKey(m keystore.Material) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(m.Armor("PRIVATE KEY")))
	if block == nil {
		return nil, fmt.Errorf("%w: private key is not valid base64", ErrEngineFault)
	}

	if k, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := k.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: private key is not RSA", ErrEngineFault)
		}
		return rsaKey, nil
	}

	k, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key: %v", ErrEngineFault, err)
	}
	return k, nil
}

func parsePublicKey(m keystore.Material) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(m.Armor("PUBLIC KEY")))
	if block == nil {
		return nil, fmt.Errorf("%w: public key is not valid base64", ErrEngineFault)
	}

	if k, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		rsaKey, ok := k.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: public key is not RSA", ErrEngineFault)
		}
		return rsaKey, nil
	}

	k, err := x509.ParsePKCS1PublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: parse public key: %v", ErrEngineFault, err)
	}
	return k, nil
}
