// Package signing issues and checks HMAC signed download links for exported
// assets.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

var (
	// ErrBadSignature means the signature does not match the asset and expiry.
	ErrBadSignature = errors.New("invalid signature")
	// ErrExpired means the link was valid but its expiry has passed.
	ErrExpired = errors.New("signed url expired")
)

// Signer generates and validates HMAC based signatures.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner creates a Signer.
func NewSigner(secret []byte) *Signer {
	return &Signer{secret: secret, now: time.Now}
}

// Sign returns the hex signature for an asset id and expiry.
func (s *Signer) Sign(assetID string, expiresUnix int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%d", assetID, expiresUnix)
	return hex.EncodeToString(mac.Sum(nil))
}

// Validate compares the provided signature with the expected one. It does not
// look at the clock; see Verify.
func (s *Signer) Validate(assetID, expires, signature string) bool {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return false
	}
	expected := s.Sign(assetID, exp)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Verify checks the signature and that the expiry is still in the future.
func (s *Signer) Verify(assetID, expires, signature string) error {
	if !s.Validate(assetID, expires, signature) {
		return ErrBadSignature
	}
	exp, _ := strconv.ParseInt(expires, 10, 64)
	if s.now().Unix() > exp {
		return ErrExpired
	}
	return nil
}

// Query builds the asset/expires/signature query for a link valid for ttl.
func (s *Signer) Query(assetID string, ttl time.Duration) (url.Values, time.Time) {
	expiresAt := s.now().Add(ttl).UTC()
	exp := expiresAt.Unix()
	q := url.Values{}
	q.Set("asset", assetID)
	q.Set("expires", strconv.FormatInt(exp, 10))
	q.Set("signature", s.Sign(assetID, exp))
	return q, expiresAt
}
