package signing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner(t *testing.T) {
	s := NewSigner([]byte("topsecret"))
	sig := s.Sign("asset123", 1700000000)
	require.NotEmpty(t, sig)

	assert.True(t, s.Validate("asset123", "1700000000", sig))
	assert.False(t, s.Validate("wrong", "1700000000", sig))
	assert.False(t, s.Validate("asset123", "42", sig))
	assert.False(t, s.Validate("asset123", "not-a-number", sig))
	assert.False(t, NewSigner([]byte("other")).Validate("asset123", "1700000000", sig))
}

func TestQueryAndVerify(t *testing.T) {
	now := time.Unix(1_760_000_000, 0)
	s := NewSigner([]byte("topsecret"))
	s.now = func() time.Time { return now }

	q, expiresAt := s.Query("asset-1", 5*time.Minute)
	assert.Equal(t, now.Add(5*time.Minute).Unix(), expiresAt.Unix())
	assert.Equal(t, "asset-1", q.Get("asset"))
	assert.Equal(t, "1760000300", q.Get("expires"))

	require.NoError(t, s.Verify("asset-1", q.Get("expires"), q.Get("signature")))
	assert.ErrorIs(t, s.Verify("asset-2", q.Get("expires"), q.Get("signature")), ErrBadSignature)

	now = now.Add(6 * time.Minute)
	assert.ErrorIs(t, s.Verify("asset-1", q.Get("expires"), q.Get("signature")), ErrExpired)
}
