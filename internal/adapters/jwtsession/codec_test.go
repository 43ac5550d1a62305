package jwtsession

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/campushub/eventhub/internal/domain/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestCodec(t *testing.T, now *time.Time) *Codec {
	t.Helper()
	c, err := NewCodec(Config{
		Secret: []byte(testSecret),
		TTL:    time.Hour,
		Issuer: "eventhub",
		Now:    func() time.Time { return *now },
	})
	require.NoError(t, err)
	return c
}

func TestCodec_RoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := newTestCodec(t, &now)

	raw, stamped, err := c.Encode(domainauth.Token{
		UserID:            "u-1",
		Email:             "amy@students.college.edu",
		Name:              "Amy",
		IsProfileComplete: true,
		Role:              domainauth.RoleCoordinator,
	})
	require.NoError(t, err)
	assert.True(t, stamped.IssuedAt.Equal(now))
	assert.True(t, stamped.ExpiresAt.Equal(now.Add(time.Hour)))
	assert.Equal(t, 2, strings.Count(raw, "."))

	got, err := c.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, stamped.UserID, got.UserID)
	assert.Equal(t, stamped.Email, got.Email)
	assert.Equal(t, stamped.Name, got.Name)
	assert.True(t, got.IsProfileComplete)
	assert.Equal(t, domainauth.RoleCoordinator, got.Role)
	assert.True(t, domainauth.SameClaims(stamped, got))
}

func TestCodec_Encode_DefaultsRole(t *testing.T) {
	now := time.Now()
	c := newTestCodec(t, &now)

	_, tok, err := c.Encode(domainauth.Token{Email: "x@students.college.edu"})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleStudent, tok.Role)

	_, _, err = c.Encode(domainauth.Token{})
	assert.Error(t, err)
}

func TestCodec_Decode_Rejects(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c := newTestCodec(t, &now)
	raw, _, err := c.Encode(domainauth.Token{UserID: "u", Email: "a@students.college.edu"})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := now.Add(2 * time.Hour)
		_, err := newTestCodec(t, &later).Decode(raw)
		assert.ErrorIs(t, err, domainauth.ErrInvalidToken)
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := c.Decode(raw[:len(raw)-2] + "xx")
		assert.ErrorIs(t, err, domainauth.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewCodec(Config{Secret: []byte(strings.Repeat("z", 32)), TTL: time.Hour, Issuer: "eventhub",
			Now: func() time.Time { return now }})
		require.NoError(t, err)
		_, err = other.Decode(raw)
		assert.ErrorIs(t, err, domainauth.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := NewCodec(Config{Secret: []byte(testSecret), TTL: time.Hour, Issuer: "someone-else",
			Now: func() time.Time { return now }})
		require.NoError(t, err)
		_, err = other.Decode(raw)
		assert.ErrorIs(t, err, domainauth.ErrInvalidToken)
	})

	t.Run("alg none", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"email": "a@students.college.edu",
			"exp":   now.Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = c.Decode(unsigned)
		assert.ErrorIs(t, err, domainauth.ErrInvalidToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := c.Decode("")
		assert.ErrorIs(t, err, domainauth.ErrInvalidToken)
	})
}

func TestNewCodec_Validation(t *testing.T) {
	_, err := NewCodec(Config{Secret: []byte("short"), TTL: time.Hour})
	assert.Error(t, err)
	_, err = NewCodec(Config{Secret: []byte(testSecret)})
	assert.Error(t, err)
}
