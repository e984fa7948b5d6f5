package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_LoginAndValidate(t *testing.T) {
	m := NewManager("s3cret", "ADM-1", time.Hour)
	require.True(t, m.Enabled())

	tok, exp, err := m.Login("ADM-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, RoleAdmin, claims.Subject)
}

func TestManager_RejectsBadInput(t *testing.T) {
	m := NewManager("s3cret", "ADM-1", time.Hour)

	_, _, err := m.Login("wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = m.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewManager("different", "ADM-1", time.Hour)
	tok, _, err := other.Login("ADM-1")
	require.NoError(t, err)
	_, err = m.Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken, "foreign signature")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Role: RoleAdmin})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Validate(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken, "alg none")
}

func TestManager_Expiry(t *testing.T) {
	m := NewManager("s3cret", "ADM-1", time.Minute)
	base := time.Now()
	m.now = func() time.Time { return base }
	tok, _, err := m.Login("ADM-1")
	require.NoError(t, err)

	m.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = m.Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Disabled(t *testing.T) {
	m := NewManager("", "", 0)
	assert.False(t, m.Enabled())
	_, _, err := m.Login("x")
	assert.ErrorIs(t, err, ErrDisabled)
	_, err = m.Validate("x")
	assert.ErrorIs(t, err, ErrDisabled)
}
