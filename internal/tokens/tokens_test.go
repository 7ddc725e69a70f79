package tokens

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-jwt-secret")

func newTestCodec(t *testing.T, now time.Time) *Codec {
	t.Helper()
	c, err := NewCodec(testSecret, "HS256")
	require.NoError(t, err)
	return c.WithClock(func() time.Time { return now })
}

func sampleClaims(exp time.Time) Claims {
	return Claims{
		UserID:    uuid.New(),
		Email:     "alice@example.com",
		Roles:     []string{"admin", "user"},
		JTI:       uuid.NewString(),
		ExpiresAt: exp,
		Refresh:   false,
	}
}

func signMap(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return s
}

func TestNewCodec_RejectsNonHMAC(t *testing.T) {
	t.Parallel()

	for _, alg := range []string{"RS256", "ES256", "none", "", "HS1"} {
		_, err := NewCodec(testSecret, alg)
		assert.Error(t, err, alg)
	}
	_, err := NewCodec(nil, "HS256")
	assert.Error(t, err)

	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		_, err := NewCodec(testSecret, alg)
		assert.NoError(t, err, alg)
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	c := newTestCodec(t, now)
	in := sampleClaims(now.Add(15 * time.Minute))
	in.Refresh = true

	token, err := c.Encode(in)
	require.NoError(t, err)

	out, err := c.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, in.UserID, out.UserID)
	assert.Equal(t, in.Email, out.Email)
	assert.Equal(t, in.Roles, out.Roles)
	assert.Equal(t, in.JTI, out.JTI)
	assert.True(t, in.ExpiresAt.Equal(out.ExpiresAt))
	assert.True(t, out.Refresh)
}

func TestCodec_EmptyRolesSurviveRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	c := newTestCodec(t, now)
	in := sampleClaims(now.Add(time.Minute))
	in.Roles = nil

	token, err := c.Encode(in)
	require.NoError(t, err)

	out, err := c.Decode(token)
	require.NoError(t, err)
	assert.NotNil(t, out.Roles)
	assert.Empty(t, out.Roles)
}

func TestCodec_Expiry(t *testing.T) {
	t.Parallel()

	issued := time.Unix(1_700_000_000, 0)
	exp := issued.Add(time.Minute)
	token, err := newTestCodec(t, issued).Encode(sampleClaims(exp))
	require.NoError(t, err)

	_, err = newTestCodec(t, exp.Add(-time.Second)).Decode(token)
	require.NoError(t, err)

	_, err = newTestCodec(t, exp).Decode(token)
	require.ErrorIs(t, err, ErrExpiredToken)

	_, err = newTestCodec(t, exp.Add(time.Hour)).Decode(token)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestCodec_RejectsTampering(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	c := newTestCodec(t, now)
	token, err := c.Encode(sampleClaims(now.Add(time.Minute)))
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = c.Decode(tampered)
	require.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewCodec([]byte("another-secret"), "HS256")
	require.NoError(t, err)
	_, err = other.WithClock(func() time.Time { return now }).Decode(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_RejectsOtherAlgorithm(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	strong, err := NewCodec(testSecret, "HS512")
	require.NoError(t, err)
	token, err := strong.WithClock(func() time.Time { return now }).Encode(sampleClaims(now.Add(time.Minute)))
	require.NoError(t, err)

	_, err = newTestCodec(t, now).Decode(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": uuid.NewString(), "jti": "x", "roles": []string{}, "refresh": false,
		"exp": now.Add(time.Minute).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = newTestCodec(t, now).Decode(unsigned)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_RejectsMissingFields(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	c := newTestCodec(t, now)
	exp := now.Add(time.Minute).Unix()

	full := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub":     uuid.NewString(),
			"email":   "alice@example.com",
			"roles":   []string{"user"},
			"jti":     uuid.NewString(),
			"exp":     exp,
			"refresh": false,
		}
	}

	_, err := c.Decode(signMap(t, full()))
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(jwt.MapClaims)
	}{
		{name: "no sub", mutate: func(m jwt.MapClaims) { delete(m, "sub") }},
		{name: "sub not uuid", mutate: func(m jwt.MapClaims) { m["sub"] = "alice" }},
		{name: "no jti", mutate: func(m jwt.MapClaims) { delete(m, "jti") }},
		{name: "no roles", mutate: func(m jwt.MapClaims) { delete(m, "roles") }},
		{name: "roles wrong type", mutate: func(m jwt.MapClaims) { m["roles"] = "admin" }},
		{name: "no refresh", mutate: func(m jwt.MapClaims) { delete(m, "refresh") }},
		{name: "refresh wrong type", mutate: func(m jwt.MapClaims) { m["refresh"] = "yes" }},
		{name: "no exp", mutate: func(m jwt.MapClaims) { delete(m, "exp") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := full()
			tt.mutate(m)
			_, err := c.Decode(signMap(t, m))
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestCodec_Lookup(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	c := newTestCodec(t, now)
	token, err := c.Encode(sampleClaims(now.Add(time.Minute)))
	require.NoError(t, err)

	assert.NotNil(t, c.Lookup(token))
	assert.Nil(t, c.Lookup("garbage"))
	assert.Nil(t, c.Lookup(""))
}

func TestClaims_HasAnyRole(t *testing.T) {
	t.Parallel()

	c := &Claims{Roles: []string{"user", "editor"}}
	assert.True(t, c.HasAnyRole([]string{"admin", "editor"}))
	assert.False(t, c.HasAnyRole([]string{"admin"}))
	assert.False(t, c.HasAnyRole(nil))
}
