package token

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testCodec() *Codec {
	return NewCodec("unit-secret", "auth-service")
}

func TestIssueDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	c := testCodec()
	subject := uuid.New()

	for _, kind := range []Kind{KindAccess, KindRefresh} {
		signed, expiresAt, err := c.Issue(subject, kind, 30*time.Minute)
		require.NoError(t, err)
		require.NotEmpty(t, signed)

		// Компактный формат: три сегмента через точку.
		require.Len(t, strings.Split(signed, "."), 3)

		claims, err := c.Decode(signed)
		require.NoError(t, err)
		require.Equal(t, kind, claims.Kind)
		require.Equal(t, subject.String(), claims.Subject)

		uid, err := claims.UserID()
		require.NoError(t, err)
		require.Equal(t, subject, uid)

		require.WithinDuration(t, expiresAt, claims.ExpiresAt.Time, time.Second)
		require.WithinDuration(t, time.Now(), claims.IssuedAt.Time, 2*time.Second)
	}
}

func TestDecode_Expired(t *testing.T) {
	t.Parallel()

	c := testCodec()
	subject := uuid.New()

	issuedAt := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return issuedAt })

	signed, _, err := c.Issue(subject, KindAccess, 30*time.Minute)
	require.NoError(t, err)

	// Пока срок не вышел — токен валиден.
	c.SetClock(func() time.Time { return issuedAt.Add(29 * time.Minute) })
	_, err = c.Decode(signed)
	require.NoError(t, err)

	// После истечения — ErrTokenExpired, но клеймы доступны:
	// подпись валидна, и вызывающему нужен subject (например, для аудита).
	c.SetClock(func() time.Time { return issuedAt.Add(31 * time.Minute) })
	claims, err := c.Decode(signed)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrTokenExpired)
	require.NotNil(t, claims)
	require.Equal(t, subject.String(), claims.Subject)
}

func TestDecode_WrongSecret(t *testing.T) {
	t.Parallel()

	signed, _, err := testCodec().Issue(uuid.New(), KindAccess, time.Minute)
	require.NoError(t, err)

	other := NewCodec("another-secret", "auth-service")
	_, err = other.Decode(signed)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestDecode_TamperedClaims(t *testing.T) {
	t.Parallel()

	c := testCodec()
	signed, _, err := c.Issue(uuid.New(), KindAccess, time.Minute)
	require.NoError(t, err)

	// Меняем клейм в payload, оставляя прежнюю подпись.
	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	tampered := strings.Replace(string(payload), `"access"`, `"refresh"`, 1)
	require.NotEqual(t, string(payload), tampered)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(tampered))

	_, err = c.Decode(strings.Join(parts, "."))
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	c := testCodec()

	for _, in := range []string{"", "garbage", "a.b", "a.b.c"} {
		_, err := c.Decode(in)
		require.Error(t, err, "input %q", in)
		require.ErrorIs(t, err, ErrTokenMalformed)
	}
}

func TestDecode_WrongIssuer(t *testing.T) {
	t.Parallel()

	foreign := NewCodec("unit-secret", "other-service")
	signed, _, err := foreign.Issue(uuid.New(), KindAccess, time.Minute)
	require.NoError(t, err)

	_, err = testCodec().Decode(signed)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestRemainingLifetime(t *testing.T) {
	t.Parallel()

	c := testCodec()
	issuedAt := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return issuedAt })

	signed, _, err := c.Issue(uuid.New(), KindRefresh, time.Hour)
	require.NoError(t, err)

	claims, err := c.Decode(signed)
	require.NoError(t, err)

	require.Equal(t, time.Hour, claims.RemainingLifetime(issuedAt))
	require.Equal(t, 30*time.Minute, claims.RemainingLifetime(issuedAt.Add(30*time.Minute)))
	// После истечения остаток не уходит в минус.
	require.Equal(t, time.Duration(0), claims.RemainingLifetime(issuedAt.Add(2*time.Hour)))
}
