package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTer() *JWTer {
	return &JWTer{Secret: []byte("test-secret-at-least-16-chars"), Issuer: "threads-api"}
}

func TestIssueParseRoundTrip(t *testing.T) {
	j := newTestJWTer()

	tok, err := j.Issue("u-1", "a@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UID)
	assert.Equal(t, "a@x.com", claims.Email)
}

func TestParseRejectsTamperedToken(t *testing.T) {
	j := newTestJWTer()
	tok, err := j.Issue("u-1", "a@x.com")
	require.NoError(t, err)

	_, err = j.Parse(tok[:len(tok)-3] + "xxx")
	assert.Error(t, err)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	j := newTestJWTer()
	other := &JWTer{Secret: []byte("a-completely-different-secret"), Issuer: "threads-api"}

	tok, err := j.Issue("u-1", "a@x.com")
	require.NoError(t, err)

	_, err = other.Parse(tok)
	assert.Error(t, err)
}

func TestIssueWithoutTTLHasNoExpiry(t *testing.T) {
	j := newTestJWTer()

	tok, err := j.Issue("u-1", "a@x.com")
	require.NoError(t, err)

	claims, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	j := newTestJWTer()
	j.TTL = -2 * time.Minute // already past the 60s parse leeway

	tok, err := j.Issue("u-1", "a@x.com")
	require.NoError(t, err)

	_, err = j.Parse(tok)
	assert.Error(t, err)
}

func TestDeriveIdentityNeverFails(t *testing.T) {
	j := newTestJWTer()
	tok, err := j.Issue("u-1", "a@x.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   *Identity
	}{
		{"valid bearer token", "Bearer " + tok, &Identity{ID: "u-1", Email: "a@x.com"}},
		{"missing header", "", nil},
		{"wrong scheme", "Basic dXNlcjpwdw==", nil},
		{"bare token without prefix", tok, nil},
		{"garbage token", "Bearer not.a.jwt", nil},
		{"tampered token", "Bearer " + tok[:len(tok)-3] + "xxx", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, j.DeriveIdentity(tt.header))
		})
	}
}

func TestIdentityContextRoundTrip(t *testing.T) {
	ctx := WithIdentity(context.Background(), &Identity{ID: "u-1", Email: "a@x.com"})
	got := IdentityFromContext(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "u-1", got.ID)

	assert.Nil(t, IdentityFromContext(context.Background()))
}
