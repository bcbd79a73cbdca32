package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ghostauth/internal/domain"
)

func newTestCodec() *Codec {
	return NewCodec("secret", 15*time.Minute, 30*time.Minute)
}

func TestCodec_IssueVerifyRoundtrip(t *testing.T) {
	c := newTestCodec()
	signed, err := c.Issue("g1", Claims{
		TokenType:   TypeRegister,
		EncUsername: "blob-u",
		EncEmail:    "blob-e",
		EncPassword: "blob-p",
		EncCode:     "blob-c",
	}, IntermediateTTL)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := c.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.TokenType != TypeRegister {
		t.Fatalf("unexpected type: %q", claims.TokenType)
	}
	if claims.Subject != "g1" || claims.EncCode != "blob-c" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" {
		t.Fatalf("expected a jti")
	}
}

func TestCodec_ZeroTTLFailsVerification(t *testing.T) {
	c := newTestCodec()
	signed, err := c.Issue("u1", Claims{TokenType: TypeAccess}, 0)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := c.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestCodec_FutureTTLVerifiesImmediately(t *testing.T) {
	c := newTestCodec()
	signed, err := c.Issue("u1", Claims{TokenType: TypeEmailVerify}, EmailVerifyTTL)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := c.Verify(signed); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestCodec_RejectsWrongSecret(t *testing.T) {
	signed, err := newTestCodec().Issue("u1", Claims{TokenType: TypeAccess}, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	other := NewCodec("other-secret", 15*time.Minute, 30*time.Minute)
	if _, err := other.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestCodec_RejectsMalformedToken(t *testing.T) {
	c := newTestCodec()
	for _, tok := range []string{"", "   ", "abc", "a.b.c"} {
		if _, err := c.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestCodec_RejectsUnknownType(t *testing.T) {
	c := newTestCodec()
	if _, err := c.Issue("u1", Claims{TokenType: "session_token"}, time.Minute); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for unknown type, got %v", err)
	}

	now := time.Now().UTC()
	claims := Claims{
		TokenType: "session_token",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "ghostauth",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := c.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign type claim, got %v", err)
	}
}

func TestCodec_RejectsWrongIssuer(t *testing.T) {
	c := newTestCodec()
	now := time.Now().UTC()
	claims := Claims{
		TokenType: TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "other-issuer",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := c.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong issuer, got %v", err)
	}
}

func TestCodec_RejectsEmptySecret(t *testing.T) {
	c := NewCodec("", 15*time.Minute, 30*time.Minute)
	if _, err := c.Issue("u1", Claims{TokenType: TypeAccess}, time.Minute); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken on empty secret, got %v", err)
	}
}

func TestCodec_IssuePair(t *testing.T) {
	c := newTestCodec()
	user := domain.User{ID: "u1", Username: "alice", Email: "a@x.com"}

	pair, err := c.IssuePair(user)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens")
	}
	if pair.ExpiresIn != int64((15 * time.Minute).Seconds()) {
		t.Fatalf("unexpected expires_in: %d", pair.ExpiresIn)
	}

	access, err := c.Verify(pair.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	refresh, err := c.Verify(pair.RefreshToken)
	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
	if access.TokenType != TypeAccess || refresh.TokenType != TypeRefresh {
		t.Fatalf("unexpected types: %q %q", access.TokenType, refresh.TokenType)
	}
	if access.Subject != "u1" || refresh.Subject != "u1" {
		t.Fatalf("pair must share subject")
	}
	if access.Username != "alice" || access.Email != "a@x.com" {
		t.Fatalf("expected public summary claims: %+v", access)
	}
	if access.EncPassword != "" || access.EncCode != "" {
		t.Fatalf("session tokens must not carry encrypted fields")
	}
}

func TestTypeValid(t *testing.T) {
	for _, typ := range []Type{TypeRegister, TypeAccess, TypeRefresh, TypePasswordVerify, TypePasswordReset, TypeEmailVerify} {
		if !typ.Valid() {
			t.Fatalf("type %q should be valid", typ)
		}
	}
	if Type("").Valid() || Type("session_token").Valid() {
		t.Fatalf("foreign types must be invalid")
	}
}
