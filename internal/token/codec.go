package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ghostauth/internal/domain"
)

// Type discrimina el proposito de un token; cada consumidor re-chequea el
// type despues de verificar la firma, una firma valida no alcanza.
type Type string

const (
	TypeRegister       Type = "register_token"
	TypeAccess         Type = "access_token"
	TypeRefresh        Type = "refresh_token"
	TypePasswordVerify Type = "password_verify"
	TypePasswordReset  Type = "password_reset"
	TypeEmailVerify    Type = "email_verify"
)

// Valid reporta si t pertenece a la enumeracion cerrada de types.
func (t Type) Valid() bool {
	switch t {
	case TypeRegister, TypeAccess, TypeRefresh, TypePasswordVerify, TypePasswordReset, TypeEmailVerify:
		return true
	}
	return false
}

// Claims es el claim set firmado. Los campos Enc* son ciphertext de cipherbox
// embebido como string; Username/Email solo viajan en claro en tokens de
// sesion y nunca llevan secretos.
type Claims struct {
	TokenType    Type   `json:"type"`
	Username     string `json:"username,omitempty"`
	Email        string `json:"email,omitempty"`
	EncUsername  string `json:"ecu,omitempty"`
	EncEmail     string `json:"ece,omitempty"`
	EncPassword  string `json:"ecp,omitempty"`
	EncCode      string `json:"ecv,omitempty"`
	EncResetCode string `json:"ssv,omitempty"`
	jwt.RegisteredClaims
}

type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

var ErrInvalidToken = errors.New("token: invalid")

const (
	// Los tokens intermedios cubren un paso de verificacion a velocidad
	// humana; email_verify viaja por correo y tolera clicks tardios.
	IntermediateTTL = 2 * time.Minute
	EmailVerifyTTL  = 48 * time.Hour
)

// Codec firma y verifica claim sets tipados con HS256.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
}

func NewCodec(secret string, accessTTL, refreshTTL time.Duration) *Codec {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     "ghostauth",
	}
}

// Issue firma un claim set para subject con el TTL dado.
func (c *Codec) Issue(subject string, claims Claims, ttl time.Duration) (string, error) {
	if len(c.secret) == 0 {
		return "", ErrInvalidToken
	}
	if !claims.TokenType.Valid() {
		return "", ErrInvalidToken
	}
	now := time.Now().UTC()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    c.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify valida firma y expiracion y devuelve los claims. Firma invalida,
// token expirado o malformado fallan igual: los consumidores no distinguen
// la causa.
func (c *Codec) Verify(tokenString string) (Claims, error) {
	if len(c.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrInvalidToken
	}
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	if !c.isValidClaims(claims) {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// IssuePair acuna la pareja de sesion: access y refresh comparten subject
// pero difieren en type y expiracion. El resumen username/email viaja en
// claro por conveniencia del cliente.
func (c *Codec) IssuePair(user domain.User) (Pair, error) {
	access, err := c.Issue(user.ID, Claims{
		TokenType: TypeAccess,
		Username:  user.Username,
		Email:     user.Email,
	}, c.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := c.Issue(user.ID, Claims{
		TokenType: TypeRefresh,
		Username:  user.Username,
		Email:     user.Email,
	}, c.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(c.accessTTL.Seconds()),
	}, nil
}

func (c *Codec) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.Subject) == "" {
		return false
	}
	if claims.Issuer != c.issuer {
		return false
	}
	return claims.TokenType.Valid()
}
