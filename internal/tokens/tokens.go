package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims is the decoded payload of an access or refresh token.
type Claims struct {
	UserID    uuid.UUID
	Email     string
	Roles     []string
	JTI       string
	ExpiresAt time.Time
	Refresh   bool
}

func (c *Claims) HasAnyRole(roles []string) bool {
	for _, want := range roles {
		for _, have := range c.Roles {
			if want == have {
				return true
			}
		}
	}
	return false
}

type wireClaims struct {
	Email   string   `json:"email"`
	Roles   []string `json:"roles"`
	Refresh *bool    `json:"refresh"`
	jwt.RegisteredClaims
}

// Validate runs after the registered claims checks and rejects payloads
// missing one of our own fields.
func (w *wireClaims) Validate() error {
	if _, err := uuid.Parse(w.Subject); err != nil {
		return fmt.Errorf("sub is not a uuid: %w", err)
	}
	if w.ID == "" {
		return errors.New("jti is missing")
	}
	if w.Roles == nil {
		return errors.New("roles is missing")
	}
	if w.Refresh == nil {
		return errors.New("refresh is missing")
	}
	return nil
}

type Codec struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

func NewCodec(secret []byte, algorithm string) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is empty")
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
	}
	return &Codec{secret: secret, method: method, now: time.Now}, nil
}

// WithClock returns a copy of the codec that reads the current time from now.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	cp := *c
	cp.now = now
	return &cp
}

func (c *Codec) Encode(claims Claims) (string, error) {
	if claims.UserID == uuid.Nil {
		return "", errors.New("user id is empty")
	}
	if claims.JTI == "" {
		return "", errors.New("jti is empty")
	}
	roles := claims.Roles
	if roles == nil {
		roles = []string{}
	}
	refresh := claims.Refresh

	wc := &wireClaims{
		Email:   claims.Email,
		Roles:   roles,
		Refresh: &refresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID.String(),
			ID:        claims.JTI,
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(c.now()),
		},
	}

	signed, err := jwt.NewWithClaims(c.method, wc).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (c *Codec) Decode(token string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	var wc wireClaims
	parsed, err := parser.ParseWithClaims(token, &wc, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return &Claims{
		UserID:    uuid.MustParse(wc.Subject),
		Email:     wc.Email,
		Roles:     wc.Roles,
		JTI:       wc.ID,
		ExpiresAt: wc.ExpiresAt.Time,
		Refresh:   *wc.Refresh,
	}, nil
}

// Lookup decodes token and returns nil on any failure.
func (c *Codec) Lookup(token string) *Claims {
	claims, err := c.Decode(token)
	if err != nil {
		return nil
	}
	return claims
}
