package api

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const minSecretLen = 32

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errBadAuthorization     = errors.New("bad authorization header")
	errInvalidToken         = errors.New("invalid or expired token")
)

// Auth issues and validates HS256 bearer tokens.
type Auth struct {
	secret   []byte
	validity time.Duration
	parser   *jwt.Parser
}

// NewAuth creates an Auth from a signing secret and a token validity
// window. The secret must be at least 32 bytes.
func NewAuth(secret string, validity time.Duration) (*Auth, error) {
	if len(secret) < minSecretLen {
		return nil, errors.New("jwt secret must be at least 32 characters")
	}
	if validity <= 0 {
		return nil, errors.New("token validity must be positive")
	}
	return &Auth{
		secret:   []byte(secret),
		validity: validity,
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
	}, nil
}

// Issue signs a token carrying the user identity and returns it together
// with its expiry time.
func (a *Auth) Issue(userID uuid.UUID, email string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(a.validity)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"email":   email,
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// UserIDFromAuthHeader extracts the user identifier from an
// "Authorization: Bearer <token>" header value.
func (a *Auth) UserIDFromAuthHeader(h string) (uuid.UUID, error) {
	if h == "" {
		return uuid.Nil, errMissingAuthorization
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return uuid.Nil, errBadAuthorization
	}
	return a.UserIDFromToken(strings.TrimSpace(parts[1]))
}

// UserIDFromToken validates a raw token string and returns the identity
// it carries.
func (a *Auth) UserIDFromToken(tokenStr string) (uuid.UUID, error) {
	if strings.Count(tokenStr, ".") != 2 {
		return uuid.Nil, errBadAuthorization
	}
	token, err := a.parser.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, errInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errInvalidToken
	}
	if !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		return uuid.Nil, errInvalidToken
	}
	sub, ok := claims["user_id"].(string)
	if !ok || sub == "" {
		return uuid.Nil, errInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, errInvalidToken
	}
	return userID, nil
}
