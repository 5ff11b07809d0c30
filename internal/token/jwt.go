package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/loginvault/internal/model"
)

// Claims represents sender token claims. The subject is the extension ID.
type Claims struct {
	jwt.RegisteredClaims
	Surface   model.Surface `json:"surface"`
	URL       string        `json:"url,omitempty"`
	TokenType string        `json:"typ"`
}

// JWT implements SenderTokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey string
	ttl       time.Duration
	now       func() time.Time
}

// NewJWT creates a new JWT token manager with the provided secret key and
// token lifetime.
func NewJWT(secretKey string, ttl time.Duration) *JWT {
	return &JWT{secretKey: secretKey, ttl: ttl, now: time.Now}
}

var _ model.SenderTokenManager = (*JWT)(nil)

const typeSender = "sender"

var errEmptySecret = errors.New("sender token secret is empty")

// GenerateSenderToken signs a short-lived token describing sender.
func (j *JWT) GenerateSenderToken(sender model.Sender) (string, error) {
	if j.secretKey == "" {
		return "", errEmptySecret
	}

	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   sender.ExtensionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		Surface:   sender.Surface,
		URL:       sender.URL,
		TokenType: typeSender,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign sender token: %w", err)
	}

	return tokenString, nil
}

// ParseSenderToken validates a sender token and returns the sender it names.
func (j *JWT) ParseSenderToken(tokenString string) (model.Sender, error) {
	if j.secretKey == "" {
		return model.Sender{}, errEmptySecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	}, jwt.WithTimeFunc(j.now), jwt.WithExpirationRequired())
	if err != nil {
		return model.Sender{}, fmt.Errorf("failed to parse sender token: %w", err)
	}
	if !token.Valid {
		return model.Sender{}, fmt.Errorf("sender token is invalid")
	}
	if claims.TokenType != typeSender {
		return model.Sender{}, fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	if claims.Subject == "" {
		return model.Sender{}, fmt.Errorf("sender token has no subject")
	}

	return model.Sender{
		ExtensionID: claims.Subject,
		Surface:     claims.Surface,
		URL:         claims.URL,
	}, nil
}
