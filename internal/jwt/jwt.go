package jwt

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrMissingSecret is returned when the signing secret is not configured.
var ErrMissingSecret = errors.New("jwt signing secret is not configured")

// JWT provides methods to generate and validate JWT tokens.
type JWT struct {
	SecretKey string        // Secret key for signing tokens
	Exp       time.Duration // Token expiration duration
}

// New creates a new JWT instance
func New(secretKey string, expiration time.Duration) *JWT {
	return &JWT{
		SecretKey: secretKey,
		Exp:       expiration,
	}
}

// Generate creates a signed token carrying the user ID and username.
// Tokens expire after j.Exp (7 days in the default configuration).
func (j *JWT) Generate(ctx context.Context, userID uuid.UUID, username string) (string, error) {
	if j.SecretKey == "" {
		return "", ErrMissingSecret
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  userID.String(),
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(j.Exp).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.SecretKey))
}

// Validate checks the token signature and expiry.
func (j *JWT) Validate(ctx context.Context, tokenString string) error {
	_, err := j.parse(tokenString)
	return err
}

// GetUserID parses the token string and returns the userID (uuid.UUID) if valid
func (j *JWT) GetUserID(ctx context.Context, tokenString string) (uuid.UUID, error) {
	token, err := j.parse(tokenString)
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid token claims")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, errors.New("user_id not found in token")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, errors.New("invalid user_id format")
	}
	return userID, nil
}

// GetTokenFromRequest extracts the token string from the Authorization header
func (j *JWT) GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("invalid authorization header format")
	}

	return parts[1], nil
}

func (j *JWT) parse(tokenString string) (*jwt.Token, error) {
	if j.SecretKey == "" {
		return nil, ErrMissingSecret
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(j.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return token, nil
}
