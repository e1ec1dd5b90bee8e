package utils

import (
	"fmt"
	"strings"
	"time"

	"coffeestock-backend/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Token types. A token is only valid at a use site expecting its type:
// session tokens authenticate API requests, action tokens authorize the
// out-of-band registration approve/reject links.
const (
	TokenTypeSession            = "session"
	TokenTypeRegistrationAction = "registration_action"
)

const (
	SessionTokenTTL = 7 * 24 * time.Hour
	ActionTokenTTL  = 48 * time.Hour
)

type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

func GenerateSessionToken(userID uint, role, email string) (string, error) {
	return generateToken(userID, role, email, TokenTypeSession, SessionTokenTTL)
}

func GenerateActionToken(userID uint, email string) (string, error) {
	return generateToken(userID, "", email, TokenTypeRegistrationAction, ActionTokenTTL)
}

func generateToken(userID uint, role, email, tokenType string, ttl time.Duration) (string, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return "", err
	}

	claims := Claims{
		UserID: userID,
		Role:   role,
		Email:  email,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ValidateToken parses and verifies a token and checks its type tag
// against the expected use site. A session token presented where an
// action token is expected (or vice versa) fails verification.
func ValidateToken(tokenString, expectedType string) (*Claims, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.Type != expectedType {
		return nil, fmt.Errorf("unexpected token type %q", claims.Type)
	}

	return claims, nil
}

func ExtractToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("authorization header is required")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", fmt.Errorf("bearer token not found")
	}

	return strings.TrimPrefix(authHeader, bearerPrefix), nil
}
