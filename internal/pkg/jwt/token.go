package jwt

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ValidateToken validates a JWT and returns its claims. Tokens are issued
// by the external identity service; this service only verifies them.
func ValidateToken(tokenString string, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// UserIDFromClaims extracts the numeric user id claim
func UserIDFromClaims(claims jwt.MapClaims) (int64, error) {
	raw, ok := claims["user_id"]
	if !ok {
		return 0, fmt.Errorf("missing user_id claim")
	}

	// JSON numbers decode as float64
	switch v := raw.(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return 0, fmt.Errorf("user_id claim has unexpected type %T", raw)
	}
}
