package service

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/storefront/internal/core/domain"
)

// tokenSubject reads the sub claim of an access token without verifying its
// signature. The backend owns the signing key; the client only checks that
// the token was issued for the user it came with.
func tokenSubject(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	switch sub := claims["sub"].(type) {
	case string:
		if sub != "" {
			return sub, nil
		}
	case float64:
		return strconv.FormatFloat(sub, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("parse token: %w", domain.ErrTokenMismatch)
}

// verifyTokenFor fails with ErrTokenMismatch unless token's subject is userID.
func verifyTokenFor(token string, userID domain.ID) error {
	sub, err := tokenSubject(token)
	if err != nil {
		return err
	}
	if sub != userID.String() {
		return domain.ErrTokenMismatch
	}
	return nil
}
