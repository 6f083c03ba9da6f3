package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ProfileClaims identify one client profile. The subject is the profile id.
type ProfileClaims struct {
	jwt.RegisteredClaims
}

func IssueProfileToken(profileID string, exp time.Time, secret []byte) (string, error) {
	claims := ProfileClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profileID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func ProfileClaimsFromToken(tokenStr string, secret []byte) (*ProfileClaims, error) {
	var claims ProfileClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.Subject == "" {
		return nil, errors.New("invalid profile token")
	}
	return &claims, nil
}

// ExpiredProfileID returns the subject of a correctly signed token whose
// claims no longer validate, so an expired profile can be renewed in place.
func ExpiredProfileID(tokenStr string, secret []byte) (string, error) {
	var claims ProfileClaims
	parser := jwt.NewParser(jwt.WithoutClaimsValidation(), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if _, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("invalid profile token")
	}
	return claims.Subject, nil
}
