package transfer

import "github.com/golang-jwt/jwt/v5"

// CustomClaims carries the operator name in the registered "sub" claim.
type CustomClaims struct {
	jwt.RegisteredClaims
}
