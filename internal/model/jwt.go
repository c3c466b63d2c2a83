package model

import "github.com/golang-jwt/jwt/v5"

type JWTClaims struct {
	Role     Role    `json:"role"`
	TenantID *string `json:"tenant_id,omitempty"`
	Email    string  `json:"email"`
	jwt.RegisteredClaims
}
