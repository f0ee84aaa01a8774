package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the signed claim set carried by a session token.
type TokenClaims struct {
	UserID   string `json:"user_id"`
	RoleID   int    `json:"role_id"`
	RoleName string `json:"role_name"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
