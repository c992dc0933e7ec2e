package authz

import "github.com/golang-jwt/jwt/v5"

const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
)

// IsAdmin is the only authorization decision the dashboard makes.
func IsAdmin(role string) bool {
	return role == RoleAdmin
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleAgent
}

type Claims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
