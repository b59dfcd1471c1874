package models

import "github.com/golang-jwt/jwt/v5"

// UserRole is the API-level role carried in JWT claims.
type UserRole string

const (
	UserRoleAdmin     UserRole = "ADMIN"
	UserRolePrincipal UserRole = "PRINCIPAL"
	UserRoleTeacher   UserRole = "TEACHER"
)

// JWTClaims are the token claims issued by the upstream identity service.
type JWTClaims struct {
	UserID    string   `json:"user_id"`
	SchoolID  string   `json:"school_id"`
	TeacherID string   `json:"teacher_id,omitempty"`
	Role      UserRole `json:"role"`
	jwt.RegisteredClaims
}
