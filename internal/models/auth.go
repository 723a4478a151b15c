package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the roles recognised by the mobile application.
type UserRole string

const (
	RoleSuperManager UserRole = "SUPERMANAGER"
	RoleHOD          UserRole = "HOD"
	RoleTeacher      UserRole = "TEACHER"
	RoleParent       UserRole = "PARENT"
)

// JWTClaims represents the JWT payload for access tokens issued by the auth service.
type JWTClaims struct {
	UserID         string   `json:"user_id"`
	Role           UserRole `json:"role"`
	Email          string   `json:"email"`
	FullName       string   `json:"full_name"`
	DepartmentCode string   `json:"department_code,omitempty"`
	jwt.RegisteredClaims
}
