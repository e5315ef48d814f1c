package models

// RoleName enumerates roles known to the backend.
type RoleName string

const (
	RoleUser  RoleName = "USER"
	RoleAdmin RoleName = "ADMIN"
)

// Role mirrors the backend role DTO.
type Role struct {
	Name RoleName `json:"name"`
}

// User is a full user record as returned to administrators.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Activated bool   `json:"activated"`
	NonLocked bool   `json:"nonLocked"`
	Roles     []Role `json:"roles"`
}

// SimpleUser is the summary returned after sign-up.
type SimpleUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Activated bool   `json:"activated"`
}
