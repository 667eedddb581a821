package domain

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

// ValidRole reports whether role is a known user role.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleManager || role == RoleCashier
}

// User is a staff account. PasswordHash is never serialized.
type User struct {
	ID           uuid.UUID       `json:"id"`
	Username     string          `json:"username"`
	PasswordHash string          `json:"-"`
	Role         string          `json:"role"`
	Permissions  map[string]bool `json:"permissions"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewUser creates an active user with the given credentials.
func NewUser(username, passwordHash, role string, permissions map[string]bool) User {
	if permissions == nil {
		permissions = map[string]bool{}
	}
	return User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		Permissions:  permissions,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
}

// Shop holds the single shop-details record.
type Shop struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	LicenseNumber string    `json:"license_number"`
	GSTNumber     string    `json:"gst_number"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
