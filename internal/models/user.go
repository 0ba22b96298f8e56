package models

import (
	"github.com/google/uuid"
)

// User roles.
const (
	RoleAdmin    = "ADMIN"
	RoleHR       = "HR"
	RoleEmployee = "EMPLOYEE"
)

// User represents a platform account: a platform admin, a company HR
// manager or an employee. CompanyID is nil for non-company paid users.
type User struct {
	BaseModel
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `gorm:"uniqueIndex" json:"email"`
	Role         string     `gorm:"index" json:"role"`
	CompanyID    *uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	Company      *Company   `json:"company,omitempty"`
	PasswordHash string     `json:"-"`
	IsVerified   bool       `json:"is_verified"`
	IsClaimed    bool       `json:"is_claimed"`
	ClaimToken   string     `gorm:"index" json:"-"`
	Wallet       *Wallet    `json:"wallet,omitempty"`
	Orders       []Order    `json:"orders,omitempty"`
}
