package models

import "time"

type UserRole string

const (
	RoleSysAdmin UserRole = "sysadmin"
	RoleAdmin    UserRole = "admin"
	RoleCashier  UserRole = "cashier"
)

type User struct {
	ID           uint     `gorm:"primaryKey"`
	Name         string   `gorm:"size:100;not null"`
	LastName     string   `gorm:"size:100"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	Active       bool     `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
