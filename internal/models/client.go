package models

import "time"

type Client struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null"`
	LastName  string `gorm:"size:100"`
	Cedula    string `gorm:"size:20;index"` // kimlik numarası
	RUC       string `gorm:"size:20;index"` // vergi numarası
	Email     string `gorm:"size:100"`
	Phone     string `gorm:"size:50"`
	Address   string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
