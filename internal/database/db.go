package database

import (
	"log"

	"pizzeria-backend/internal/config"
	"pizzeria-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Product{},
		&models.InventoryItem{},
		&models.Sale{},
		&models.SaleItem{},
		&models.CashRegister{},
		&models.CashMovement{},
		&models.CashTicket{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	// Kasa satırı provisioning'de bir kez oluşturulur, sonra hep yerinde güncellenir
	reg := models.CashRegister{
		ID:             cfg.RegisterID,
		IsOpen:         false,
		CurrentBalance: decimal.Zero,
	}
	if err := DB.FirstOrCreate(&reg, "id = ?", cfg.RegisterID).Error; err != nil {
		log.Fatalf("Kasa satırı oluşturulamadı: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}
