package main

import (
	"log"
	"strings"
	"time"

	"pizzeria-backend/internal/audit"
	"pizzeria-backend/internal/auth"
	"pizzeria-backend/internal/catalog"
	"pizzeria-backend/internal/clients"
	"pizzeria-backend/internal/config"
	"pizzeria-backend/internal/dashboard"
	"pizzeria-backend/internal/database"
	"pizzeria-backend/internal/inventory"
	"pizzeria-backend/internal/models"
	"pizzeria-backend/internal/printing"
	"pizzeria-backend/internal/register"
	"pizzeria-backend/internal/sales"
	"pizzeria-backend/internal/users"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("TIMEZONE geçersiz: %v", err)
	}
	regSvc := register.NewService(database.DB, cfg.RegisterID, loc)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public
	api.Post("/auth/register-sysadmin", auth.RegisterSysAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))
	api.Get("/sales/verify/:orderNumber", sales.VerifySaleHandler()) // fiş doğrulama, QR için

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Kasa - durum ve özet herkese, açma/kapama/çekim yönetici onaylı
	protected.Get("/cash-register", register.GetRegisterHandler(regSvc))
	protected.Get("/cash-register/summary", register.SummaryHandler(regSvc))
	protected.Get("/cash-register/movements", register.ListMovementsHandler(regSvc))
	protected.Get("/cash-tickets/:id", register.GetTicketHandler(regSvc))

	registerAdmin := protected.Group("/cash-register")
	registerAdmin.Use(auth.RequireRole(models.RoleAdmin, models.RoleSysAdmin))
	registerAdmin.Post("/open", register.OpenRegisterHandler(regSvc))
	registerAdmin.Post("/close", register.CloseRegisterHandler(regSvc))
	registerAdmin.Post("/extract", register.ExtractHandler(regSvc))

	// Satışlar
	protected.Post("/sales", sales.CreateSaleHandler(regSvc))
	protected.Get("/sales", sales.ListSalesHandler())
	protected.Get("/sales/export", sales.ExportSalesHandler())
	protected.Get("/sales/:id", sales.GetSaleHandler())

	// Ürünler
	protected.Get("/products", catalog.ListProductsHandler())

	catalogAdmin := protected.Group("/products")
	catalogAdmin.Use(auth.RequireRole(models.RoleAdmin, models.RoleSysAdmin))
	catalogAdmin.Post("/", catalog.CreateProductHandler())
	catalogAdmin.Put("/:id", catalog.UpdateProductHandler())
	catalogAdmin.Delete("/:id", catalog.DeleteProductHandler())

	// Müşteriler
	protected.Post("/clients", clients.CreateClientHandler())
	protected.Get("/clients", clients.ListClientsHandler())
	protected.Get("/clients/:id", clients.GetClientHandler())
	protected.Put("/clients/:id", clients.UpdateClientHandler())
	protected.Delete("/clients/:id", clients.DeleteClientHandler())

	// Stok
	protected.Get("/inventory", inventory.ListItemsHandler())

	inventoryAdmin := protected.Group("/inventory")
	inventoryAdmin.Use(auth.RequireRole(models.RoleAdmin, models.RoleSysAdmin))
	inventoryAdmin.Post("/", inventory.CreateItemHandler())
	inventoryAdmin.Put("/:id", inventory.UpdateItemHandler())
	inventoryAdmin.Post("/:id/adjust", inventory.AdjustItemHandler())
	inventoryAdmin.Delete("/:id", inventory.DeleteItemHandler())

	// Kullanıcı yönetimi (yalnızca sysadmin)
	userRoutes := protected.Group("/users")
	userRoutes.Use(auth.RequireRole(models.RoleSysAdmin))
	userRoutes.Post("/", users.CreateUserHandler())
	userRoutes.Get("/", users.ListUsersHandler())
	userRoutes.Put("/:id", users.UpdateUserHandler())

	// Dashboard
	protected.Get("/dashboard/sales-chart", dashboard.SalesChartHandler())

	// Yazdırma
	protected.Get("/print/cash-ticket", printing.PrintCashTicketHandler(regSvc))

	// Audit logs
	auditRoutes := protected.Group("/audit-logs")
	auditRoutes.Use(auth.RequireRole(models.RoleAdmin, models.RoleSysAdmin))
	auditRoutes.Get("/", audit.ListAuditLogsHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
