package main

import (
	"log"
	"strings"

	"envanter-backend/internal/assets"
	"envanter-backend/internal/audit"
	"envanter-backend/internal/auth"
	"envanter-backend/internal/config"
	"envanter-backend/internal/database"
	"envanter-backend/internal/loan"
	"envanter-backend/internal/models"
	"envanter-backend/internal/notify"
	"envanter-backend/internal/request"
	"envanter-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

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

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Depo ekibi: varlık kaydı ve stok işlemleri
	warehouse := auth.RequireRole(models.RoleAdmin, models.RoleLogistics, models.RoleWarehouse)
	// Lojistik/yönetim: onay ve karar adımları
	approver := auth.RequireRole(models.RoleAdmin, models.RoleLogistics)

	// Varlıklar
	protected.Post("/assets", warehouse, assets.CreateAssetHandler())
	protected.Get("/assets", assets.ListAssetsHandler())
	protected.Get("/assets/:id", assets.GetAssetHandler())
	protected.Post("/assets/:id/decommission", approver, assets.DecommissionAssetHandler())

	// Teslim / kurulum / söküm / bakım dökümanları
	protected.Post("/handovers", warehouse, assets.CreateHandoverHandler())
	protected.Post("/installations", warehouse, assets.CreateInstallationHandler())
	protected.Post("/dismantles", warehouse, assets.CreateDismantleHandler())
	protected.Post("/maintenances", warehouse, assets.CreateMaintenanceHandler())

	// Stok
	protected.Get("/stock/availability", stock.CheckAvailabilityHandler())
	protected.Post("/stock/consume", warehouse, stock.ConsumeStockHandler())
	protected.Get("/stock/movements", stock.ListMovementsHandler())

	// Talepler
	protected.Post("/requests", request.CreateRequestHandler())
	protected.Get("/requests", request.ListRequestsHandler())
	protected.Get("/requests/:id", request.GetRequestHandler())
	protected.Post("/requests/:id/approve", approver, request.ApproveRequestHandler())
	protected.Post("/requests/:id/reject", approver, request.RejectRequestHandler())
	protected.Post("/requests/:id/cancel", request.CancelRequestHandler())
	protected.Post("/requests/:id/arrived", warehouse, request.MarkArrivedHandler())
	protected.Post("/requests/:id/register-assets", warehouse, request.RegisterAssetsHandler())

	// Ödünç
	protected.Post("/loans", loan.CreateLoanHandler())
	protected.Get("/loans", loan.ListLoansHandler())
	protected.Get("/loans/:id", loan.GetLoanHandler())
	protected.Post("/loans/:id/approve", approver, loan.ApproveLoanHandler())
	protected.Post("/loans/:id/reject", approver, loan.RejectLoanHandler())
	protected.Delete("/loans/:id", approver, loan.DeleteLoanHandler())
	protected.Post("/loans/:id/returns", loan.SubmitReturnHandler())
	protected.Post("/returns/:id/process", warehouse, loan.ProcessReturnHandler())

	// Bildirimler
	protected.Get("/notifications", notify.ListNotificationsHandler())
	protected.Post("/notifications/:id/read", notify.MarkNotificationReadHandler())

	// Audit logs
	protected.Get("/audit-logs", approver, audit.ListAuditLogsHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
