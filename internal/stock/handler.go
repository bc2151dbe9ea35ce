package stock

import (
	"fmt"

	"envanter-backend/internal/apperr"
	"envanter-backend/internal/audit"
	"envanter-backend/internal/auth"
	"envanter-backend/internal/database"
	"envanter-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/stock/availability?name=...&brand=...&quantity=...
func CheckAvailabilityHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Query("name")
		if name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name parametresi zorunlu")
		}
		qty := c.QueryFloat("quantity", 0)
		if qty <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity 0'dan büyük olmalı")
		}

		av, err := CheckAvailability(database.DB, name, c.Query("brand"), qty)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok durumu alınamadı")
		}

		return c.JSON(av)
	}
}

type ConsumeStockRequest struct {
	Items     []ConsumeItem `json:"items"`
	Reference string        `json:"reference"` // ilgili döküman numarası (opsiyonel)
}

// POST /api/stock/consume
func ConsumeStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ConsumeStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "En az bir tüketim kalemi gerekli")
		}

		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		var user models.User
		if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
		}

		allocations, err := ConsumeStock(database.DB, body.Items, user.ID, user.Name, body.Reference)
		if err != nil {
			if fe := apperr.ToFiber(err); fe != nil {
				return fe
			}
			return err
		}

		for _, alloc := range allocations {
			for _, draw := range alloc.Draws {
				_ = audit.WriteLog(database.DB, audit.LogOptions{
					UserID:      user.ID,
					UserName:    user.Name,
					EntityType:  "asset",
					EntityID:    draw.AssetID,
					Action:      models.AuditActionUpdate,
					Description: fmt.Sprintf("Stok tüketildi: %s %.2f (kalan %.2f)", alloc.Item.Name, draw.Amount, draw.BalanceAfter),
				})
			}
		}

		return c.JSON(fiber.Map{
			"allocations": allocations,
		})
	}
}

// GET /api/stock/movements (salt okunur defter)
func ListMovementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := database.DB.Order("created_at DESC").Limit(200)

		if name := c.Query("name"); name != "" {
			query = query.Where("LOWER(asset_name) = LOWER(?)", name)
		}
		if assetID := c.QueryInt("asset_id"); assetID > 0 {
			query = query.Where("asset_id = ?", assetID)
		}

		var movements []models.StockMovement
		if err := query.Find(&movements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Defter kayıtları listelenemedi")
		}

		return c.JSON(movements)
	}
}
