package assets

import (
	"fmt"

	"envanter-backend/internal/apperr"
	"envanter-backend/internal/audit"
	"envanter-backend/internal/auth"
	"envanter-backend/internal/database"
	"envanter-backend/internal/models"
	"envanter-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AssetFilter: varlık listesi için izin verilen filtre alanları. Serbest
// where koşulu yerine alanlar burada tek tek sayılır.
type AssetFilter struct {
	Status   string
	Name     string
	Brand    string
	Location string
}

func (f AssetFilter) Apply(db *gorm.DB) *gorm.DB {
	q := db
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Name != "" {
		q = q.Where("LOWER(name) = LOWER(?)", f.Name)
	}
	if f.Brand != "" {
		q = q.Where("LOWER(brand) = LOWER(?)", f.Brand)
	}
	if f.Location != "" {
		q = q.Where("location = ?", f.Location)
	}
	return q
}

// Yardımcı: aktör bilgisini (ID + isim) context'ten çözer
func getActor(c *fiber.Ctx) (uint, string, error) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return 0, "", err
	}
	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
	}
	return user.ID, user.Name, nil
}

type CreateAssetRequest struct {
	Name           string   `json:"name"`
	Brand          string   `json:"brand"`
	Condition      string   `json:"condition"`
	Quantity       *int64   `json:"quantity"`
	CurrentBalance *float64 `json:"current_balance"`
	Location       string   `json:"location"`
}

// POST /api/assets (talep akışı dışında doğrudan kayıt)
func CreateAssetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAssetRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		actorID, actorName, err := getActor(c)
		if err != nil {
			return err
		}

		asset, err := RegisterAsset(database.DB, RegisterAssetInput{
			Name:           body.Name,
			Brand:          body.Brand,
			Condition:      body.Condition,
			Quantity:       body.Quantity,
			CurrentBalance: body.CurrentBalance,
			Location:       body.Location,
		}, actorID, actorName)
		if err != nil {
			if fe := apperr.ToFiber(err); fe != nil {
				return fe
			}
			return err
		}

		_ = audit.WriteLog(database.DB, audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "asset",
			EntityID:    asset.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Varlık kaydedildi: %s (%s)", asset.Name, asset.DocNumber),
			After:       asset,
		})

		return c.Status(fiber.StatusCreated).JSON(asset)
	}
}

// GET /api/assets
func ListAssetsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := AssetFilter{
			Status:   c.Query("status"),
			Name:     c.Query("name"),
			Brand:    c.Query("brand"),
			Location: c.Query("location"),
		}

		var assets []models.Asset
		if err := filter.Apply(database.DB).
			Order("created_at DESC").
			Limit(200).
			Find(&assets).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Varlıklar listelenemedi")
		}

		return c.JSON(assets)
	}
}

// GET /api/assets/:id
func GetAssetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var asset models.Asset
		if err := database.DB.First(&asset, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Varlık bulunamadı")
		}
		return c.JSON(asset)
	}
}

// POST /api/assets/:id/decommission
func DecommissionAssetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz varlık ID")
		}

		actorID, actorName, err := getActor(c)
		if err != nil {
			return err
		}

		asset, err := Decommission(database.DB, uint(id), actorID)
		if err != nil {
			if fe := apperr.ToFiber(err); fe != nil {
				return fe
			}
			return err
		}

		_ = audit.WriteLog(database.DB, audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "asset",
			EntityID:    asset.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Varlık emekliye ayrıldı: %s", asset.DocNumber),
			After:       asset,
		})

		return c.JSON(asset)
	}
}

type CreateHandoverRequest struct {
	RequestID   *uint               `json:"request_id"`
	RecipientID uint                `json:"recipient_id"`
	CustomerID  *uint               `json:"customer_id"`
	Location    string              `json:"location"`
	AssetIDs    []uint              `json:"asset_ids"`
	Consume     []stock.ConsumeItem `json:"consume"`
	Note        string              `json:"note"`
}

func handoverHandler(handoverType models.HandoverType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateHandoverRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		actorID, actorName, err := getActor(c)
		if err != nil {
			return err
		}

		in := HandoverInput{
			Type:        handoverType,
			RequestID:   body.RequestID,
			RecipientID: body.RecipientID,
			CustomerID:  body.CustomerID,
			Location:    body.Location,
			AssetIDs:    body.AssetIDs,
			Consume:     body.Consume,
			Note:        body.Note,
		}

		handover, err := CreateHandover(database.DB, in, actorID, actorName)
		if err != nil {
			if fe := apperr.ToFiber(err); fe != nil {
				return fe
			}
			return err
		}

		_ = audit.WriteLog(database.DB, audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "handover",
			EntityID:    handover.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("%s dökümanı oluşturuldu: %s (%d varlık)", handover.Type, handover.DocNumber, len(handover.AssetIDs)),
			After:       handover,
		})

		return c.Status(fiber.StatusCreated).JSON(handover)
	}
}

// POST /api/handovers (HO)
func CreateHandoverHandler() fiber.Handler {
	return handoverHandler(models.HandoverTypeHandover)
}

// POST /api/installations (INST)
func CreateInstallationHandler() fiber.Handler {
	return handoverHandler(models.HandoverTypeInstallation)
}

type CreateDismantleRequest struct {
	AssetID   uint   `json:"asset_id"`
	Condition string `json:"condition"`
	Damaged   bool   `json:"damaged"`
	Note      string `json:"note"`
}

// POST /api/dismantles (DSM)
func CreateDismantleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateDismantleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		actorID, actorName, err := getActor(c)
		if err != nil {
			return err
		}

		dismantle, err := CreateDismantle(database.DB, DismantleInput{
			AssetID:   body.AssetID,
			Condition: body.Condition,
			Damaged:   body.Damaged,
			Note:      body.Note,
		}, actorID)
		if err != nil {
			if fe := apperr.ToFiber(err); fe != nil {
				return fe
			}
			return err
		}

		_ = audit.WriteLog(database.DB, audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "dismantle",
			EntityID:    dismantle.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Söküm dökümanı oluşturuldu: %s", dismantle.DocNumber),
			After:       dismantle,
		})

		return c.Status(fiber.StatusCreated).JSON(dismantle)
	}
}

type CreateMaintenanceRequest struct {
	AssetID        uint   `json:"asset_id"`
	Description    string `json:"description"`
	ConditionAfter string `json:"condition_after"`
}

// POST /api/maintenances (MNT)
func CreateMaintenanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateMaintenanceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		actorID, actorName, err := getActor(c)
		if err != nil {
			return err
		}

		maintenance, err := CreateMaintenance(database.DB, MaintenanceInput{
			AssetID:        body.AssetID,
			Description:    body.Description,
			ConditionAfter: body.ConditionAfter,
		}, actorID)
		if err != nil {
			if fe := apperr.ToFiber(err); fe != nil {
				return fe
			}
			return err
		}

		_ = audit.WriteLog(database.DB, audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "maintenance",
			EntityID:    maintenance.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Bakım kaydı oluşturuldu: %s", maintenance.DocNumber),
			After:       maintenance,
		})

		return c.Status(fiber.StatusCreated).JSON(maintenance)
	}
}
