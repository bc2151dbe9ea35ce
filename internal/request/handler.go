package request

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"envanter-backend/internal/apperr"
	"envanter-backend/internal/audit"
	"envanter-backend/internal/auth"
	"envanter-backend/internal/database"
	"envanter-backend/internal/models"
	"envanter-backend/internal/notify"
)

// RequestFilter: talep listesi için izin verilen filtre alanları
type RequestFilter struct {
	Status      string
	RequesterID uint
	Target      string
}

func (f RequestFilter) Apply(db *gorm.DB) *gorm.DB {
	q := db
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.RequesterID != 0 {
		q = q.Where("requester_id = ?", f.RequesterID)
	}
	if f.Target != "" {
		q = q.Where("allocation_target = ?", f.Target)
	}
	return q
}

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

// POST /api/requests
func CreateRequestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actorID, actorName, err := getActor(c)
		if err != nil {
			return err
		}

		var body CreateRequestInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		req, err := Create(database.DB, actorID, body)
		if err != nil {
			if fe := apperr.ToFiber(err); fe != nil {
				return fe
			}
			return err
		}

		audit.WriteLog(database.DB, audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "request",
			EntityID:    req.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("%s talebi oluşturuldu (%d kalem)", req.DocNumber, len(req.Items)),
			After:       req,
		})

		// Onay gerekiyorsa yetkilileri haberdar et
		if req.Status == models.RequestPending {
			notify.Send(database.DB, notify.AdminIDs(database.DB), notify.Message{
				Title:      "Yeni talep onay bekliyor",
				Body:       fmt.Sprintf("%s numaralı talep onayınızı bekliyor", req.DocNumber),
				EntityType: "request",
				EntityID:   req.ID,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(req)
	}
}

// GET /api/requests
func ListRequestsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := RequestFilter{
			Status: c.Query("status"),
			Target: c.Query("target"),
		}
		filter.RequesterID = uint(c.QueryInt("requester_id"))

		var reqs []models.Request
		if err := filter.Apply(database.DB).
			Preload("Items").
			Order("created_at DESC").
			Find(&reqs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Talepler alınamadı")
		}
		return c.JSON(reqs)
	}
}

// GET /api/requests/:id
func GetRequestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz talep ID")
		}

		var req models.Request
		if err := database.DB.Preload("Items").First(&req, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Talep bulunamadı")
		}
		return c.JSON(req)
	}
}

// POST /api/requests/:id/approve
func ApproveRequestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz talep ID")
		}
		actorID, actorName, err := getActor(c)
		if err != nil {
			return err
		}

		var body ApproveInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		req, err := Approve(database.DB, uint(id), body, actorID)
		if err != nil {
			if fe := apperr.ToFiber(err); fe != nil {
				return fe
			}
			return err
		}

		audit.WriteLog(database.DB, audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "request",
			EntityID:    req.ID,
			Action:      models.AuditActionApprove,
			Description: fmt.Sprintf("%s talebi onaylandı (%s)", req.DocNumber, req.Status),
			After:       req,
		})
		notify.Send(database.DB, []uint{req.RequesterID}, notify.Message{
			Title:      "Talebiniz değerlendirildi",
			Body:       fmt.Sprintf("%s numaralı talebinizin durumu: %s", req.DocNumber, req.Status),
			EntityType: "request",
			EntityID:   req.ID,
		})

		return c.JSON(req)
	}
}

type RejectRequestBody struct {
	Reason string `json:"reason"`
}

// POST /api/requests/:id/reject
func RejectRequestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz talep ID")
		}
		actorID, actorName, err := getActor(c)
		if err != nil {
			return err
		}

		var body RejectRequestBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		req, err := Reject(database.DB, uint(id), body.Reason, actorID)
		if err != nil {
			if fe := apperr.ToFiber(err); fe != nil {
				return fe
			}
			return err
		}

		audit.WriteLog(database.DB, audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "request",
			EntityID:    req.ID,
			Action:      models.AuditActionReject,
			Description: fmt.Sprintf("%s talebi reddedildi: %s", req.DocNumber, body.Reason),
			After:       req,
		})
		notify.Send(database.DB, []uint{req.RequesterID}, notify.Message{
			Title:      "Talebiniz reddedildi",
			Body:       fmt.Sprintf("%s numaralı talebiniz reddedildi", req.DocNumber),
			EntityType: "request",
			EntityID:   req.ID,
		})

		return c.JSON(req)
	}
}

// POST /api/requests/:id/cancel
func CancelRequestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz talep ID")
		}
		actorID, actorName, err := getActor(c)
		if err != nil {
			return err
		}

		var body RejectRequestBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		req, err := Cancel(database.DB, uint(id), body.Reason, actorID)
		if err != nil {
			if fe := apperr.ToFiber(err); fe != nil {
				return fe
			}
			return err
		}

		audit.WriteLog(database.DB, audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "request",
			EntityID:    req.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("%s talebi iptal edildi", req.DocNumber),
			After:       req,
		})

		return c.JSON(req)
	}
}

// POST /api/requests/:id/arrived
func MarkArrivedHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz talep ID")
		}
		actorID, actorName, err := getActor(c)
		if err != nil {
			return err
		}

		req, err := MarkArrived(database.DB, uint(id))
		if err != nil {
			if fe := apperr.ToFiber(err); fe != nil {
				return fe
			}
			return err
		}

		audit.WriteLog(database.DB, audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "request",
			EntityID:    req.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("%s talebinin malları teslim alındı", req.DocNumber),
			After:       req,
		})

		return c.JSON(req)
	}
}

type RegisterAssetsBody struct {
	Units []RegisterUnit `json:"units"`
}

// POST /api/requests/:id/register-assets
func RegisterAssetsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz talep ID")
		}
		actorID, actorName, err := getActor(c)
		if err != nil {
			return err
		}

		var body RegisterAssetsBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		req, created, err := RegisterAssets(database.DB, uint(id), body.Units, actorID, actorName)
		if err != nil {
			if fe := apperr.ToFiber(err); fe != nil {
				return fe
			}
			return err
		}

		audit.WriteLog(database.DB, audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "request",
			EntityID:    req.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("%s talebine %d varlık kaydedildi", req.DocNumber, len(created)),
			After:       req,
		})
		if req.Status == models.RequestAwaitingHandover {
			notify.Send(database.DB, []uint{req.RequesterID}, notify.Message{
				Title:      "Talebiniz teslime hazır",
				Body:       fmt.Sprintf("%s numaralı talebinizin varlıkları kaydedildi, teslim bekliyor", req.DocNumber),
				EntityType: "request",
				EntityID:   req.ID,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"request": req,
			"assets":  created,
		})
	}
}
