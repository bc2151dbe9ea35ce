package loan

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

// LoanFilter: ödünç listesi için izin verilen filtre alanları
type LoanFilter struct {
	Status     string
	BorrowerID uint
}

func (f LoanFilter) Apply(db *gorm.DB) *gorm.DB {
	q := db
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.BorrowerID != 0 {
		q = q.Where("borrower_id = ?", f.BorrowerID)
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

// POST /api/loans
func CreateLoanHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actorID, actorName, err := getActor(c)
		if err != nil {
			return err
		}

		var body CreateLoanInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		loan, err := Create(database.DB, actorID, body)
		if err != nil {
			if fe := apperr.ToFiber(err); fe != nil {
				return fe
			}
			return err
		}

		audit.WriteLog(database.DB, audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "loan",
			EntityID:    loan.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("%s ödünç talebi oluşturuldu", loan.DocNumber),
			After:       loan,
		})
		notify.Send(database.DB, notify.AdminIDs(database.DB), notify.Message{
			Title:      "Yeni ödünç talebi",
			Body:       fmt.Sprintf("%s numaralı ödünç talebi onay bekliyor", loan.DocNumber),
			EntityType: "loan",
			EntityID:   loan.ID,
		})

		return c.Status(fiber.StatusCreated).JSON(loan)
	}
}

// GET /api/loans
func ListLoansHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := LoanFilter{Status: c.Query("status")}
		filter.BorrowerID = uint(c.QueryInt("borrower_id"))

		var loans []models.LoanRequest
		if err := filter.Apply(database.DB).
			Preload("Items").
			Order("created_at DESC").
			Find(&loans).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ödünç talepleri alınamadı")
		}
		return c.JSON(loans)
	}
}

// GET /api/loans/:id
func GetLoanHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ödünç ID")
		}

		var loan models.LoanRequest
		if err := database.DB.Preload("Items").Preload("Returns.Items").
			First(&loan, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ödünç talebi bulunamadı")
		}
		return c.JSON(loan)
	}
}

// POST /api/loans/:id/approve
func ApproveLoanHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ödünç ID")
		}
		actorID, actorName, err := getActor(c)
		if err != nil {
			return err
		}

		var body ApproveLoanInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		loan, err := Approve(database.DB, uint(id), body, actorID)
		if err != nil {
			if fe := apperr.ToFiber(err); fe != nil {
				return fe
			}
			return err
		}

		audit.WriteLog(database.DB, audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "loan",
			EntityID:    loan.ID,
			Action:      models.AuditActionApprove,
			Description: fmt.Sprintf("%s ödünç talebi onaylandı, %d varlık verildi", loan.DocNumber, len(loan.AssignedAssets.AllIDs())),
			After:       loan,
		})
		notify.Send(database.DB, []uint{loan.BorrowerID}, notify.Message{
			Title:      "Ödünç talebiniz onaylandı",
			Body:       fmt.Sprintf("%s numaralı ödünç talebiniz onaylandı", loan.DocNumber),
			EntityType: "loan",
			EntityID:   loan.ID,
		})

		return c.JSON(loan)
	}
}

type RejectLoanBody struct {
	Reason string `json:"reason"`
}

// POST /api/loans/:id/reject
func RejectLoanHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ödünç ID")
		}
		actorID, actorName, err := getActor(c)
		if err != nil {
			return err
		}

		var body RejectLoanBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		loan, err := Reject(database.DB, uint(id), body.Reason, actorID)
		if err != nil {
			if fe := apperr.ToFiber(err); fe != nil {
				return fe
			}
			return err
		}

		audit.WriteLog(database.DB, audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "loan",
			EntityID:    loan.ID,
			Action:      models.AuditActionReject,
			Description: fmt.Sprintf("%s ödünç talebi reddedildi: %s", loan.DocNumber, body.Reason),
			After:       loan,
		})
		notify.Send(database.DB, []uint{loan.BorrowerID}, notify.Message{
			Title:      "Ödünç talebiniz reddedildi",
			Body:       fmt.Sprintf("%s numaralı ödünç talebiniz reddedildi", loan.DocNumber),
			EntityType: "loan",
			EntityID:   loan.ID,
		})

		return c.JSON(loan)
	}
}

// DELETE /api/loans/:id
func DeleteLoanHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ödünç ID")
		}
		actorID, actorName, err := getActor(c)
		if err != nil {
			return err
		}

		if err := Delete(database.DB, uint(id)); err != nil {
			if fe := apperr.ToFiber(err); fe != nil {
				return fe
			}
			return err
		}

		audit.WriteLog(database.DB, audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "loan",
			EntityID:    uint(id),
			Action:      models.AuditActionDelete,
			Description: "Ödünç talebi silindi",
		})

		return c.JSON(fiber.Map{"message": "Ödünç talebi silindi"})
	}
}

// POST /api/loans/:id/returns
func SubmitReturnHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ödünç ID")
		}
		actorID, actorName, err := getActor(c)
		if err != nil {
			return err
		}

		var body SubmitReturnInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		ret, err := SubmitReturn(database.DB, uint(id), body, actorID)
		if err != nil {
			if fe := apperr.ToFiber(err); fe != nil {
				return fe
			}
			return err
		}

		audit.WriteLog(database.DB, audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "asset_return",
			EntityID:    ret.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("%s iade dökümanı açıldı (%d varlık)", ret.DocNumber, len(ret.Items)),
			After:       ret,
		})
		notify.Send(database.DB, notify.AdminIDs(database.DB), notify.Message{
			Title:      "İade kontrol bekliyor",
			Body:       fmt.Sprintf("%s numaralı iade dökümanı kontrol bekliyor", ret.DocNumber),
			EntityType: "asset_return",
			EntityID:   ret.ID,
		})

		return c.Status(fiber.StatusCreated).JSON(ret)
	}
}

type ProcessReturnBody struct {
	Decisions map[uint]ReturnDecision `json:"decisions"`
}

// POST /api/returns/:id/process
func ProcessReturnHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz iade ID")
		}
		actorID, actorName, err := getActor(c)
		if err != nil {
			return err
		}

		var body ProcessReturnBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		ret, err := ProcessReturn(database.DB, uint(id), body.Decisions, actorID)
		if err != nil {
			if fe := apperr.ToFiber(err); fe != nil {
				return fe
			}
			return err
		}

		audit.WriteLog(database.DB, audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "asset_return",
			EntityID:    ret.ID,
			Action:      models.AuditActionApprove,
			Description: fmt.Sprintf("%s iade dökümanı sonuçlandı: %s", ret.DocNumber, ret.Status),
			After:       ret,
		})

		return c.JSON(ret)
	}
}
