package notify

import (
	"time"

	"envanter-backend/internal/auth"
	"envanter-backend/internal/database"
	"envanter-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Message struct {
	Title      string
	Body       string
	EntityType string
	EntityID   uint
}

// Send: alıcı listesine toplu bildirim bırakır. Audit gibi fire-and-forget
// çağrılır; bildirim yazılamaması iş akışını geri döndürmez.
func Send(db *gorm.DB, recipientIDs []uint, msg Message) error {
	if len(recipientIDs) == 0 {
		return nil
	}

	rows := make([]models.Notification, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		rows = append(rows, models.Notification{
			RecipientID: id,
			Title:       msg.Title,
			Message:     msg.Body,
			EntityType:  msg.EntityType,
			EntityID:    msg.EntityID,
		})
	}

	return db.Create(&rows).Error
}

// AdminIDs: yönetici ve lojistik rollerinin kullanıcı ID'lerini döner
// (onay bildirimleri için alıcı kümesi)
func AdminIDs(db *gorm.DB) []uint {
	var ids []uint
	db.Model(&models.User{}).
		Where("role IN ?", []models.UserRole{models.RoleAdmin, models.RoleLogistics}).
		Pluck("id", &ids)
	return ids
}

// GET /api/notifications
func ListNotificationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var notifications []models.Notification
		if err := database.DB.
			Where("recipient_id = ?", userID).
			Order("created_at DESC").
			Limit(100).
			Find(&notifications).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bildirimler listelenemedi")
		}

		return c.JSON(notifications)
	}
}

// POST /api/notifications/:id/read
func MarkNotificationReadHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var notification models.Notification
		if err := database.DB.
			First(&notification, "id = ? AND recipient_id = ?", c.Params("id"), userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Bildirim bulunamadı")
		}

		now := time.Now()
		notification.ReadAt = &now
		if err := database.DB.Save(&notification).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bildirim güncellenemedi")
		}

		return c.JSON(notification)
	}
}
