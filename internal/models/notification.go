package models

import "time"

// Notification: kullanıcıya düşen bildirim. Toplu gönderim alıcı başına
// bir satır üretir.
type Notification struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	RecipientID uint       `gorm:"index;not null" json:"recipient_id"`
	Title       string     `gorm:"size:150;not null" json:"title"`
	Message     string     `gorm:"size:500" json:"message"`
	EntityType  string     `gorm:"size:50" json:"entity_type"`
	EntityID    uint       `json:"entity_id"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
