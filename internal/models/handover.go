package models

import "time"

type HandoverType string

const (
	HandoverTypeHandover     HandoverType = "handover"     // HO dökümanı
	HandoverTypeInstallation HandoverType = "installation" // INST dökümanı
)

// Handover: teslim veya kurulum dökümanı. Varlıkları depodan kullanıma
// (IN_STORAGE -> IN_USE) geçirir; talebe bağlıysa talebi COMPLETED yapar.
type Handover struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	DocNumber   string       `gorm:"size:30;uniqueIndex;not null" json:"doc_number"` // HO-/INST-2026-08-0001
	Type        HandoverType `gorm:"size:15;not null" json:"type"`
	RequestID   *uint        `gorm:"index" json:"request_id,omitempty"`
	CustomerID  *uint        `gorm:"index" json:"customer_id,omitempty"`
	RecipientID uint         `gorm:"index;not null" json:"recipient_id"`
	Location    string       `gorm:"size:150" json:"location"`
	AssetIDs    AssetIDList  `gorm:"type:jsonb;default:'[]'" json:"asset_ids"`
	ActorID     uint         `gorm:"not null" json:"actor_id"`
	Note        string       `gorm:"size:255" json:"note"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Dismantle: söküm dökümanı. Varlığı kullanımdan depoya (durum iyiyse) veya
// hasarlıya (durum kötüyse) geçirir.
type Dismantle struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DocNumber string    `gorm:"size:30;uniqueIndex;not null" json:"doc_number"` // DSM-2026-08-0001
	AssetID   uint      `gorm:"index;not null" json:"asset_id"`
	Asset     Asset     `json:"-"`
	Condition string    `gorm:"size:50;not null" json:"condition"`
	ActorID   uint      `gorm:"not null" json:"actor_id"`
	Note      string    `gorm:"size:255" json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Maintenance: bakım kaydı. Varlığın durumunu (condition) günceller,
// statüsüne dokunmaz.
type Maintenance struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	DocNumber      string    `gorm:"size:30;uniqueIndex;not null" json:"doc_number"` // MNT-2026-08-0001
	AssetID        uint      `gorm:"index;not null" json:"asset_id"`
	Asset          Asset     `json:"-"`
	Description    string    `gorm:"size:255;not null" json:"description"`
	ConditionAfter string    `gorm:"size:50" json:"condition_after"`
	ActorID        uint      `gorm:"not null" json:"actor_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
