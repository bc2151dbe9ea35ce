package models

import "time"

type AssetStatus string

const (
	AssetInStorage      AssetStatus = "IN_STORAGE"
	AssetInUse          AssetStatus = "IN_USE"
	AssetOnLoan         AssetStatus = "ON_LOAN"
	AssetAwaitingReturn AssetStatus = "AWAITING_RETURN"
	AssetDamaged        AssetStatus = "DAMAGED"
	AssetConsumed       AssetStatus = "CONSUMED"
	AssetDecommissioned AssetStatus = "DECOMMISSIONED"
)

// Asset: tek bir varlık kaydı. Üç temsilden yalnızca biri anlamlıdır:
// Quantity (sayılabilir stok), CurrentBalance (ölçülü stok) ya da ikisi de
// nil (tekil, bölünemez varlık). Bakiye hiçbir zaman negatif olamaz.
// Varlıklar fiziksel olarak silinmez; emeklilik DECOMMISSIONED statüsüdür.
type Asset struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	DocNumber      string      `gorm:"size:30;uniqueIndex;not null" json:"doc_number"` // AST-2026-0001
	Name           string      `gorm:"size:150;index;not null" json:"name"`
	Brand          string      `gorm:"size:100;index" json:"brand"`
	Status         AssetStatus `gorm:"size:20;index;not null;default:'IN_STORAGE'" json:"status"`
	Condition      string      `gorm:"size:50" json:"condition"` // iyi / hasarlı / bakımda vb.
	Quantity       *int64      `json:"quantity,omitempty"`
	CurrentBalance *float64    `json:"current_balance,omitempty"`
	Location       string      `gorm:"size:150" json:"location"`
	CustomerID     *uint       `gorm:"index" json:"customer_id,omitempty"`
	CurrentUserID  *uint       `gorm:"index" json:"current_user_id,omitempty"`
	RequestItemID  *uint       `gorm:"index" json:"request_item_id,omitempty"` // hangi talep kaleminden kaydedildi
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Balance: varlığın kalan miktarını tek sayı olarak döner (tekil varlıkta 1)
func (a *Asset) Balance() float64 {
	if a.CurrentBalance != nil {
		return *a.CurrentBalance
	}
	if a.Quantity != nil {
		return float64(*a.Quantity)
	}
	return 1
}

type MovementType string

const (
	MovementIn      MovementType = "IN"
	MovementOut     MovementType = "OUT"
	MovementConsume MovementType = "CONSUME"
	MovementAdjust  MovementType = "ADJUST"
)

// StockMovement: bakiye etkileyen her olay için eklenen defter kaydı.
// Bir kez yazılır, asla güncellenmez.
type StockMovement struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	AssetID      uint         `gorm:"index;not null" json:"asset_id"`
	Asset        Asset        `json:"-"`
	AssetName    string       `gorm:"size:150;index;not null" json:"asset_name"`
	Brand        string       `gorm:"size:100" json:"brand"`
	Type         MovementType `gorm:"size:10;not null" json:"type"`
	Quantity     float64      `gorm:"not null" json:"quantity"`
	BalanceAfter float64      `gorm:"not null" json:"balance_after"`
	ActorID      uint         `gorm:"index;not null" json:"actor_id"`
	ActorName    string       `gorm:"size:100" json:"actor_name"`
	Reference    string       `gorm:"size:50" json:"reference"` // ilgili döküman numarası
	CreatedAt    time.Time    `json:"created_at"`
}
