package models

import (
	"time"

	"gorm.io/gorm"
)

type LoanStatus string

const (
	LoanPending  LoanStatus = "PENDING"
	LoanOnLoan   LoanStatus = "ON_LOAN"
	LoanRejected LoanStatus = "REJECTED"
	LoanReturned LoanStatus = "RETURNED"
)

// LoanRequest: ödünç talebi (RL dökümanı). Silme işlemi tombstone ile
// yapılır; okuma yolları DeletedAt üzerinden silinenleri otomatik dışlar.
type LoanRequest struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	DocNumber       string         `gorm:"size:30;uniqueIndex;not null" json:"doc_number"` // RL-2026-08-0001
	Status          LoanStatus     `gorm:"size:20;index;not null;default:'PENDING'" json:"status"`
	BorrowerID      uint           `gorm:"index;not null" json:"borrower_id"`
	Borrower        User           `json:"-"`
	Purpose         string         `gorm:"size:255" json:"purpose"`
	DueDate         *time.Time     `json:"due_date,omitempty"`
	RejectionReason string         `gorm:"size:255" json:"rejection_reason"`
	RejectedByID    *uint          `json:"rejected_by_id,omitempty"`
	AssignedAssets  AssetIDsByItem `gorm:"type:jsonb;default:'{}'" json:"assigned_assets"`
	ReturnedAssets  AssetIDList    `gorm:"type:jsonb;default:'[]'" json:"returned_assets"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Items   []LoanItem    `gorm:"foreignKey:LoanRequestID;constraint:OnDelete:CASCADE" json:"items"`
	Returns []AssetReturn `gorm:"foreignKey:LoanRequestID" json:"returns,omitempty"`
}

type LoanItem struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	LoanRequestID uint      `gorm:"index;not null" json:"loan_request_id"`
	ItemName      string    `gorm:"size:150;not null" json:"item_name"`
	Brand         string    `gorm:"size:100" json:"brand"`
	Quantity      int64     `gorm:"not null" json:"quantity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
