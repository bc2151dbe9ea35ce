package models

import "time"

type ReturnStatus string

const (
	ReturnPending   ReturnStatus = "PENDING"
	ReturnApproved  ReturnStatus = "APPROVED" // karışık sonuç: bir kısmı kabul, bir kısmı red
	ReturnRejected  ReturnStatus = "REJECTED"
	ReturnCompleted ReturnStatus = "COMPLETED"
)

type ReturnVerification string

const (
	VerificationPending  ReturnVerification = "PENDING"
	VerificationAccepted ReturnVerification = "ACCEPTED"
	VerificationRejected ReturnVerification = "REJECTED"
)

// AssetReturn: bir ödünç talebine bağlı iade dökümanı (RTN). Bir ödünç
// birden fazla iade dökümanıyla parça parça kapatılabilir.
type AssetReturn struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	DocNumber     string       `gorm:"size:30;uniqueIndex;not null" json:"doc_number"` // RTN-2026-08-0001
	Status        ReturnStatus `gorm:"size:20;index;not null;default:'PENDING'" json:"status"`
	LoanRequestID uint         `gorm:"index;not null" json:"loan_request_id"`
	SubmitterID   uint         `gorm:"index;not null" json:"submitter_id"`
	VerifierID    *uint        `json:"verifier_id,omitempty"`
	Note          string       `gorm:"size:255" json:"note"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	Items []AssetReturnItem `gorm:"foreignKey:AssetReturnID;constraint:OnDelete:CASCADE" json:"items"`
}

type AssetReturnItem struct {
	ID                uint               `gorm:"primaryKey" json:"id"`
	AssetReturnID     uint               `gorm:"index;not null" json:"asset_return_id"`
	AssetID           uint               `gorm:"index;not null" json:"asset_id"`
	Asset             Asset              `json:"-"`
	ReturnedCondition string             `gorm:"size:50" json:"returned_condition"`
	Verification      ReturnVerification `gorm:"size:10;not null;default:'PENDING'" json:"verification"`
	Note              string             `gorm:"size:255" json:"note"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}
