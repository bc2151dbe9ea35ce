package models

import "time"

type RequestStatus string

const (
	RequestPending          RequestStatus = "PENDING"
	RequestLogisticApproved RequestStatus = "LOGISTIC_APPROVED"
	RequestApproved         RequestStatus = "APPROVED"
	RequestRejected         RequestStatus = "REJECTED"
	RequestArrived          RequestStatus = "ARRIVED"
	RequestAwaitingHandover RequestStatus = "AWAITING_HANDOVER"
	RequestCompleted        RequestStatus = "COMPLETED"
)

type RequestItemStatus string

const (
	ItemStockAllocated    RequestItemStatus = "STOCK_ALLOCATED"
	ItemProcurementNeeded RequestItemStatus = "PROCUREMENT_NEEDED"
	ItemApproved          RequestItemStatus = "APPROVED"
	ItemPartial           RequestItemStatus = "PARTIAL"
	ItemRejected          RequestItemStatus = "REJECTED"
)

// AllocationTarget: talep edilen stok kullanım için mi, depo takviyesi için mi
type AllocationTarget string

const (
	TargetUsage   AllocationTarget = "usage"
	TargetRestock AllocationTarget = "restock"
)

// Request: tedarik/kullanım talebi (RO dökümanı)
type Request struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	DocNumber        string           `gorm:"size:30;uniqueIndex;not null" json:"doc_number"` // RO-2026-0829-0001
	Status           RequestStatus    `gorm:"size:20;index;not null;default:'PENDING'" json:"status"`
	AllocationTarget AllocationTarget `gorm:"size:10;not null;default:'usage'" json:"allocation_target"`
	RequesterID      uint             `gorm:"index;not null" json:"requester_id"`
	Requester        User             `json:"-"`
	Purpose          string           `gorm:"size:255" json:"purpose"`
	RejectionReason  string           `gorm:"size:255" json:"rejection_reason"`
	ApproverID       *uint            `json:"approver_id,omitempty"`
	RejectedByID     *uint            `json:"rejected_by_id,omitempty"`
	RegisteredCounts RegisteredCounts `gorm:"type:jsonb;default:'{}'" json:"registered_counts"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`

	Items []RequestItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"items"`
}

type RequestItem struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	RequestID         uint              `gorm:"index;not null" json:"request_id"`
	ItemName          string            `gorm:"size:150;not null" json:"item_name"`
	Brand             string            `gorm:"size:100" json:"brand"`
	RequestedQuantity int64             `gorm:"not null" json:"requested_quantity"`
	ApprovalStatus    RequestItemStatus `gorm:"size:20;not null" json:"approval_status"`
	ApprovedQuantity  *int64            `json:"approved_quantity,omitempty"`
	RejectionReason   string            `gorm:"size:255" json:"rejection_reason"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// EffectiveQuantity: onaylanmış miktar varsa onu, yoksa talep edileni döner
func (it *RequestItem) EffectiveQuantity() int64 {
	if it.ApprovedQuantity != nil {
		return *it.ApprovedQuantity
	}
	return it.RequestedQuantity
}
