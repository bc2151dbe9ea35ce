package request

import (
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"envanter-backend/internal/apperr"
	"envanter-backend/internal/assets"
	"envanter-backend/internal/database"
	"envanter-backend/internal/docnumber"
	"envanter-backend/internal/models"
	"envanter-backend/internal/stock"
)

type RequestItemInput struct {
	ItemName          string `json:"item_name"`
	Brand             string `json:"brand"`
	RequestedQuantity int64  `json:"requested_quantity"`
}

type CreateRequestInput struct {
	Purpose          string                  `json:"purpose"`
	AllocationTarget models.AllocationTarget `json:"allocation_target"`
	Items            []RequestItemInput      `json:"items"`
}

// initialStatus: kalem bazlı stok sonucuna göre talebin açılış durumu.
// Tüm kalemler stoktan karşılanıyorsa onay turu gerekmez: kullanım
// hedefinde teslim bekler, stok yenileme hedefinde talep kapanır.
func initialStatus(items []models.RequestItem, target models.AllocationTarget) models.RequestStatus {
	for _, it := range items {
		if it.ApprovalStatus != models.ItemStockAllocated {
			return models.RequestPending
		}
	}
	if target == models.TargetRestock {
		return models.RequestCompleted
	}
	return models.RequestAwaitingHandover
}

// Create: her kalem için stok uygunluğu işaretlenir, RO numarası üretilir
// ve açılış durumu hesaplanır. Stok bu aşamada tüketilmez.
func Create(db *gorm.DB, requesterID uint, in CreateRequestInput) (*models.Request, error) {
	if len(in.Items) == 0 {
		return nil, apperr.Validation("talepte en az bir kalem olmalı")
	}
	if in.AllocationTarget != models.TargetUsage && in.AllocationTarget != models.TargetRestock {
		return nil, apperr.Validation("allocation_target 'usage' veya 'restock' olmalı")
	}
	for _, it := range in.Items {
		if it.ItemName == "" {
			return nil, apperr.Validation("kalem adı zorunlu")
		}
		if it.RequestedQuantity <= 0 {
			return nil, apperr.Validation("istenen miktar 0'dan büyük olmalı")
		}
	}

	var req models.Request
	err := database.RunInTx(db, func(tx *gorm.DB) error {
		docNo, err := docnumber.Generate(tx, docnumber.TypeRequest, time.Now())
		if err != nil {
			return err
		}

		items := make([]models.RequestItem, 0, len(in.Items))
		for _, it := range in.Items {
			avail, err := stock.CheckAvailability(tx, it.ItemName, it.Brand, float64(it.RequestedQuantity))
			if err != nil {
				return err
			}
			status := models.ItemProcurementNeeded
			if avail.Sufficient {
				status = models.ItemStockAllocated
			}
			items = append(items, models.RequestItem{
				ItemName:          it.ItemName,
				Brand:             it.Brand,
				RequestedQuantity: it.RequestedQuantity,
				ApprovalStatus:    status,
			})
		}

		req = models.Request{
			DocNumber:        docNo,
			RequesterID:      requesterID,
			Purpose:          in.Purpose,
			AllocationTarget: in.AllocationTarget,
			Status:           initialStatus(items, in.AllocationTarget),
			RegisteredCounts: models.RegisteredCounts{},
			Items:            items,
		}
		return tx.Create(&req).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

type ApprovalTier string

const (
	TierLogistic ApprovalTier = "logistic"
	TierFinal    ApprovalTier = "final"
)

type ItemAdjustment struct {
	ApprovedQuantity *int64 `json:"approved_quantity"`
	Note             string `json:"note"`
}

type ApproveInput struct {
	Tier        ApprovalTier            `json:"tier"`
	Adjustments map[uint]ItemAdjustment `json:"adjustments"`
}

// adjustedItemStatus: onaylanan miktara göre kalemin yeni durumu.
// Miktar verilmemişse kalem olduğu gibi kalır.
func adjustedItemStatus(item models.RequestItem, approved *int64) models.RequestItemStatus {
	if approved == nil {
		return item.ApprovalStatus
	}
	switch {
	case *approved <= 0:
		return models.ItemRejected
	case *approved < item.RequestedQuantity:
		return models.ItemPartial
	default:
		return models.ItemApproved
	}
}

// aggregateStatus: tüm kalemler reddedildiyse talep reddedilir, aksi halde
// onay kademesine göre ilerler.
func aggregateStatus(items []models.RequestItem, tier ApprovalTier) models.RequestStatus {
	allRejected := len(items) > 0
	for _, it := range items {
		if it.ApprovalStatus != models.ItemRejected {
			allRejected = false
			break
		}
	}
	if allRejected {
		return models.RequestRejected
	}
	if tier == TierLogistic {
		return models.RequestLogisticApproved
	}
	return models.RequestApproved
}

// Approve: sadece PENDING talepte çalışır. Kalem bazlı miktar düzeltmeleri
// uygulanır, sonra kademe durumu yazılır.
func Approve(db *gorm.DB, requestID uint, in ApproveInput, actorID uint) (*models.Request, error) {
	if in.Tier != TierLogistic && in.Tier != TierFinal {
		return nil, apperr.Validation("tier 'logistic' veya 'final' olmalı")
	}

	var req models.Request
	err := database.RunInTx(db, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items").First(&req, requestID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("Talep", requestID)
			}
			return err
		}
		if req.Status != models.RequestPending {
			return apperr.InvalidStateTransition("talep", string(req.Status), "onay")
		}

		for i := range req.Items {
			adj, ok := in.Adjustments[req.Items[i].ID]
			if !ok {
				continue
			}
			req.Items[i].ApprovalStatus = adjustedItemStatus(req.Items[i], adj.ApprovedQuantity)
			if adj.ApprovedQuantity != nil {
				req.Items[i].ApprovedQuantity = adj.ApprovedQuantity
			}
			if adj.Note != "" {
				req.Items[i].RejectionReason = adj.Note
			}
			if err := tx.Save(&req.Items[i]).Error; err != nil {
				return err
			}
		}

		req.Status = aggregateStatus(req.Items, in.Tier)
		req.ApproverID = &actorID
		return tx.Save(&req).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Reject: sadece PENDING talep reddedilebilir.
func Reject(db *gorm.DB, requestID uint, reason string, actorID uint) (*models.Request, error) {
	var req models.Request
	err := database.RunInTx(db, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, requestID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("Talep", requestID)
			}
			return err
		}
		if req.Status != models.RequestPending {
			return apperr.InvalidStateTransition("talep", string(req.Status), string(models.RequestRejected))
		}
		req.Status = models.RequestRejected
		req.RejectionReason = reason
		req.RejectedByID = &actorID
		return tx.Save(&req).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Cancel: talep sahibi kendi PENDING talebini geri çeker. Reddedilmiş
// gibi kapanır; başka kullanıcının talebi bu yoldan kapatılamaz.
func Cancel(db *gorm.DB, requestID uint, reason string, actorID uint) (*models.Request, error) {
	var req models.Request
	err := database.RunInTx(db, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, requestID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("Talep", requestID)
			}
			return err
		}
		if req.RequesterID != actorID {
			return apperr.Validation("sadece talep sahibi iptal edebilir")
		}
		if req.Status != models.RequestPending {
			return apperr.InvalidStateTransition("talep", string(req.Status), "iptal")
		}
		req.Status = models.RequestRejected
		if reason == "" {
			reason = "talep sahibi iptal etti"
		}
		req.RejectionReason = reason
		req.RejectedByID = &actorID
		return tx.Save(&req).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// MarkArrived: onaylı talepte tedarik mallarının geldiğini işaretler.
func MarkArrived(db *gorm.DB, requestID uint) (*models.Request, error) {
	var req models.Request
	err := database.RunInTx(db, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, requestID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("Talep", requestID)
			}
			return err
		}
		if req.Status != models.RequestApproved && req.Status != models.RequestLogisticApproved {
			return apperr.InvalidStateTransition("talep", string(req.Status), string(models.RequestArrived))
		}
		req.Status = models.RequestArrived
		return tx.Save(&req).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

type RegisterUnit struct {
	RequestItemID  uint     `json:"request_item_id"`
	Condition      string   `json:"condition"`
	Location       string   `json:"location"`
	Quantity       *int64   `json:"quantity"`
	CurrentBalance *float64 `json:"current_balance"`
}

// unitCount: kaydedilen birimin kalem sayacına katkısı. Adetli parti adedi
// kadar, ölçülü parti bakiyesi kadar sayılır; tekil varlık 1 birimdir.
// Sayaç onaylı toplamla aynı birimde tutulur.
func unitCount(u RegisterUnit) int64 {
	if u.Quantity != nil {
		return *u.Quantity
	}
	if u.CurrentBalance != nil {
		return int64(math.Round(*u.CurrentBalance))
	}
	return 1
}

// approvedTotal: reddedilmemiş kalemlerin efektif miktar toplamı.
func approvedTotal(items []models.RequestItem) int64 {
	var total int64
	for _, it := range items {
		if it.ApprovalStatus == models.ItemRejected {
			continue
		}
		total += it.EffectiveQuantity()
	}
	return total
}

// registrationComplete: kayıtlı birim sayısı onaylı toplamı karşıladı mı.
func registrationComplete(items []models.RequestItem, counts models.RegisteredCounts) bool {
	return counts.Total() >= approvedTotal(items)
}

// RegisterAssets: gelen her birim için AST numaralı varlık açar, kalem
// bazlı kayıt sayacını birimin miktarı kadar artırır. Onaylı toplam
// karşılandığında talep AWAITING_HANDOVER'a geçer. Tamamı tek transaction.
func RegisterAssets(db *gorm.DB, requestID uint, units []RegisterUnit, actorID uint, actorName string) (*models.Request, []models.Asset, error) {
	if len(units) == 0 {
		return nil, nil, apperr.Validation("kaydedilecek birim yok")
	}

	var (
		req     models.Request
		created []models.Asset
	)
	err := database.RunInTx(db, func(tx *gorm.DB) error {
		created = created[:0]
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items").First(&req, requestID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("Talep", requestID)
			}
			return err
		}
		switch req.Status {
		case models.RequestArrived, models.RequestApproved, models.RequestLogisticApproved:
		default:
			return apperr.InvalidStateTransition("talep", string(req.Status), "varlık kaydı")
		}

		byID := make(map[uint]*models.RequestItem, len(req.Items))
		for i := range req.Items {
			byID[req.Items[i].ID] = &req.Items[i]
		}
		if req.RegisteredCounts == nil {
			req.RegisteredCounts = models.RegisteredCounts{}
		}

		for _, u := range units {
			item, ok := byID[u.RequestItemID]
			if !ok {
				return apperr.Validation("kalem bu talebe ait değil")
			}
			if item.ApprovalStatus == models.ItemRejected {
				return apperr.Validation("reddedilen kalem için varlık kaydedilemez")
			}
			units := unitCount(u)
			if units <= 0 {
				return apperr.Validation("kayıt miktarı 0'dan büyük olmalı")
			}
			if req.RegisteredCounts[item.ID]+units > item.EffectiveQuantity() {
				return apperr.Validation("onaylanan miktardan fazla birim kaydedilemez")
			}

			itemID := item.ID
			asset, err := assets.RegisterAssetTx(tx, assets.RegisterAssetInput{
				Name:           item.ItemName,
				Brand:          item.Brand,
				Condition:      u.Condition,
				Location:       u.Location,
				Quantity:       u.Quantity,
				CurrentBalance: u.CurrentBalance,
				RequestItemID:  &itemID,
			}, actorID, actorName)
			if err != nil {
				return err
			}
			created = append(created, *asset)
			req.RegisteredCounts[item.ID] += units
		}

		if registrationComplete(req.Items, req.RegisteredCounts) {
			req.Status = models.RequestAwaitingHandover
		}
		return tx.Save(&req).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &req, created, nil
}
