package loan

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"envanter-backend/internal/apperr"
	"envanter-backend/internal/database"
	"envanter-backend/internal/docnumber"
	"envanter-backend/internal/models"
)

type LoanItemInput struct {
	ItemName string `json:"item_name"`
	Brand    string `json:"brand"`
	Quantity int64  `json:"quantity"`
}

type CreateLoanInput struct {
	Purpose string          `json:"purpose"`
	DueDate *time.Time      `json:"due_date"`
	Items   []LoanItemInput `json:"items"`
}

// Create: RL numaralı ödünç talebi açar. Varlık ataması onay aşamasına
// bırakılır.
func Create(db *gorm.DB, borrowerID uint, in CreateLoanInput) (*models.LoanRequest, error) {
	if len(in.Items) == 0 {
		return nil, apperr.Validation("ödünç talebinde en az bir kalem olmalı")
	}
	for _, it := range in.Items {
		if it.ItemName == "" {
			return nil, apperr.Validation("kalem adı zorunlu")
		}
		if it.Quantity <= 0 {
			return nil, apperr.Validation("miktar 0'dan büyük olmalı")
		}
	}

	var loan models.LoanRequest
	err := database.RunInTx(db, func(tx *gorm.DB) error {
		docNo, err := docnumber.Generate(tx, docnumber.TypeLoan, time.Now())
		if err != nil {
			return err
		}

		items := make([]models.LoanItem, 0, len(in.Items))
		for _, it := range in.Items {
			items = append(items, models.LoanItem{
				ItemName: it.ItemName,
				Brand:    it.Brand,
				Quantity: it.Quantity,
			})
		}

		loan = models.LoanRequest{
			DocNumber:      docNo,
			Status:         models.LoanPending,
			BorrowerID:     borrowerID,
			Purpose:        in.Purpose,
			DueDate:        in.DueDate,
			AssignedAssets: models.AssetIDsByItem{},
			ReturnedAssets: models.AssetIDList{},
			Items:          items,
		}
		return tx.Create(&loan).Error
	})
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

type ApproveLoanInput struct {
	Assignments models.AssetIDsByItem `json:"assignments"`
}

// validateAssignments: her kalem kendi miktarı kadar, tekrarsız varlıkla
// karşılanmalı. Eksik ya da fazla atama onayı durdurur.
func validateAssignments(items []models.LoanItem, assignments models.AssetIDsByItem) error {
	if len(assignments) == 0 {
		return apperr.Validation("varlık ataması olmadan ödünç onaylanamaz")
	}
	if assignments.HasDuplicates() {
		return apperr.Validation("aynı varlık birden fazla kaleme atanamaz")
	}
	byID := make(map[uint]models.LoanItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	for itemID, ids := range assignments {
		item, ok := byID[itemID]
		if !ok {
			return apperr.Validation("kalem bu ödünç talebine ait değil")
		}
		if int64(len(ids)) != item.Quantity {
			return apperr.Validation("atanan varlık sayısı kalem miktarıyla eşleşmiyor")
		}
	}
	for _, it := range items {
		if _, ok := assignments[it.ID]; !ok {
			return apperr.Validation("her kalem için varlık ataması gerekli")
		}
	}
	return nil
}

// Approve: PENDING ödünçte atanan tüm varlıklar kilitlenir, hepsi depoda
// değilse hiçbiri verilmez. Başarılıysa varlıklar ON_LOAN olur.
func Approve(db *gorm.DB, loanID uint, in ApproveLoanInput, actorID uint) (*models.LoanRequest, error) {
	var loan models.LoanRequest
	err := database.RunInTx(db, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items").First(&loan, loanID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("Ödünç talebi", loanID)
			}
			return err
		}
		if loan.Status != models.LoanPending {
			return apperr.InvalidStateTransition("ödünç", string(loan.Status), string(models.LoanOnLoan))
		}
		if err := validateAssignments(loan.Items, in.Assignments); err != nil {
			return err
		}

		ids := in.Assignments.AllIDs()
		var assigned []models.Asset
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).
			Order("id ASC").
			Find(&assigned).Error; err != nil {
			return err
		}
		if len(assigned) != len(ids) {
			return apperr.NotFound("Atanan varlıklardan biri", ids)
		}

		for i := range assigned {
			if err := assigned[i].TransitionTo(models.AssetOnLoan); err != nil {
				return err
			}
			assigned[i].CurrentUserID = &loan.BorrowerID
			if err := tx.Save(&assigned[i]).Error; err != nil {
				return err
			}
		}

		loan.Status = models.LoanOnLoan
		loan.AssignedAssets = in.Assignments
		return tx.Save(&loan).Error
	})
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// Reject: sadece PENDING ödünç reddedilebilir.
func Reject(db *gorm.DB, loanID uint, reason string, actorID uint) (*models.LoanRequest, error) {
	var loan models.LoanRequest
	err := database.RunInTx(db, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&loan, loanID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("Ödünç talebi", loanID)
			}
			return err
		}
		if loan.Status != models.LoanPending {
			return apperr.InvalidStateTransition("ödünç", string(loan.Status), string(models.LoanRejected))
		}
		loan.Status = models.LoanRejected
		loan.RejectionReason = reason
		loan.RejectedByID = &actorID
		return tx.Save(&loan).Error
	})
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// Delete: tombstone bırakır, satır fiziksel silinmez. Sahada varlığı olan
// (ON_LOAN) ödünç silinemez.
func Delete(db *gorm.DB, loanID uint) error {
	return database.RunInTx(db, func(tx *gorm.DB) error {
		var loan models.LoanRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&loan, loanID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("Ödünç talebi", loanID)
			}
			return err
		}
		if loan.Status != models.LoanPending && loan.Status != models.LoanRejected {
			return apperr.InvalidStateTransition("ödünç", string(loan.Status), "silme")
		}
		return tx.Delete(&loan).Error
	})
}

type SubmitReturnInput struct {
	AssetIDs []uint `json:"asset_ids"`
	Note     string `json:"note"`
}

// validateReturnSubset: iade edilecek varlıklar atananların alt kümesi
// olmalı, daha önce iade edilmiş ya da tekrar eden varlık olmamalı.
func validateReturnSubset(assigned models.AssetIDsByItem, returned models.AssetIDList, submitted []uint) error {
	if len(submitted) == 0 {
		return apperr.Validation("iade edilecek varlık seçilmedi")
	}
	all := make(map[uint]bool, len(submitted))
	for _, id := range assigned.AllIDs() {
		all[id] = true
	}
	seen := make(map[uint]bool, len(submitted))
	for _, id := range submitted {
		if !all[id] {
			return apperr.Validation("varlık bu ödünce atanmamış")
		}
		if returned.Contains(id) {
			return apperr.Validation("varlık zaten iade edilmiş")
		}
		if seen[id] {
			return apperr.Validation("aynı varlık iki kez iade edilemez")
		}
		seen[id] = true
	}
	return nil
}

// SubmitReturn: ON_LOAN ödünç için RTN dökümanı açar, seçilen varlıklar
// iade kontrolüne düşer (AWAITING_RETURN).
func SubmitReturn(db *gorm.DB, loanID uint, in SubmitReturnInput, submitterID uint) (*models.AssetReturn, error) {
	var ret models.AssetReturn
	err := database.RunInTx(db, func(tx *gorm.DB) error {
		var loan models.LoanRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&loan, loanID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("Ödünç talebi", loanID)
			}
			return err
		}
		if loan.Status != models.LoanOnLoan {
			return apperr.InvalidStateTransition("ödünç", string(loan.Status), "iade")
		}
		if err := validateReturnSubset(loan.AssignedAssets, loan.ReturnedAssets, in.AssetIDs); err != nil {
			return err
		}

		docNo, err := docnumber.Generate(tx, docnumber.TypeReturn, time.Now())
		if err != nil {
			return err
		}

		var assets []models.Asset
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", in.AssetIDs).
			Order("id ASC").
			Find(&assets).Error; err != nil {
			return err
		}
		if len(assets) != len(in.AssetIDs) {
			return apperr.NotFound("İade edilecek varlıklardan biri", in.AssetIDs)
		}
		for i := range assets {
			if err := assets[i].TransitionTo(models.AssetAwaitingReturn); err != nil {
				return err
			}
			if err := tx.Save(&assets[i]).Error; err != nil {
				return err
			}
		}

		items := make([]models.AssetReturnItem, 0, len(in.AssetIDs))
		for _, id := range in.AssetIDs {
			items = append(items, models.AssetReturnItem{
				AssetID:      id,
				Verification: models.VerificationPending,
			})
		}
		ret = models.AssetReturn{
			DocNumber:     docNo,
			Status:        models.ReturnPending,
			LoanRequestID: loan.ID,
			SubmitterID:   submitterID,
			Note:          in.Note,
			Items:         items,
		}
		return tx.Create(&ret).Error
	})
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

type ReturnDecision struct {
	Accept    bool   `json:"accept"`
	Condition string `json:"condition"`
	Note      string `json:"note"`
}

// returnVerdict: kalem kararlarından döküman sonucu. Hepsi kabulse
// COMPLETED, hepsi redse REJECTED, karışıksa APPROVED.
func returnVerdict(items []models.AssetReturnItem) models.ReturnStatus {
	accepted, rejected := 0, 0
	for _, it := range items {
		switch it.Verification {
		case models.VerificationAccepted:
			accepted++
		case models.VerificationRejected:
			rejected++
		}
	}
	switch {
	case rejected == 0:
		return models.ReturnCompleted
	case accepted == 0:
		return models.ReturnRejected
	default:
		return models.ReturnApproved
	}
}

// loanClosed: kabul edilen iade sayısı atanan varlık sayısına ulaştıysa
// ödünç kapanır. Eksik iade ödüncü ON_LOAN bırakır.
func loanClosed(assigned models.AssetIDsByItem, returned models.AssetIDList) bool {
	return len(returned) == len(assigned.AllIDs())
}

// ProcessReturn: iade dökümanındaki her varlık için kabul/red kararı
// uygular. Kabul edilen depoya döner ve iade listesine girer, reddedilen
// hasarlı sayılır ve ödüncü açık bırakır. Kabul edilen iade sayısı atanan
// toplamı bulduğunda ödünç RETURNED olur.
func ProcessReturn(db *gorm.DB, returnID uint, decisions map[uint]ReturnDecision, verifierID uint) (*models.AssetReturn, error) {
	var ret models.AssetReturn
	err := database.RunInTx(db, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items").First(&ret, returnID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("İade dökümanı", returnID)
			}
			return err
		}
		if ret.Status != models.ReturnPending {
			return apperr.InvalidStateTransition("iade", string(ret.Status), "karar")
		}

		var loan models.LoanRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&loan, ret.LoanRequestID).Error; err != nil {
			return err
		}

		for i := range ret.Items {
			item := &ret.Items[i]
			decision, ok := decisions[item.AssetID]
			if !ok {
				return apperr.Validation("her varlık için kabul/red kararı gerekli")
			}

			var asset models.Asset
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&asset, item.AssetID).Error; err != nil {
				return err
			}

			if decision.Accept {
				if err := asset.TransitionTo(models.AssetInStorage); err != nil {
					return err
				}
				item.Verification = models.VerificationAccepted
				// Sadece kabul edilen varlık iade edilmiş sayılır
				loan.ReturnedAssets = append(loan.ReturnedAssets, item.AssetID)
			} else {
				if err := asset.TransitionTo(models.AssetDamaged); err != nil {
					return err
				}
				item.Verification = models.VerificationRejected
			}
			asset.CurrentUserID = nil
			if decision.Condition != "" {
				asset.Condition = decision.Condition
				item.ReturnedCondition = decision.Condition
			}
			item.Note = decision.Note
			if err := tx.Save(&asset).Error; err != nil {
				return err
			}
			if err := tx.Save(item).Error; err != nil {
				return err
			}
		}

		ret.Status = returnVerdict(ret.Items)
		ret.VerifierID = &verifierID
		if err := tx.Save(&ret).Error; err != nil {
			return err
		}

		if loanClosed(loan.AssignedAssets, loan.ReturnedAssets) {
			loan.Status = models.LoanReturned
		}
		return tx.Save(&loan).Error
	})
	if err != nil {
		return nil, err
	}
	return &ret, nil
}
