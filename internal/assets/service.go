package assets

import (
	"time"

	"envanter-backend/internal/apperr"
	"envanter-backend/internal/database"
	"envanter-backend/internal/docnumber"
	"envanter-backend/internal/models"
	"envanter-backend/internal/stock"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RegisterAssetInput struct {
	Name           string
	Brand          string
	Condition      string
	Quantity       *int64
	CurrentBalance *float64
	Location       string
	RequestItemID  *uint
}

// RegisterAssetTx: çağıranın transaction'ı içinde yeni varlığı AST
// numarasıyla kaydeder ve giriş hareketini deftere yazar.
func RegisterAssetTx(tx *gorm.DB, in RegisterAssetInput, actorID uint, actorName string) (*models.Asset, error) {
	if in.Name == "" {
		return nil, apperr.Validation("varlık adı zorunlu")
	}
	if in.Quantity != nil && in.CurrentBalance != nil {
		return nil, apperr.Validation("quantity ve current_balance aynı anda verilemez")
	}
	if in.Quantity != nil && *in.Quantity <= 0 {
		return nil, apperr.Validation("quantity 0'dan büyük olmalı")
	}
	if in.CurrentBalance != nil && *in.CurrentBalance <= 0 {
		return nil, apperr.Validation("current_balance 0'dan büyük olmalı")
	}

	docNo, err := docnumber.Generate(tx, docnumber.TypeAsset, time.Now())
	if err != nil {
		return nil, err
	}

	asset := models.Asset{
		DocNumber:      docNo,
		Name:           in.Name,
		Brand:          in.Brand,
		Status:         models.AssetInStorage,
		Condition:      in.Condition,
		Quantity:       in.Quantity,
		CurrentBalance: in.CurrentBalance,
		Location:       in.Location,
		RequestItemID:  in.RequestItemID,
	}
	if err := tx.Create(&asset).Error; err != nil {
		return nil, err
	}

	movement := models.StockMovement{
		AssetID:      asset.ID,
		AssetName:    asset.Name,
		Brand:        asset.Brand,
		Type:         models.MovementIn,
		Quantity:     asset.Balance(),
		BalanceAfter: asset.Balance(),
		ActorID:      actorID,
		ActorName:    actorName,
		Reference:    docNo,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

// RegisterAsset: tek transaction: numara, varlık ve defter ya birlikte
// oluşur ya hiçbiri.
func RegisterAsset(db *gorm.DB, in RegisterAssetInput, actorID uint, actorName string) (*models.Asset, error) {
	var asset *models.Asset
	err := database.RunInTx(db, func(tx *gorm.DB) error {
		var txErr error
		asset, txErr = RegisterAssetTx(tx, in, actorID, actorName)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// Decommission: varlığı emekliye ayırır. Terminal statüdür; satır silinmez.
func Decommission(db *gorm.DB, assetID uint, actorID uint) (*models.Asset, error) {
	var asset models.Asset
	err := database.RunInTx(db, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&asset, "id = ?", assetID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("Varlık", assetID)
			}
			return err
		}

		if err := asset.TransitionTo(models.AssetDecommissioned); err != nil {
			return err
		}

		return tx.Save(&asset).Error
	})
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

type HandoverInput struct {
	Type        models.HandoverType
	RequestID   *uint
	RecipientID uint
	CustomerID  *uint
	Location    string
	AssetIDs    []uint
	Consume     []stock.ConsumeItem
	Note        string
}

// CreateHandover: teslim (HO) veya kurulum (INST) dökümanı oluşturur.
// Tek transaction içinde: döküman numarası üretilir, listelenen varlıklar
// IN_STORAGE -> IN_USE geçirilir, tüketim kalemleri StockAllocator ile
// düşülür ve bağlıysa AWAITING_HANDOVER talebi COMPLETED yapılır. Herhangi
// bir adım başarısız olursa hiçbir etki kalmaz.
func CreateHandover(db *gorm.DB, in HandoverInput, actorID uint, actorName string) (*models.Handover, error) {
	if in.RecipientID == 0 {
		return nil, apperr.Validation("recipient_id zorunlu")
	}
	if len(in.AssetIDs) == 0 && len(in.Consume) == 0 {
		return nil, apperr.Validation("en az bir varlık veya tüketim kalemi gerekli")
	}

	docType := docnumber.TypeHandover
	if in.Type == models.HandoverTypeInstallation {
		docType = docnumber.TypeInstallation
	}

	var handover models.Handover
	err := database.RunInTx(db, func(tx *gorm.DB) error {
		docNo, err := docnumber.Generate(tx, docType, time.Now())
		if err != nil {
			return err
		}

		for _, assetID := range in.AssetIDs {
			var asset models.Asset
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&asset, "id = ?", assetID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return apperr.NotFound("Varlık", assetID)
				}
				return err
			}

			if err := asset.TransitionTo(models.AssetInUse); err != nil {
				return err
			}
			asset.CurrentUserID = &in.RecipientID
			asset.CustomerID = in.CustomerID
			if in.Location != "" {
				asset.Location = in.Location
			}

			if err := tx.Save(&asset).Error; err != nil {
				return err
			}
		}

		if len(in.Consume) > 0 {
			if _, err := stock.ConsumeStockTx(tx, in.Consume, actorID, actorName, docNo); err != nil {
				return err
			}
		}

		if in.RequestID != nil {
			var request models.Request
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&request, "id = ?", *in.RequestID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return apperr.NotFound("Talep", *in.RequestID)
				}
				return err
			}

			if request.Status != models.RequestAwaitingHandover {
				return apperr.InvalidStateTransition("talep "+request.DocNumber,
					string(request.Status), string(models.RequestCompleted))
			}

			request.Status = models.RequestCompleted
			if err := tx.Save(&request).Error; err != nil {
				return err
			}
		}

		handover = models.Handover{
			DocNumber:   docNo,
			Type:        in.Type,
			RequestID:   in.RequestID,
			CustomerID:  in.CustomerID,
			RecipientID: in.RecipientID,
			Location:    in.Location,
			AssetIDs:    models.AssetIDList(in.AssetIDs),
			ActorID:     actorID,
			Note:        in.Note,
		}
		return tx.Create(&handover).Error
	})
	if err != nil {
		return nil, err
	}
	return &handover, nil
}

type DismantleInput struct {
	AssetID   uint
	Condition string
	Damaged   bool
	Note      string
}

// CreateDismantle: söküm dökümanı. Durum iyiyse varlık depoya döner,
// hasarlıysa DAMAGED olur; kullanıcı/müşteri bağları temizlenir.
func CreateDismantle(db *gorm.DB, in DismantleInput, actorID uint) (*models.Dismantle, error) {
	if in.AssetID == 0 {
		return nil, apperr.Validation("asset_id zorunlu")
	}
	if in.Condition == "" {
		return nil, apperr.Validation("condition zorunlu")
	}

	var dismantle models.Dismantle
	err := database.RunInTx(db, func(tx *gorm.DB) error {
		docNo, err := docnumber.Generate(tx, docnumber.TypeDismantle, time.Now())
		if err != nil {
			return err
		}

		var asset models.Asset
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&asset, "id = ?", in.AssetID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("Varlık", in.AssetID)
			}
			return err
		}

		target := models.AssetInStorage
		if in.Damaged {
			target = models.AssetDamaged
		}
		if err := asset.TransitionTo(target); err != nil {
			return err
		}
		asset.Condition = in.Condition
		asset.CurrentUserID = nil
		asset.CustomerID = nil

		if err := tx.Save(&asset).Error; err != nil {
			return err
		}

		dismantle = models.Dismantle{
			DocNumber: docNo,
			AssetID:   asset.ID,
			Condition: in.Condition,
			ActorID:   actorID,
			Note:      in.Note,
		}
		return tx.Create(&dismantle).Error
	})
	if err != nil {
		return nil, err
	}
	return &dismantle, nil
}

type MaintenanceInput struct {
	AssetID        uint
	Description    string
	ConditionAfter string
}

// CreateMaintenance: bakım kaydı. Varlığın durumunu günceller, statüsüne
// dokunmaz.
func CreateMaintenance(db *gorm.DB, in MaintenanceInput, actorID uint) (*models.Maintenance, error) {
	if in.AssetID == 0 {
		return nil, apperr.Validation("asset_id zorunlu")
	}
	if in.Description == "" {
		return nil, apperr.Validation("description zorunlu")
	}

	var maintenance models.Maintenance
	err := database.RunInTx(db, func(tx *gorm.DB) error {
		docNo, err := docnumber.Generate(tx, docnumber.TypeMaintenance, time.Now())
		if err != nil {
			return err
		}

		var asset models.Asset
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&asset, "id = ?", in.AssetID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("Varlık", in.AssetID)
			}
			return err
		}

		if in.ConditionAfter != "" {
			asset.Condition = in.ConditionAfter
			if err := tx.Save(&asset).Error; err != nil {
				return err
			}
		}

		maintenance = models.Maintenance{
			DocNumber:      docNo,
			AssetID:        asset.ID,
			Description:    in.Description,
			ConditionAfter: in.ConditionAfter,
			ActorID:        actorID,
		}
		return tx.Create(&maintenance).Error
	})
	if err != nil {
		return nil, err
	}
	return &maintenance, nil
}
