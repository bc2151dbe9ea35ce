package stock

import (
	"math"
	"sort"
	"strings"

	"envanter-backend/internal/apperr"
	"envanter-backend/internal/database"
	"envanter-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Availability: isim+marka için depodaki toplam kullanılabilir miktar.
// Fragmented, istenen miktarın tek partiden karşılanamadığını söyler.
type Availability struct {
	ItemName         string         `json:"item_name"`
	Brand            string         `json:"brand"`
	RequestedQty     float64        `json:"requested_qty"`
	Sufficient       bool           `json:"sufficient"`
	AvailableQty     float64        `json:"available_qty"`
	Deficit          float64        `json:"deficit"`
	Fragmented       bool           `json:"fragmented"`
	CandidateBatches []models.Asset `json:"candidate_batches"`
}

// ConsumeItem: tek bir tüketim isteği
type ConsumeItem struct {
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Quantity float64 `json:"quantity"`
}

// BatchDraw: planın tek bir partiden çekeceği miktar
type BatchDraw struct {
	AssetID      uint    `json:"asset_id"`
	DocNumber    string  `json:"doc_number"`
	Amount       float64 `json:"amount"`
	BalanceAfter float64 `json:"balance_after"`
	Exhausted    bool    `json:"exhausted"`
}

// ItemAllocation: bir kalemin hangi partilerden karşılandığı
type ItemAllocation struct {
	Item  ConsumeItem `json:"item"`
	Draws []BatchDraw `json:"draws"`
}

func matchScope(db *gorm.DB, name, brand string) *gorm.DB {
	q := db.Model(&models.Asset{}).
		Where("status = ?", models.AssetInStorage).
		Where("LOWER(name) = ?", strings.ToLower(name))
	if brand != "" {
		q = q.Where("LOWER(brand) = ?", strings.ToLower(brand))
	}
	return q
}

// CheckAvailability: isim+marka eşleşen (büyük/küçük harf duyarsız) tüm
// IN_STORAGE partilerin bakiyesini toplar. Sadece okur, kilitlemez.
func CheckAvailability(db *gorm.DB, name, brand string, requestedQty float64) (*Availability, error) {
	var batches []models.Asset
	if err := matchScope(db, name, brand).Find(&batches).Error; err != nil {
		return nil, err
	}

	sortBatchesLargestFirst(batches)

	var total float64
	for _, b := range batches {
		total += b.Balance()
	}

	av := &Availability{
		ItemName:         name,
		Brand:            brand,
		RequestedQty:     requestedQty,
		AvailableQty:     total,
		Sufficient:       total >= requestedQty,
		CandidateBatches: batches,
	}
	if !av.Sufficient {
		av.Deficit = requestedQty - total
	}

	av.Fragmented = isFragmented(batches, requestedQty)

	return av, nil
}

// isFragmented: istek tek partiden karşılanamıyorsa tahsis parçalıdır.
// Parti dizisi büyükten küçüğe sıralı gelir. Stok yetersizken de en büyük
// parti tek başına yetmiyorsa parçalı sayılır.
func isFragmented(batches []models.Asset, requestedQty float64) bool {
	return len(batches) > 0 && batches[0].Balance() < requestedQty
}

// sortBatchesLargestFirst: açgözlü tahsis en büyük partiden başlar; böylece
// defter daha az parçaya bölünür. Eşitlikte küçük ID öne gelir (deterministik).
func sortBatchesLargestFirst(batches []models.Asset) {
	sort.SliceStable(batches, func(i, j int) bool {
		bi, bj := batches[i].Balance(), batches[j].Balance()
		if bi != bj {
			return bi > bj
		}
		return batches[i].ID < batches[j].ID
	})
}

// balanceEpsilon: kayan nokta artığını sıfır saymak için eşik. Kesirli
// tüketim parçalara bölündüğünde bakiyede 1e-17 mertebesinde kalıntı
// oluşabilir; eşiğin altındaki bakiye tükenmiş kabul edilir.
const balanceEpsilon = 1e-9

// planConsumption: kilitli parti anlık görüntüsü üzerinden tüketim planını
// çıkarır. Saf fonksiyondur, veritabanına dokunmaz. Partiler tükendiği halde
// istek karşılanamazsa eksiği bildiren InsufficientStockError döner.
func planConsumption(batches []models.Asset, item ConsumeItem) ([]BatchDraw, error) {
	remaining := item.Quantity
	var draws []BatchDraw

	for _, b := range batches {
		if remaining <= balanceEpsilon {
			break
		}
		balance := b.Balance()
		if balance <= balanceEpsilon {
			continue
		}

		// Kalan istek parti bakiyesine eşik içinde ulaşıyorsa partinin
		// tamamı çekilir; son çekim bakiyede artık bırakmaz
		draw := remaining
		if draw >= balance-balanceEpsilon {
			draw = balance
		}

		after := balance - draw
		if after < balanceEpsilon {
			after = 0
		}
		draws = append(draws, BatchDraw{
			AssetID:      b.ID,
			DocNumber:    b.DocNumber,
			Amount:       draw,
			BalanceAfter: after,
			Exhausted:    after == 0,
		})
		remaining -= draw
	}

	if remaining > balanceEpsilon {
		var available float64
		for _, b := range batches {
			available += b.Balance()
		}
		return nil, &apperr.InsufficientStockError{
			ItemName:  item.Name,
			Brand:     item.Brand,
			Requested: item.Quantity,
			Available: available,
			Deficit:   remaining,
		}
	}

	return draws, nil
}

// validateDraw: planlanan çekimin partinin sayım türüyle uyumunu denetler.
// Ölçülü (CurrentBalance) parti kesirli çekimi taşır; adetli (Quantity)
// partide bakiye tam sayı kalmalı, tekil varlık ancak bütün olarak tüketilir.
func validateDraw(batch *models.Asset, draw BatchDraw) error {
	switch {
	case batch.CurrentBalance != nil:
		return nil
	case batch.Quantity != nil:
		if draw.BalanceAfter != math.Trunc(draw.BalanceAfter) {
			return apperr.Validation("%s adetli partiden kesirli miktar tüketilemez", batch.Name)
		}
		return nil
	default:
		if !draw.Exhausted {
			return apperr.Validation("%s tekil varlıktan kısmi tüketim yapılamaz", batch.Name)
		}
		return nil
	}
}

// ConsumeStockTx: tüm kalemleri çağıranın transaction'ı içinde tüketir.
// Her kalem için eşleşen partiler FOR UPDATE kilitlenir, en büyük partiden
// başlanarak düşülür, dokunulan her parti için defter kaydı eklenir ve
// bakiyesi sıfırlanan parti CONSUMED'a çekilir. Herhangi bir kalem açık
// kalırsa hata döner; transaction geri alınınca hiçbir kalemin etkisi kalmaz.
func ConsumeStockTx(tx *gorm.DB, items []ConsumeItem, actorID uint, actorName, reference string) ([]ItemAllocation, error) {
	if len(items) == 0 {
		return nil, apperr.Validation("en az bir tüketim kalemi gerekli")
	}

	result := make([]ItemAllocation, 0, len(items))

	for _, item := range items {
		if item.Name == "" {
			return nil, apperr.Validation("kalem adı zorunlu")
		}
		if item.Quantity <= 0 {
			return nil, apperr.Validation("%s için miktar 0'dan büyük olmalı", item.Name)
		}

		var batches []models.Asset
		if err := matchScope(tx, item.Name, item.Brand).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Order("COALESCE(current_balance, quantity, 1) DESC, id ASC").
			Find(&batches).Error; err != nil {
			return nil, err
		}

		draws, err := planConsumption(batches, item)
		if err != nil {
			return nil, err
		}

		byID := make(map[uint]*models.Asset, len(batches))
		for i := range batches {
			byID[batches[i].ID] = &batches[i]
		}

		for _, draw := range draws {
			batch := byID[draw.AssetID]

			if err := validateDraw(batch, draw); err != nil {
				return nil, err
			}

			if batch.CurrentBalance != nil {
				newBalance := draw.BalanceAfter
				batch.CurrentBalance = &newBalance
			} else if batch.Quantity != nil {
				newQty := int64(draw.BalanceAfter)
				batch.Quantity = &newQty
			}
			// Tekil varlıkta düşülecek bakiye alanı yok; tamamı tüketilir

			if draw.Exhausted {
				if err := batch.TransitionTo(models.AssetConsumed); err != nil {
					return nil, err
				}
			}

			if err := tx.Save(batch).Error; err != nil {
				return nil, err
			}

			movement := models.StockMovement{
				AssetID:      batch.ID,
				AssetName:    batch.Name,
				Brand:        batch.Brand,
				Type:         models.MovementConsume,
				Quantity:     draw.Amount,
				BalanceAfter: draw.BalanceAfter,
				ActorID:      actorID,
				ActorName:    actorName,
				Reference:    reference,
			}
			if err := tx.Create(&movement).Error; err != nil {
				return nil, err
			}
		}

		result = append(result, ItemAllocation{Item: item, Draws: draws})
	}

	return result, nil
}

// ConsumeStock: kalem listesini tek bir atomik birim olarak tüketir.
func ConsumeStock(db *gorm.DB, items []ConsumeItem, actorID uint, actorName, reference string) ([]ItemAllocation, error) {
	var result []ItemAllocation
	err := database.RunInTx(db, func(tx *gorm.DB) error {
		var txErr error
		result, txErr = ConsumeStockTx(tx, items, actorID, actorName, reference)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
