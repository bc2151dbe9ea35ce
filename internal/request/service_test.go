package request

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"envanter-backend/internal/models"
)

func i64(v int64) *int64 { return &v }

func TestInitialStatus(t *testing.T) {
	allocated := []models.RequestItem{
		{ItemName: "Kablo", ApprovalStatus: models.ItemStockAllocated},
		{ItemName: "Anahtar", ApprovalStatus: models.ItemStockAllocated},
	}

	// Tüm kalemler stoktan karşılanıyor, kullanım hedefi: teslim bekler
	assert.Equal(t, models.RequestAwaitingHandover, initialStatus(allocated, models.TargetUsage))

	// Stok yenileme hedefinde aynı durum talebi kapatır
	assert.Equal(t, models.RequestCompleted, initialStatus(allocated, models.TargetRestock))

	// Tek bir kalem bile tedarik istiyorsa talep onaya düşer
	mixed := []models.RequestItem{
		{ItemName: "Kablo", ApprovalStatus: models.ItemStockAllocated},
		{ItemName: "Router", ApprovalStatus: models.ItemProcurementNeeded},
	}
	assert.Equal(t, models.RequestPending, initialStatus(mixed, models.TargetUsage))
	assert.Equal(t, models.RequestPending, initialStatus(mixed, models.TargetRestock))
}

func TestAdjustedItemStatus(t *testing.T) {
	item := models.RequestItem{RequestedQuantity: 10, ApprovalStatus: models.ItemProcurementNeeded}

	// Miktar verilmemişse kalem olduğu gibi kalır
	assert.Equal(t, models.ItemProcurementNeeded, adjustedItemStatus(item, nil))

	assert.Equal(t, models.ItemRejected, adjustedItemStatus(item, i64(0)))
	assert.Equal(t, models.ItemPartial, adjustedItemStatus(item, i64(6)))
	assert.Equal(t, models.ItemApproved, adjustedItemStatus(item, i64(10)))
	assert.Equal(t, models.ItemApproved, adjustedItemStatus(item, i64(15)))
}

func TestAggregateStatus(t *testing.T) {
	someApproved := []models.RequestItem{
		{ApprovalStatus: models.ItemApproved},
		{ApprovalStatus: models.ItemRejected},
	}
	assert.Equal(t, models.RequestLogisticApproved, aggregateStatus(someApproved, TierLogistic))
	assert.Equal(t, models.RequestApproved, aggregateStatus(someApproved, TierFinal))

	// Tüm kalemler reddedildiyse kademeden bağımsız talep reddedilir
	allRejected := []models.RequestItem{
		{ApprovalStatus: models.ItemRejected},
		{ApprovalStatus: models.ItemRejected},
	}
	assert.Equal(t, models.RequestRejected, aggregateStatus(allRejected, TierLogistic))
	assert.Equal(t, models.RequestRejected, aggregateStatus(allRejected, TierFinal))
}

func TestApprovedTotal(t *testing.T) {
	items := []models.RequestItem{
		{RequestedQuantity: 10, ApprovedQuantity: i64(6), ApprovalStatus: models.ItemPartial},
		{RequestedQuantity: 5, ApprovalStatus: models.ItemApproved},
		{RequestedQuantity: 7, ApprovedQuantity: i64(0), ApprovalStatus: models.ItemRejected},
	}

	// Reddedilen kalem toplamda yok sayılır, kısmi kalem onaylı miktarıyla girer
	assert.Equal(t, int64(11), approvedTotal(items))
}

func f64(v float64) *float64 { return &v }

// Parti varlıklar sayaca taşıdıkları miktar kadar yazılır; 100 adetlik tek
// parti 100 birimlik onayı tek başına karşılar
func TestUnitCount(t *testing.T) {
	assert.Equal(t, int64(100), unitCount(RegisterUnit{Quantity: i64(100)}))
	assert.Equal(t, int64(25), unitCount(RegisterUnit{CurrentBalance: f64(25)}))
	assert.Equal(t, int64(3), unitCount(RegisterUnit{CurrentBalance: f64(2.5)}))
	assert.Equal(t, int64(1), unitCount(RegisterUnit{}))
	assert.Equal(t, int64(0), unitCount(RegisterUnit{Quantity: i64(0)}))
}

func TestRegistrationCompleteWithBatchUnits(t *testing.T) {
	items := []models.RequestItem{
		{ID: 1, RequestedQuantity: 100, ApprovalStatus: models.ItemApproved},
	}

	// 100 adetlik parti birimin miktarıyla sayılınca talep tamamlanır
	counts := models.RegisteredCounts{}
	counts[1] += unitCount(RegisterUnit{Quantity: i64(100)})
	assert.True(t, registrationComplete(items, counts))

	// Tekil varlık yalnızca 1 birim taşır
	counts = models.RegisteredCounts{}
	counts[1] += unitCount(RegisterUnit{})
	assert.False(t, registrationComplete(items, counts))
}

func TestRegistrationComplete(t *testing.T) {
	items := []models.RequestItem{
		{ID: 1, RequestedQuantity: 3, ApprovalStatus: models.ItemApproved},
		{ID: 2, RequestedQuantity: 2, ApprovedQuantity: i64(1), ApprovalStatus: models.ItemPartial},
	}

	assert.False(t, registrationComplete(items, models.RegisteredCounts{1: 3}))
	assert.False(t, registrationComplete(items, models.RegisteredCounts{1: 2, 2: 1}))
	assert.True(t, registrationComplete(items, models.RegisteredCounts{1: 3, 2: 1}))
}
