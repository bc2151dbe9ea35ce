package stock

import (
	"errors"
	"testing"

	"envanter-backend/internal/apperr"
	"envanter-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balancePtr(v float64) *float64 { return &v }

func batch(id uint, doc string, balance float64) models.Asset {
	return models.Asset{
		ID:             id,
		DocNumber:      doc,
		Name:           "Kablo CAT6",
		Brand:          "Acme",
		Status:         models.AssetInStorage,
		CurrentBalance: balancePtr(balance),
	}
}

func TestSortBatchesLargestFirst(t *testing.T) {
	batches := []models.Asset{
		batch(1, "AST-2026-0001", 10),
		batch(2, "AST-2026-0002", 40),
		batch(3, "AST-2026-0003", 25),
	}
	sortBatchesLargestFirst(batches)

	assert.Equal(t, uint(2), batches[0].ID)
	assert.Equal(t, uint(3), batches[1].ID)
	assert.Equal(t, uint(1), batches[2].ID)
}

func TestPlanConsumptionSingleBatch(t *testing.T) {
	batches := []models.Asset{batch(1, "AST-2026-0001", 100)}

	draws, err := planConsumption(batches, ConsumeItem{Name: "Kablo CAT6", Brand: "Acme", Quantity: 80})
	require.NoError(t, err)
	require.Len(t, draws, 1)

	assert.Equal(t, uint(1), draws[0].AssetID)
	assert.Equal(t, 80.0, draws[0].Amount)
	assert.Equal(t, 20.0, draws[0].BalanceAfter)
	assert.False(t, draws[0].Exhausted)
}

// Açgözlü tahsis: büyük partiden başlar, küçüğe yalnızca gerekirse iner
func TestPlanConsumptionFragmented(t *testing.T) {
	batches := []models.Asset{
		batch(2, "AST-2026-0002", 40),
		batch(3, "AST-2026-0003", 25),
		batch(1, "AST-2026-0001", 10),
	}

	draws, err := planConsumption(batches, ConsumeItem{Name: "Kablo CAT6", Quantity: 60})
	require.NoError(t, err)
	require.Len(t, draws, 2)

	assert.Equal(t, uint(2), draws[0].AssetID)
	assert.Equal(t, 40.0, draws[0].Amount)
	assert.True(t, draws[0].Exhausted)

	assert.Equal(t, uint(3), draws[1].AssetID)
	assert.Equal(t, 20.0, draws[1].Amount)
	assert.Equal(t, 5.0, draws[1].BalanceAfter)
	assert.False(t, draws[1].Exhausted)
}

func TestPlanConsumptionExactExhaustion(t *testing.T) {
	batches := []models.Asset{batch(1, "AST-2026-0001", 50)}

	draws, err := planConsumption(batches, ConsumeItem{Name: "Kablo CAT6", Quantity: 50})
	require.NoError(t, err)
	require.Len(t, draws, 1)
	assert.True(t, draws[0].Exhausted)
	assert.Equal(t, 0.0, draws[0].BalanceAfter)
}

func TestPlanConsumptionInsufficientReportsDeficit(t *testing.T) {
	batches := []models.Asset{
		batch(1, "AST-2026-0001", 30),
		batch(2, "AST-2026-0002", 10),
	}

	draws, err := planConsumption(batches, ConsumeItem{Name: "Kablo CAT6", Brand: "Acme", Quantity: 100})
	require.Error(t, err)
	assert.Nil(t, draws)

	var is *apperr.InsufficientStockError
	require.True(t, errors.As(err, &is))
	assert.Equal(t, 100.0, is.Requested)
	assert.Equal(t, 40.0, is.Available)
	assert.Equal(t, 60.0, is.Deficit)
	assert.Equal(t, "Kablo CAT6", is.ItemName)
}

func TestPlanConsumptionNoBatches(t *testing.T) {
	draws, err := planConsumption(nil, ConsumeItem{Name: "Kablo CAT6", Quantity: 5})
	require.Error(t, err)
	assert.Nil(t, draws)

	var is *apperr.InsufficientStockError
	require.True(t, errors.As(err, &is))
	assert.Equal(t, 0.0, is.Available)
	assert.Equal(t, 5.0, is.Deficit)
}

// Senaryo A'nın kaybeden tarafı: 100'lük partiden 80 tüketildikten sonra
// ikinci 80'lik istek 60 eksikle reddedilir
func TestPlanConsumptionLosingRace(t *testing.T) {
	batches := []models.Asset{batch(1, "AST-2026-0001", 20)}

	_, err := planConsumption(batches, ConsumeItem{Name: "Kablo CAT6", Quantity: 80})
	var is *apperr.InsufficientStockError
	require.True(t, errors.As(err, &is))
	assert.Equal(t, 60.0, is.Deficit)
}

// Kesirli tüketim parçalara bölündüğünde son partide kayan nokta artığı
// kalmamalı; 0.2+0.1 bakiyeden 0.3 çekilince ikinci parti tükenir
func TestPlanConsumptionFractionalResidue(t *testing.T) {
	batches := []models.Asset{
		batch(1, "AST-2026-0001", 0.2),
		batch(2, "AST-2026-0002", 0.1),
	}

	draws, err := planConsumption(batches, ConsumeItem{Name: "Solvent", Quantity: 0.3})
	require.NoError(t, err)
	require.Len(t, draws, 2)

	assert.True(t, draws[0].Exhausted)
	assert.Equal(t, 0.0, draws[0].BalanceAfter)
	assert.Equal(t, 0.1, draws[1].Amount)
	assert.Equal(t, 0.0, draws[1].BalanceAfter)
	assert.True(t, draws[1].Exhausted)
}

func TestIsFragmented(t *testing.T) {
	batches := []models.Asset{
		batch(1, "AST-2026-0001", 40),
		batch(2, "AST-2026-0002", 25),
	}

	assert.False(t, isFragmented(batches, 30))
	assert.True(t, isFragmented(batches, 60))

	// Toplam yetmese bile birden fazla parti gerekiyorsa parçalıdır
	assert.True(t, isFragmented(batches, 100))
	assert.True(t, isFragmented(batches[:1], 100))

	assert.False(t, isFragmented(nil, 10))
}

func TestValidateDraw(t *testing.T) {
	qty := int64(5)
	measured := batch(1, "AST-2026-0001", 10)
	counted := models.Asset{ID: 2, Name: "Priz", Quantity: &qty}
	single := models.Asset{ID: 3, Name: "Matkap"}

	// Ölçülü parti kesirli çekimi taşır
	assert.NoError(t, validateDraw(&measured, BatchDraw{Amount: 2.5, BalanceAfter: 7.5}))

	// Adetli partide bakiye tam sayı kalmalı
	assert.NoError(t, validateDraw(&counted, BatchDraw{Amount: 2, BalanceAfter: 3}))
	err := validateDraw(&counted, BatchDraw{Amount: 2.5, BalanceAfter: 2.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kesirli")

	// Tekil varlık ancak bütün olarak tüketilir
	assert.NoError(t, validateDraw(&single, BatchDraw{Amount: 1, BalanceAfter: 0, Exhausted: true}))
	err = validateDraw(&single, BatchDraw{Amount: 0.4, BalanceAfter: 0.6})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kısmi")
}

// Tekil (bakiyesiz) varlıklar 1'er adet sayılır
func TestPlanConsumptionIndividualAssets(t *testing.T) {
	batches := []models.Asset{
		{ID: 1, DocNumber: "AST-2026-0001", Name: "Matkap", Status: models.AssetInStorage},
		{ID: 2, DocNumber: "AST-2026-0002", Name: "Matkap", Status: models.AssetInStorage},
	}

	draws, err := planConsumption(batches, ConsumeItem{Name: "Matkap", Quantity: 2})
	require.NoError(t, err)
	require.Len(t, draws, 2)
	assert.True(t, draws[0].Exhausted)
	assert.True(t, draws[1].Exhausted)
}
