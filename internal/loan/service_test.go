package loan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"envanter-backend/internal/models"
)

func TestValidateAssignments(t *testing.T) {
	items := []models.LoanItem{
		{ID: 1, ItemName: "Lazer metre", Quantity: 2},
		{ID: 2, ItemName: "Matkap", Quantity: 1},
	}

	ok := models.AssetIDsByItem{1: {10, 11}, 2: {12}}
	require.NoError(t, validateAssignments(items, ok))

	// Boş atama ile onay olmaz
	assert.Error(t, validateAssignments(items, models.AssetIDsByItem{}))

	// Miktar tutmuyor
	short := models.AssetIDsByItem{1: {10}, 2: {12}}
	assert.Error(t, validateAssignments(items, short))

	// Kalem bu talebe ait değil
	foreign := models.AssetIDsByItem{1: {10, 11}, 9: {12}}
	assert.Error(t, validateAssignments(items, foreign))

	// Atanmamış kalem kaldı
	missing := models.AssetIDsByItem{1: {10, 11}}
	assert.Error(t, validateAssignments(items, missing))

	// Aynı varlık iki kaleme birden
	dup := models.AssetIDsByItem{1: {10, 12}, 2: {12}}
	assert.Error(t, validateAssignments(items, dup))
}

func TestValidateReturnSubset(t *testing.T) {
	assigned := models.AssetIDsByItem{1: {10, 11}, 2: {12}}
	returned := models.AssetIDList{11}

	require.NoError(t, validateReturnSubset(assigned, returned, []uint{10, 12}))

	assert.Error(t, validateReturnSubset(assigned, returned, nil))

	// Atanmamış varlık iade edilemez
	assert.Error(t, validateReturnSubset(assigned, returned, []uint{99}))

	// Zaten iade edilen tekrar gönderilemez
	assert.Error(t, validateReturnSubset(assigned, returned, []uint{11}))

	// Aynı dökümanda tekrar
	assert.Error(t, validateReturnSubset(assigned, returned, []uint{10, 10}))
}

func TestReturnVerdict(t *testing.T) {
	acc := models.AssetReturnItem{Verification: models.VerificationAccepted}
	rej := models.AssetReturnItem{Verification: models.VerificationRejected}

	assert.Equal(t, models.ReturnCompleted, returnVerdict([]models.AssetReturnItem{acc, acc}))
	assert.Equal(t, models.ReturnRejected, returnVerdict([]models.AssetReturnItem{rej, rej}))

	// Karışık sonuç: döküman kısmen kabul
	assert.Equal(t, models.ReturnApproved, returnVerdict([]models.AssetReturnItem{acc, rej}))
}

func TestLoanClosed(t *testing.T) {
	assigned := models.AssetIDsByItem{1: {10, 11}, 2: {12}}

	// Eksik iade ödüncü kapatmaz
	assert.False(t, loanClosed(assigned, models.AssetIDList{10}))
	assert.False(t, loanClosed(assigned, models.AssetIDList{10, 11}))

	assert.True(t, loanClosed(assigned, models.AssetIDList{10, 11, 12}))
}
