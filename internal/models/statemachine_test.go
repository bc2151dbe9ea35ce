package models

import (
	"errors"
	"testing"

	"envanter-backend/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransitionLegalPaths(t *testing.T) {
	legal := []struct{ from, to AssetStatus }{
		{AssetInStorage, AssetOnLoan},
		{AssetInStorage, AssetInUse},
		{AssetInStorage, AssetConsumed},
		{AssetOnLoan, AssetAwaitingReturn},
		{AssetAwaitingReturn, AssetInStorage},
		{AssetAwaitingReturn, AssetDamaged},
		{AssetInUse, AssetInStorage},
		{AssetInUse, AssetDamaged},
	}
	for _, tc := range legal {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s izinli olmalı", tc.from, tc.to)
	}
}

func TestCanTransitionIllegalPaths(t *testing.T) {
	illegal := []struct{ from, to AssetStatus }{
		{AssetOnLoan, AssetInStorage}, // iade süreci atlanamaz
		{AssetOnLoan, AssetOnLoan},    // zaten ödünçte
		{AssetInStorage, AssetAwaitingReturn},
		{AssetDamaged, AssetInStorage},
		{AssetConsumed, AssetInStorage},
		{AssetInUse, AssetOnLoan},
		{AssetAwaitingReturn, AssetOnLoan},
	}
	for _, tc := range illegal {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s izinli olmamalı", tc.from, tc.to)
	}
}

// DECOMMISSIONED dışındaki her statüden emekliliğe geçilebilir
func TestDecommissionFromAnyNonTerminal(t *testing.T) {
	from := []AssetStatus{
		AssetInStorage, AssetInUse, AssetOnLoan,
		AssetAwaitingReturn, AssetDamaged, AssetConsumed,
	}
	for _, s := range from {
		assert.True(t, CanTransition(s, AssetDecommissioned), "%s -> DECOMMISSIONED izinli olmalı", s)
	}
}

func TestDecommissionedIsTerminal(t *testing.T) {
	targets := []AssetStatus{
		AssetInStorage, AssetInUse, AssetOnLoan,
		AssetAwaitingReturn, AssetDamaged, AssetConsumed,
		AssetDecommissioned,
	}
	for _, s := range targets {
		assert.False(t, CanTransition(AssetDecommissioned, s))
	}
}

func TestTransitionToMutatesOnlyWhenLegal(t *testing.T) {
	a := &Asset{DocNumber: "AST-2026-0001", Status: AssetInStorage}

	require.NoError(t, a.TransitionTo(AssetOnLoan))
	assert.Equal(t, AssetOnLoan, a.Status)

	err := a.TransitionTo(AssetInStorage)
	require.Error(t, err)

	var ist *apperr.InvalidStateTransitionError
	require.True(t, errors.As(err, &ist))
	assert.Equal(t, "ON_LOAN", ist.From)
	assert.Equal(t, "IN_STORAGE", ist.To)

	// Başarısız geçiş varlığı değiştirmemeli
	assert.Equal(t, AssetOnLoan, a.Status)
}
