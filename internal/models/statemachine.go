package models

import "envanter-backend/internal/apperr"

// Varlık yaşam döngüsü geçiş tablosu. Tabloda olmayan her geçiş
// InvalidStateTransition ile reddedilir; DECOMMISSIONED dışındaki her
// statüden açık emeklilik (DECOMMISSIONED) mümkündür.
var assetTransitions = map[AssetStatus][]AssetStatus{
	AssetInStorage:      {AssetOnLoan, AssetInUse, AssetConsumed},
	AssetOnLoan:         {AssetAwaitingReturn},
	AssetAwaitingReturn: {AssetInStorage, AssetDamaged},
	AssetInUse:          {AssetInStorage, AssetDamaged},
	AssetDamaged:        {},
	AssetConsumed:       {},
	AssetDecommissioned: nil, // terminal
}

// CanTransition: from -> to geçişi tabloda tanımlı mı
func CanTransition(from, to AssetStatus) bool {
	if from == AssetDecommissioned {
		return false
	}
	if to == AssetDecommissioned {
		return true
	}
	for _, allowed := range assetTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionTo: varlığın statüsünü korumalı olarak değiştirir. Geçiş
// geçersizse varlığa dokunmadan hata döner; kısmi uygulama olmaz.
func (a *Asset) TransitionTo(to AssetStatus) error {
	if !CanTransition(a.Status, to) {
		return apperr.InvalidStateTransition("varlık "+a.DocNumber, string(a.Status), string(to))
	}
	a.Status = to
	return nil
}
