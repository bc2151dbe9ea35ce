package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Bu dosyadaki tipler, dökümanlardaki serbest JSON alanlarının yerine geçen
// şemalı jsonb alanlarıdır. Scan/Value üzerinden gorm ile saklanır.

// RegisteredCounts: talep kalemi ID -> şimdiye kadar kaydedilen adet
type RegisteredCounts map[uint]int64

func (rc RegisteredCounts) Value() (driver.Value, error) {
	if rc == nil {
		return "{}", nil
	}
	b, err := json.Marshal(rc)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (rc *RegisteredCounts) Scan(value any) error {
	return scanJSONB(value, rc)
}

// Total: tüm kalemlerde kaydedilen toplam adet
func (rc RegisteredCounts) Total() int64 {
	var total int64
	for _, n := range rc {
		total += n
	}
	return total
}

// AssetIDsByItem: ödünç kalemi ID -> atanan somut varlık ID listesi
type AssetIDsByItem map[uint][]uint

func (m AssetIDsByItem) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *AssetIDsByItem) Scan(value any) error {
	return scanJSONB(value, m)
}

// AllIDs: atanan tüm varlık ID'lerini düz liste olarak döner
func (m AssetIDsByItem) AllIDs() []uint {
	var ids []uint
	for _, list := range m {
		ids = append(ids, list...)
	}
	return ids
}

// HasDuplicates: aynı varlık birden fazla kaleme atanmış mı kontrol eder
func (m AssetIDsByItem) HasDuplicates() bool {
	seen := make(map[uint]bool)
	for _, list := range m {
		for _, id := range list {
			if seen[id] {
				return true
			}
			seen[id] = true
		}
	}
	return false
}

// AssetIDList: iade edilen varlık ID'leri (sıra korunur, tekrar kabul edilmez)
type AssetIDList []uint

func (l AssetIDList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *AssetIDList) Scan(value any) error {
	return scanJSONB(value, l)
}

func (l AssetIDList) Contains(id uint) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

func scanJSONB(value any, dest any) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("jsonb alanı çözümlenemedi: beklenmeyen tip %T", value)
	}
}
