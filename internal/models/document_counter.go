package models

import "time"

// DocumentCounter: döküman numaralandırma sayacı. (doc_type, period) başına
// tek satır; artırma ON CONFLICT upsert ile atomik yapılır, okuma-sonra-yazma
// yarışı oluşmaz.
type DocumentCounter struct {
	ID        uint      `gorm:"primaryKey"`
	DocType   string    `gorm:"size:10;not null;uniqueIndex:idx_doc_counter_scope"`
	Period    string    `gorm:"size:12;not null;uniqueIndex:idx_doc_counter_scope"` // "2026", "2026-08" veya "2026-0829"
	LastSeq   int64     `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
