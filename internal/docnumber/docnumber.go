package docnumber

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"envanter-backend/internal/apperr"

	"gorm.io/gorm"
)

// DocType: numaralandırılan döküman türü. Her tür kendi öneki ve dönem
// ayrıntısıyla (yıl / yıl-ay / yıl-ay-gün) ayrı bir sayaç kapsamı açar.
type DocType string

const (
	TypeAsset        DocType = "AST" // AST-2026-0001
	TypeRequest      DocType = "RO"  // RO-2026-0829-0001
	TypeLoan         DocType = "RL"  // RL-2026-08-0001
	TypeReturn       DocType = "RTN" // RTN-2026-08-0001
	TypeHandover     DocType = "HO"
	TypeInstallation DocType = "INST"
	TypeDismantle    DocType = "DSM"
	TypeMaintenance  DocType = "MNT"
)

type periodKind int

const (
	periodYearly periodKind = iota
	periodMonthly
	periodDaily
)

// minSeqWidth: sıra numarasının asgari genişliği. Sıra sınırsız tam sayıdır;
// 9999'dan sonra alan genişler (9999 -> 10000), taşma yoktur.
const minSeqWidth = 4

func (t DocType) period() periodKind {
	switch t {
	case TypeAsset:
		return periodYearly
	case TypeRequest:
		return periodDaily
	default:
		return periodMonthly
	}
}

// PeriodScope: asOf tarihine göre sayaç kapsam anahtarını üretir.
// Yıllık: "2026", aylık: "2026-08", günlük: "2026-0829".
func PeriodScope(t DocType, asOf time.Time) string {
	switch t.period() {
	case periodYearly:
		return asOf.Format("2006")
	case periodDaily:
		return asOf.Format("2006-0102")
	default:
		return asOf.Format("2006-01")
	}
}

// Format: döküman numarasını birleştirir: {PREFIX}-{PERIOD}-{SEQ}.
func Format(t DocType, scope string, seq int64) string {
	return fmt.Sprintf("%s-%s-%0*d", t, scope, minSeqWidth, seq)
}

// ParseSeq: bir döküman numarasının sondaki sıra numarasını çıkarır.
func ParseSeq(docNumber string) (int64, error) {
	idx := strings.LastIndex(docNumber, "-")
	if idx < 0 || idx == len(docNumber)-1 {
		return 0, apperr.Validation("geçersiz döküman numarası: %s", docNumber)
	}
	seq, err := strconv.ParseInt(docNumber[idx+1:], 10, 64)
	if err != nil {
		return 0, apperr.Validation("döküman numarasında sıra çözümlenemedi: %s", docNumber)
	}
	return seq, nil
}

// Generate: (tür, dönem) kapsamında bir sonraki benzersiz numarayı üretir.
// Sayaç satırı tek bir upsert ile atomik artırılır; iki eşzamanlı çağrı
// aynı "son sıra"yı göremez. Çağıranın transaction'ı içinde çalışmalıdır ki
// döküman yazımı başarısız olursa sayaç artışı da geri alınsın.
func Generate(tx *gorm.DB, t DocType, asOf time.Time) (string, error) {
	scope := PeriodScope(t, asOf)

	var lastSeq int64
	err := tx.Raw(`
		INSERT INTO document_counters (doc_type, period, last_seq, created_at, updated_at)
		VALUES (?, ?, 1, NOW(), NOW())
		ON CONFLICT (doc_type, period)
		DO UPDATE SET last_seq = document_counters.last_seq + 1, updated_at = NOW()
		RETURNING last_seq
	`, string(t), scope).Scan(&lastSeq).Error
	if err != nil {
		return "", fmt.Errorf("döküman numarası üretilemedi (%s-%s): %w", t, scope, err)
	}

	return Format(t, scope, lastSeq), nil
}
