package database

import (
	"errors"
	"log"

	"envanter-backend/internal/apperr"
	"envanter-backend/internal/config"
	"envanter-backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.AuditLog{},
		&models.Notification{},
		&models.DocumentCounter{},
		&models.Asset{},
		&models.StockMovement{},
		&models.Request{},
		&models.RequestItem{},
		&models.LoanRequest{},
		&models.LoanItem{},
		&models.AssetReturn{},
		&models.AssetReturnItem{},
		&models.Handover{},
		&models.Dismantle{},
		&models.Maintenance{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Postgres hata kodları: unique ihlali ve serialization failure
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

const txMaxRetries = 3

// RunInTx: fn'i tek bir transaction içinde çalıştırır. Çok-kayıtlı her
// mutasyon (defter yazımı + varlık statüsü + üst döküman) buradan geçer:
// ya hepsi commit olur ya hiçbiri. Eşzamanlılık çatışmasında (unique ihlali,
// serialization failure, deadlock) transaction baştan sona tekrar denenir;
// sınır aşılırsa çağırana yeniden denenebilir ConflictError döner.
func RunInTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 0; attempt < txMaxRetries; attempt++ {
		err = db.Transaction(fn)
		if err == nil {
			return nil
		}
		if !isRetryableConflict(err) {
			return err
		}
		log.Printf("Transaction çatışması, tekrar deneniyor (%d/%d): %v", attempt+1, txMaxRetries, err)
	}
	return apperr.Conflict("eşzamanlı işlem çatışması", err)
}

func isRetryableConflict(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgSerializationFailure, pgDeadlockDetected:
			return true
		}
	}
	return false
}
