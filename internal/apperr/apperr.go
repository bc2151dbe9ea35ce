package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// İş kurallarından dönen hata tipleri. InternalError dışındaki her tip
// beklenen bir iş sonucudur ve çağırana yeterli bağlamla (ID, miktar,
// eksik) iletilir. Hiçbiri kısmi durum bırakmaz.

// ValidationError: bozuk/eksik girdi. Transaction açılmadan reddedilir.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError: referans verilen kayıt yok.
type NotFoundError struct {
	Entity string
	Ref    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s bulunamadı: %s", e.Entity, e.Ref)
}

func NotFound(entity string, ref any) error {
	return &NotFoundError{Entity: entity, Ref: fmt.Sprint(ref)}
}

// InvalidStateTransitionError: işlem, izin verilmeyen bir statüden denendi.
type InvalidStateTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("%s için geçersiz durum geçişi: %s -> %s", e.Entity, e.From, e.To)
}

func InvalidStateTransition(entity, from, to string) error {
	return &InvalidStateTransitionError{Entity: entity, From: from, To: to}
}

// InsufficientStockError: tahsis denemesi sonrasında açık kalan miktar.
type InsufficientStockError struct {
	ItemName  string
	Brand     string
	Requested float64
	Available float64
	Deficit   float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("yetersiz stok: %s (%s) istenen %.2f, mevcut %.2f, eksik %.2f",
		e.ItemName, e.Brand, e.Requested, e.Available, e.Deficit)
}

// ConflictError: unique kısıt veya eşzamanlılık yarışı. Kısmi etki
// kalmadığı için çağıran güvenle tekrar deneyebilir.
type ConflictError struct {
	Message string
	Cause   error
}

func (e *ConflictError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ConflictError) Unwrap() error { return e.Cause }

func Conflict(msg string, cause error) error {
	return &ConflictError{Message: msg, Cause: cause}
}

// ToFiber: taksonomi hatasını HTTP yanıtına çevirir. Eşleşmeyen her hata
// beklenmeyen sunucu hatasıdır (500).
func ToFiber(err error) *fiber.Error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return fiber.NewError(fiber.StatusBadRequest, ve.Message)
	}

	var nf *NotFoundError
	if errors.As(err, &nf) {
		return fiber.NewError(fiber.StatusNotFound, nf.Error())
	}

	var ist *InvalidStateTransitionError
	if errors.As(err, &ist) {
		return fiber.NewError(fiber.StatusConflict, ist.Error())
	}

	var is *InsufficientStockError
	if errors.As(err, &is) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, is.Error())
	}

	var ce *ConflictError
	if errors.As(err, &ce) {
		return fiber.NewError(fiber.StatusConflict, ce.Message+" (tekrar deneyin)")
	}

	return nil
}
