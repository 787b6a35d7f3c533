package errs

import (
	"errors"

	"modernc.org/sqlite"
)

// Типизированные ошибки ядра: наружу уходят только они,
// «сырые» ошибки стора наверх не пробрасываются.
var (
	ErrDuplicateName      = errors.New("duplicate name")
	ErrDuplicateCode      = errors.New("duplicate code")
	ErrBrandNotFound      = errors.New("brand not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrSupplierNotFound   = errors.New("supplier not found")
	ErrPurchaseNotFound   = errors.New("purchase not found")
	ErrPayableNotFound    = errors.New("payable not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNoItems            = errors.New("purchase has no items")
	ErrIntegrityViolation = errors.New("integrity violation")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

// Коды SQLite (расширенные result codes).
const (
	sqliteConstraint        = 19
	sqliteConstraintUnique  = 2067
	sqliteConstraintPrimary = 1555
)

func sqliteCode(err error) int {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()
	}
	return 0
}

// IsUnique — нарушение UNIQUE-ограничения.
func IsUnique(err error) bool {
	c := sqliteCode(err)
	return c == sqliteConstraintUnique || c == sqliteConstraintPrimary
}

// IsConstraint — любое ограничение стора (FK, CHECK и т.п.).
func IsConstraint(err error) bool {
	return sqliteCode(err)&0xff == sqliteConstraint
}

// MapUnique переводит ошибку стора в типизированную:
// UNIQUE -> dup, прочие constraint -> ErrIntegrityViolation.
func MapUnique(err error, dup error) error {
	if err == nil {
		return nil
	}
	if IsUnique(err) {
		return dup
	}
	if IsConstraint(err) {
		return ErrIntegrityViolation
	}
	return err
}
