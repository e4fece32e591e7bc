package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrNoInputHistory    = errors.New("el ítem no tiene entradas registradas")
	ErrStorage           = errors.New("error de almacenamiento")
)

// InsufficientStockError detalla una salida rechazada por falta de existencias.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	ItemID    string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: ítem %s, solicitado %d, disponible %d",
		ErrInsufficientStock.Error(), e.ItemID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// StorageError envuelve una falla del Ledger Store (driver, tx abortada, timeout).
// Retryable indica conflictos de serialización o bloqueos: el caller puede reintentar
// la operación completa; el motor nunca reintenta por su cuenta.
type StorageError struct {
	Op        string
	Err       error
	Retryable bool
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage.Error(), e.Op, e.Err)
}

// Unwrap expone tanto ErrStorage como el error del driver (errors.Is / errors.As).
func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// IsRetryable indica si err es un StorageError reintentable.
func IsRetryable(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Retryable
}

// InvalidInputf construye un error de validación con detalle, compatible con errors.Is(err, ErrInvalidInput).
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
