package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// Errores del motor de conciliación de despachos.
var (
	// ErrProductMismatch la caja escaneada no corresponde a ningún producto del despacho.
	ErrProductMismatch = errors.New("la caja no corresponde a los productos del despacho")
	// ErrInvalidQuantity la cantidad solicitada es cero o negativa.
	ErrInvalidQuantity = errors.New("la cantidad debe ser mayor que cero")
	// ErrNothingDeductible la caja está agotada o la línea ya quedó completa.
	ErrNothingDeductible = errors.New("no hay cantidad descontable")
	// ErrConcurrentLimit la disponibilidad cambió desde la última lectura; hay que re-escanear.
	ErrConcurrentLimit = errors.New("la disponibilidad de la caja cambió, re-escanear antes de continuar")
	// ErrIncompleteRequest se intentó confirmar un despacho con líneas pendientes.
	ErrIncompleteRequest = errors.New("el despacho tiene cantidades pendientes por alistar")
	// ErrSessionNotOpen operación sobre un despacho sin sesión de alistamiento abierta.
	ErrSessionNotOpen = errors.New("no hay sesión de alistamiento abierta para el despacho")
)
