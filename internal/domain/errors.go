package domain

import "errors"

// Errores de dominio (sin dependencias externas). Los handlers HTTP los mapean a códigos de estado.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("operación no permitida en el estado actual del documento")
	ErrIntegrity    = errors.New("violación de integridad de negocio")
	ErrDependency   = errors.New("configuración requerida ausente")
	ErrDuplicate    = errors.New("recurso duplicado")
)
