package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// errores.go
// Taxonomía de errores del motor de árboles. Todas las operaciones mutantes
// devuelven una de estas causas o el error crudo del repositorio — nunca un
// "error desconocido" cuando la causa es una de estas.

// ErrNodoNoEncontrado signals that the requested node id or code does not exist.
var ErrNodoNoEncontrado = errors.New("nodo no encontrado")

// ErrVinculacionNoEncontrada signals a missing proveedor↔presentación link.
var ErrVinculacionNoEncontrada = errors.New("vinculación no encontrada")

// ErrorValidacion aggregates EVERY violated level-contract rule so a form can
// highlight all problems in one round trip, not just the first.
type ErrorValidacion struct {
	Errores []string
}

func (e *ErrorValidacion) Error() string {
	return "validación fallida: " + strings.Join(e.Errores, "; ")
}

// ConflictoCodigo is returned both by the optimistic pre-check and by the
// translation of the store's unique-constraint violation, so callers handle
// one shape regardless of where the race was detected.
type ConflictoCodigo struct {
	Codigo string
	// NodoEnConflicto is the existing active node holding the code, when known.
	NodoEnConflicto *uuid.UUID
}

func (e *ConflictoCodigo) Error() string {
	return fmt.Sprintf("el código %q ya está en uso por otro nodo activo", e.Codigo)
}

// RutaTruncada reports that the ancestor walk hit the depth guard before
// reaching a root. Non-fatal: Ruta holds the partial path accumulated so far
// and the caller decides between best-effort breadcrumbs and a hard failure.
type RutaTruncada struct {
	NodoID      uuid.UUID
	Profundidad int
}

func (e *RutaTruncada) Error() string {
	return fmt.Sprintf("ruta del nodo %s truncada a %d niveles (posible ciclo en parent_id)", e.NodoID, e.Profundidad)
}

// DuplicacionParcial means the duplicated recipe node exists but only part of
// its ingredient lines could be copied. Never collapsed into plain success or
// plain failure: the caller must surface the warning.
type DuplicacionParcial struct {
	RecetaID        uuid.UUID
	LineasCopiadas  int
	LineasEsperadas int
	UltimoError     error
}

func (e *DuplicacionParcial) Error() string {
	return fmt.Sprintf("receta duplicada con ingredientes incompletos: %d de %d líneas copiadas",
		e.LineasCopiadas, e.LineasEsperadas)
}

func (e *DuplicacionParcial) Unwrap() error { return e.UltimoError }
