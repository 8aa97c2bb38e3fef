package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AgregarIngredienteRequest struct {
	MateriaPrimaID    string          `json:"materia_prima_id"   validate:"required,uuid"`
	CantidadRequerida decimal.Decimal `json:"cantidad_requerida" validate:"required"`
	UnidadMedida      string          `json:"unidad_medida"      validate:"required"`
	Orden             int             `json:"orden"              validate:"min=0"`
}

type ActualizarIngredienteRequest struct {
	CantidadRequerida *decimal.Decimal `json:"cantidad_requerida"`
	UnidadMedida      *string          `json:"unidad_medida"`
	Orden             *int             `json:"orden" validate:"omitempty,min=0"`
}

type DuplicarRecetaRequest struct {
	NuevoNombre string `json:"nuevo_nombre" validate:"required,min=2,max=120"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type IngredienteResponse struct {
	ID                string          `json:"id"`
	RecetaID          string          `json:"receta_id"`
	MateriaPrimaID    string          `json:"materia_prima_id"`
	CantidadRequerida decimal.Decimal `json:"cantidad_requerida"`
	UnidadMedida      string          `json:"unidad_medida"`
	Orden             int             `json:"orden"`
	// Datos de la materia prima referenciada, para render directo
	MateriaPrima *NodoResponse `json:"materia_prima,omitempty"`
}

// DuplicarRecetaResponse distingue éxito completo de copia parcial: Parcial
// nunca se colapsa en un éxito genérico.
type DuplicarRecetaResponse struct {
	Receta           NodoResponse `json:"receta"`
	LineasCopiadas   int          `json:"ingredientes_copiados"`
	LineasEsperadas  int          `json:"ingredientes_esperados"`
	Parcial          bool         `json:"parcial"`
	AdvertenciaError *string      `json:"advertencia,omitempty"`
}
