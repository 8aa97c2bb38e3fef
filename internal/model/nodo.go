package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tablas de árbol. Un mismo struct Nodo sirve para las tres jerarquías;
// el repositorio se parametriza con el nombre de tabla.
const (
	TablaMateriaPrima = "arbol_materia_prima"
	TablaPlatos       = "arbol_platos"
	TablaRecetas      = "arbol_recetas"
)

// Tipos de rama del árbol de materia prima (subárboles paralelos bajo la raíz).
const (
	RamaProduccion = "produccion"
	RamaEntregable = "entregable"
	RamaDesechable = "desechable"
)

// Nodo is one row of a hierarchical catalog table.
// NivelActual is fixed at creation and decides which optional fields apply:
// nivel 5 = producto que maneja stock, nivel 6 = presentación con contenido.
// Codigo encodes the position ("1.02.03") but the service enforces it.
type Nodo struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo      string    `gorm:"not null;index"`
	Nombre      string    `gorm:"index;not null"`
	Descripcion *string
	NivelActual int        `gorm:"not null;index"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index"`
	TipoRama    *string    `gorm:"type:varchar(20)"`
	EsHoja      bool       `gorm:"not null;default:false"`

	// Stock — solo cuando ManejaStock (nivel 5 en materia prima)
	ManejaStock   bool             `gorm:"not null;default:false"`
	StockActual   *decimal.Decimal `gorm:"type:decimal(12,3)"`
	StockMinimo   *decimal.Decimal `gorm:"type:decimal(12,3)"`
	StockMaximo   *decimal.Decimal `gorm:"type:decimal(12,3)"`
	UnidadStock   *string          `gorm:"type:varchar(10)"`
	CostoPromedio *decimal.Decimal `gorm:"type:decimal(12,4)"`

	// Presentación (nivel 6) — contenido expresado en la unidad de stock del padre
	ContenidoUnidad *decimal.Decimal `gorm:"type:decimal(12,3)"`
	UnidadContenido *string          `gorm:"type:varchar(10)"`

	// Recetas
	PlatoID     *uuid.UUID       `gorm:"type:uuid;index"`
	Rendimiento *decimal.Decimal `gorm:"type:decimal(12,3)"`
	Version     int              `gorm:"not null;default:1"`

	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
