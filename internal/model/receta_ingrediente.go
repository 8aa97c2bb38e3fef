package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecetaIngrediente es una línea de receta: referencia una materia prima
// (nodo hoja del árbol de materia prima) con cantidad, unidad y orden de
// presentación. Vive y muere independiente del nodo receta — eliminar la
// receta no borra sus líneas (política referencial del almacén).
type RecetaIngrediente struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RecetaID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	MateriaPrimaID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	CantidadRequerida decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnidadMedida      string          `gorm:"type:varchar(10);not null"`
	Orden             int             `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (RecetaIngrediente) TableName() string { return "receta_ingredientes" }
