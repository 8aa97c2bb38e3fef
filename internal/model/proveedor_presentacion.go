package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProveedorPresentacion vincula un proveedor con una presentación (nodo
// nivel 6 del árbol de materia prima). A diferencia de los nodos, una
// vinculación desactivada puede reactivarse.
type ProveedorPresentacion struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProveedorID      uuid.UUID        `gorm:"type:uuid;uniqueIndex:idx_proveedor_presentacion;not null"`
	PresentacionID   uuid.UUID        `gorm:"type:uuid;uniqueIndex:idx_proveedor_presentacion;not null"`
	PrecioReferencia *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CodigoProveedor  *string
	Activo           bool `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`
}

func (ProveedorPresentacion) TableName() string { return "proveedor_presentaciones" }
