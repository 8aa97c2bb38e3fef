package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovimientoEntrada = "entrada"
	MovimientoSalida  = "salida"
	MovimientoAjuste  = "ajuste_manual"
)

// MovimientoInventario registra cada cambio de stock de un producto nivel 5.
// Los registros son inmutables — nunca se eliminan ni modifican.
type MovimientoInventario struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo          string          `gorm:"not null"`                    // "entrada" | "salida" | "ajuste_manual"
	Cantidad      decimal.Decimal `gorm:"type:decimal(12,3);not null"` // positiva = entrada, negativa = salida
	StockAnterior decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	StockNuevo    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Motivo        string
	ReferenciaID  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time
}

func (MovimientoInventario) TableName() string { return "movimientos_inventario" }
