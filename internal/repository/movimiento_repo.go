package repository

import (
	"context"

	"cocinaclinica/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoRepository registra y consulta movimientos de inventario.
// Los registros son append-only.
type MovimientoRepository interface {
	Create(ctx context.Context, m *model.MovimientoInventario) error
	ListByProducto(ctx context.Context, productoID uuid.UUID, limite int) ([]model.MovimientoInventario, error)
}

type movimientoRepo struct{ db *gorm.DB }

func NewMovimientoRepository(db *gorm.DB) MovimientoRepository {
	return &movimientoRepo{db: db}
}

func (r *movimientoRepo) Create(ctx context.Context, m *model.MovimientoInventario) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *movimientoRepo) ListByProducto(ctx context.Context, productoID uuid.UUID, limite int) ([]model.MovimientoInventario, error) {
	if limite <= 0 {
		limite = 50
	}
	var movs []model.MovimientoInventario
	err := r.db.WithContext(ctx).
		Where("producto_id = ?", productoID).
		Order("created_at DESC").
		Limit(limite).
		Find(&movs).Error
	return movs, err
}
