package repository

import (
	"context"

	"cocinaclinica/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProveedorRepository interface {
	Create(ctx context.Context, p *model.Proveedor) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Proveedor, error)
	List(ctx context.Context) ([]model.Proveedor, error)
	Update(ctx context.Context, p *model.Proveedor) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Vinculaciones proveedor ↔ presentación (nivel 6).
	// A diferencia de los nodos, una vinculación puede reactivarse.
	CreateVinculacion(ctx context.Context, v *model.ProveedorPresentacion) error
	FindVinculacion(ctx context.Context, proveedorID, presentacionID uuid.UUID) (*model.ProveedorPresentacion, error)
	FindVinculacionByID(ctx context.Context, id uuid.UUID) (*model.ProveedorPresentacion, error)
	ListVinculacionesByProveedor(ctx context.Context, proveedorID uuid.UUID) ([]model.ProveedorPresentacion, error)
	ListVinculacionesByPresentacion(ctx context.Context, presentacionID uuid.UUID) ([]model.ProveedorPresentacion, error)
	UpdateVinculacion(ctx context.Context, v *model.ProveedorPresentacion) error
	DesactivarVinculacion(ctx context.Context, id uuid.UUID) error
	ReactivarVinculacion(ctx context.Context, id uuid.UUID) error
}

type proveedorRepo struct{ db *gorm.DB }

func NewProveedorRepository(db *gorm.DB) ProveedorRepository { return &proveedorRepo{db: db} }

func (r *proveedorRepo) Create(ctx context.Context, p *model.Proveedor) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *proveedorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Proveedor, error) {
	var p model.Proveedor
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *proveedorRepo) List(ctx context.Context) ([]model.Proveedor, error) {
	var proveedores []model.Proveedor
	err := r.db.WithContext(ctx).Where("activo = true").Order("nombre ASC").Find(&proveedores).Error
	return proveedores, err
}

func (r *proveedorRepo) Update(ctx context.Context, p *model.Proveedor) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *proveedorRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Proveedor{}).Where("id = ?", id).Update("activo", false).Error
}

// ── Vinculaciones ────────────────────────────────────────────────────────────

func (r *proveedorRepo) CreateVinculacion(ctx context.Context, v *model.ProveedorPresentacion) error {
	return r.db.WithContext(ctx).Create(v).Error
}

// FindVinculacion busca la vinculación incluso si está inactiva — la capa de
// servicio decide entre crear una nueva o reactivar la existente.
func (r *proveedorRepo) FindVinculacion(ctx context.Context, proveedorID, presentacionID uuid.UUID) (*model.ProveedorPresentacion, error) {
	var v model.ProveedorPresentacion
	err := r.db.WithContext(ctx).
		Where("proveedor_id = ? AND presentacion_id = ?", proveedorID, presentacionID).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *proveedorRepo) FindVinculacionByID(ctx context.Context, id uuid.UUID) (*model.ProveedorPresentacion, error) {
	var v model.ProveedorPresentacion
	err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *proveedorRepo) ListVinculacionesByProveedor(ctx context.Context, proveedorID uuid.UUID) ([]model.ProveedorPresentacion, error) {
	var vincs []model.ProveedorPresentacion
	err := r.db.WithContext(ctx).
		Where("proveedor_id = ? AND activo = true", proveedorID).
		Order("created_at DESC").
		Find(&vincs).Error
	return vincs, err
}

func (r *proveedorRepo) ListVinculacionesByPresentacion(ctx context.Context, presentacionID uuid.UUID) ([]model.ProveedorPresentacion, error) {
	var vincs []model.ProveedorPresentacion
	err := r.db.WithContext(ctx).
		Preload("Proveedor").
		Where("presentacion_id = ? AND activo = true", presentacionID).
		Find(&vincs).Error
	return vincs, err
}

func (r *proveedorRepo) UpdateVinculacion(ctx context.Context, v *model.ProveedorPresentacion) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *proveedorRepo) DesactivarVinculacion(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.ProveedorPresentacion{}).
		Where("id = ?", id).Update("activo", false).Error
}

func (r *proveedorRepo) ReactivarVinculacion(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.ProveedorPresentacion{}).
		Where("id = ?", id).Update("activo", true).Error
}
