package repository

import (
	"context"

	"cocinaclinica/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LimiteBusqueda bounds every search result set; callers asking for more (or
// for zero) get exactly this many rows.
const LimiteBusqueda = 50

// NodoRepository is the persistence boundary for one tree table. Services
// depend on this interface, not on the concrete GORM implementation, enabling
// clean unit testing via stubs. One instance per tabla de árbol.
type NodoRepository interface {
	Tabla() string

	FindByID(ctx context.Context, id uuid.UUID) (*model.Nodo, error)
	FindByCodigo(ctx context.Context, codigo string) (*model.Nodo, error)
	FindHijos(ctx context.Context, parentID uuid.UUID) ([]model.Nodo, error)
	// Buscar matches termino case-insensitively against nombre OR codigo among
	// active nodes; filtros are exact-match column constraints (nivel_actual,
	// tipo_rama, plato_id, …). Results ordered by codigo, capped at limite.
	Buscar(ctx context.Context, termino string, filtros map[string]interface{}, limite int) ([]model.Nodo, error)
	ContarPorNivel(ctx context.Context, nivel int) (int64, error)
	// FindActivosPorCodigo returns active nodes holding codigo, excluding
	// excludeID when non-nil (so an edited node doesn't collide with itself).
	FindActivosPorCodigo(ctx context.Context, codigo string, excludeID *uuid.UUID) ([]model.Nodo, error)
	// FindStockBajo returns active nodes of the given level whose stock_actual
	// is below stock_minimo, optionally restricted to one tipo_rama.
	FindStockBajo(ctx context.Context, nivel int, tipoRama *string) ([]model.Nodo, error)

	Insertar(ctx context.Context, n *model.Nodo) error
	Actualizar(ctx context.Context, n *model.Nodo) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// AjustarStock incrementa o decrementa stock_actual atómicamente.
	AjustarStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
}

type nodoRepo struct {
	db    *gorm.DB
	tabla string
}

// NewNodoRepository builds a repository bound to one tree table
// (model.TablaMateriaPrima, model.TablaPlatos or model.TablaRecetas).
func NewNodoRepository(db *gorm.DB, tabla string) NodoRepository {
	return &nodoRepo{db: db, tabla: tabla}
}

func (r *nodoRepo) Tabla() string { return r.tabla }

func (r *nodoRepo) q(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.tabla)
}

func (r *nodoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Nodo, error) {
	var n model.Nodo
	// Direct-by-id lookups see inactive nodes too (audit / duplication paths)
	err := r.q(ctx).Where("id = ?", id).First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *nodoRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Nodo, error) {
	var n model.Nodo
	err := r.q(ctx).Where("codigo = ? AND activo = true", codigo).First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *nodoRepo) FindHijos(ctx context.Context, parentID uuid.UUID) ([]model.Nodo, error) {
	var hijos []model.Nodo
	err := r.q(ctx).
		Where("parent_id = ? AND activo = true", parentID).
		Order("codigo ASC").
		Find(&hijos).Error
	return hijos, err
}

func (r *nodoRepo) Buscar(ctx context.Context, termino string, filtros map[string]interface{}, limite int) ([]model.Nodo, error) {
	if limite <= 0 || limite > LimiteBusqueda {
		limite = LimiteBusqueda
	}

	q := r.q(ctx).Where("activo = true")

	if termino != "" {
		patron := "%" + termino + "%"
		q = q.Where("nombre ILIKE ? OR codigo ILIKE ?", patron, patron)
	}
	for columna, valor := range filtros {
		if valor == nil {
			continue
		}
		q = q.Where(columna+" = ?", valor)
	}

	var nodos []model.Nodo
	err := q.Order("codigo ASC").Limit(limite).Find(&nodos).Error
	return nodos, err
}

func (r *nodoRepo) ContarPorNivel(ctx context.Context, nivel int) (int64, error) {
	var total int64
	err := r.q(ctx).Where("nivel_actual = ? AND activo = true", nivel).Count(&total).Error
	return total, err
}

func (r *nodoRepo) FindActivosPorCodigo(ctx context.Context, codigo string, excludeID *uuid.UUID) ([]model.Nodo, error) {
	q := r.q(ctx).Where("codigo = ? AND activo = true", codigo)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var nodos []model.Nodo
	err := q.Find(&nodos).Error
	return nodos, err
}

func (r *nodoRepo) FindStockBajo(ctx context.Context, nivel int, tipoRama *string) ([]model.Nodo, error) {
	q := r.q(ctx).
		Where("nivel_actual = ? AND activo = true AND maneja_stock = true", nivel).
		Where("stock_minimo IS NOT NULL AND stock_actual < stock_minimo")
	if tipoRama != nil {
		q = q.Where("tipo_rama = ?", *tipoRama)
	}
	var nodos []model.Nodo
	err := q.Order("codigo ASC").Find(&nodos).Error
	return nodos, err
}

func (r *nodoRepo) Insertar(ctx context.Context, n *model.Nodo) error {
	return r.q(ctx).Create(n).Error
}

func (r *nodoRepo) Actualizar(ctx context.Context, n *model.Nodo) error {
	return r.q(ctx).Where("id = ?", n.ID).Save(n).Error
}

func (r *nodoRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.q(ctx).Where("id = ?", id).
		Updates(map[string]interface{}{"activo": false, "updated_at": gorm.Expr("now()")}).Error
}

func (r *nodoRepo) AjustarStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	return r.q(ctx).
		Where("id = ? AND activo = true AND maneja_stock = true", id).
		Updates(map[string]interface{}{
			"stock_actual": gorm.Expr("stock_actual + ?", delta),
			"updated_at":   gorm.Expr("now()"),
		}).Error
}
