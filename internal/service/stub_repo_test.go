package service_test

// Stub en memoria de NodoRepository, compartido por los tests del paquete.
// Reproduce los contratos que los servicios asumen del almacén real:
// not-found → gorm.ErrRecordNotFound, código activo duplicado →
// gorm.ErrDuplicatedKey.

import (
	"context"
	"sort"
	"strings"

	"cocinaclinica/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubNodoRepo struct {
	tabla string
	nodos map[uuid.UUID]*model.Nodo
}

func newStubNodoRepo(tabla string) *stubNodoRepo {
	return &stubNodoRepo{tabla: tabla, nodos: make(map[uuid.UUID]*model.Nodo)}
}

func (r *stubNodoRepo) Tabla() string { return r.tabla }

func (r *stubNodoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Nodo, error) {
	n, ok := r.nodos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *n
	return &copia, nil
}

func (r *stubNodoRepo) FindByCodigo(_ context.Context, codigo string) (*model.Nodo, error) {
	for _, n := range r.nodos {
		if n.Codigo == codigo && n.Activo {
			copia := *n
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubNodoRepo) FindHijos(_ context.Context, parentID uuid.UUID) ([]model.Nodo, error) {
	var hijos []model.Nodo
	for _, n := range r.nodos {
		if n.Activo && n.ParentID != nil && *n.ParentID == parentID {
			hijos = append(hijos, *n)
		}
	}
	sort.Slice(hijos, func(i, j int) bool { return hijos[i].Codigo < hijos[j].Codigo })
	return hijos, nil
}

func (r *stubNodoRepo) Buscar(_ context.Context, termino string, filtros map[string]interface{}, limite int) ([]model.Nodo, error) {
	if limite <= 0 || limite > 50 {
		limite = 50
	}
	var result []model.Nodo
	for _, n := range r.nodos {
		if !n.Activo || !coincideFiltros(n, filtros) {
			continue
		}
		if termino != "" {
			t := strings.ToLower(termino)
			if !strings.Contains(strings.ToLower(n.Nombre), t) && !strings.Contains(strings.ToLower(n.Codigo), t) {
				continue
			}
		}
		result = append(result, *n)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Codigo < result[j].Codigo })
	if len(result) > limite {
		result = result[:limite]
	}
	return result, nil
}

func coincideFiltros(n *model.Nodo, filtros map[string]interface{}) bool {
	for col, val := range filtros {
		switch col {
		case "nivel_actual":
			if nivel, ok := val.(int); !ok || n.NivelActual != nivel {
				return false
			}
		case "tipo_rama":
			rama, _ := val.(string)
			if n.TipoRama == nil || *n.TipoRama != rama {
				return false
			}
		case "plato_id":
			id, _ := val.(string)
			if n.PlatoID == nil || n.PlatoID.String() != id {
				return false
			}
		case "maneja_stock":
			if maneja, ok := val.(bool); !ok || n.ManejaStock != maneja {
				return false
			}
		}
	}
	return true
}

func (r *stubNodoRepo) ContarPorNivel(_ context.Context, nivel int) (int64, error) {
	var total int64
	for _, n := range r.nodos {
		if n.Activo && n.NivelActual == nivel {
			total++
		}
	}
	return total, nil
}

func (r *stubNodoRepo) FindActivosPorCodigo(_ context.Context, codigo string, excludeID *uuid.UUID) ([]model.Nodo, error) {
	var result []model.Nodo
	for _, n := range r.nodos {
		if !n.Activo || n.Codigo != codigo {
			continue
		}
		if excludeID != nil && n.ID == *excludeID {
			continue
		}
		result = append(result, *n)
	}
	return result, nil
}

func (r *stubNodoRepo) FindStockBajo(_ context.Context, nivel int, tipoRama *string) ([]model.Nodo, error) {
	var result []model.Nodo
	for _, n := range r.nodos {
		if !n.Activo || !n.ManejaStock || n.NivelActual != nivel || n.StockMinimo == nil {
			continue
		}
		actual := decimal.Zero
		if n.StockActual != nil {
			actual = *n.StockActual
		}
		if !actual.LessThan(*n.StockMinimo) {
			continue
		}
		if tipoRama != nil && (n.TipoRama == nil || *n.TipoRama != *tipoRama) {
			continue
		}
		result = append(result, *n)
	}
	return result, nil
}

func (r *stubNodoRepo) Insertar(_ context.Context, n *model.Nodo) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	for _, otro := range r.nodos {
		if otro.Activo && otro.Codigo == n.Codigo {
			return gorm.ErrDuplicatedKey
		}
	}
	copia := *n
	r.nodos[n.ID] = &copia
	return nil
}

func (r *stubNodoRepo) Actualizar(_ context.Context, n *model.Nodo) error {
	if _, ok := r.nodos[n.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, otro := range r.nodos {
		if otro.ID != n.ID && otro.Activo && n.Activo && otro.Codigo == n.Codigo {
			return gorm.ErrDuplicatedKey
		}
	}
	copia := *n
	r.nodos[n.ID] = &copia
	return nil
}

func (r *stubNodoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	n, ok := r.nodos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	n.Activo = false
	return nil
}

func (r *stubNodoRepo) AjustarStock(_ context.Context, id uuid.UUID, delta decimal.Decimal) error {
	n, ok := r.nodos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	actual := decimal.Zero
	if n.StockActual != nil {
		actual = *n.StockActual
	}
	nuevo := actual.Add(delta)
	n.StockActual = &nuevo
	return nil
}

// semilla inserta un nodo directamente, saltando validaciones.
func (r *stubNodoRepo) semilla(n model.Nodo) uuid.UUID {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	copia := n
	r.nodos[n.ID] = &copia
	return n.ID
}

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
