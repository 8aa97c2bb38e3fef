package service

import (
	"context"
	"errors"

	"cocinaclinica/internal/dto"
	"cocinaclinica/internal/model"
	"cocinaclinica/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// nivelCategorias es el nivel de agrupación intermedio del árbol de insumos.
const nivelCategorias = 3

// MateriaPrimaService extiende el motor de árbol con las operaciones de
// inventario de insumos: ajustes de stock con kardex, estados derivados y
// valoración.
type MateriaPrimaService interface {
	ArbolService

	// AjustarStock aplica un delta al producto (nivel 5), registra el
	// movimiento y devuelve el estado resultante.
	AjustarStock(ctx context.Context, productoID uuid.UUID, req dto.AjustarStockRequest) (*dto.StockResponse, error)
	// ObtenerStockBajo lista productos con stock por debajo del mínimo,
	// opcionalmente filtrados por rama.
	ObtenerStockBajo(ctx context.Context, tipoRama *string) ([]dto.StockResponse, error)
	// ObtenerRollup suma stock×contenido de las presentaciones de un producto.
	ObtenerRollup(ctx context.Context, productoID uuid.UUID) (*dto.RollupResponse, error)
	// ResumenStock clasifica todos los productos de una rama.
	ResumenStock(ctx context.Context, tipoRama string) (*dto.ResumenStockResponse, error)
	// ValorInventarioTotal suma stock×costo de todos los productos, opcional
	// por rama.
	ValorInventarioTotal(ctx context.Context, tipoRama *string) (*dto.ValorInventarioResponse, error)
	ListarMovimientos(ctx context.Context, productoID uuid.UUID, limite int) ([]dto.MovimientoResponse, error)

	// Atajos anclados a nivel: búsquedas pre-filtradas que mantienen los
	// números de nivel fuera de los llamadores.
	CategoriasPorRama(ctx context.Context, tipoRama string) ([]dto.NodoResponse, error)
	BuscarPresentaciones(ctx context.Context, termino string) ([]dto.NodoResponse, error)
	ContarProductos(ctx context.Context) (int64, error)
}

type materiaPrimaService struct {
	ArbolService
	nodos       repository.NodoRepository
	movimientos repository.MovimientoRepository
	log         zerolog.Logger
}

func NewMateriaPrimaService(nodos repository.NodoRepository, movimientos repository.MovimientoRepository, log zerolog.Logger) MateriaPrimaService {
	return &materiaPrimaService{
		ArbolService: NewArbolService(nodos, ConfigMateriaPrima()),
		nodos:        nodos,
		movimientos:  movimientos,
		log:          log.With().Str("component", "materia_prima_service").Logger(),
	}
}

func (s *materiaPrimaService) AjustarStock(ctx context.Context, productoID uuid.UUID, req dto.AjustarStockRequest) (*dto.StockResponse, error) {
	producto, err := s.nodos.FindByID(ctx, productoID)
	if err != nil {
		return nil, traducirNoEncontrado(err)
	}
	if !producto.Activo {
		return nil, ErrNodoNoEncontrado
	}
	if !producto.ManejaStock {
		return nil, &ErrorValidacion{Errores: []string{"el nodo no maneja stock"}}
	}

	anterior := decimal.Zero
	if producto.StockActual != nil {
		anterior = *producto.StockActual
	}
	nuevo := anterior.Add(req.Delta)
	if nuevo.IsNegative() {
		return nil, &ErrorValidacion{Errores: []string{"el ajuste dejaría el stock en negativo"}}
	}

	if err := s.nodos.AjustarStock(ctx, productoID, req.Delta); err != nil {
		return nil, err
	}

	tipo := model.MovimientoEntrada
	if req.Delta.IsNegative() {
		tipo = model.MovimientoSalida
	}
	mov := &model.MovimientoInventario{
		ProductoID:    productoID,
		Tipo:          tipo,
		Cantidad:      req.Delta.Abs(),
		StockAnterior: anterior,
		StockNuevo:    nuevo,
		Motivo:        req.Motivo,
	}
	if err := s.movimientos.Create(ctx, mov); err != nil {
		// El stock ya se ajustó; un kardex incompleto se reporta, no revierte
		s.log.Error().Err(err).
			Str("producto_id", productoID.String()).
			Msg("no se pudo registrar el movimiento de inventario")
	}

	producto.StockActual = &nuevo
	resp := mapStock(*producto)
	return &resp, nil
}

func (s *materiaPrimaService) ObtenerStockBajo(ctx context.Context, tipoRama *string) ([]dto.StockResponse, error) {
	productos, err := s.nodos.FindStockBajo(ctx, s.Config().NivelStock, tipoRama)
	if err != nil {
		return nil, err
	}
	result := make([]dto.StockResponse, 0, len(productos))
	for _, p := range productos {
		result = append(result, mapStock(p))
	}
	return result, nil
}

func (s *materiaPrimaService) ObtenerRollup(ctx context.Context, productoID uuid.UUID) (*dto.RollupResponse, error) {
	producto, err := s.nodos.FindByID(ctx, productoID)
	if err != nil {
		return nil, traducirNoEncontrado(err)
	}
	if !producto.ManejaStock {
		return nil, &ErrorValidacion{Errores: []string{"el nodo no maneja stock"}}
	}
	presentaciones, err := s.nodos.FindHijos(ctx, productoID)
	if err != nil {
		return nil, err
	}
	return &dto.RollupResponse{
		ProductoID:      producto.ID.String(),
		StockAlmacenado: producto.StockActual,
		TotalDerivado:   TotalDesdePresentaciones(presentaciones),
		UnidadStock:     producto.UnidadStock,
		Presentaciones:  len(presentaciones),
	}, nil
}

func (s *materiaPrimaService) ResumenStock(ctx context.Context, tipoRama string) (*dto.ResumenStockResponse, error) {
	nivel := s.Config().NivelStock
	productos, err := s.nodos.Buscar(ctx, "", map[string]interface{}{
		"nivel_actual": nivel,
		"tipo_rama":    tipoRama,
		"maneja_stock": true,
	}, repository.LimiteBusqueda)
	if err != nil {
		return nil, err
	}

	resumen := &dto.ResumenStockResponse{TipoRama: tipoRama, Productos: make([]dto.StockResponse, 0, len(productos))}
	for _, p := range productos {
		st := mapStock(p)
		resumen.Productos = append(resumen.Productos, st)
		switch st.EstadoStock {
		case EstadoStockCritico:
			resumen.Criticos++
		case EstadoStockBajo:
			resumen.Bajos++
		case EstadoStockExceso:
			resumen.Exceso++
		default:
			resumen.Normales++
		}
	}
	return resumen, nil
}

func (s *materiaPrimaService) ValorInventarioTotal(ctx context.Context, tipoRama *string) (*dto.ValorInventarioResponse, error) {
	filtros := map[string]interface{}{
		"nivel_actual": s.Config().NivelStock,
		"maneja_stock": true,
	}
	if tipoRama != nil {
		filtros["tipo_rama"] = *tipoRama
	}
	productos, err := s.nodos.Buscar(ctx, "", filtros, repository.LimiteBusqueda)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, p := range productos {
		total = total.Add(ValorInventario(p))
	}
	return &dto.ValorInventarioResponse{
		TipoRama:   tipoRama,
		ValorTotal: total,
		Productos:  len(productos),
	}, nil
}

func (s *materiaPrimaService) ListarMovimientos(ctx context.Context, productoID uuid.UUID, limite int) ([]dto.MovimientoResponse, error) {
	if _, err := s.nodos.FindByID(ctx, productoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNodoNoEncontrado
		}
		return nil, err
	}
	movs, err := s.movimientos.ListByProducto(ctx, productoID, limite)
	if err != nil {
		return nil, err
	}
	result := make([]dto.MovimientoResponse, 0, len(movs))
	for _, m := range movs {
		result = append(result, dto.MovimientoResponse{
			ID:            m.ID.String(),
			ProductoID:    m.ProductoID.String(),
			Tipo:          m.Tipo,
			Cantidad:      m.Cantidad,
			StockAnterior: m.StockAnterior,
			StockNuevo:    m.StockNuevo,
			Motivo:        m.Motivo,
			CreatedAt:     m.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return result, nil
}

// ── Atajos anclados a nivel ──────────────────────────────────────────────────

// CategoriasPorRama lista las categorías (nivel 3) de una rama.
func (s *materiaPrimaService) CategoriasPorRama(ctx context.Context, tipoRama string) ([]dto.NodoResponse, error) {
	nivel := nivelCategorias
	return s.Buscar(ctx, dto.BuscarNodosFilter{Nivel: &nivel, TipoRama: tipoRama})
}

// BuscarPresentaciones busca presentaciones (nivel 6) por nombre o código,
// la consulta de la pantalla de vinculación con proveedores.
func (s *materiaPrimaService) BuscarPresentaciones(ctx context.Context, termino string) ([]dto.NodoResponse, error) {
	nivel := s.Config().NivelPresentacion
	return s.Buscar(ctx, dto.BuscarNodosFilter{Termino: termino, Nivel: &nivel})
}

// ContarProductos cuenta los productos activos (nivel de stock).
func (s *materiaPrimaService) ContarProductos(ctx context.Context) (int64, error) {
	return s.ContarPorNivel(ctx, s.Config().NivelStock)
}

func mapStock(n model.Nodo) dto.StockResponse {
	return dto.StockResponse{
		ProductoID:  n.ID.String(),
		Codigo:      n.Codigo,
		Nombre:      n.Nombre,
		StockActual: n.StockActual,
		StockMinimo: n.StockMinimo,
		StockMaximo: n.StockMaximo,
		UnidadStock: n.UnidadStock,
		EstadoStock: ClasificarStock(n.StockActual, n.StockMinimo, n.StockMaximo),
	}
}
