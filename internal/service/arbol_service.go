package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cocinaclinica/internal/dto"
	"cocinaclinica/internal/model"
	"cocinaclinica/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// arbol_service.go
// Motor genérico de árboles jerárquicos. Una instancia por tabla (materia
// prima, platos, recetas), parametrizada por ArbolConfig. Los servicios de
// dominio componen este motor — lo referencian, no lo heredan.

// UnidadesStockValidas is the fixed stock-unit vocabulary.
var UnidadesStockValidas = []string{"g", "ml", "und", "kg", "L"}

// ProfundidadMaxRuta bounds the ancestor walk so a corrupted parent_id chain
// (accidental cycle) cannot loop forever.
const ProfundidadMaxRuta = 10

// ArbolConfig describes the level discipline of one tree kind.
type ArbolConfig struct {
	Tabla      string
	MaxNiveles int
	// NivelStock es el nivel que maneja stock (0 = ninguno).
	NivelStock int
	// NivelPresentacion es el nivel de presentaciones con contenido (0 = ninguno).
	NivelPresentacion int
	// TiposRama es el vocabulario de subárboles paralelos (vacío = sin ramas).
	TiposRama []string
	// UnidadesStock vocabulario de unidades; vacío usa UnidadesStockValidas.
	UnidadesStock []string
}

func (c ArbolConfig) unidades() []string {
	if len(c.UnidadesStock) > 0 {
		return c.UnidadesStock
	}
	return UnidadesStockValidas
}

// ConfigMateriaPrima: 6 niveles, productos con stock en el 5, presentaciones
// en el 6, tres ramas paralelas bajo la raíz.
func ConfigMateriaPrima() ArbolConfig {
	return ArbolConfig{
		Tabla:             model.TablaMateriaPrima,
		MaxNiveles:        6,
		NivelStock:        5,
		NivelPresentacion: 6,
		TiposRama:         []string{model.RamaProduccion, model.RamaEntregable, model.RamaDesechable},
	}
}

// ConfigPlatos: 5 niveles, sin stock ni presentaciones.
func ConfigPlatos() ArbolConfig {
	return ArbolConfig{Tabla: model.TablaPlatos, MaxNiveles: 5}
}

// ConfigRecetas: conector (1), receta estándar (2), receta local (3).
func ConfigRecetas() ArbolConfig {
	return ArbolConfig{Tabla: model.TablaRecetas, MaxNiveles: 3}
}

// ArbolService is the generic engine contract shared by every tree kind.
type ArbolService interface {
	Config() ArbolConfig
	ObtenerNodo(ctx context.Context, id uuid.UUID) (*dto.NodoResponse, error)
	ObtenerPorCodigo(ctx context.Context, codigo string) (*dto.NodoResponse, error)
	// ObtenerRaices lista los nodos de nivel 1 del árbol.
	ObtenerRaices(ctx context.Context) ([]dto.NodoResponse, error)
	ObtenerHijos(ctx context.Context, parentID uuid.UUID) ([]dto.NodoResponse, error)
	Buscar(ctx context.Context, filtro dto.BuscarNodosFilter) ([]dto.NodoResponse, error)
	ContarPorNivel(ctx context.Context, nivel int) (int64, error)
	Crear(ctx context.Context, req dto.CrearNodoRequest) (*dto.NodoResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarNodoRequest) (*dto.NodoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) (*dto.NodoResponse, error)
	ValidarCodigoUnico(ctx context.Context, codigo string, excludeID *uuid.UUID) (*dto.ValidarCodigoResponse, error)
	ObtenerRutaCompleta(ctx context.Context, id uuid.UUID) (*dto.RutaResponse, error)
}

type arbolService struct {
	repo repository.NodoRepository
	cfg  ArbolConfig
}

func NewArbolService(repo repository.NodoRepository, cfg ArbolConfig) ArbolService {
	return &arbolService{repo: repo, cfg: cfg}
}

func (s *arbolService) Config() ArbolConfig { return s.cfg }

// traducirNoEncontrado maps the repository's not-found into the taxonomy.
func traducirNoEncontrado(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNodoNoEncontrado
	}
	return err
}

// ── Lecturas ─────────────────────────────────────────────────────────────────

func (s *arbolService) ObtenerNodo(ctx context.Context, id uuid.UUID) (*dto.NodoResponse, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducirNoEncontrado(err)
	}
	resp := MapNodo(*n)
	return &resp, nil
}

func (s *arbolService) ObtenerPorCodigo(ctx context.Context, codigo string) (*dto.NodoResponse, error) {
	n, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		return nil, traducirNoEncontrado(err)
	}
	resp := MapNodo(*n)
	return &resp, nil
}

func (s *arbolService) ObtenerRaices(ctx context.Context) ([]dto.NodoResponse, error) {
	nivel := 1
	return s.Buscar(ctx, dto.BuscarNodosFilter{Nivel: &nivel})
}

// ObtenerHijos devuelve secuencia vacía (no error) para nodos hoja.
func (s *arbolService) ObtenerHijos(ctx context.Context, parentID uuid.UUID) ([]dto.NodoResponse, error) {
	hijos, err := s.repo.FindHijos(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return mapNodos(hijos), nil
}

func (s *arbolService) Buscar(ctx context.Context, filtro dto.BuscarNodosFilter) ([]dto.NodoResponse, error) {
	filtros := map[string]interface{}{}
	if filtro.Nivel != nil {
		filtros["nivel_actual"] = *filtro.Nivel
	}
	if filtro.TipoRama != "" {
		filtros["tipo_rama"] = filtro.TipoRama
	}
	if filtro.PlatoID != "" {
		filtros["plato_id"] = filtro.PlatoID
	}
	nodos, err := s.repo.Buscar(ctx, strings.TrimSpace(filtro.Termino), filtros, filtro.Limite)
	if err != nil {
		return nil, err
	}
	return mapNodos(nodos), nil
}

func (s *arbolService) ContarPorNivel(ctx context.Context, nivel int) (int64, error) {
	return s.repo.ContarPorNivel(ctx, nivel)
}

// ── Escrituras ───────────────────────────────────────────────────────────────

func (s *arbolService) Crear(ctx context.Context, req dto.CrearNodoRequest) (*dto.NodoResponse, error) {
	n := nodoDesdeRequest(req)

	padre, err := s.cargarPadre(ctx, n.ParentID)
	if err != nil {
		return nil, err
	}

	// Herencia de rama: los descendientes viven en la rama del padre
	if n.TipoRama == nil && padre != nil && padre.TipoRama != nil {
		rama := *padre.TipoRama
		n.TipoRama = &rama
	}

	if errores := validarContrato(s.cfg, n, padre); len(errores) > 0 {
		return nil, &ErrorValidacion{Errores: errores}
	}

	// Pre-chequeo optimista de unicidad: feedback rápido al usuario. La
	// restricción parcial del almacén sigue siendo la autoridad final.
	if conflicto, err := s.buscarConflicto(ctx, n.Codigo, nil); err != nil {
		return nil, err
	} else if conflicto != nil {
		return nil, conflicto
	}

	n.Activo = true
	if err := s.repo.Insertar(ctx, n); err != nil {
		return nil, s.traducirConflicto(ctx, err, n.Codigo, nil)
	}

	resp := MapNodo(*n)
	return &resp, nil
}

// Actualizar re-valida el contrato de nivel contra el estado FUSIONADO
// (existente + entrante): un nodo nivel 5 que enciende maneja_stock cambia
// qué campos pasan a ser obligatorios.
func (s *arbolService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarNodoRequest) (*dto.NodoResponse, error) {
	existente, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducirNoEncontrado(err)
	}
	if !existente.Activo {
		return nil, ErrNodoNoEncontrado
	}

	fusion := *existente
	aplicarActualizacion(&fusion, req)

	padre, err := s.cargarPadre(ctx, fusion.ParentID)
	if err != nil {
		return nil, err
	}

	if errores := validarContrato(s.cfg, &fusion, padre); len(errores) > 0 {
		return nil, &ErrorValidacion{Errores: errores}
	}

	if fusion.Codigo != existente.Codigo {
		if conflicto, err := s.buscarConflicto(ctx, fusion.Codigo, &id); err != nil {
			return nil, err
		} else if conflicto != nil {
			return nil, conflicto
		}
	}

	if err := s.repo.Actualizar(ctx, &fusion); err != nil {
		return nil, s.traducirConflicto(ctx, err, fusion.Codigo, &id)
	}

	resp := MapNodo(fusion)
	return &resp, nil
}

// Eliminar es idempotente: borrar un nodo ya inactivo responde "ya eliminado"
// sin error — el llamador principal es un botón de borrado en pantalla.
func (s *arbolService) Eliminar(ctx context.Context, id uuid.UUID) (*dto.NodoResponse, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducirNoEncontrado(err)
	}
	if !n.Activo {
		resp := MapNodo(*n)
		return &resp, nil
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return nil, err
	}
	n.Activo = false
	resp := MapNodo(*n)
	return &resp, nil
}

func (s *arbolService) ValidarCodigoUnico(ctx context.Context, codigo string, excludeID *uuid.UUID) (*dto.ValidarCodigoResponse, error) {
	conflicto, err := s.buscarConflicto(ctx, codigo, excludeID)
	if err != nil {
		return nil, err
	}
	resp := &dto.ValidarCodigoResponse{Codigo: codigo, EsUnico: conflicto == nil}
	if conflicto != nil && conflicto.NodoEnConflicto != nil {
		idStr := conflicto.NodoEnConflicto.String()
		resp.NodoEnConflicto = &idStr
	}
	return resp, nil
}

// ObtenerRutaCompleta camina parent_id hacia la raíz, anteponiendo cada nodo.
// Si toca ProfundidadMaxRuta devuelve la ruta parcial acumulada junto con
// *RutaTruncada — el llamador decide entre fallar o degradar el breadcrumb.
func (s *arbolService) ObtenerRutaCompleta(ctx context.Context, id uuid.UUID) (*dto.RutaResponse, error) {
	ruta := make([]model.Nodo, 0, s.cfg.MaxNiveles)
	actual := &id

	for paso := 0; actual != nil; paso++ {
		if paso >= ProfundidadMaxRuta {
			return &dto.RutaResponse{Ruta: mapNodos(ruta), Truncada: true},
				&RutaTruncada{NodoID: id, Profundidad: ProfundidadMaxRuta}
		}
		n, err := s.repo.FindByID(ctx, *actual)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) && paso > 0 {
				// Padre colgante: devolver lo acumulado
				break
			}
			return nil, traducirNoEncontrado(err)
		}
		ruta = append([]model.Nodo{*n}, ruta...)
		actual = n.ParentID
	}

	return &dto.RutaResponse{Ruta: mapNodos(ruta)}, nil
}

// ── Internos ─────────────────────────────────────────────────────────────────

func (s *arbolService) cargarPadre(ctx context.Context, parentID *uuid.UUID) (*model.Nodo, error) {
	if parentID == nil {
		return nil, nil
	}
	padre, err := s.repo.FindByID(ctx, *parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// El contrato de niveles reporta el padre faltante junto al resto
			return nil, nil
		}
		return nil, err
	}
	return padre, nil
}

// buscarConflicto devuelve *ConflictoCodigo si otro nodo activo ya usa codigo.
func (s *arbolService) buscarConflicto(ctx context.Context, codigo string, excludeID *uuid.UUID) (*ConflictoCodigo, error) {
	existentes, err := s.repo.FindActivosPorCodigo(ctx, codigo, excludeID)
	if err != nil {
		return nil, err
	}
	if len(existentes) == 0 {
		return nil, nil
	}
	enConflicto := existentes[0].ID
	return &ConflictoCodigo{Codigo: codigo, NodoEnConflicto: &enConflicto}, nil
}

// traducirConflicto convierte la violación de la restricción única del almacén
// (carrera que escapó al pre-chequeo) en el mismo ConflictoCodigo.
func (s *arbolService) traducirConflicto(ctx context.Context, err error, codigo string, excludeID *uuid.UUID) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	if conflicto, qErr := s.buscarConflicto(ctx, codigo, excludeID); qErr == nil && conflicto != nil {
		return conflicto
	}
	return &ConflictoCodigo{Codigo: codigo}
}

// validarContrato reúne TODAS las reglas violadas del contrato de nivel, no
// solo la primera, para que el formulario marque todos los problemas en un
// solo viaje.
func validarContrato(cfg ArbolConfig, n *model.Nodo, padre *model.Nodo) []string {
	var errores []string

	if strings.TrimSpace(n.Codigo) == "" {
		errores = append(errores, "el código es requerido")
	}
	if strings.TrimSpace(n.Nombre) == "" {
		errores = append(errores, "el nombre es requerido")
	}
	if n.NivelActual < 1 || n.NivelActual > cfg.MaxNiveles {
		errores = append(errores, fmt.Sprintf("el nivel debe estar entre 1 y %d", cfg.MaxNiveles))
	}

	// Contrato padre/hijo: nivel == padre.nivel + 1, raíces en nivel 1
	switch {
	case n.NivelActual == 1:
		if n.ParentID != nil {
			errores = append(errores, "un nodo raíz (nivel 1) no puede tener padre")
		}
	case n.ParentID == nil:
		errores = append(errores, "todo nodo de nivel mayor a 1 requiere un padre")
	case padre == nil:
		errores = append(errores, "el nodo padre no existe")
	default:
		if !padre.Activo {
			errores = append(errores, "el nodo padre está inactivo")
		}
		if padre.NivelActual != n.NivelActual-1 {
			errores = append(errores, fmt.Sprintf(
				"el nivel del nodo (%d) debe ser el nivel del padre (%d) más uno",
				n.NivelActual, padre.NivelActual))
		}
	}

	if n.TipoRama != nil && len(cfg.TiposRama) > 0 && !contiene(cfg.TiposRama, *n.TipoRama) {
		errores = append(errores, fmt.Sprintf("tipo de rama %q no reconocido", *n.TipoRama))
	}

	errores = append(errores, validarStock(cfg, n)...)
	errores = append(errores, validarPresentacion(cfg, n, padre)...)

	return errores
}

func validarStock(cfg ArbolConfig, n *model.Nodo) []string {
	var errores []string

	if n.ManejaStock && cfg.NivelStock > 0 && n.NivelActual != cfg.NivelStock {
		errores = append(errores, fmt.Sprintf("solo los productos (nivel %d) manejan stock", cfg.NivelStock))
	}
	if !n.ManejaStock {
		// Las presentaciones llevan su conteo de empaques en stock_actual; es lo
		// que multiplica el rollup (empaques × contenido_unidad). Los umbrales y
		// la unidad siguen siendo exclusivos del nivel producto.
		esPresentacion := cfg.NivelPresentacion > 0 && n.NivelActual == cfg.NivelPresentacion
		if esPresentacion {
			if n.StockActual != nil && n.StockActual.IsNegative() {
				errores = append(errores, "el stock actual no puede ser negativo")
			}
			if n.StockMinimo != nil || n.StockMaximo != nil || n.UnidadStock != nil {
				errores = append(errores, "las presentaciones solo registran stock_actual (conteo de empaques)")
			}
			return errores
		}
		if n.StockActual != nil || n.StockMinimo != nil || n.StockMaximo != nil || n.UnidadStock != nil {
			errores = append(errores, "los campos de stock solo aplican cuando maneja_stock está activo")
		}
		return errores
	}

	if n.UnidadStock == nil || *n.UnidadStock == "" {
		errores = append(errores, "la unidad de stock es requerida para productos")
	} else if !contiene(cfg.unidades(), *n.UnidadStock) {
		errores = append(errores, fmt.Sprintf("unidad de stock %q inválida (válidas: %s)",
			*n.UnidadStock, strings.Join(cfg.unidades(), ", ")))
	}
	if n.StockActual != nil && n.StockActual.IsNegative() {
		errores = append(errores, "el stock actual no puede ser negativo")
	}
	if n.StockMinimo != nil && n.StockMinimo.IsNegative() {
		errores = append(errores, "el stock mínimo no puede ser negativo")
	}
	if n.StockMinimo != nil && n.StockMaximo != nil && n.StockMaximo.LessThan(*n.StockMinimo) {
		errores = append(errores, "el stock máximo no puede ser menor que el stock mínimo")
	}
	return errores
}

func validarPresentacion(cfg ArbolConfig, n *model.Nodo, padre *model.Nodo) []string {
	var errores []string

	if cfg.NivelPresentacion == 0 || n.NivelActual != cfg.NivelPresentacion {
		if n.ContenidoUnidad != nil || n.UnidadContenido != nil {
			errores = append(errores, "el contenido por unidad solo aplica a presentaciones")
		}
		return errores
	}

	if n.ContenidoUnidad == nil || !n.ContenidoUnidad.GreaterThan(decimal.Zero) {
		errores = append(errores, "el contenido de la unidad debe ser mayor a 0")
	}
	if n.UnidadContenido == nil || *n.UnidadContenido == "" {
		errores = append(errores, "la unidad de contenido es requerida")
	}
	if padre != nil {
		if !padre.ManejaStock {
			errores = append(errores, "el producto padre no maneja stock")
		} else if padre.UnidadStock != nil && n.UnidadContenido != nil && *n.UnidadContenido != *padre.UnidadStock {
			errores = append(errores, fmt.Sprintf(
				"la unidad de contenido (%s) debe coincidir con la unidad de stock del padre (%s)",
				*n.UnidadContenido, *padre.UnidadStock))
		}
	}
	return errores
}

func contiene(valores []string, v string) bool {
	for _, x := range valores {
		if x == v {
			return true
		}
	}
	return false
}

// ── Mapeo modelo → DTO ──────────────────────────────────────────────────────

func nodoDesdeRequest(req dto.CrearNodoRequest) *model.Nodo {
	n := &model.Nodo{
		Codigo:          strings.TrimSpace(req.Codigo),
		Nombre:          strings.TrimSpace(req.Nombre),
		Descripcion:     req.Descripcion,
		NivelActual:     req.NivelActual,
		TipoRama:        req.TipoRama,
		EsHoja:          req.EsHoja,
		ManejaStock:     req.ManejaStock,
		StockActual:     req.StockActual,
		StockMinimo:     req.StockMinimo,
		StockMaximo:     req.StockMaximo,
		UnidadStock:     req.UnidadStock,
		CostoPromedio:   req.CostoPromedio,
		ContenidoUnidad: req.ContenidoUnidad,
		UnidadContenido: req.UnidadContenido,
		Rendimiento:     req.Rendimiento,
		Version:         1,
	}
	if req.ParentID != nil {
		if pid, err := uuid.Parse(*req.ParentID); err == nil {
			n.ParentID = &pid
		}
	}
	if req.PlatoID != nil {
		if pid, err := uuid.Parse(*req.PlatoID); err == nil {
			n.PlatoID = &pid
		}
	}
	return n
}

func aplicarActualizacion(n *model.Nodo, req dto.ActualizarNodoRequest) {
	if req.Codigo != nil {
		n.Codigo = strings.TrimSpace(*req.Codigo)
	}
	if req.Nombre != nil {
		n.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Descripcion != nil {
		n.Descripcion = req.Descripcion
	}
	if req.TipoRama != nil {
		n.TipoRama = req.TipoRama
	}
	if req.EsHoja != nil {
		n.EsHoja = *req.EsHoja
	}
	if req.ManejaStock != nil {
		n.ManejaStock = *req.ManejaStock
		if !*req.ManejaStock {
			n.StockActual, n.StockMinimo, n.StockMaximo, n.UnidadStock = nil, nil, nil, nil
		}
	}
	if req.StockActual != nil {
		n.StockActual = req.StockActual
	}
	if req.StockMinimo != nil {
		n.StockMinimo = req.StockMinimo
	}
	if req.StockMaximo != nil {
		n.StockMaximo = req.StockMaximo
	}
	if req.UnidadStock != nil {
		n.UnidadStock = req.UnidadStock
	}
	if req.CostoPromedio != nil {
		n.CostoPromedio = req.CostoPromedio
	}
	if req.ContenidoUnidad != nil {
		n.ContenidoUnidad = req.ContenidoUnidad
	}
	if req.UnidadContenido != nil {
		n.UnidadContenido = req.UnidadContenido
	}
	if req.Rendimiento != nil {
		n.Rendimiento = req.Rendimiento
	}
}

// MapNodo converts a model row to its response shape, deriving estado_stock
// for stock-managed nodes.
func MapNodo(n model.Nodo) dto.NodoResponse {
	resp := dto.NodoResponse{
		ID:              n.ID.String(),
		Codigo:          n.Codigo,
		Nombre:          n.Nombre,
		Descripcion:     n.Descripcion,
		NivelActual:     n.NivelActual,
		TipoRama:        n.TipoRama,
		EsHoja:          n.EsHoja,
		ManejaStock:     n.ManejaStock,
		StockActual:     n.StockActual,
		StockMinimo:     n.StockMinimo,
		StockMaximo:     n.StockMaximo,
		UnidadStock:     n.UnidadStock,
		CostoPromedio:   n.CostoPromedio,
		ContenidoUnidad: n.ContenidoUnidad,
		UnidadContenido: n.UnidadContenido,
		Rendimiento:     n.Rendimiento,
		Version:         n.Version,
		Activo:          n.Activo,
	}
	if n.ParentID != nil {
		pid := n.ParentID.String()
		resp.ParentID = &pid
	}
	if n.PlatoID != nil {
		pid := n.PlatoID.String()
		resp.PlatoID = &pid
	}
	if n.ManejaStock {
		estado := ClasificarStock(n.StockActual, n.StockMinimo, n.StockMaximo)
		resp.EstadoStock = &estado
	}
	if !n.CreatedAt.IsZero() {
		resp.CreatedAt = n.CreatedAt.Format("2006-01-02T15:04:05Z")
	}
	if !n.UpdatedAt.IsZero() {
		resp.UpdatedAt = n.UpdatedAt.Format("2006-01-02T15:04:05Z")
	}
	return resp
}

func mapNodos(nodos []model.Nodo) []dto.NodoResponse {
	result := make([]dto.NodoResponse, 0, len(nodos))
	for _, n := range nodos {
		result = append(result, MapNodo(n))
	}
	return result
}
