package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cocinaclinica/internal/dto"
	"cocinaclinica/internal/model"
	"cocinaclinica/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// maxIntentosCodigo acota el reintento de generación de código al duplicar.
const maxIntentosCodigo = 5

// RecetasService extiende el motor con las líneas de ingredientes y la
// duplicación de recetas completas.
type RecetasService interface {
	ArbolService

	// Conectores lista los nodos de nivel 1 (agrupadores de recetas).
	Conectores(ctx context.Context) ([]dto.NodoResponse, error)
	// RecetasEstandar lista las recetas de nivel 2.
	RecetasEstandar(ctx context.Context) ([]dto.NodoResponse, error)
	// RecetasPorPlato lista las recetas vinculadas a un plato.
	RecetasPorPlato(ctx context.Context, platoID uuid.UUID) ([]dto.NodoResponse, error)

	AgregarIngrediente(ctx context.Context, recetaID uuid.UUID, req dto.AgregarIngredienteRequest) (*dto.IngredienteResponse, error)
	ListarIngredientes(ctx context.Context, recetaID uuid.UUID) ([]dto.IngredienteResponse, error)
	ActualizarIngrediente(ctx context.Context, ingredienteID uuid.UUID, req dto.ActualizarIngredienteRequest) (*dto.IngredienteResponse, error)
	EliminarIngrediente(ctx context.Context, ingredienteID uuid.UUID) error

	// DuplicarReceta copia una receta y sus ingredientes bajo un código nuevo.
	// Si el nodo no puede crearse la operación aborta completa; si el nodo se
	// creó pero alguna línea falló, devuelve la respuesta junto con un
	// *DuplicacionParcial — nunca se reporta como éxito completo.
	DuplicarReceta(ctx context.Context, recetaID uuid.UUID, req dto.DuplicarRecetaRequest) (*dto.DuplicarRecetaResponse, error)
}

type recetasService struct {
	ArbolService
	nodos        repository.NodoRepository
	ingredientes repository.IngredienteRepository
	materiasPrim repository.NodoRepository
	log          zerolog.Logger
}

// NewRecetasService: materiasPrimas es el repositorio del árbol de materia
// prima, usado para validar y enriquecer las referencias de ingredientes.
func NewRecetasService(nodos repository.NodoRepository, ingredientes repository.IngredienteRepository, materiasPrimas repository.NodoRepository, log zerolog.Logger) RecetasService {
	return &recetasService{
		ArbolService: NewArbolService(nodos, ConfigRecetas()),
		nodos:        nodos,
		ingredientes: ingredientes,
		materiasPrim: materiasPrimas,
		log:          log.With().Str("component", "recetas_service").Logger(),
	}
}

// ── Atajos anclados a nivel ──────────────────────────────────────────────────

func (s *recetasService) Conectores(ctx context.Context) ([]dto.NodoResponse, error) {
	return s.ObtenerRaices(ctx)
}

func (s *recetasService) RecetasEstandar(ctx context.Context) ([]dto.NodoResponse, error) {
	nivel := 2
	return s.Buscar(ctx, dto.BuscarNodosFilter{Nivel: &nivel})
}

func (s *recetasService) RecetasPorPlato(ctx context.Context, platoID uuid.UUID) ([]dto.NodoResponse, error) {
	return s.Buscar(ctx, dto.BuscarNodosFilter{PlatoID: platoID.String()})
}

// ── Ingredientes ─────────────────────────────────────────────────────────────

func (s *recetasService) AgregarIngrediente(ctx context.Context, recetaID uuid.UUID, req dto.AgregarIngredienteRequest) (*dto.IngredienteResponse, error) {
	receta, err := s.cargarRecetaActiva(ctx, recetaID)
	if err != nil {
		return nil, err
	}

	mpID, err := uuid.Parse(req.MateriaPrimaID)
	if err != nil {
		return nil, &ErrorValidacion{Errores: []string{"materia_prima_id inválido"}}
	}
	mp, err := s.materiasPrim.FindByID(ctx, mpID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ErrorValidacion{Errores: []string{"la materia prima referenciada no existe"}}
		}
		return nil, err
	}
	var errores []string
	if !mp.Activo {
		errores = append(errores, "la materia prima referenciada está inactiva")
	}
	if !mp.ManejaStock {
		errores = append(errores, "el ingrediente debe referenciar un producto que maneja stock")
	}
	if !req.CantidadRequerida.IsPositive() {
		errores = append(errores, "la cantidad requerida debe ser mayor a 0")
	}
	if len(errores) > 0 {
		return nil, &ErrorValidacion{Errores: errores}
	}

	ing := &model.RecetaIngrediente{
		RecetaID:          receta.ID,
		MateriaPrimaID:    mpID,
		CantidadRequerida: req.CantidadRequerida,
		UnidadMedida:      req.UnidadMedida,
		Orden:             req.Orden,
	}
	if err := s.ingredientes.Create(ctx, ing); err != nil {
		// Restricción única (receta, materia prima): línea repetida
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ErrorValidacion{Errores: []string{"la materia prima ya está agregada a la receta"}}
		}
		return nil, err
	}
	resp := mapIngrediente(*ing, mp)
	return &resp, nil
}

func (s *recetasService) ListarIngredientes(ctx context.Context, recetaID uuid.UUID) ([]dto.IngredienteResponse, error) {
	if _, err := s.nodos.FindByID(ctx, recetaID); err != nil {
		return nil, traducirNoEncontrado(err)
	}
	lineas, err := s.ingredientes.ListByReceta(ctx, recetaID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.IngredienteResponse, 0, len(lineas))
	for _, l := range lineas {
		// Enriquecer con la materia prima para render directo; una referencia
		// colgante no tumba el listado
		var mp *model.Nodo
		if n, err := s.materiasPrim.FindByID(ctx, l.MateriaPrimaID); err == nil {
			mp = n
		}
		result = append(result, mapIngrediente(l, mp))
	}
	return result, nil
}

func (s *recetasService) ActualizarIngrediente(ctx context.Context, ingredienteID uuid.UUID, req dto.ActualizarIngredienteRequest) (*dto.IngredienteResponse, error) {
	ing, err := s.ingredientes.FindByID(ctx, ingredienteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNodoNoEncontrado
		}
		return nil, err
	}
	if req.CantidadRequerida != nil {
		if !req.CantidadRequerida.IsPositive() {
			return nil, &ErrorValidacion{Errores: []string{"la cantidad requerida debe ser mayor a 0"}}
		}
		ing.CantidadRequerida = *req.CantidadRequerida
	}
	if req.UnidadMedida != nil {
		ing.UnidadMedida = *req.UnidadMedida
	}
	if req.Orden != nil {
		ing.Orden = *req.Orden
	}
	if err := s.ingredientes.Update(ctx, ing); err != nil {
		return nil, err
	}
	resp := mapIngrediente(*ing, nil)
	return &resp, nil
}

func (s *recetasService) EliminarIngrediente(ctx context.Context, ingredienteID uuid.UUID) error {
	if _, err := s.ingredientes.FindByID(ctx, ingredienteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNodoNoEncontrado
		}
		return err
	}
	return s.ingredientes.Delete(ctx, ingredienteID)
}

// ── Duplicación ──────────────────────────────────────────────────────────────

func (s *recetasService) DuplicarReceta(ctx context.Context, recetaID uuid.UUID, req dto.DuplicarRecetaRequest) (*dto.DuplicarRecetaResponse, error) {
	origen, err := s.cargarRecetaActiva(ctx, recetaID)
	if err != nil {
		return nil, err
	}
	if origen.NivelActual < 2 {
		return nil, &ErrorValidacion{Errores: []string{"solo se duplican recetas, no conectores"}}
	}

	lineas, err := s.ingredientes.ListByReceta(ctx, recetaID)
	if err != nil {
		return nil, err
	}

	// Crear el nodo con código derivado; ante colisión (otra duplicación
	// concurrente de la misma receta) se regenera el sufijo y reintenta.
	var copia *dto.NodoResponse
	for intento := 0; ; intento++ {
		crearReq := solicitudDeCopia(origen, req.NuevoNombre, codigoDeCopia(origen.Codigo, intento))
		copia, err = s.Crear(ctx, crearReq)
		if err == nil {
			break
		}
		var conflicto *ConflictoCodigo
		if errors.As(err, &conflicto) && intento < maxIntentosCodigo-1 {
			continue
		}
		// El nodo no se creó: la duplicación aborta sin efectos
		return nil, err
	}

	copiaID, _ := uuid.Parse(copia.ID)
	copiadas := 0
	var ultimoErr error
	for _, l := range lineas {
		nueva := model.RecetaIngrediente{
			RecetaID:          copiaID,
			MateriaPrimaID:    l.MateriaPrimaID,
			CantidadRequerida: l.CantidadRequerida,
			UnidadMedida:      l.UnidadMedida,
			Orden:             l.Orden,
		}
		if err := s.ingredientes.Create(ctx, &nueva); err != nil {
			ultimoErr = err
			s.log.Error().Err(err).
				Str("receta_origen", recetaID.String()).
				Str("receta_copia", copia.ID).
				Int("orden", l.Orden).
				Msg("fallo copiando línea de ingrediente")
			break
		}
		copiadas++
	}

	resp := &dto.DuplicarRecetaResponse{
		Receta:          *copia,
		LineasCopiadas:  copiadas,
		LineasEsperadas: len(lineas),
		Parcial:         copiadas < len(lineas),
	}
	if resp.Parcial {
		parcial := &DuplicacionParcial{
			RecetaID:        copiaID,
			LineasCopiadas:  copiadas,
			LineasEsperadas: len(lineas),
			UltimoError:     ultimoErr,
		}
		advertencia := parcial.Error()
		resp.AdvertenciaError = &advertencia
		return resp, parcial
	}
	return resp, nil
}

func (s *recetasService) cargarRecetaActiva(ctx context.Context, recetaID uuid.UUID) (*model.Nodo, error) {
	receta, err := s.nodos.FindByID(ctx, recetaID)
	if err != nil {
		return nil, traducirNoEncontrado(err)
	}
	if !receta.Activo {
		return nil, ErrNodoNoEncontrado
	}
	return receta, nil
}

// codigoDeCopia deriva el código de la copia: sufijo .V + 4 dígitos del reloj,
// desplazado por el número de intento para escapar de colisiones.
func codigoDeCopia(base string, intento int) string {
	sufijo := (time.Now().UnixMilli() + int64(intento)) % 10000
	return fmt.Sprintf("%s.V%04d", base, sufijo)
}

func solicitudDeCopia(origen *model.Nodo, nuevoNombre, codigo string) dto.CrearNodoRequest {
	req := dto.CrearNodoRequest{
		Codigo:      codigo,
		Nombre:      strings.TrimSpace(nuevoNombre),
		Descripcion: origen.Descripcion,
		NivelActual: origen.NivelActual,
		EsHoja:      origen.EsHoja,
		Rendimiento: origen.Rendimiento,
	}
	if origen.ParentID != nil {
		pid := origen.ParentID.String()
		req.ParentID = &pid
	}
	if origen.PlatoID != nil {
		pid := origen.PlatoID.String()
		req.PlatoID = &pid
	}
	return req
}

func mapIngrediente(l model.RecetaIngrediente, mp *model.Nodo) dto.IngredienteResponse {
	resp := dto.IngredienteResponse{
		ID:                l.ID.String(),
		RecetaID:          l.RecetaID.String(),
		MateriaPrimaID:    l.MateriaPrimaID.String(),
		CantidadRequerida: l.CantidadRequerida,
		UnidadMedida:      l.UnidadMedida,
		Orden:             l.Orden,
	}
	if mp != nil {
		n := MapNodo(*mp)
		resp.MateriaPrima = &n
	}
	return resp
}
