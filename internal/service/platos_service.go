package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cocinaclinica/internal/dto"
	"cocinaclinica/internal/model"
	"cocinaclinica/internal/repository"

	"github.com/google/uuid"
)

// PlatosService extiende el motor con la generación de códigos jerárquicos:
// cada hijo toma el código del padre más un sufijo numérico incremental.
type PlatosService interface {
	ArbolService

	// GenerarSiguienteCodigo propone el próximo código libre bajo un padre
	// (o en la raíz cuando parentID es nil). Es una sugerencia: la unicidad
	// se valida de nuevo al crear.
	GenerarSiguienteCodigo(ctx context.Context, parentID *uuid.UUID) (string, error)
	// CrearConCodigoAutomatico crea un nodo generando su código cuando viene
	// vacío en la petición.
	CrearConCodigoAutomatico(ctx context.Context, req dto.CrearNodoRequest) (*dto.NodoResponse, error)
	// Categorias lista las categorías de platos (nivel 2).
	Categorias(ctx context.Context) ([]dto.NodoResponse, error)
}

type platosService struct {
	ArbolService
	nodos repository.NodoRepository
}

func NewPlatosService(nodos repository.NodoRepository) PlatosService {
	return &platosService{
		ArbolService: NewArbolService(nodos, ConfigPlatos()),
		nodos:        nodos,
	}
}

func (s *platosService) Categorias(ctx context.Context) ([]dto.NodoResponse, error) {
	nivel := 2
	return s.Buscar(ctx, dto.BuscarNodosFilter{Nivel: &nivel})
}

func (s *platosService) GenerarSiguienteCodigo(ctx context.Context, parentID *uuid.UUID) (string, error) {
	prefijo := ""
	var hermanos []model.Nodo
	var err error

	if parentID == nil {
		nivel := 1
		hermanos, err = s.nodos.Buscar(ctx, "", map[string]interface{}{"nivel_actual": nivel}, repository.LimiteBusqueda)
	} else {
		padre, ferr := s.nodos.FindByID(ctx, *parentID)
		if ferr != nil {
			return "", traducirNoEncontrado(ferr)
		}
		prefijo = padre.Codigo + "."
		hermanos, err = s.nodos.FindHijos(ctx, *parentID)
	}
	if err != nil {
		return "", err
	}

	return prefijo + strconv.Itoa(siguienteSufijo(hermanos, prefijo)), nil
}

// siguienteSufijo busca el mayor sufijo numérico entre los hermanos y devuelve
// el siguiente. Códigos fuera del esquema (sin sufijo numérico) se ignoran.
func siguienteSufijo(hermanos []model.Nodo, prefijo string) int {
	max := 0
	for _, h := range hermanos {
		resto := strings.TrimPrefix(h.Codigo, prefijo)
		if resto == h.Codigo && prefijo != "" {
			continue
		}
		n, err := strconv.Atoi(resto)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1
}

// CrearConCodigoAutomatico crea un nodo generando su código cuando viene vacío.
func (s *platosService) CrearConCodigoAutomatico(ctx context.Context, req dto.CrearNodoRequest) (*dto.NodoResponse, error) {
	if strings.TrimSpace(req.Codigo) == "" {
		var parentID *uuid.UUID
		if req.ParentID != nil {
			pid, err := uuid.Parse(*req.ParentID)
			if err != nil {
				return nil, &ErrorValidacion{Errores: []string{fmt.Sprintf("parent_id inválido: %s", *req.ParentID)}}
			}
			parentID = &pid
		}
		codigo, err := s.GenerarSiguienteCodigo(ctx, parentID)
		if err != nil {
			return nil, err
		}
		req.Codigo = codigo
	}
	return s.Crear(ctx, req)
}
