package service

import (
	"context"
	"errors"

	"cocinaclinica/internal/dto"
	"cocinaclinica/internal/model"
	"cocinaclinica/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProveedorService maneja proveedores y sus vinculaciones con presentaciones.
// Solo nodos de nivel 6 (presentaciones) del árbol de materia prima admiten
// vinculación.
type ProveedorService interface {
	Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error)
	Listar(ctx context.Context) ([]dto.ProveedorResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error

	// VincularPresentacion crea el vínculo proveedor↔presentación, o reactiva
	// uno desactivado para el mismo par en lugar de duplicarlo.
	VincularPresentacion(ctx context.Context, proveedorID uuid.UUID, req dto.VincularPresentacionRequest) (*dto.VinculacionResponse, error)
	ListarVinculaciones(ctx context.Context, proveedorID uuid.UUID) ([]dto.VinculacionResponse, error)
	// ProveedoresDePresentacion lista quién surte una presentación dada.
	ProveedoresDePresentacion(ctx context.Context, presentacionID uuid.UUID) ([]dto.VinculacionResponse, error)
	ActualizarVinculacion(ctx context.Context, vinculacionID uuid.UUID, req dto.ActualizarVinculacionRequest) (*dto.VinculacionResponse, error)
	DesvincularPresentacion(ctx context.Context, vinculacionID uuid.UUID) error
}

type proveedorService struct {
	repo          repository.ProveedorRepository
	materiaPrimas repository.NodoRepository
}

func NewProveedorService(repo repository.ProveedorRepository, materiaPrimas repository.NodoRepository) ProveedorService {
	return &proveedorService{repo: repo, materiaPrimas: materiaPrimas}
}

func (s *proveedorService) Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error) {
	p := &model.Proveedor{
		Nombre:        req.Nombre,
		NIT:           req.NIT,
		Telefono:      req.Telefono,
		Email:         req.Email,
		Direccion:     req.Direccion,
		CondicionPago: req.CondicionPago,
		Activo:        true,
	}
	for _, c := range req.Contactos {
		p.Contactos = append(p.Contactos, model.ContactoProveedor{
			Nombre: c.Nombre, Cargo: c.Cargo, Telefono: c.Telefono, Email: c.Email,
		})
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ErrorValidacion{Errores: []string{"ya existe un proveedor con ese NIT"}}
		}
		return nil, err
	}
	resp := mapProveedor(*p)
	return &resp, nil
}

func (s *proveedorService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducirNoEncontrado(err)
	}
	resp := mapProveedor(*p)
	return &resp, nil
}

func (s *proveedorService) Listar(ctx context.Context) ([]dto.ProveedorResponse, error) {
	proveedores, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ProveedorResponse, 0, len(proveedores))
	for _, p := range proveedores {
		result = append(result, mapProveedor(p))
	}
	return result, nil
}

func (s *proveedorService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducirNoEncontrado(err)
	}
	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Telefono != nil {
		p.Telefono = req.Telefono
	}
	if req.Email != nil {
		p.Email = req.Email
	}
	if req.Direccion != nil {
		p.Direccion = req.Direccion
	}
	if req.CondicionPago != nil {
		p.CondicionPago = req.CondicionPago
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := mapProveedor(*p)
	return &resp, nil
}

func (s *proveedorService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return traducirNoEncontrado(err)
	}
	return s.repo.SoftDelete(ctx, id)
}

// ── Vinculaciones ────────────────────────────────────────────────────────────

func (s *proveedorService) VincularPresentacion(ctx context.Context, proveedorID uuid.UUID, req dto.VincularPresentacionRequest) (*dto.VinculacionResponse, error) {
	if _, err := s.repo.FindByID(ctx, proveedorID); err != nil {
		return nil, traducirNoEncontrado(err)
	}

	presentacionID, err := uuid.Parse(req.PresentacionID)
	if err != nil {
		return nil, &ErrorValidacion{Errores: []string{"presentacion_id inválido"}}
	}
	presentacion, err := s.materiaPrimas.FindByID(ctx, presentacionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ErrorValidacion{Errores: []string{"la presentación referenciada no existe"}}
		}
		return nil, err
	}
	var errores []string
	if !presentacion.Activo {
		errores = append(errores, "la presentación referenciada está inactiva")
	}
	if presentacion.NivelActual != ConfigMateriaPrima().NivelPresentacion {
		errores = append(errores, "solo las presentaciones (nivel 6) admiten vinculación con proveedores")
	}
	if len(errores) > 0 {
		return nil, &ErrorValidacion{Errores: errores}
	}

	// Par ya vinculado alguna vez: reactivar en lugar de duplicar
	existente, err := s.repo.FindVinculacion(ctx, proveedorID, presentacionID)
	switch {
	case err == nil && existente.Activo:
		return nil, &ErrorValidacion{Errores: []string{"la presentación ya está vinculada a este proveedor"}}
	case err == nil:
		existente.Activo = true
		if req.PrecioReferencia != nil {
			existente.PrecioReferencia = req.PrecioReferencia
		}
		if req.CodigoProveedor != nil {
			existente.CodigoProveedor = req.CodigoProveedor
		}
		if err := s.repo.UpdateVinculacion(ctx, existente); err != nil {
			return nil, err
		}
		resp := s.mapVinculacion(ctx, *existente, true)
		return &resp, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	v := &model.ProveedorPresentacion{
		ProveedorID:      proveedorID,
		PresentacionID:   presentacionID,
		PrecioReferencia: req.PrecioReferencia,
		CodigoProveedor:  req.CodigoProveedor,
		Activo:           true,
	}
	if err := s.repo.CreateVinculacion(ctx, v); err != nil {
		return nil, err
	}
	resp := s.mapVinculacion(ctx, *v, false)
	return &resp, nil
}

func (s *proveedorService) ListarVinculaciones(ctx context.Context, proveedorID uuid.UUID) ([]dto.VinculacionResponse, error) {
	if _, err := s.repo.FindByID(ctx, proveedorID); err != nil {
		return nil, traducirNoEncontrado(err)
	}
	vincs, err := s.repo.ListVinculacionesByProveedor(ctx, proveedorID)
	if err != nil {
		return nil, err
	}
	return s.mapVinculaciones(ctx, vincs), nil
}

func (s *proveedorService) ProveedoresDePresentacion(ctx context.Context, presentacionID uuid.UUID) ([]dto.VinculacionResponse, error) {
	if _, err := s.materiaPrimas.FindByID(ctx, presentacionID); err != nil {
		return nil, traducirNoEncontrado(err)
	}
	vincs, err := s.repo.ListVinculacionesByPresentacion(ctx, presentacionID)
	if err != nil {
		return nil, err
	}
	return s.mapVinculaciones(ctx, vincs), nil
}

func (s *proveedorService) ActualizarVinculacion(ctx context.Context, vinculacionID uuid.UUID, req dto.ActualizarVinculacionRequest) (*dto.VinculacionResponse, error) {
	v, err := s.repo.FindVinculacionByID(ctx, vinculacionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVinculacionNoEncontrada
		}
		return nil, err
	}
	if req.PrecioReferencia != nil {
		v.PrecioReferencia = req.PrecioReferencia
	}
	if req.CodigoProveedor != nil {
		v.CodigoProveedor = req.CodigoProveedor
	}
	if err := s.repo.UpdateVinculacion(ctx, v); err != nil {
		return nil, err
	}
	resp := s.mapVinculacion(ctx, *v, false)
	return &resp, nil
}

func (s *proveedorService) DesvincularPresentacion(ctx context.Context, vinculacionID uuid.UUID) error {
	if _, err := s.repo.FindVinculacionByID(ctx, vinculacionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVinculacionNoEncontrada
		}
		return err
	}
	return s.repo.DesactivarVinculacion(ctx, vinculacionID)
}

// ── Mapeo ────────────────────────────────────────────────────────────────────

func mapProveedor(p model.Proveedor) dto.ProveedorResponse {
	resp := dto.ProveedorResponse{
		ID:            p.ID.String(),
		Nombre:        p.Nombre,
		NIT:           p.NIT,
		Telefono:      p.Telefono,
		Email:         p.Email,
		Direccion:     p.Direccion,
		CondicionPago: p.CondicionPago,
		Activo:        p.Activo,
		Contactos:     make([]dto.ContactoProveedorResponse, 0, len(p.Contactos)),
	}
	for _, c := range p.Contactos {
		resp.Contactos = append(resp.Contactos, dto.ContactoProveedorResponse{
			ID: c.ID.String(), Nombre: c.Nombre, Cargo: c.Cargo,
			Telefono: c.Telefono, Email: c.Email,
		})
	}
	return resp
}

// mapVinculacion enriquece con la presentación y su producto padre; si la
// carga de contexto falla la vinculación se devuelve igual.
func (s *proveedorService) mapVinculacion(ctx context.Context, v model.ProveedorPresentacion, reactivada bool) dto.VinculacionResponse {
	resp := dto.VinculacionResponse{
		ID:               v.ID.String(),
		ProveedorID:      v.ProveedorID.String(),
		PresentacionID:   v.PresentacionID.String(),
		PrecioReferencia: v.PrecioReferencia,
		CodigoProveedor:  v.CodigoProveedor,
		Activo:           v.Activo,
		Reactivada:       reactivada,
	}
	if presentacion, err := s.materiaPrimas.FindByID(ctx, v.PresentacionID); err == nil {
		n := MapNodo(*presentacion)
		resp.Presentacion = &n
		if presentacion.ParentID != nil {
			if producto, err := s.materiaPrimas.FindByID(ctx, *presentacion.ParentID); err == nil {
				p := MapNodo(*producto)
				resp.Producto = &p
			}
		}
	}
	return resp
}

func (s *proveedorService) mapVinculaciones(ctx context.Context, vincs []model.ProveedorPresentacion) []dto.VinculacionResponse {
	result := make([]dto.VinculacionResponse, 0, len(vincs))
	for _, v := range vincs {
		result = append(result, s.mapVinculacion(ctx, v, false))
	}
	return result
}
