package service_test

import (
	"context"
	"testing"

	"cocinaclinica/internal/dto"
	"cocinaclinica/internal/model"
	"cocinaclinica/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubProveedorRepo struct {
	proveedores   map[uuid.UUID]*model.Proveedor
	vinculaciones map[uuid.UUID]*model.ProveedorPresentacion
}

func newStubProveedorRepo() *stubProveedorRepo {
	return &stubProveedorRepo{
		proveedores:   make(map[uuid.UUID]*model.Proveedor),
		vinculaciones: make(map[uuid.UUID]*model.ProveedorPresentacion),
	}
}

func (r *stubProveedorRepo) Create(_ context.Context, p *model.Proveedor) error {
	for _, otro := range r.proveedores {
		if otro.NIT == p.NIT {
			return gorm.ErrDuplicatedKey
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Contactos {
		if p.Contactos[i].ID == uuid.Nil {
			p.Contactos[i].ID = uuid.New()
		}
	}
	copia := *p
	r.proveedores[p.ID] = &copia
	return nil
}

func (r *stubProveedorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Proveedor, error) {
	p, ok := r.proveedores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *p
	return &copia, nil
}

func (r *stubProveedorRepo) List(_ context.Context) ([]model.Proveedor, error) {
	var result []model.Proveedor
	for _, p := range r.proveedores {
		if p.Activo {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *stubProveedorRepo) Update(_ context.Context, p *model.Proveedor) error {
	copia := *p
	r.proveedores[p.ID] = &copia
	return nil
}

func (r *stubProveedorRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.proveedores[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = false
	return nil
}

func (r *stubProveedorRepo) CreateVinculacion(_ context.Context, v *model.ProveedorPresentacion) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	copia := *v
	r.vinculaciones[v.ID] = &copia
	return nil
}

func (r *stubProveedorRepo) FindVinculacion(_ context.Context, proveedorID, presentacionID uuid.UUID) (*model.ProveedorPresentacion, error) {
	for _, v := range r.vinculaciones {
		if v.ProveedorID == proveedorID && v.PresentacionID == presentacionID {
			copia := *v
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProveedorRepo) FindVinculacionByID(_ context.Context, id uuid.UUID) (*model.ProveedorPresentacion, error) {
	v, ok := r.vinculaciones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *v
	return &copia, nil
}

func (r *stubProveedorRepo) ListVinculacionesByProveedor(_ context.Context, proveedorID uuid.UUID) ([]model.ProveedorPresentacion, error) {
	var result []model.ProveedorPresentacion
	for _, v := range r.vinculaciones {
		if v.ProveedorID == proveedorID && v.Activo {
			result = append(result, *v)
		}
	}
	return result, nil
}

func (r *stubProveedorRepo) ListVinculacionesByPresentacion(_ context.Context, presentacionID uuid.UUID) ([]model.ProveedorPresentacion, error) {
	var result []model.ProveedorPresentacion
	for _, v := range r.vinculaciones {
		if v.PresentacionID == presentacionID && v.Activo {
			result = append(result, *v)
		}
	}
	return result, nil
}

func (r *stubProveedorRepo) UpdateVinculacion(_ context.Context, v *model.ProveedorPresentacion) error {
	if _, ok := r.vinculaciones[v.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copia := *v
	r.vinculaciones[v.ID] = &copia
	return nil
}

func (r *stubProveedorRepo) DesactivarVinculacion(_ context.Context, id uuid.UUID) error {
	v, ok := r.vinculaciones[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Activo = false
	return nil
}

func (r *stubProveedorRepo) ReactivarVinculacion(_ context.Context, id uuid.UUID) error {
	v, ok := r.vinculaciones[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Activo = true
	return nil
}

type entornoProveedores struct {
	repo     *stubProveedorRepo
	materias *stubNodoRepo
	svc      service.ProveedorService

	proveedorID    uuid.UUID
	productoID     uuid.UUID
	presentacionID uuid.UUID
}

func nuevoEntornoProveedores(t *testing.T) *entornoProveedores {
	t.Helper()
	e := &entornoProveedores{
		repo:     newStubProveedorRepo(),
		materias: newStubNodoRepo(model.TablaMateriaPrima),
	}
	e.svc = service.NewProveedorService(e.repo, e.materias)

	resp, err := e.svc.Crear(context.Background(), dto.CrearProveedorRequest{
		Nombre: "Lácteos del Valle", NIT: "900123456-1",
		Contactos: []dto.ContactoProveedorInput{{Nombre: "Marta Ruiz", Cargo: ptr("ventas")}},
	})
	require.NoError(t, err)
	e.proveedorID = uuid.MustParse(resp.ID)

	e.productoID = e.materias.semilla(model.Nodo{
		Codigo: "1.01.01.01.01", Nombre: "Leche entera", NivelActual: 5,
		ManejaStock: true, UnidadStock: ptr("L"), Activo: true,
	})
	e.presentacionID = e.materias.semilla(model.Nodo{
		Codigo: "1.01.01.01.01.01", Nombre: "Caja 12 L", NivelActual: 6,
		ParentID: &e.productoID, ContenidoUnidad: ptr(dec("12")), UnidadContenido: ptr("L"),
		EsHoja: true, Activo: true,
	})
	return e
}

func TestCrearProveedorNITDuplicado(t *testing.T) {
	e := nuevoEntornoProveedores(t)

	_, err := e.svc.Crear(context.Background(), dto.CrearProveedorRequest{
		Nombre: "Otro proveedor", NIT: "900123456-1",
	})
	var ev *service.ErrorValidacion
	require.ErrorAs(t, err, &ev)
	assert.Contains(t, ev.Errores[0], "NIT")
}

func TestVincularPresentacion(t *testing.T) {
	e := nuevoEntornoProveedores(t)

	resp, err := e.svc.VincularPresentacion(context.Background(), e.proveedorID, dto.VincularPresentacionRequest{
		PresentacionID:   e.presentacionID.String(),
		PrecioReferencia: ptr(dec("48000")),
		CodigoProveedor:  ptr("LV-12L"),
	})
	require.NoError(t, err)
	assert.True(t, resp.Activo)
	assert.False(t, resp.Reactivada)
	require.NotNil(t, resp.Presentacion)
	assert.Equal(t, "Caja 12 L", resp.Presentacion.Nombre)
	require.NotNil(t, resp.Producto)
	assert.Equal(t, "Leche entera", resp.Producto.Nombre)
}

func TestVincularSoloNivelPresentacion(t *testing.T) {
	e := nuevoEntornoProveedores(t)

	_, err := e.svc.VincularPresentacion(context.Background(), e.proveedorID, dto.VincularPresentacionRequest{
		PresentacionID: e.productoID.String(),
	})
	var ev *service.ErrorValidacion
	require.ErrorAs(t, err, &ev)
	assert.Contains(t, ev.Errores[0], "nivel 6")
}

func TestVincularPresentacionInexistente(t *testing.T) {
	e := nuevoEntornoProveedores(t)

	_, err := e.svc.VincularPresentacion(context.Background(), e.proveedorID, dto.VincularPresentacionRequest{
		PresentacionID: uuid.NewString(),
	})
	var ev *service.ErrorValidacion
	require.ErrorAs(t, err, &ev)

	_, err = e.svc.VincularPresentacion(context.Background(), uuid.New(), dto.VincularPresentacionRequest{
		PresentacionID: e.presentacionID.String(),
	})
	assert.ErrorIs(t, err, service.ErrNodoNoEncontrado)
}

func TestVincularDuplicadoYReactivacion(t *testing.T) {
	e := nuevoEntornoProveedores(t)
	ctx := context.Background()
	req := dto.VincularPresentacionRequest{
		PresentacionID:   e.presentacionID.String(),
		PrecioReferencia: ptr(dec("48000")),
	}

	primera, err := e.svc.VincularPresentacion(ctx, e.proveedorID, req)
	require.NoError(t, err)

	// Par activo: no se duplica
	_, err = e.svc.VincularPresentacion(ctx, e.proveedorID, req)
	var ev *service.ErrorValidacion
	require.ErrorAs(t, err, &ev)

	// Desvinculada y vinculada de nuevo: se reactiva el mismo registro
	require.NoError(t, e.svc.DesvincularPresentacion(ctx, uuid.MustParse(primera.ID)))

	req.PrecioReferencia = ptr(dec("52000"))
	segunda, err := e.svc.VincularPresentacion(ctx, e.proveedorID, req)
	require.NoError(t, err)
	assert.True(t, segunda.Reactivada)
	assert.Equal(t, primera.ID, segunda.ID)
	require.NotNil(t, segunda.PrecioReferencia)
	assert.True(t, segunda.PrecioReferencia.Equal(dec("52000")))
}

func TestActualizarVinculacion(t *testing.T) {
	e := nuevoEntornoProveedores(t)
	ctx := context.Background()

	v, err := e.svc.VincularPresentacion(ctx, e.proveedorID, dto.VincularPresentacionRequest{
		PresentacionID: e.presentacionID.String(),
	})
	require.NoError(t, err)

	resp, err := e.svc.ActualizarVinculacion(ctx, uuid.MustParse(v.ID), dto.ActualizarVinculacionRequest{
		PrecioReferencia: ptr(dec("51000")),
	})
	require.NoError(t, err)
	assert.True(t, resp.PrecioReferencia.Equal(dec("51000")))

	_, err = e.svc.ActualizarVinculacion(ctx, uuid.New(), dto.ActualizarVinculacionRequest{})
	assert.ErrorIs(t, err, service.ErrVinculacionNoEncontrada)
}

func TestProveedoresDePresentacion(t *testing.T) {
	e := nuevoEntornoProveedores(t)
	ctx := context.Background()

	_, err := e.svc.VincularPresentacion(ctx, e.proveedorID, dto.VincularPresentacionRequest{
		PresentacionID: e.presentacionID.String(),
	})
	require.NoError(t, err)

	vincs, err := e.svc.ProveedoresDePresentacion(ctx, e.presentacionID)
	require.NoError(t, err)
	require.Len(t, vincs, 1)
	assert.Equal(t, e.proveedorID.String(), vincs[0].ProveedorID)

	_, err = e.svc.ProveedoresDePresentacion(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNodoNoEncontrado)
}

func TestEliminarProveedorOcultaDelListado(t *testing.T) {
	e := nuevoEntornoProveedores(t)
	ctx := context.Background()

	require.NoError(t, e.svc.Eliminar(ctx, e.proveedorID))

	lista, err := e.svc.Listar(ctx)
	require.NoError(t, err)
	assert.Empty(t, lista)
}
