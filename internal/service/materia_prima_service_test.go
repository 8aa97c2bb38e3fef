package service_test

import (
	"context"
	"errors"
	"testing"

	"cocinaclinica/internal/dto"
	"cocinaclinica/internal/model"
	"cocinaclinica/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMovimientoRepo struct {
	movimientos  []model.MovimientoInventario
	fallarCreate bool
}

func (r *stubMovimientoRepo) Create(_ context.Context, m *model.MovimientoInventario) error {
	if r.fallarCreate {
		return errors.New("kardex no disponible")
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) ListByProducto(_ context.Context, productoID uuid.UUID, limite int) ([]model.MovimientoInventario, error) {
	if limite <= 0 {
		limite = 50
	}
	var result []model.MovimientoInventario
	for _, m := range r.movimientos {
		if m.ProductoID == productoID {
			result = append(result, m)
		}
	}
	if len(result) > limite {
		result = result[:limite]
	}
	return result, nil
}

func nuevoServicioMateriaPrima() (*stubNodoRepo, *stubMovimientoRepo, service.MateriaPrimaService) {
	nodos := newStubNodoRepo(model.TablaMateriaPrima)
	movs := &stubMovimientoRepo{}
	return nodos, movs, service.NewMateriaPrimaService(nodos, movs, zerolog.Nop())
}

func semillaProducto(repo *stubNodoRepo, codigo, nombre, actual, minimo string, rama string) uuid.UUID {
	n := model.Nodo{
		Codigo: codigo, Nombre: nombre, NivelActual: 5,
		ManejaStock: true, UnidadStock: ptr("L"),
		StockActual: ptr(dec(actual)), StockMinimo: ptr(dec(minimo)),
		TipoRama: ptr(rama), Activo: true,
	}
	return repo.semilla(n)
}

func TestAjustarStockEntrada(t *testing.T) {
	nodos, movs, svc := nuevoServicioMateriaPrima()
	id := semillaProducto(nodos, "1.01.01.01.01", "Leche entera", "5", "10", model.RamaProduccion)

	resp, err := svc.AjustarStock(context.Background(), id, dto.AjustarStockRequest{
		Delta: dec("20"), Motivo: "compra semanal",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.StockActual)
	assert.True(t, resp.StockActual.Equal(dec("25")))
	assert.Equal(t, service.EstadoStockNormal, resp.EstadoStock)

	require.Len(t, movs.movimientos, 1)
	m := movs.movimientos[0]
	assert.Equal(t, model.MovimientoEntrada, m.Tipo)
	assert.True(t, m.Cantidad.Equal(dec("20")))
	assert.True(t, m.StockAnterior.Equal(dec("5")))
	assert.True(t, m.StockNuevo.Equal(dec("25")))
	assert.Equal(t, "compra semanal", m.Motivo)
}

func TestAjustarStockSalida(t *testing.T) {
	nodos, movs, svc := nuevoServicioMateriaPrima()
	id := semillaProducto(nodos, "1.01.01.01.01", "Leche entera", "25", "10", model.RamaProduccion)

	resp, err := svc.AjustarStock(context.Background(), id, dto.AjustarStockRequest{
		Delta: dec("-18"), Motivo: "consumo desayunos",
	})
	require.NoError(t, err)
	assert.True(t, resp.StockActual.Equal(dec("7")))
	assert.Equal(t, service.EstadoStockBajo, resp.EstadoStock)

	require.Len(t, movs.movimientos, 1)
	assert.Equal(t, model.MovimientoSalida, movs.movimientos[0].Tipo)
	// la cantidad del kardex siempre es positiva
	assert.True(t, movs.movimientos[0].Cantidad.Equal(dec("18")))
}

func TestAjustarStockRechazaNegativo(t *testing.T) {
	nodos, movs, svc := nuevoServicioMateriaPrima()
	id := semillaProducto(nodos, "1.01.01.01.01", "Leche entera", "5", "10", model.RamaProduccion)

	_, err := svc.AjustarStock(context.Background(), id, dto.AjustarStockRequest{
		Delta: dec("-6"), Motivo: "consumo",
	})
	var ev *service.ErrorValidacion
	require.ErrorAs(t, err, &ev)
	assert.Contains(t, ev.Errores[0], "negativo")
	assert.Empty(t, movs.movimientos)

	// el stock no cambió
	n, _ := nodos.FindByID(context.Background(), id)
	assert.True(t, n.StockActual.Equal(dec("5")))
}

func TestAjustarStockNodoSinStock(t *testing.T) {
	nodos, _, svc := nuevoServicioMateriaPrima()
	id := nodos.semilla(model.Nodo{Codigo: "1.01", Nombre: "Lácteos", NivelActual: 3, Activo: true})

	_, err := svc.AjustarStock(context.Background(), id, dto.AjustarStockRequest{
		Delta: dec("1"), Motivo: "prueba",
	})
	var ev *service.ErrorValidacion
	assert.ErrorAs(t, err, &ev)

	_, err = svc.AjustarStock(context.Background(), uuid.New(), dto.AjustarStockRequest{
		Delta: dec("1"), Motivo: "prueba",
	})
	assert.ErrorIs(t, err, service.ErrNodoNoEncontrado)
}

func TestAjustarStockKardexCaidoNoRevierte(t *testing.T) {
	nodos, movs, svc := nuevoServicioMateriaPrima()
	movs.fallarCreate = true
	id := semillaProducto(nodos, "1.01.01.01.01", "Leche entera", "5", "10", model.RamaProduccion)

	// El ajuste se mantiene aunque el registro del movimiento falle.
	resp, err := svc.AjustarStock(context.Background(), id, dto.AjustarStockRequest{
		Delta: dec("3"), Motivo: "compra",
	})
	require.NoError(t, err)
	assert.True(t, resp.StockActual.Equal(dec("8")))

	n, _ := nodos.FindByID(context.Background(), id)
	assert.True(t, n.StockActual.Equal(dec("8")))
}

func TestObtenerStockBajo(t *testing.T) {
	nodos, _, svc := nuevoServicioMateriaPrima()
	semillaProducto(nodos, "1.01", "Leche entera", "5", "10", model.RamaProduccion)
	semillaProducto(nodos, "1.02", "Arroz", "80", "10", model.RamaProduccion)
	semillaProducto(nodos, "2.01", "Bandejas", "3", "50", model.RamaEntregable)

	bajos, err := svc.ObtenerStockBajo(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, bajos, 2)

	rama := model.RamaEntregable
	bajos, err = svc.ObtenerStockBajo(context.Background(), &rama)
	require.NoError(t, err)
	require.Len(t, bajos, 1)
	assert.Equal(t, "Bandejas", bajos[0].Nombre)
}

func TestObtenerRollup(t *testing.T) {
	nodos, _, svc := nuevoServicioMateriaPrima()
	id := semillaProducto(nodos, "1.01", "Leche entera", "37", "10", model.RamaProduccion)
	nodos.semilla(model.Nodo{
		Codigo: "1.01.01", Nombre: "Caja 12 L", NivelActual: 6, ParentID: &id,
		StockActual: ptr(dec("3")), ContenidoUnidad: ptr(dec("12")), UnidadContenido: ptr("L"),
		Activo: true,
	})
	nodos.semilla(model.Nodo{
		Codigo: "1.01.02", Nombre: "Bolsa 1 L", NivelActual: 6, ParentID: &id,
		StockActual: ptr(dec("2")), ContenidoUnidad: ptr(dec("1")), UnidadContenido: ptr("L"),
		Activo: true,
	})

	rollup, err := svc.ObtenerRollup(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, rollup.Presentaciones)
	assert.True(t, rollup.TotalDerivado.Equal(dec("38")))
	require.NotNil(t, rollup.StockAlmacenado)
	assert.True(t, rollup.StockAlmacenado.Equal(dec("37")))
}

func TestAtajosDeNivel(t *testing.T) {
	nodos, _, svc := nuevoServicioMateriaPrima()
	nodos.semilla(model.Nodo{Codigo: "1.01.01", Nombre: "Lácteos", NivelActual: 3,
		TipoRama: ptr(model.RamaProduccion), Activo: true})
	nodos.semilla(model.Nodo{Codigo: "2.01.01", Nombre: "Bandejas", NivelActual: 3,
		TipoRama: ptr(model.RamaEntregable), Activo: true})
	semillaProducto(nodos, "1.01.01.01.01", "Leche entera", "10", "5", model.RamaProduccion)
	nodos.semilla(model.Nodo{Codigo: "1.01.01.01.01.01", Nombre: "Caja 12 L", NivelActual: 6,
		ContenidoUnidad: ptr(dec("12")), UnidadContenido: ptr("L"), Activo: true})

	categorias, err := svc.CategoriasPorRama(context.Background(), model.RamaProduccion)
	require.NoError(t, err)
	require.Len(t, categorias, 1)
	assert.Equal(t, "Lácteos", categorias[0].Nombre)

	presentaciones, err := svc.BuscarPresentaciones(context.Background(), "caja")
	require.NoError(t, err)
	require.Len(t, presentaciones, 1)
	assert.Equal(t, "Caja 12 L", presentaciones[0].Nombre)

	total, err := svc.ContarProductos(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

// TestRollupDesdeCadenaCreada construye toda la jerarquía por Crear (sin
// semillas directas) y verifica que el rollup derive un total real: las
// presentaciones persisten su conteo de empaques a través del motor.
func TestRollupDesdeCadenaCreada(t *testing.T) {
	_, _, svc := nuevoServicioMateriaPrima()
	ctx := context.Background()

	crear := func(req dto.CrearNodoRequest) string {
		t.Helper()
		resp, err := svc.Crear(ctx, req)
		require.NoError(t, err)
		return resp.ID
	}

	raiz := crear(dto.CrearNodoRequest{Codigo: "1", Nombre: "Materia Prima", NivelActual: 1, TipoRama: ptr(model.RamaProduccion)})
	n2 := crear(dto.CrearNodoRequest{Codigo: "1.01", Nombre: "Alimentos", NivelActual: 2, ParentID: &raiz})
	n3 := crear(dto.CrearNodoRequest{Codigo: "1.01.01", Nombre: "Lácteos", NivelActual: 3, ParentID: &n2})
	n4 := crear(dto.CrearNodoRequest{Codigo: "1.01.01.01", Nombre: "Leches", NivelActual: 4, ParentID: &n3})
	producto := crear(dto.CrearNodoRequest{
		Codigo: "1.01.01.01.01", Nombre: "Leche entera", NivelActual: 5, ParentID: &n4,
		ManejaStock: true, UnidadStock: ptr("L"), StockActual: ptr(dec("10")), StockMinimo: ptr(dec("5")),
	})
	crear(dto.CrearNodoRequest{
		Codigo: "1.01.01.01.01.01", Nombre: "Caja 12 L", NivelActual: 6, ParentID: &producto,
		ContenidoUnidad: ptr(dec("12")), UnidadContenido: ptr("L"), StockActual: ptr(dec("3")),
	})
	crear(dto.CrearNodoRequest{
		Codigo: "1.01.01.01.01.02", Nombre: "Bolsa 1 L", NivelActual: 6, ParentID: &producto,
		ContenidoUnidad: ptr(dec("1")), UnidadContenido: ptr("L"), StockActual: ptr(dec("2")),
	})

	productoID, err := uuid.Parse(producto)
	require.NoError(t, err)
	rollup, err := svc.ObtenerRollup(ctx, productoID)
	require.NoError(t, err)
	assert.Equal(t, 2, rollup.Presentaciones)
	assert.True(t, rollup.TotalDerivado.Equal(dec("38")))
	require.NotNil(t, rollup.StockAlmacenado)
	assert.True(t, rollup.StockAlmacenado.Equal(dec("10")))
}

func TestResumenStock(t *testing.T) {
	nodos, _, svc := nuevoServicioMateriaPrima()
	semillaProducto(nodos, "1.01", "Agotado", "0", "10", model.RamaProduccion)
	semillaProducto(nodos, "1.02", "Escaso", "5", "10", model.RamaProduccion)
	semillaProducto(nodos, "1.03", "Sano", "20", "10", model.RamaProduccion)
	semillaProducto(nodos, "2.01", "Otra rama", "5", "10", model.RamaEntregable)

	resumen, err := svc.ResumenStock(context.Background(), model.RamaProduccion)
	require.NoError(t, err)
	assert.Len(t, resumen.Productos, 3)
	assert.Equal(t, 1, resumen.Criticos)
	assert.Equal(t, 1, resumen.Bajos)
	assert.Equal(t, 1, resumen.Normales)
	assert.Equal(t, 0, resumen.Exceso)
}

func TestValorInventarioTotal(t *testing.T) {
	nodos, _, svc := nuevoServicioMateriaPrima()
	conCosto := model.Nodo{
		Codigo: "1.01", Nombre: "Leche", NivelActual: 5, ManejaStock: true,
		UnidadStock: ptr("L"), StockActual: ptr(dec("10")), CostoPromedio: ptr(dec("2.5")),
		TipoRama: ptr(model.RamaProduccion), Activo: true,
	}
	nodos.semilla(conCosto)
	sinCosto := conCosto
	sinCosto.ID = uuid.Nil
	sinCosto.Codigo = "1.02"
	sinCosto.Nombre = "Donación"
	sinCosto.CostoPromedio = nil
	nodos.semilla(sinCosto)

	resp, err := svc.ValorInventarioTotal(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Productos)
	assert.True(t, resp.ValorTotal.Equal(dec("25")))
}

func TestListarMovimientos(t *testing.T) {
	nodos, _, svc := nuevoServicioMateriaPrima()
	id := semillaProducto(nodos, "1.01", "Leche entera", "5", "10", model.RamaProduccion)

	for _, delta := range []string{"10", "-2", "3"} {
		_, err := svc.AjustarStock(context.Background(), id, dto.AjustarStockRequest{
			Delta: dec(delta), Motivo: "movimiento de prueba",
		})
		require.NoError(t, err)
	}

	movs, err := svc.ListarMovimientos(context.Background(), id, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 3)

	_, err = svc.ListarMovimientos(context.Background(), uuid.New(), 0)
	assert.ErrorIs(t, err, service.ErrNodoNoEncontrado)
}
