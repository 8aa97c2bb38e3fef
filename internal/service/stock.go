package service

import (
	"github.com/shopspring/decimal"

	"cocinaclinica/internal/model"
)

// Estados de stock, en orden de precedencia.
const (
	EstadoStockCritico = "CRITICO"
	EstadoStockBajo    = "BAJO"
	EstadoStockExceso  = "EXCESO"
	EstadoStockNormal  = "NORMAL"
)

// ClasificarStock deriva el estado de un producto. Precedencia:
// CRITICO > BAJO > EXCESO > NORMAL. Stock cero siempre es CRITICO,
// incluso con mínimo cero — sin existencias no se cocina.
// Un umbral en cero cuenta como no configurado: mínimo cero nunca produce
// BAJO y máximo cero nunca produce EXCESO.
func ClasificarStock(actual, minimo, maximo *decimal.Decimal) string {
	act := decimal.Zero
	if actual != nil {
		act = *actual
	}
	if act.LessThanOrEqual(decimal.Zero) {
		return EstadoStockCritico
	}
	if minimo != nil && minimo.GreaterThan(decimal.Zero) {
		if act.LessThan(*minimo) {
			return EstadoStockBajo
		}
	}
	if maximo != nil && maximo.GreaterThan(decimal.Zero) && act.GreaterThan(*maximo) {
		return EstadoStockExceso
	}
	return EstadoStockNormal
}

// TotalDesdePresentaciones suma stock_actual × contenido_unidad de cada
// presentación activa, expresando el total en la unidad de stock del producto.
// Presentaciones sin contenido definido aportan cero.
func TotalDesdePresentaciones(presentaciones []model.Nodo) decimal.Decimal {
	total := decimal.Zero
	for _, p := range presentaciones {
		if !p.Activo || p.StockActual == nil || p.ContenidoUnidad == nil {
			continue
		}
		total = total.Add(p.StockActual.Mul(*p.ContenidoUnidad))
	}
	return total
}

// ValorInventario calcula stock_actual × costo_promedio. Un producto sin
// costo registrado vale cero, no falla.
func ValorInventario(n model.Nodo) decimal.Decimal {
	if n.StockActual == nil || n.CostoPromedio == nil {
		return decimal.Zero
	}
	return n.StockActual.Mul(*n.CostoPromedio)
}
