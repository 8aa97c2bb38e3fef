package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AjustarStockRequest struct {
	Delta  decimal.Decimal `json:"delta"  validate:"required"`
	Motivo string          `json:"motivo" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type StockResponse struct {
	ProductoID  string           `json:"producto_id"`
	Codigo      string           `json:"codigo"`
	Nombre      string           `json:"nombre"`
	StockActual *decimal.Decimal `json:"stock_actual"`
	StockMinimo *decimal.Decimal `json:"stock_minimo"`
	StockMaximo *decimal.Decimal `json:"stock_maximo"`
	UnidadStock *string          `json:"unidad_stock"`
	EstadoStock string           `json:"estado_stock"` // CRITICO | BAJO | EXCESO | NORMAL
}

type MovimientoResponse struct {
	ID            string          `json:"id"`
	ProductoID    string          `json:"producto_id"`
	Tipo          string          `json:"tipo"`
	Cantidad      decimal.Decimal `json:"cantidad"`
	StockAnterior decimal.Decimal `json:"stock_anterior"`
	StockNuevo    decimal.Decimal `json:"stock_nuevo"`
	Motivo        string          `json:"motivo,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

// RollupResponse es la suma derivada de las presentaciones de un producto:
// Σ stock_actual × contenido_unidad. Cruce de verificación, no fuente de verdad.
type RollupResponse struct {
	ProductoID      string           `json:"producto_id"`
	StockAlmacenado *decimal.Decimal `json:"stock_almacenado"`
	TotalDerivado   decimal.Decimal  `json:"total_derivado"`
	UnidadStock     *string          `json:"unidad_stock"`
	Presentaciones  int              `json:"presentaciones"`
}

type ValorInventarioResponse struct {
	TipoRama   *string         `json:"tipo_rama,omitempty"`
	ValorTotal decimal.Decimal `json:"valor_total"`
	Productos  int             `json:"productos"`
}

type ResumenStockResponse struct {
	TipoRama  string          `json:"tipo_rama"`
	Productos []StockResponse `json:"productos"`
	Criticos  int             `json:"criticos"`
	Bajos     int             `json:"bajos"`
	Exceso    int             `json:"exceso"`
	Normales  int             `json:"normales"`
}
