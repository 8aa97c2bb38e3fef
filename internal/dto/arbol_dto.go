package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CrearNodoRequest: codigo puede venir vacío — el árbol de platos lo genera
// automáticamente y el resto de árboles lo exige en la validación de dominio.
type CrearNodoRequest struct {
	Codigo      string  `json:"codigo"       validate:"omitempty,max=40"`
	Nombre      string  `json:"nombre"       validate:"required,min=2,max=120"`
	Descripcion *string `json:"descripcion"`
	NivelActual int     `json:"nivel_actual" validate:"required,min=1"`
	ParentID    *string `json:"parent_id"    validate:"omitempty,uuid"`
	TipoRama    *string `json:"tipo_rama"`
	EsHoja      bool    `json:"es_hoja"`

	ManejaStock   bool             `json:"maneja_stock"`
	StockActual   *decimal.Decimal `json:"stock_actual"`
	StockMinimo   *decimal.Decimal `json:"stock_minimo"`
	StockMaximo   *decimal.Decimal `json:"stock_maximo"`
	UnidadStock   *string          `json:"unidad_stock"`
	CostoPromedio *decimal.Decimal `json:"costo_promedio"`

	ContenidoUnidad *decimal.Decimal `json:"contenido_unidad"`
	UnidadContenido *string          `json:"unidad_contenido"`

	PlatoID     *string          `json:"plato_id"    validate:"omitempty,uuid"`
	Rendimiento *decimal.Decimal `json:"rendimiento"`
}

// ActualizarNodoRequest: nivel y parent son inmutables después de crear — el
// código sí puede cambiar (la validación de unicidad excluye al propio nodo).
type ActualizarNodoRequest struct {
	Codigo      *string `json:"codigo"      validate:"omitempty,min=1,max=40"`
	Nombre      *string `json:"nombre"      validate:"omitempty,min=2,max=120"`
	Descripcion *string `json:"descripcion"`
	TipoRama    *string `json:"tipo_rama"`
	EsHoja      *bool   `json:"es_hoja"`

	ManejaStock   *bool            `json:"maneja_stock"`
	StockActual   *decimal.Decimal `json:"stock_actual"`
	StockMinimo   *decimal.Decimal `json:"stock_minimo"`
	StockMaximo   *decimal.Decimal `json:"stock_maximo"`
	UnidadStock   *string          `json:"unidad_stock"`
	CostoPromedio *decimal.Decimal `json:"costo_promedio"`

	ContenidoUnidad *decimal.Decimal `json:"contenido_unidad"`
	UnidadContenido *string          `json:"unidad_contenido"`

	Rendimiento *decimal.Decimal `json:"rendimiento"`
}

type BuscarNodosFilter struct {
	Termino  string `form:"q"`
	Nivel    *int   `form:"nivel"`
	TipoRama string `form:"tipo_rama"`
	PlatoID  string `form:"plato_id"  validate:"omitempty,uuid"`
	Limite   int    `form:"limite,default=50" validate:"min=0,max=50"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type NodoResponse struct {
	ID          string  `json:"id"`
	Codigo      string  `json:"codigo"`
	Nombre      string  `json:"nombre"`
	Descripcion *string `json:"descripcion,omitempty"`
	NivelActual int     `json:"nivel_actual"`
	ParentID    *string `json:"parent_id,omitempty"`
	TipoRama    *string `json:"tipo_rama,omitempty"`
	EsHoja      bool    `json:"es_hoja"`

	ManejaStock   bool             `json:"maneja_stock"`
	StockActual   *decimal.Decimal `json:"stock_actual,omitempty"`
	StockMinimo   *decimal.Decimal `json:"stock_minimo,omitempty"`
	StockMaximo   *decimal.Decimal `json:"stock_maximo,omitempty"`
	UnidadStock   *string          `json:"unidad_stock,omitempty"`
	CostoPromedio *decimal.Decimal `json:"costo_promedio,omitempty"`
	EstadoStock   *string          `json:"estado_stock,omitempty"`

	ContenidoUnidad *decimal.Decimal `json:"contenido_unidad,omitempty"`
	UnidadContenido *string          `json:"unidad_contenido,omitempty"`

	PlatoID     *string          `json:"plato_id,omitempty"`
	Rendimiento *decimal.Decimal `json:"rendimiento,omitempty"`
	Version     int              `json:"version,omitempty"`

	Activo    bool   `json:"activo"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type RutaResponse struct {
	Ruta []NodoResponse `json:"ruta"`
	// Truncada indica que el recorrido de ancestros tocó el límite de
	// profundidad; la ruta devuelta es parcial (señal de integridad de datos).
	Truncada bool `json:"truncada"`
}

type ValidarCodigoResponse struct {
	Codigo  string `json:"codigo"`
	EsUnico bool   `json:"es_unico"`
	// NodoEnConflicto es el id del nodo activo que ya usa el código.
	NodoEnConflicto *string `json:"nodo_en_conflicto,omitempty"`
}
