package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ContactoProveedorInput struct {
	Nombre   string  `json:"nombre"   validate:"required,min=1"`
	Cargo    *string `json:"cargo"`
	Telefono *string `json:"telefono"`
	Email    *string `json:"email"    validate:"omitempty,email"`
}

type CrearProveedorRequest struct {
	Nombre        string                   `json:"nombre"         validate:"required,min=2"`
	NIT           string                   `json:"nit"            validate:"required"`
	Telefono      *string                  `json:"telefono"`
	Email         *string                  `json:"email"          validate:"omitempty,email"`
	Direccion     *string                  `json:"direccion"`
	CondicionPago *string                  `json:"condicion_pago"`
	Contactos     []ContactoProveedorInput `json:"contactos"`
}

type ActualizarProveedorRequest struct {
	Nombre        *string                  `json:"nombre"         validate:"omitempty,min=2"`
	Telefono      *string                  `json:"telefono"`
	Email         *string                  `json:"email"          validate:"omitempty,email"`
	Direccion     *string                  `json:"direccion"`
	CondicionPago *string                  `json:"condicion_pago"`
	Contactos     []ContactoProveedorInput `json:"contactos"`
}

type VincularPresentacionRequest struct {
	PresentacionID   string           `json:"presentacion_id"   validate:"required,uuid"`
	PrecioReferencia *decimal.Decimal `json:"precio_referencia"`
	CodigoProveedor  *string          `json:"codigo_proveedor"`
}

type ActualizarVinculacionRequest struct {
	PrecioReferencia *decimal.Decimal `json:"precio_referencia"`
	CodigoProveedor  *string          `json:"codigo_proveedor"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ContactoProveedorResponse struct {
	ID       string  `json:"id"`
	Nombre   string  `json:"nombre"`
	Cargo    *string `json:"cargo,omitempty"`
	Telefono *string `json:"telefono,omitempty"`
	Email    *string `json:"email,omitempty"`
}

type ProveedorResponse struct {
	ID            string                      `json:"id"`
	Nombre        string                      `json:"nombre"`
	NIT           string                      `json:"nit"`
	Telefono      *string                     `json:"telefono"`
	Email         *string                     `json:"email"`
	Direccion     *string                     `json:"direccion"`
	CondicionPago *string                     `json:"condicion_pago"`
	Activo        bool                        `json:"activo"`
	Contactos     []ContactoProveedorResponse `json:"contactos"`
}

type VinculacionResponse struct {
	ID               string           `json:"id"`
	ProveedorID      string           `json:"proveedor_id"`
	PresentacionID   string           `json:"presentacion_id"`
	PrecioReferencia *decimal.Decimal `json:"precio_referencia"`
	CodigoProveedor  *string          `json:"codigo_proveedor"`
	Activo           bool             `json:"activo"`
	// Reactivada distingue una vinculación revivida de una recién creada.
	Reactivada bool `json:"reactivada,omitempty"`
	// Presentación y su producto padre (nivel 5), para contexto en pantalla
	Presentacion *NodoResponse `json:"presentacion,omitempty"`
	Producto     *NodoResponse `json:"producto,omitempty"`
}
