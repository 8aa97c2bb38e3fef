package handler

import (
	"net/http"

	"cocinaclinica/internal/dto"
	"cocinaclinica/internal/service"

	"github.com/gin-gonic/gin"
)

type ProveedoresHandler struct{ svc service.ProveedorService }

func NewProveedoresHandler(svc service.ProveedorService) *ProveedoresHandler {
	return &ProveedoresHandler{svc: svc}
}

func (h *ProveedoresHandler) Crear(c *gin.Context) {
	var req dto.CrearProveedorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProveedoresHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProveedoresHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProveedoresHandler) Actualizar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarProveedorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProveedoresHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Vinculaciones ────────────────────────────────────────────────────────────

func (h *ProveedoresHandler) Vincular(c *gin.Context) {
	proveedorID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.VincularPresentacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.VincularPresentacion(c.Request.Context(), proveedorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	if resp.Reactivada {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

func (h *ProveedoresHandler) ListarVinculaciones(c *gin.Context) {
	proveedorID, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarVinculaciones(c.Request.Context(), proveedorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProveedoresDePresentacion responde quién surte una presentación dada.
func (h *ProveedoresHandler) ProveedoresDePresentacion(c *gin.Context) {
	presentacionID, ok := parseID(c, "presentacionId")
	if !ok {
		return
	}
	resp, err := h.svc.ProveedoresDePresentacion(c.Request.Context(), presentacionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProveedoresHandler) ActualizarVinculacion(c *gin.Context) {
	vinculacionID, ok := parseID(c, "vinculacionId")
	if !ok {
		return
	}
	var req dto.ActualizarVinculacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarVinculacion(c.Request.Context(), vinculacionID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProveedoresHandler) Desvincular(c *gin.Context) {
	vinculacionID, ok := parseID(c, "vinculacionId")
	if !ok {
		return
	}
	if err := h.svc.DesvincularPresentacion(c.Request.Context(), vinculacionID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
