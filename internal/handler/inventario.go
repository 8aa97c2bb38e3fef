package handler

// inventario.go
// Superficie de stock sobre el árbol de materia prima: ajustes con kardex,
// estados derivados, rollup de presentaciones, valoración y reportes.

import (
	"net/http"
	"strconv"

	"cocinaclinica/internal/apierror"
	"cocinaclinica/internal/cache"
	"cocinaclinica/internal/dto"
	"cocinaclinica/internal/service"
	"cocinaclinica/internal/worker"

	"github.com/gin-gonic/gin"
)

type InventarioHandler struct {
	svc        service.MateriaPrimaService
	dispatcher *worker.Dispatcher
	cache      *cache.ArbolCache
}

func NewInventarioHandler(svc service.MateriaPrimaService, dispatcher *worker.Dispatcher, arbolCache *cache.ArbolCache) *InventarioHandler {
	return &InventarioHandler{svc: svc, dispatcher: dispatcher, cache: arbolCache}
}

func (h *InventarioHandler) AjustarStock(c *gin.Context) {
	productoID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AjustarStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AjustarStock(c.Request.Context(), productoID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.cache.InvalidarTodo()
	c.JSON(http.StatusOK, resp)
}

// Presentaciones busca presentaciones por nombre o código, la consulta que
// alimenta la pantalla de vinculación con proveedores.
func (h *InventarioHandler) Presentaciones(c *gin.Context) {
	resp, err := h.svc.BuscarPresentaciones(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventarioHandler) StockBajo(c *gin.Context) {
	var tipoRama *string
	if raw := c.Query("tipo_rama"); raw != "" {
		tipoRama = &raw
	}
	resp, err := h.svc.ObtenerStockBajo(c.Request.Context(), tipoRama)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventarioHandler) Rollup(c *gin.Context) {
	productoID, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerRollup(c.Request.Context(), productoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventarioHandler) Resumen(c *gin.Context) {
	tipoRama := c.Param("tipoRama")
	resp, err := h.svc.ResumenStock(c.Request.Context(), tipoRama)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventarioHandler) ValorInventario(c *gin.Context) {
	var tipoRama *string
	if raw := c.Query("tipo_rama"); raw != "" {
		tipoRama = &raw
	}
	resp, err := h.svc.ValorInventarioTotal(c.Request.Context(), tipoRama)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventarioHandler) Movimientos(c *gin.Context) {
	productoID, ok := parseID(c, "id")
	if !ok {
		return
	}
	limite := 0
	if raw := c.Query("limite"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, apierror.New("Parametro limite invalido"))
			return
		}
		limite = n
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), productoID, limite)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SolicitarReporte encola la generación asíncrona del PDF de valoración.
func (h *InventarioHandler) SolicitarReporte(c *gin.Context) {
	var req worker.ReporteJobPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return
	}
	if err := h.dispatcher.EnqueueReporte(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"estado": "encolado"})
}
