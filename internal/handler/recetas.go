package handler

// recetas.go
// Operaciones propias del árbol de recetas: líneas de ingredientes y
// duplicación de recetas completas.

import (
	"errors"
	"net/http"

	"cocinaclinica/internal/cache"
	"cocinaclinica/internal/dto"
	"cocinaclinica/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type RecetasHandler struct {
	svc   service.RecetasService
	cache *cache.ArbolCache
}

func NewRecetasHandler(svc service.RecetasService, arbolCache *cache.ArbolCache) *RecetasHandler {
	return &RecetasHandler{svc: svc, cache: arbolCache}
}

// Conectores lista los agrupadores de recetas (nivel 1).
func (h *RecetasHandler) Conectores(c *gin.Context) {
	resp, err := h.svc.Conectores(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PorPlato lista las recetas vinculadas a un plato.
func (h *RecetasHandler) PorPlato(c *gin.Context) {
	platoID, ok := parseID(c, "platoId")
	if !ok {
		return
	}
	resp, err := h.svc.RecetasPorPlato(c.Request.Context(), platoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecetasHandler) AgregarIngrediente(c *gin.Context) {
	recetaID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AgregarIngredienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AgregarIngrediente(c.Request.Context(), recetaID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RecetasHandler) ListarIngredientes(c *gin.Context) {
	recetaID, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarIngredientes(c.Request.Context(), recetaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecetasHandler) ActualizarIngrediente(c *gin.Context) {
	ingredienteID, ok := parseID(c, "ingredienteId")
	if !ok {
		return
	}
	var req dto.ActualizarIngredienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarIngrediente(c.Request.Context(), ingredienteID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecetasHandler) EliminarIngrediente(c *gin.Context) {
	ingredienteID, ok := parseID(c, "ingredienteId")
	if !ok {
		return
	}
	if err := h.svc.EliminarIngrediente(c.Request.Context(), ingredienteID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Duplicar copia la receta y sus ingredientes. Una copia parcial responde 201
// igual — el nodo existe — pero con parcial=true y la advertencia en el body.
func (h *RecetasHandler) Duplicar(c *gin.Context) {
	recetaID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.DuplicarRecetaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.DuplicarReceta(c.Request.Context(), recetaID, req)
	if err != nil {
		var parcial *service.DuplicacionParcial
		if errors.As(err, &parcial) {
			log.Warn().
				Str("receta_origen", recetaID.String()).
				Str("receta_copia", parcial.RecetaID.String()).
				Int("copiadas", parcial.LineasCopiadas).
				Int("esperadas", parcial.LineasEsperadas).
				Msg("duplicacion de receta con lineas incompletas")
			h.cache.InvalidarTodo()
			c.JSON(http.StatusCreated, resp)
			return
		}
		respondError(c, err)
		return
	}
	h.cache.InvalidarTodo()
	c.JSON(http.StatusCreated, resp)
}
