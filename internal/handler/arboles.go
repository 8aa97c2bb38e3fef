package handler

// arboles.go
// Superficie HTTP genérica de los tres árboles. El segmento :arbol selecciona
// el motor ("materia-prima" | "platos" | "recetas"); todos comparten rutas,
// validación y mapeo de errores. Cada árbol lleva su caché de ramas, que se
// invalida completa ante cualquier escritura.

import (
	"errors"
	"net/http"
	"strconv"

	"cocinaclinica/internal/apierror"
	"cocinaclinica/internal/cache"
	"cocinaclinica/internal/dto"
	"cocinaclinica/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	ArbolMateriaPrima = "materia-prima"
	ArbolPlatos       = "platos"
	ArbolRecetas      = "recetas"
)

type arbolEntry struct {
	svc   service.ArbolService
	cache *cache.ArbolCache
}

type ArbolesHandler struct {
	arboles map[string]arbolEntry
}

func NewArbolesHandler(materiaPrima service.MateriaPrimaService, platos service.PlatosService, recetas service.RecetasService) *ArbolesHandler {
	return &ArbolesHandler{arboles: map[string]arbolEntry{
		ArbolMateriaPrima: {svc: materiaPrima, cache: cache.NewArbolCache()},
		ArbolPlatos:       {svc: platos, cache: cache.NewArbolCache()},
		ArbolRecetas:      {svc: recetas, cache: cache.NewArbolCache()},
	}}
}

// Cache expone la caché de un árbol para los handlers que escriben fuera de
// esta superficie (duplicación de recetas).
func (h *ArbolesHandler) Cache(arbol string) *cache.ArbolCache {
	return h.arboles[arbol].cache
}

func (h *ArbolesHandler) entry(c *gin.Context) (arbolEntry, bool) {
	e, ok := h.arboles[c.Param("arbol")]
	if !ok {
		c.JSON(http.StatusNotFound, apierror.New("Arbol desconocido"))
	}
	return e, ok
}

// respondError mapea la taxonomía de errores del servicio a códigos HTTP.
func respondError(c *gin.Context, err error) {
	var validacion *service.ErrorValidacion
	var conflicto *service.ConflictoCodigo

	switch {
	case errors.Is(err, service.ErrNodoNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.New("Nodo no encontrado"))
	case errors.Is(err, service.ErrVinculacionNoEncontrada):
		c.JSON(http.StatusNotFound, apierror.New("Vinculacion no encontrada"))
	case errors.As(err, &validacion):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewReglas(validacion.Errores))
	case errors.As(err, &conflicto):
		resp := gin.H{"detail": conflicto.Error(), "codigo": conflicto.Codigo}
		if conflicto.NodoEnConflicto != nil {
			resp["nodo_en_conflicto"] = conflicto.NodoEnConflicto.String()
		}
		c.JSON(http.StatusConflict, resp)
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	}
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// Raices devuelve los nodos de nivel 1, desde caché cuando está fresca.
func (h *ArbolesHandler) Raices(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	if raices, ok := e.cache.Raices(); ok {
		c.JSON(http.StatusOK, raices)
		return
	}
	raices, err := e.svc.ObtenerRaices(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	e.cache.GuardarRaices(raices)
	c.JSON(http.StatusOK, raices)
}

// Hijos implementa la carga perezosa: una rama se consulta una sola vez hasta
// la próxima escritura del árbol.
func (h *ArbolesHandler) Hijos(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if hijos, ok := e.cache.Hijos(id); ok {
		c.JSON(http.StatusOK, hijos)
		return
	}
	hijos, err := e.svc.ObtenerHijos(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	e.cache.GuardarHijos(id, hijos)
	c.JSON(http.StatusOK, hijos)
}

func (h *ArbolesHandler) Obtener(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := e.svc.ObtenerNodo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ArbolesHandler) ObtenerPorCodigo(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	resp, err := e.svc.ObtenerPorCodigo(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ArbolesHandler) Buscar(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	var filtro dto.BuscarNodosFilter
	if err := c.ShouldBindQuery(&filtro); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := e.svc.Buscar(c.Request.Context(), filtro)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ArbolesHandler) Crear(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	var req dto.CrearNodoRequest
	if !bindAndValidate(c, &req) {
		return
	}

	var resp *dto.NodoResponse
	var err error
	// En platos un código vacío se autogenera a partir del padre
	if platos, esPlatos := e.svc.(service.PlatosService); esPlatos && req.Codigo == "" {
		resp, err = platos.CrearConCodigoAutomatico(c.Request.Context(), req)
	} else {
		resp, err = e.svc.Crear(c.Request.Context(), req)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	e.cache.InvalidarTodo()
	c.JSON(http.StatusCreated, resp)
}

func (h *ArbolesHandler) Actualizar(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarNodoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := e.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	e.cache.InvalidarTodo()
	c.JSON(http.StatusOK, resp)
}

func (h *ArbolesHandler) Eliminar(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := e.svc.Eliminar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	e.cache.InvalidarTodo()
	c.JSON(http.StatusOK, resp)
}

func (h *ArbolesHandler) ValidarCodigo(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	codigo := c.Query("codigo")
	if codigo == "" {
		c.JSON(http.StatusBadRequest, apierror.New("Parametro codigo requerido"))
		return
	}
	var excludeID *uuid.UUID
	if raw := c.Query("exclude_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("exclude_id invalido"))
			return
		}
		excludeID = &id
	}
	resp, err := e.svc.ValidarCodigoUnico(c.Request.Context(), codigo, excludeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ruta devuelve el breadcrumb de ancestros. Una ruta truncada por el guarda
// de profundidad responde 200 con truncada=true y queda en el log.
func (h *ArbolesHandler) Ruta(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := e.svc.ObtenerRutaCompleta(c.Request.Context(), id)
	if err != nil {
		var truncada *service.RutaTruncada
		if errors.As(err, &truncada) {
			log.Warn().
				Str("arbol", c.Param("arbol")).
				Str("nodo_id", truncada.NodoID.String()).
				Int("profundidad", truncada.Profundidad).
				Msg("ruta truncada por el guarda de profundidad")
			c.JSON(http.StatusOK, resp)
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ContarNivel expone el conteo por nivel para los tableros.
func (h *ArbolesHandler) ContarNivel(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	nivel, err := strconv.Atoi(c.Query("nivel"))
	if err != nil || nivel < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("Parametro nivel invalido"))
		return
	}
	total, err := e.svc.ContarPorNivel(c.Request.Context(), nivel)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nivel": nivel, "total": total})
}

// SiguienteCodigo propone el próximo código libre (solo árbol de platos).
func (h *ArbolesHandler) SiguienteCodigo(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	platos, esPlatos := e.svc.(service.PlatosService)
	if !esPlatos {
		c.JSON(http.StatusNotFound, apierror.New("Este arbol no genera codigos"))
		return
	}
	var parentID *uuid.UUID
	if raw := c.Query("parent_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("parent_id invalido"))
			return
		}
		parentID = &id
	}
	codigo, err := platos.GenerarSiguienteCodigo(c.Request.Context(), parentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"codigo": codigo})
}

// InvalidarCache fuerza la recarga del árbol (refresco manual en pantalla).
func (h *ArbolesHandler) InvalidarCache(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	e.cache.InvalidarTodo()
	c.Status(http.StatusNoContent)
}
