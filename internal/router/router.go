package router

import (
	"time"

	"cocinaclinica/internal/config"
	"cocinaclinica/internal/handler"
	"cocinaclinica/internal/middleware"
	"cocinaclinica/internal/model"
	"cocinaclinica/internal/repository"
	"cocinaclinica/internal/service"
	"cocinaclinica/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CorsOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	materiaPrimaRepo := repository.NewNodoRepository(db, model.TablaMateriaPrima)
	platosRepo := repository.NewNodoRepository(db, model.TablaPlatos)
	recetasRepo := repository.NewNodoRepository(db, model.TablaRecetas)
	ingredienteRepo := repository.NewIngredienteRepository(db)
	movimientoRepo := repository.NewMovimientoRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	materiaPrimaSvc := service.NewMateriaPrimaService(materiaPrimaRepo, movimientoRepo, log.Logger)
	platosSvc := service.NewPlatosService(platosRepo)
	recetasSvc := service.NewRecetasService(recetasRepo, ingredienteRepo, materiaPrimaRepo, log.Logger)
	proveedorSvc := service.NewProveedorService(proveedorRepo, materiaPrimaRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	arbolesH := handler.NewArbolesHandler(materiaPrimaSvc, platosSvc, recetasSvc)
	recetasH := handler.NewRecetasHandler(recetasSvc, arbolesH.Cache(handler.ArbolRecetas))
	inventarioH := handler.NewInventarioHandler(materiaPrimaSvc, dispatcher, arbolesH.Cache(handler.ArbolMateriaPrima))
	proveedoresH := handler.NewProveedoresHandler(proveedorSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Árboles — lecturas para todos los roles de cocina
		lectura := middleware.RequireRole("cocinero", "supervisor", "administrador")
		arb := v1.Group("/arboles/:arbol")
		{
			arb.GET("/raices", lectura, arbolesH.Raices)
			arb.GET("/buscar", lectura, arbolesH.Buscar)
			arb.GET("/contar", lectura, arbolesH.ContarNivel)
			arb.GET("/codigo/:codigo", lectura, arbolesH.ObtenerPorCodigo)
			arb.GET("/validar-codigo", lectura, arbolesH.ValidarCodigo)
			arb.GET("/siguiente-codigo", lectura, arbolesH.SiguienteCodigo)
			arb.GET("/nodos/:id", lectura, arbolesH.Obtener)
			arb.GET("/nodos/:id/hijos", lectura, arbolesH.Hijos)
			arb.GET("/nodos/:id/ruta", lectura, arbolesH.Ruta)

			// Escrituras de estructura — supervisor o administrador
			escritura := middleware.RequireRole("supervisor", "administrador")
			arb.POST("/nodos", escritura, arbolesH.Crear)
			arb.PUT("/nodos/:id", escritura, arbolesH.Actualizar)
			arb.DELETE("/nodos/:id", escritura, arbolesH.Eliminar)
			arb.POST("/cache/invalidar", escritura, arbolesH.InvalidarCache)
		}

		// Recetas — ingredientes y duplicación
		rec := v1.Group("/recetas", lectura)
		{
			rec.GET("/conectores", recetasH.Conectores)
			rec.GET("/por-plato/:platoId", recetasH.PorPlato)
			rec.GET("/:id/ingredientes", recetasH.ListarIngredientes)
			rec.POST("/:id/ingredientes", recetasH.AgregarIngrediente)
			rec.POST("/:id/duplicar", recetasH.Duplicar)
		}
		ing := v1.Group("/ingredientes", lectura)
		{
			ing.PUT("/:ingredienteId", recetasH.ActualizarIngrediente)
			ing.DELETE("/:ingredienteId", recetasH.EliminarIngrediente)
		}

		// Inventario — ajustes restringidos, lecturas amplias
		inv := v1.Group("/inventario")
		{
			inv.GET("/presentaciones", lectura, inventarioH.Presentaciones)
			inv.GET("/stock-bajo", lectura, inventarioH.StockBajo)
			inv.GET("/valor", middleware.RequireRole("supervisor", "administrador"), inventarioH.ValorInventario)
			inv.GET("/resumen/:tipoRama", lectura, inventarioH.Resumen)
			inv.GET("/productos/:id/rollup", lectura, inventarioH.Rollup)
			inv.GET("/productos/:id/movimientos", lectura, inventarioH.Movimientos)
			inv.PATCH("/productos/:id/stock", middleware.RequireRole("supervisor", "administrador"), inventarioH.AjustarStock)
			inv.POST("/reportes", middleware.RequireRole("supervisor", "administrador"), inventarioH.SolicitarReporte)
		}

		// Proveedores — administrador
		prov := v1.Group("/proveedores", middleware.RequireRole("administrador"))
		{
			prov.POST("", proveedoresH.Crear)
			prov.GET("", proveedoresH.Listar)
			prov.GET("/:id", proveedoresH.ObtenerPorID)
			prov.PUT("/:id", proveedoresH.Actualizar)
			prov.DELETE("/:id", proveedoresH.Eliminar)
			prov.POST("/:id/vinculaciones", proveedoresH.Vincular)
			prov.GET("/:id/vinculaciones", proveedoresH.ListarVinculaciones)
		}
		vinc := v1.Group("/vinculaciones", middleware.RequireRole("administrador"))
		{
			vinc.PUT("/:vinculacionId", proveedoresH.ActualizarVinculacion)
			vinc.DELETE("/:vinculacionId", proveedoresH.Desvincular)
		}
		v1.GET("/presentaciones/:presentacionId/proveedores",
			middleware.RequireRole("supervisor", "administrador"), proveedoresH.ProveedoresDePresentacion)

		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
