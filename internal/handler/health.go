package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"cocinaclinica/internal/worker"
)

// Health reporta el estado de las dependencias del servicio. Cuando redis
// está disponible incluye la profundidad de las colas de trabajos y sus
// colas de cartas muertas; nunca expone credenciales ni detalles internos.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		estadoDB := "conectada"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			estadoDB = "error"
		}

		estadoRedis := "conectado"
		if rdb.Ping(ctx).Err() != nil {
			estadoRedis = "error"
		}

		respuesta := gin.H{
			"ok":    true,
			"db":    estadoDB,
			"redis": estadoRedis,
		}

		if estadoRedis == "conectado" {
			colas := gin.H{}
			for _, cola := range []string{worker.QueueAlertas, worker.QueueReportes} {
				pendientes, _ := rdb.LLen(ctx, cola).Result()
				muertos, _ := worker.LargoDLQ(ctx, rdb, cola)
				colas[cola] = gin.H{"pendientes": pendientes, "dlq": muertos}
			}
			respuesta["colas"] = colas
		}

		status := http.StatusOK
		if estadoDB != "conectada" || estadoRedis != "conectado" {
			status = http.StatusServiceUnavailable
			respuesta["ok"] = false
		}

		c.JSON(status, respuesta)
	}
}
