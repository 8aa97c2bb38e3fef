package worker

// alerta_cron.go
// Background goroutine that periodically scans level-5 products whose stock
// fell below the minimum and enqueues one alert job with the whole batch.
// A Redis marker per product suppresses repeated alerts for 24h, so a product
// that stays low does not spam the kitchen every tick.

import (
	"context"
	"strings"
	"time"

	"cocinaclinica/internal/repository"
	"cocinaclinica/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	alertaMarkerPrefix = "alertas:enviada:"
	alertaMarkerTTL    = 24 * time.Hour
)

// AlertaCronConfig holds all dependencies for the scan goroutine.
type AlertaCronConfig struct {
	Nodos         repository.NodoRepository
	Dispatcher    *Dispatcher
	RDB           *redis.Client
	Destinatarios []string
	Intervalo     time.Duration
	// NivelProducto es el nivel del árbol que maneja stock; 0 toma el del
	// árbol de materia prima.
	NivelProducto int
}

// StartAlertaCron launches the periodic low-stock scan. It respects the
// context for graceful shutdown.
func StartAlertaCron(ctx context.Context, cfg AlertaCronConfig) {
	if cfg.Intervalo <= 0 {
		cfg.Intervalo = 30 * time.Minute
	}
	if cfg.NivelProducto <= 0 {
		cfg.NivelProducto = service.ConfigMateriaPrima().NivelStock
	}
	go func() {
		ticker := time.NewTicker(cfg.Intervalo)
		defer ticker.Stop()

		log.Info().Dur("intervalo", cfg.Intervalo).Msg("alerta_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("alerta_cron: shutting down")
				return
			case <-ticker.C:
				scanStockBajo(ctx, cfg)
			}
		}
	}()
}

func scanStockBajo(ctx context.Context, cfg AlertaCronConfig) {
	if len(cfg.Destinatarios) == 0 {
		return
	}
	productos, err := cfg.Nodos.FindStockBajo(ctx, cfg.NivelProducto, nil)
	if err != nil {
		log.Error().Err(err).Msg("alerta_cron: low-stock query failed")
		return
	}
	if len(productos) == 0 {
		return
	}

	var pendientes []AlertaProducto
	for _, p := range productos {
		// SETNX marker: only the first tick after the drop alerts
		marker := alertaMarkerPrefix + p.ID.String()
		fresh, err := cfg.RDB.SetNX(ctx, marker, "1", alertaMarkerTTL).Result()
		if err != nil {
			log.Error().Err(err).Str("producto_id", p.ID.String()).Msg("alerta_cron: marker check failed")
			continue
		}
		if !fresh {
			continue
		}

		ap := AlertaProducto{
			Codigo: p.Codigo,
			Nombre: p.Nombre,
			Estado: service.ClasificarStock(p.StockActual, p.StockMinimo, p.StockMaximo),
		}
		if p.StockActual != nil {
			ap.StockActual = p.StockActual.String()
		}
		if p.StockMinimo != nil {
			ap.StockMinimo = p.StockMinimo.String()
		}
		if p.UnidadStock != nil {
			ap.Unidad = *p.UnidadStock
		}
		pendientes = append(pendientes, ap)
	}

	if len(pendientes) == 0 {
		return
	}
	payload := AlertaStockPayload{Destinatarios: cfg.Destinatarios, Productos: pendientes}
	if err := cfg.Dispatcher.EnqueueAlerta(ctx, payload); err != nil {
		log.Error().Err(err).Msg("alerta_cron: enqueue failed")
		return
	}
	log.Info().Int("productos", len(pendientes)).Msg("alerta_cron: alert job enqueued")
}

// ParseDestinatarios splits the ALERTAS_EMAIL config value.
func ParseDestinatarios(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
