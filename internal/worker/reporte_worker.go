package worker

// reporte_worker.go
// Processes inventory-report jobs: queries level-5 products, renders the
// valuation PDF and mails it to the requested recipients.

import (
	"context"
	"encoding/json"

	"cocinaclinica/internal/infra"
	"cocinaclinica/internal/repository"
	"cocinaclinica/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ReporteJobPayload is the job envelope sent to QueueReportes.
type ReporteJobPayload struct {
	// TipoRama restringe el reporte a una rama; nil = todas.
	TipoRama      *string  `json:"tipo_rama,omitempty"`
	Destinatarios []string `json:"destinatarios"`
}

type ReporteWorker struct {
	nodos       repository.NodoRepository
	mailer      *infra.Mailer
	cb          *infra.CircuitBreaker
	rdb         *redis.Client
	storagePath string
}

func NewReporteWorker(nodos repository.NodoRepository, mailer *infra.Mailer, cb *infra.CircuitBreaker, rdb *redis.Client, storagePath string) *ReporteWorker {
	return &ReporteWorker{nodos: nodos, mailer: mailer, cb: cb, rdb: rdb, storagePath: storagePath}
}

func (w *ReporteWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReporteJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("reporte_worker: invalid payload")
		return
	}

	filtros := map[string]interface{}{
		"nivel_actual": service.ConfigMateriaPrima().NivelStock,
		"maneja_stock": true,
	}
	titulo := "Inventario de materia prima"
	if payload.TipoRama != nil {
		filtros["tipo_rama"] = *payload.TipoRama
		titulo += " — " + *payload.TipoRama
	}

	productos, err := w.nodos.Buscar(ctx, "", filtros, repository.LimiteBusqueda)
	if err != nil {
		log.Error().Err(err).Msg("reporte_worker: query failed")
		EnviarADLQ(ctx, w.rdb, QueueReportes, "reporte_inventario", raw, err.Error(), 1)
		return
	}

	filas := make([]infra.FilaInventario, 0, len(productos))
	for _, p := range productos {
		filas = append(filas, infra.FilaInventario{
			Producto: p,
			Estado:   service.ClasificarStock(p.StockActual, p.StockMinimo, p.StockMaximo),
			Valor:    service.ValorInventario(p),
		})
	}

	pdfPath, err := infra.GenerateInventarioPDF(titulo, filas, w.storagePath)
	if err != nil {
		log.Error().Err(err).Msg("reporte_worker: PDF generation failed")
		EnviarADLQ(ctx, w.rdb, QueueReportes, "reporte_inventario", raw, err.Error(), 1)
		return
	}
	log.Info().Str("pdf", pdfPath).Int("productos", len(filas)).Msg("reporte_worker: PDF generated")

	if len(payload.Destinatarios) == 0 {
		return // solo generar y almacenar
	}
	err = w.cb.Execute(func() error {
		return w.mailer.Send(payload.Destinatarios, titulo, "Se adjunta el reporte de inventario.", pdfPath)
	})
	if err != nil {
		log.Error().Err(err).Msg("reporte_worker: failed to mail report")
		EnviarADLQ(ctx, w.rdb, QueueReportes, "reporte_inventario", raw, err.Error(), 1)
		return
	}
	log.Info().Strs("destinatarios", payload.Destinatarios).Msg("reporte_worker: report mailed")
}
