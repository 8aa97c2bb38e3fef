package worker

// alertas_worker.go
// Processes stock-alert jobs from QueueAlertas: builds the alert body and
// sends it through SMTP behind the circuit breaker. Jobs that fail with the
// breaker open (or any SMTP error) go to the DLQ for manual inspection.

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cocinaclinica/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// AlertaProducto is one low-stock product snapshot inside an alert job.
type AlertaProducto struct {
	Codigo      string `json:"codigo"`
	Nombre      string `json:"nombre"`
	StockActual string `json:"stock_actual"`
	StockMinimo string `json:"stock_minimo"`
	Unidad      string `json:"unidad"`
	Estado      string `json:"estado"`
}

// AlertaStockPayload is the job envelope sent to QueueAlertas.
type AlertaStockPayload struct {
	Destinatarios []string         `json:"destinatarios"`
	Productos     []AlertaProducto `json:"productos"`
}

type AlertasWorker struct {
	mailer *infra.Mailer
	cb     *infra.CircuitBreaker
	rdb    *redis.Client
}

func NewAlertasWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker, rdb *redis.Client) *AlertasWorker {
	return &AlertasWorker{mailer: mailer, cb: cb, rdb: rdb}
}

func (w *AlertasWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload AlertaStockPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alertas_worker: invalid payload")
		return
	}
	if len(payload.Destinatarios) == 0 || len(payload.Productos) == 0 {
		log.Warn().Msg("alertas_worker: empty payload — skipping")
		return
	}

	subject := fmt.Sprintf("Alerta de stock: %d producto(s) por debajo del mínimo", len(payload.Productos))
	body := buildAlertaBody(payload.Productos)

	err := w.cb.Execute(func() error {
		return w.mailer.Send(payload.Destinatarios, subject, body, "")
	})
	if err != nil {
		log.Error().Err(err).Int("productos", len(payload.Productos)).Msg("alertas_worker: failed to send alert")
		EnviarADLQ(ctx, w.rdb, QueueAlertas, "alerta_stock", raw, err.Error(), 1)
		return
	}
	log.Info().
		Int("productos", len(payload.Productos)).
		Strs("destinatarios", payload.Destinatarios).
		Msg("alertas_worker: alert sent")
}

func buildAlertaBody(productos []AlertaProducto) string {
	var b strings.Builder
	b.WriteString("Los siguientes productos están por debajo de su stock mínimo:\n\n")
	for _, p := range productos {
		fmt.Fprintf(&b, "  [%s] %s (%s): %s %s — mínimo %s %s\n",
			p.Estado, p.Nombre, p.Codigo, p.StockActual, p.Unidad, p.StockMinimo, p.Unidad)
	}
	b.WriteString("\nRevise el panel de inventario para reponer.\n")
	return b.String()
}
