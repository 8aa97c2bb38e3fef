package worker

// dlq.go — cola de cartas muertas
// Los trabajos que agotan sus reintentos (envío de alertas, generación de
// reportes) terminan aquí para reprocesarse a mano. Una lista de Redis por
// cola de origen: dlq:{cola}.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// EntradaDLQ conserva el trabajo fallido junto con su contexto de falla.
type EntradaDLQ struct {
	ColaOrigen string          `json:"cola_origen"`
	TipoJob    string          `json:"tipo_job"`
	Payload    json.RawMessage `json:"payload"`
	Motivo     string          `json:"motivo"`
	FallidoEn  time.Time       `json:"fallido_en"`
	Intentos   int             `json:"intentos"`
}

// EnviarADLQ mueve un trabajo fallido a la cola de cartas muertas. Nunca
// devuelve error: perder la entrada se registra, no tumba al worker.
func EnviarADLQ(ctx context.Context, rdb *redis.Client, cola, tipoJob string, payload json.RawMessage, motivo string, intentos int) {
	entrada := EntradaDLQ{
		ColaOrigen: cola,
		TipoJob:    tipoJob,
		Payload:    payload,
		Motivo:     motivo,
		FallidoEn:  time.Now().UTC(),
		Intentos:   intentos,
	}

	data, err := json.Marshal(entrada)
	if err != nil {
		log.Error().Err(err).Str("cola", cola).Msg("dlq: no se pudo serializar la entrada")
		return
	}

	clave := DLQPrefix + cola
	if err := rdb.LPush(ctx, clave, data).Err(); err != nil {
		log.Error().Err(err).Str("clave", clave).Msg("dlq: no se pudo encolar la entrada")
		return
	}

	log.Warn().
		Str("cola", cola).
		Str("tipo_job", tipoJob).
		Str("motivo", motivo).
		Int("intentos", intentos).
		Msg("dlq: trabajo movido a cartas muertas")
}

// LargoDLQ devuelve cuántas entradas esperan reproceso en la DLQ de una cola.
func LargoDLQ(ctx context.Context, rdb *redis.Client, cola string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+cola).Result()
}
