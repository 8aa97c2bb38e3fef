package infra

import (
	"errors"
	"sync"
	"time"
)

// ── Cortacircuito para el relay SMTP ─────────────────────────────────────────
// Implementación clásica Cerrado → Abierto → Semiabierto. Cuando el relay de
// correo deja de responder los workers dejan de insistir y el trabajo termina
// en la DLQ en vez de bloquear la cola.
//
// Estados:
//   - Cerrado:    operación normal, los envíos pasan
//   - Abierto:    todo envío falla de inmediato
//   - Semiabierto: se permite un envío de sondeo para ver si el relay volvió

// CBState representa el estado actual del cortacircuito.
type CBState int

const (
	CBClosed   CBState = iota // cerrado — los envíos fluyen
	CBOpen                    // abierto — falla rápida
	CBHalfOpen                // semiabierto — un envío de sondeo
)

// String devuelve el nombre del estado (para logs).
func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "cerrado"
	case CBOpen:
		return "abierto"
	case CBHalfOpen:
		return "semiabierto"
	default:
		return "desconocido"
	}
}

// ErrCircuitOpen se devuelve cuando Execute se llama con el circuito abierto.
var ErrCircuitOpen = errors.New("el circuito SMTP está abierto")

// CircuitBreakerConfig agrupa los parámetros ajustables.
type CircuitBreakerConfig struct {
	FailureThreshold int           // fallos consecutivos para abrir
	SuccessThreshold int           // aciertos en semiabierto para cerrar
	OpenTimeout      time.Duration // tiempo abierto antes de sondear
}

// DefaultCBConfig devuelve los valores usados para el relay SMTP: los
// servidores de correo suelen rechazar en ráfaga, así que abrimos rápido
// (3 fallos), cerramos con un solo acierto y esperamos dos minutos antes
// de volver a intentar.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      2 * time.Minute,
	}
}

// CircuitBreaker implementa el patrón con transiciones seguras entre goroutines.
type CircuitBreaker struct {
	mu               sync.Mutex
	state            CBState
	failureCount     int
	successCount     int
	lastFailureTime  time.Time
	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
}

// NewCircuitBreaker crea un cortacircuito en estado cerrado.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 2 * time.Minute
	}
	return &CircuitBreaker{
		state:            CBClosed,
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		openTimeout:      cfg.OpenTimeout,
	}
}

// State devuelve el estado actual (seguro para lecturas concurrentes).
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	// Pasa de abierto a semiabierto cuando venció el tiempo de espera
	if cb.state == CBOpen && time.Since(cb.lastFailureTime) >= cb.openTimeout {
		cb.state = CBHalfOpen
		cb.successCount = 0
	}
	return cb.state
}

// Execute corre fn a través del cortacircuito.
// Devuelve ErrCircuitOpen de inmediato si el circuito está abierto.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	state := cb.State()

	if state == CBOpen {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.onFailure()
		return err
	}
	cb.onSuccess()
	return nil
}

// onFailure registra un fallo (debe llamarse con el lock tomado).
func (cb *CircuitBreaker) onFailure() {
	cb.failureCount++
	cb.lastFailureTime = time.Now()

	switch cb.state {
	case CBClosed:
		if cb.failureCount >= cb.failureThreshold {
			cb.state = CBOpen
			cb.successCount = 0
		}
	case CBHalfOpen:
		// El sondeo falló, vuelve a abierto
		cb.state = CBOpen
		cb.failureCount = 0
	}
}

// onSuccess registra un acierto (debe llamarse con el lock tomado).
func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case CBClosed:
		cb.failureCount = 0
	case CBHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.state = CBClosed
			cb.failureCount = 0
			cb.successCount = 0
		}
	}
}
