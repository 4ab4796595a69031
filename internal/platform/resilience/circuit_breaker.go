package resilience

import (
	"errors"

	"github.com/riskibarqy/golf-ingest/internal/platform/logging"
	"github.com/sony/gobreaker"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker guards one upstream dependency. Only errors accepted by
// the failure predicate count towards tripping; the rest pass through.
type CircuitBreaker struct {
	enabled bool
	cb      *gobreaker.CircuitBreaker
}

func NewCircuitBreaker(name string, cfg CircuitBreakerConfig, isFailure func(error) bool, logger *logging.Logger) *CircuitBreaker {
	cfg = NormalizeCircuitBreakerConfig(cfg)
	if logger == nil {
		logger = logging.Default()
	}
	if isFailure == nil {
		isFailure = func(err error) bool { return err != nil }
	}

	threshold := uint32(cfg.FailureThreshold)
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: uint32(cfg.HalfOpenMaxReq),
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", mapState(from),
				"to", mapState(to),
			)
		},
	}

	return &CircuitBreaker{
		enabled: cfg.Enabled,
		cb:      gobreaker.NewCircuitBreaker(settings),
	}
}

// Execute runs fn through the breaker. A rejected call returns ErrCircuitOpen
// without invoking fn.
func (b *CircuitBreaker) Execute(fn func() (any, error)) (any, error) {
	if b == nil || !b.enabled {
		return fn()
	}

	out, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitOpen
	}
	return out, err
}

func (b *CircuitBreaker) State() CircuitState {
	if b == nil || !b.enabled {
		return CircuitStateClosed
	}
	return mapState(b.cb.State())
}

func mapState(state gobreaker.State) CircuitState {
	switch state {
	case gobreaker.StateOpen:
		return CircuitStateOpen
	case gobreaker.StateHalfOpen:
		return CircuitStateHalfOpen
	default:
		return CircuitStateClosed
	}
}
