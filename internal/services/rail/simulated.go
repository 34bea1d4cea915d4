package rail

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"
)

// SimulatedClient is a development rail that fails a configured fraction of
// calls. Useful for exercising the circuit breaker without a real processor.
type SimulatedClient struct {
	failureRate float64

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSimulatedClient(failureRate float64) *SimulatedClient {
	return &SimulatedClient{
		failureRate: failureRate,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *SimulatedClient) SettlePayment(ctx context.Context, _ Settlement) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	roll := c.rnd.Float64()
	c.mu.Unlock()

	if roll < c.failureRate {
		return errors.New("settlement rejected by rail")
	}
	return nil
}
