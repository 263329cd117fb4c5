package broker

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/quarkmq/consumer/internal/config"
	"github.com/quarkmq/consumer/internal/log"
	"github.com/quarkmq/consumer/internal/message"
)

// Pool manages multiple MQTT connections for high throughput. Hand-backs
// round-robin across connections; the ingest subscription uses one.
type Pool struct {
	clients []*Client
	next    atomic.Uint64
	size    int
	log     *log.Logger
}

// NewPool creates a new MQTT connection pool.
func NewPool(cfg *config.MQTTConfig, poolSize int, logger *log.Logger) (*Pool, error) {
	if poolSize < 1 {
		poolSize = 1
	}

	// A unique base client ID per process instance prevents broker-side
	// collisions when several consumers run with the same config.
	baseClientID := fmt.Sprintf("%s-%s", cfg.ClientID, uuid.NewString())

	clients := make([]*Client, poolSize)

	for i := 0; i < poolSize; i++ {
		clientCfg := *cfg
		clientCfg.ClientID = fmt.Sprintf("%s-%d", baseClientID, i)

		client, err := NewClient(&clientCfg, logger)
		if err != nil {
			for j := 0; j < i; j++ {
				_ = clients[j].Close()
			}
			return nil, fmt.Errorf("failed to create client %d: %w", i, err)
		}

		clients[i] = client
	}

	return &Pool{
		clients: clients,
		size:    poolSize,
		log:     logger,
	}, nil
}

// SendBack hands one failed message back using round-robin across
// connections.
func (p *Pool) SendBack(ctx context.Context, msg *message.Message, delayLevel int, brokerName string) error {
	idx := p.next.Add(1) % uint64(p.size) // #nosec G115
	return p.clients[idx].SendBack(ctx, msg, delayLevel, brokerName)
}

// Subscribe starts the ingest subscription on the first connection.
func (p *Pool) Subscribe(handler MessageHandler) error {
	return p.clients[0].Subscribe(handler)
}

// Close closes all connections in the pool
func (p *Pool) Close() error {
	var lastErr error
	for i, client := range p.clients {
		if err := client.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close client %d: %w", i, err)
		}
	}
	return lastErr
}
