package ethereum

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/zero-tech/zchain-bridge/pkg/chains"
	"github.com/zero-tech/zchain-bridge/pkg/config"
)

// Pool manages one Client per registered chain, dialing lazily on first use.
type Pool struct {
	registry *chains.Registry
	cfg      *config.SignerConfig
	logger   *zap.Logger

	mu      sync.Mutex
	clients map[uint64]*Client
}

// NewPool creates a client pool over the given registry
func NewPool(registry *chains.Registry, cfg *config.SignerConfig, logger *zap.Logger) *Pool {
	return &Pool{
		registry: registry,
		cfg:      cfg,
		logger:   logger,
		clients:  make(map[uint64]*Client),
	}
}

// Client returns the client for chainID, dialing it if necessary
func (p *Pool) Client(chainID uint64) (*Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[chainID]; ok {
		return c, nil
	}

	chain, err := p.registry.Info(chainID)
	if err != nil {
		return nil, err
	}

	c, err := NewClient(chain, p.cfg, p.logger)
	if err != nil {
		return nil, fmt.Errorf("dial chain %d: %w", chainID, err)
	}
	p.clients[chainID] = c
	return c, nil
}

// Close closes every dialed client
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, c := range p.clients {
		c.Close()
		delete(p.clients, id)
	}
}
