package flow

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/zero-tech/zchain-bridge/internal/metrics"
)

// Manager tracks live flows by session id
type Manager struct {
	deps Deps

	mu    sync.RWMutex
	flows map[uuid.UUID]*Flow
}

// NewManager creates a flow manager
func NewManager(deps Deps) *Manager {
	return &Manager{
		deps:  deps,
		flows: make(map[uuid.UUID]*Flow),
	}
}

// Create opens a new flow for a wallet session
func (m *Manager) Create(wallet WalletContext) *Flow {
	f := New(m.deps, wallet)

	m.mu.Lock()
	m.flows[f.ID()] = f
	m.mu.Unlock()

	metrics.FlowsStarted.WithLabelValues(strconv.FormatUint(wallet.ChainID, 10)).Inc()
	metrics.ActiveFlows.Set(float64(m.Count()))
	return f
}

// Get returns a flow by id
func (m *Manager) Get(id uuid.UUID) (*Flow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.flows[id]
	if !ok {
		return nil, fmt.Errorf("flow %s not found", id)
	}
	return f, nil
}

// Remove closes a flow and drops it from the manager
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	f, ok := m.flows[id]
	delete(m.flows, id)
	m.mu.Unlock()

	if ok {
		f.Close()
	}
	metrics.ActiveFlows.Set(float64(m.Count()))
}

// Count returns the number of live flows
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.flows)
}

// Shutdown closes every live flow
func (m *Manager) Shutdown() {
	m.mu.Lock()
	flows := make([]*Flow, 0, len(m.flows))
	for _, f := range m.flows {
		flows = append(flows, f)
	}
	m.flows = make(map[uuid.UUID]*Flow)
	m.mu.Unlock()

	for _, f := range flows {
		f.Close()
	}
	metrics.ActiveFlows.Set(0)
}
