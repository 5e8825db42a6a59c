// Package poller implements bounded-interval polling of bridge deposit
// status with an explicit stop handle.
package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zero-tech/zchain-bridge/pkg/indexer"
)

// DefaultInterval is the re-fetch interval while a deposit is in flight
const DefaultInterval = 5 * time.Second

// StatusSource is the subset of the indexer client the poller needs
type StatusSource interface {
	BridgeStatus(ctx context.Context, wallet string, depositCount uint64, fromChainID uint64) (*indexer.StatusRecord, error)
}

// Poller repeatedly fetches deposit status until a terminal state is seen
// or the handle is stopped
type Poller struct {
	source   StatusSource
	interval time.Duration
	logger   *zap.Logger
}

// New creates a poller. A non-positive interval falls back to DefaultInterval.
func New(source StatusSource, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{source: source, interval: interval, logger: logger}
}

// Handle controls one polling loop
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop cancels the loop and waits for it to exit. After Stop returns no
// further fetches are scheduled. Safe to call more than once.
func (h *Handle) Stop() {
	h.once.Do(h.cancel)
	<-h.done
}

// Done is closed when the loop has exited, either from Stop or from
// reaching a terminal status
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Start begins polling the deposit. onUpdate is invoked for every successful
// fetch, including the terminal one; fetch failures are treated as transient
// and retried on the existing interval. The loop exits once the status is
// terminal or the handle is stopped.
func (p *Poller) Start(ctx context.Context, wallet string, depositCount, fromChainID uint64, onUpdate func(*indexer.StatusRecord)) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		defer cancel()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			record, err := p.source.BridgeStatus(ctx, wallet, depositCount, fromChainID)
			switch {
			case ctx.Err() != nil:
				return
			case err != nil:
				p.logger.Warn("Status poll failed, will retry",
					zap.Uint64("deposit_count", depositCount),
					zap.Error(err))
			default:
				onUpdate(record)
				if record.Status.Terminal() {
					p.logger.Debug("Polling stopped on terminal status",
						zap.Uint64("deposit_count", depositCount),
						zap.String("status", string(record.Status)))
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return h
}
