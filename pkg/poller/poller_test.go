package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/zero-tech/zchain-bridge/pkg/indexer"
)

type mockStatusSource struct {
	BridgeStatusFunc func(ctx context.Context, wallet string, depositCount uint64, fromChainID uint64) (*indexer.StatusRecord, error)
}

func (m *mockStatusSource) BridgeStatus(ctx context.Context, wallet string, depositCount uint64, fromChainID uint64) (*indexer.StatusRecord, error) {
	return m.BridgeStatusFunc(ctx, wallet, depositCount, fromChainID)
}

func TestStart_StopsOnTerminalStatus(t *testing.T) {
	var calls atomic.Int32
	source := &mockStatusSource{
		BridgeStatusFunc: func(context.Context, string, uint64, uint64) (*indexer.StatusRecord, error) {
			n := calls.Add(1)
			if n < 3 {
				return &indexer.StatusRecord{Status: indexer.StatusProcessing}, nil
			}
			return &indexer.StatusRecord{Status: indexer.StatusCompleted}, nil
		},
	}

	var seen []indexer.Status
	p := New(source, time.Millisecond, zap.NewNop())
	h := p.Start(context.Background(), "0xabc", 1, 9369, func(r *indexer.StatusRecord) {
		seen = append(seen, r.Status)
	})

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop on terminal status")
	}

	if len(seen) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(seen))
	}
	if seen[2] != indexer.StatusCompleted {
		t.Errorf("last update should be completed, got %s", seen[2])
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected exactly 3 fetches, got %d", got)
	}
}

func TestStart_StopCancelsFurtherFetches(t *testing.T) {
	var calls atomic.Int32
	source := &mockStatusSource{
		BridgeStatusFunc: func(context.Context, string, uint64, uint64) (*indexer.StatusRecord, error) {
			calls.Add(1)
			return &indexer.StatusRecord{Status: indexer.StatusPending}, nil
		},
	}

	p := New(source, 5*time.Millisecond, zap.NewNop())
	h := p.Start(context.Background(), "0xabc", 1, 9369, func(*indexer.StatusRecord) {})

	time.Sleep(20 * time.Millisecond)
	h.Stop()
	after := calls.Load()

	time.Sleep(30 * time.Millisecond)
	if calls.Load() != after {
		t.Error("fetches continued after Stop")
	}

	// Stop is idempotent
	h.Stop()
}

func TestStart_TransientErrorsRetried(t *testing.T) {
	var calls atomic.Int32
	source := &mockStatusSource{
		BridgeStatusFunc: func(context.Context, string, uint64, uint64) (*indexer.StatusRecord, error) {
			n := calls.Add(1)
			if n == 1 {
				return nil, errors.New("indexer unreachable")
			}
			return &indexer.StatusRecord{Status: indexer.StatusFailed}, nil
		},
	}

	var updates int
	p := New(source, time.Millisecond, zap.NewNop())
	h := p.Start(context.Background(), "0xabc", 1, 9369, func(*indexer.StatusRecord) {
		updates++
	})

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not recover from transient error")
	}

	if updates != 1 {
		t.Errorf("expected 1 update after transient failure, got %d", updates)
	}
}

func TestStart_ParentContextCancellation(t *testing.T) {
	source := &mockStatusSource{
		BridgeStatusFunc: func(context.Context, string, uint64, uint64) (*indexer.StatusRecord, error) {
			return &indexer.StatusRecord{Status: indexer.StatusPending}, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := New(source, time.Millisecond, zap.NewNop())
	h := p.Start(ctx, "0xabc", 1, 9369, func(*indexer.StatusRecord) {})

	cancel()
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("poller did not exit on context cancellation")
	}
}
