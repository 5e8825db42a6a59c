package signer

import (
	"context"

	"github.com/zero-tech/zchain-bridge/pkg/indexer"
)

type mockBackend struct {
	SubmitBridgeTokenFunc func(ctx context.Context, wallet string, payload *indexer.BridgeTokenPayload) (*indexer.TransactionResponse, error)
	FinalizeBridgeFunc    func(ctx context.Context, wallet string, payload *indexer.FinalizeBridgePayload) (*indexer.TransactionResponse, error)
}

func (m *mockBackend) SubmitBridgeToken(ctx context.Context, wallet string, payload *indexer.BridgeTokenPayload) (*indexer.TransactionResponse, error) {
	return m.SubmitBridgeTokenFunc(ctx, wallet, payload)
}

func (m *mockBackend) FinalizeBridge(ctx context.Context, wallet string, payload *indexer.FinalizeBridgePayload) (*indexer.TransactionResponse, error) {
	return m.FinalizeBridgeFunc(ctx, wallet, payload)
}
