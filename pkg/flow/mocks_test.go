package flow

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/zero-tech/zchain-bridge/pkg/indexer"
	"github.com/zero-tech/zchain-bridge/pkg/proofs"
	"github.com/zero-tech/zchain-bridge/pkg/signer"
	"github.com/zero-tech/zchain-bridge/pkg/tokens"
)

type mockTokenSource struct {
	ResolveTokenFunc func(ctx context.Context, chainID uint64, addr common.Address) (tokens.Token, error)
	CounterpartFunc  func(ctx context.Context, destChainID uint64, source tokens.Token) (tokens.Token, bool, error)
	BalanceFunc      func(ctx context.Context, chainID uint64, wallet common.Address, tok tokens.Token) (*big.Int, error)
}

func (m *mockTokenSource) ResolveToken(ctx context.Context, chainID uint64, addr common.Address) (tokens.Token, error) {
	return m.ResolveTokenFunc(ctx, chainID, addr)
}

func (m *mockTokenSource) Counterpart(ctx context.Context, destChainID uint64, source tokens.Token) (tokens.Token, bool, error) {
	if m.CounterpartFunc == nil {
		return source, true, nil
	}
	return m.CounterpartFunc(ctx, destChainID, source)
}

func (m *mockTokenSource) Balance(ctx context.Context, chainID uint64, wallet common.Address, tok tokens.Token) (*big.Int, error) {
	return m.BalanceFunc(ctx, chainID, wallet, tok)
}

type mockStrategy struct {
	SubmitTransferFunc func(ctx context.Context, req *signer.TransferRequest) (common.Hash, error)
	SubmitClaimFunc    func(ctx context.Context, req *signer.ClaimRequest) (common.Hash, error)
}

func (m *mockStrategy) SubmitTransfer(ctx context.Context, req *signer.TransferRequest) (common.Hash, error) {
	return m.SubmitTransferFunc(ctx, req)
}

func (m *mockStrategy) SubmitClaim(ctx context.Context, req *signer.ClaimRequest) (common.Hash, error) {
	return m.SubmitClaimFunc(ctx, req)
}

type mockStatusSource struct {
	BridgeStatusFunc func(ctx context.Context, wallet string, depositCount, fromChainID uint64) (*indexer.StatusRecord, error)
}

func (m *mockStatusSource) BridgeStatus(ctx context.Context, wallet string, depositCount, fromChainID uint64) (*indexer.StatusRecord, error) {
	return m.BridgeStatusFunc(ctx, wallet, depositCount, fromChainID)
}

type mockActivitySource struct {
	BridgeActivityFunc func(ctx context.Context, wallet string, opts indexer.ActivityOptions) (*indexer.ActivityPage, error)
}

func (m *mockActivitySource) BridgeActivity(ctx context.Context, wallet string, opts indexer.ActivityOptions) (*indexer.ActivityPage, error) {
	return m.BridgeActivityFunc(ctx, wallet, opts)
}

type mockAudit struct {
	RecordSubmissionFunc func(ctx context.Context, sub *Submission) error
	RecordOutcomeFunc    func(ctx context.Context, flowID uuid.UUID, outcome string, claimTxHash string) error
}

func (m *mockAudit) RecordSubmission(ctx context.Context, sub *Submission) error {
	if m.RecordSubmissionFunc == nil {
		return nil
	}
	return m.RecordSubmissionFunc(ctx, sub)
}

func (m *mockAudit) RecordOutcome(ctx context.Context, flowID uuid.UUID, outcome string, claimTxHash string) error {
	if m.RecordOutcomeFunc == nil {
		return nil
	}
	return m.RecordOutcomeFunc(ctx, flowID, outcome, claimTxHash)
}

type mockProofSource struct {
	FetchFunc func(ctx context.Context, wallet string, depositCount uint64, netID uint32, fromChainID uint64) (*proofs.Bundle, error)
}

func (m *mockProofSource) Fetch(ctx context.Context, wallet string, depositCount uint64, netID uint32, fromChainID uint64) (*proofs.Bundle, error) {
	return m.FetchFunc(ctx, wallet, depositCount, netID, fromChainID)
}
