package signer

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/zero-tech/zchain-bridge/pkg/indexer"
)

// CustodialBackend is the subset of the indexer client the custodial
// strategy submits through
type CustodialBackend interface {
	SubmitBridgeToken(ctx context.Context, wallet string, payload *indexer.BridgeTokenPayload) (*indexer.TransactionResponse, error)
	FinalizeBridge(ctx context.Context, wallet string, payload *indexer.FinalizeBridgePayload) (*indexer.TransactionResponse, error)
}

// CustodialSigner submits transfers via the backend-mediated transaction
// endpoints. The backend manages allowances, so there is no client-side
// approval step.
type CustodialSigner struct {
	backend CustodialBackend
	logger  *zap.Logger
}

// NewCustodialSigner creates the custodial-wallet strategy
func NewCustodialSigner(backend CustodialBackend, logger *zap.Logger) *CustodialSigner {
	return &CustodialSigner{backend: backend, logger: logger}
}

// SubmitTransfer submits the transfer through the custodial backend
func (s *CustodialSigner) SubmitTransfer(ctx context.Context, req *TransferRequest) (common.Hash, error) {
	s.logger.Info("Submitting custodial bridge transfer",
		zap.Uint64("from_chain", req.FromChainID),
		zap.Uint64("to_chain", req.ToChainID),
		zap.String("amount", req.Amount.String()))

	resp, err := s.backend.SubmitBridgeToken(ctx, req.From.Hex(), &indexer.BridgeTokenPayload{
		TokenAddress: req.Token.Hex(),
		Amount:       req.Amount.String(),
		To:           req.Destination.Hex(),
		FromChainID:  req.FromChainID,
		ToChainID:    req.ToChainID,
	})
	if err != nil {
		return common.Hash{}, Normalize(err)
	}
	if resp.TransactionHash == "" {
		return common.Hash{}, NewError(KindNetwork, fmt.Errorf("backend returned no transaction hash"))
	}

	s.logger.Info("Custodial transfer submitted", zap.String("tx_hash", resp.TransactionHash))
	return common.HexToHash(resp.TransactionHash), nil
}

// SubmitClaim finalizes the deposit through the custodial backend, passing
// the unpadded proof material so the backend does its own shaping
func (s *CustodialSigner) SubmitClaim(ctx context.Context, req *ClaimRequest) (common.Hash, error) {
	record := req.Record

	resp, err := s.backend.FinalizeBridge(ctx, record.DestinationAddress, &indexer.FinalizeBridgePayload{
		DepositCount:       record.DepositCount,
		MerkleProof:        req.Proof.Raw.MerkleProof,
		RollupMerkleProof:  req.Proof.Raw.RollupMerkleProof,
		MainExitRoot:       req.Proof.Raw.MainExitRoot,
		RollupExitRoot:     req.Proof.Raw.RollupExitRoot,
		DestinationAddress: record.DestinationAddress,
		Amount:             record.Amount,
		TokenAddress:       record.TokenAddress,
		ChainID:            req.ToChainID,
	})
	if err != nil {
		return common.Hash{}, Normalize(err)
	}
	if resp.TransactionHash == "" {
		return common.Hash{}, NewError(KindNetwork, fmt.Errorf("backend returned no transaction hash"))
	}

	s.logger.Info("Custodial claim submitted", zap.String("tx_hash", resp.TransactionHash))
	return common.HexToHash(resp.TransactionHash), nil
}
