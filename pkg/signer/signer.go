// Package signer abstracts transaction submission for bridge transfers and
// claims behind two interchangeable custody strategies: a self-custody
// external signer and the backend-mediated custodial wallet.
package signer

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/zero-tech/zchain-bridge/pkg/indexer"
	"github.com/zero-tech/zchain-bridge/pkg/proofs"
)

// TransferRequest is the fully-resolved input to a bridge submission.
// Amounts are in the token's integer base units.
type TransferRequest struct {
	FromChainID uint64
	ToChainID   uint64
	Token       common.Address // zero address means the native asset
	Amount      *big.Int
	From        common.Address
	Destination common.Address
}

// Native reports whether the request bridges the chain's native asset
func (r *TransferRequest) Native() bool {
	return r.Token == (common.Address{})
}

// ClaimRequest is the input to a destination-chain claim. The status record
// and proof bundle come straight from the indexer; the chain ids identify
// the transfer direction being finalized.
type ClaimRequest struct {
	FromChainID uint64
	ToChainID   uint64
	Record      *indexer.StatusRecord
	Proof       *proofs.Bundle
}

// Strategy submits bridge transfers and claims, awaiting on-chain
// confirmation before returning. Implementations normalize their failures
// with Normalize so the flow never sees raw provider errors.
type Strategy interface {
	// SubmitTransfer submits the bridge deposit and returns its
	// transaction hash once confirmed.
	SubmitTransfer(ctx context.Context, req *TransferRequest) (common.Hash, error)

	// SubmitClaim finalizes a ready deposit on the destination chain and
	// returns the claim transaction hash once confirmed.
	SubmitClaim(ctx context.Context, req *ClaimRequest) (common.Hash, error)
}
