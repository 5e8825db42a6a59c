package signer

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/zero-tech/zchain-bridge/pkg/chains"
	"github.com/zero-tech/zchain-bridge/pkg/ethereum"
	"github.com/zero-tech/zchain-bridge/pkg/ethereum/contracts"
	"github.com/zero-tech/zchain-bridge/pkg/proofs"
)

// chainClient is the per-chain RPC surface the external signer drives
type chainClient interface {
	Chain() chains.Chain
	SignerAddress() common.Address
	Transactor(ctx context.Context) (*bind.TransactOpts, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
	Backend() *ethclient.Client
}

// bridgeContract is the bridge call surface used for deposits and claims
type bridgeContract interface {
	BridgeAsset(opts *bind.TransactOpts, destinationNetwork uint32, destinationAddress common.Address, amount *big.Int, token common.Address, forceUpdateGlobalExitRoot bool, permitData []byte) (*types.Transaction, error)
	ClaimAsset(opts *bind.TransactOpts, smtProofLocalExitRoot, smtProofRollupExitRoot [proofs.ProofDepth][32]byte, globalIndex *big.Int, mainnetExitRoot, rollupExitRoot [32]byte, originNetwork uint32, originTokenAddress common.Address, destinationNetwork uint32, destinationAddress common.Address, amount *big.Int, metadata []byte) (*types.Transaction, error)
}

// erc20Contract is the token call surface used for allowance management
type erc20Contract interface {
	Allowance(opts *bind.CallOpts, owner, spender common.Address) (*big.Int, error)
	Approve(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error)
}

// ExternalSigner submits transfers and claims with a locally-held key.
// The signer connection is exclusive: only one submission or claim may be
// in flight at a time; concurrent attempts fail with KindSignerBusy.
type ExternalSigner struct {
	registry *chains.Registry
	logger   *zap.Logger

	clients   func(chainID uint64) (chainClient, error)
	newBridge func(addr common.Address, client chainClient) (bridgeContract, error)
	newERC20  func(addr common.Address, client chainClient) (erc20Contract, error)

	mu sync.Mutex
}

// NewExternalSigner creates the self-custody strategy
func NewExternalSigner(registry *chains.Registry, pool *ethereum.Pool, logger *zap.Logger) *ExternalSigner {
	return &ExternalSigner{
		registry: registry,
		logger:   logger,
		clients: func(chainID uint64) (chainClient, error) {
			return pool.Client(chainID)
		},
		newBridge: func(addr common.Address, client chainClient) (bridgeContract, error) {
			return contracts.NewBridge(addr, client.Backend())
		},
		newERC20: func(addr common.Address, client chainClient) (erc20Contract, error) {
			return contracts.NewERC20(addr, client.Backend())
		},
	}
}

// EnsureAllowance checks the bridge contract's allowance for token and,
// if short of amount, submits an approval and awaits its receipt. Returns
// the approval transaction hash, or the zero hash when the existing
// allowance was already sufficient.
func (s *ExternalSigner) EnsureAllowance(ctx context.Context, chainID uint64, token, spender common.Address, amount *big.Int) (common.Hash, error) {
	client, err := s.clients(chainID)
	if err != nil {
		return common.Hash{}, NewError(KindUnsupportedChain, err)
	}

	erc20, err := s.newERC20(token, client)
	if err != nil {
		return common.Hash{}, Normalize(err)
	}

	owner := client.SignerAddress()
	allowance, err := erc20.Allowance(&bind.CallOpts{Context: ctx}, owner, spender)
	if err != nil {
		return common.Hash{}, Normalize(fmt.Errorf("allowance check: %w", err))
	}

	if allowance.Cmp(amount) >= 0 {
		return common.Hash{}, nil
	}

	s.logger.Info("Submitting approval",
		zap.Uint64("chain_id", chainID),
		zap.String("token", token.Hex()),
		zap.String("amount", amount.String()))

	opts, err := client.Transactor(ctx)
	if err != nil {
		return common.Hash{}, Normalize(err)
	}

	tx, err := erc20.Approve(opts, spender, amount)
	if err != nil {
		return common.Hash{}, Normalize(err)
	}

	if err := s.awaitSuccess(ctx, client, tx); err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

// SubmitTransfer submits the bridge deposit, preceding it with an approval
// when the token allowance is insufficient. The native asset is bridged by
// setting the transaction value.
func (s *ExternalSigner) SubmitTransfer(ctx context.Context, req *TransferRequest) (common.Hash, error) {
	if !s.mu.TryLock() {
		return common.Hash{}, NewError(KindSignerBusy, nil)
	}
	defer s.mu.Unlock()

	client, err := s.clients(req.FromChainID)
	if err != nil {
		return common.Hash{}, NewError(KindUnsupportedChain, err)
	}
	if client.SignerAddress() != req.From {
		return common.Hash{}, NewError(KindWalletMismatch,
			fmt.Errorf("request source %s, signer %s", req.From.Hex(), client.SignerAddress().Hex()))
	}

	source := client.Chain()
	dest, err := s.registry.Info(req.ToChainID)
	if err != nil {
		return common.Hash{}, NewError(KindUnsupportedChain, err)
	}

	if !req.Native() {
		if _, err := s.EnsureAllowance(ctx, req.FromChainID, req.Token, source.BridgeContract, req.Amount); err != nil {
			return common.Hash{}, err
		}
	}

	bridge, err := s.newBridge(source.BridgeContract, client)
	if err != nil {
		return common.Hash{}, Normalize(err)
	}

	opts, err := client.Transactor(ctx)
	if err != nil {
		return common.Hash{}, Normalize(err)
	}
	if req.Native() {
		opts.Value = req.Amount
	}

	s.logger.Info("Submitting bridge transfer",
		zap.Uint64("from_chain", req.FromChainID),
		zap.Uint64("to_chain", req.ToChainID),
		zap.String("token", req.Token.Hex()),
		zap.String("amount", req.Amount.String()))

	tx, err := bridge.BridgeAsset(opts, dest.BridgeNetworkID, req.Destination, req.Amount, req.Token, true, nil)
	if err != nil {
		return common.Hash{}, Normalize(err)
	}

	if err := s.awaitSuccess(ctx, client, tx); err != nil {
		return common.Hash{}, err
	}

	s.logger.Info("Bridge transfer confirmed", zap.String("tx_hash", tx.Hash().Hex()))
	return tx.Hash(), nil
}

// SubmitClaim finalizes a deposit on the destination chain. Claims always
// go through the external signer, regardless of how the deposit was
// submitted.
func (s *ExternalSigner) SubmitClaim(ctx context.Context, req *ClaimRequest) (common.Hash, error) {
	if !s.mu.TryLock() {
		return common.Hash{}, NewError(KindSignerBusy, nil)
	}
	defer s.mu.Unlock()

	client, err := s.clients(req.ToChainID)
	if err != nil {
		return common.Hash{}, NewError(KindUnsupportedChain, err)
	}
	dest := client.Chain()

	originNetwork, err := s.registry.OriginNetworkID(req.FromChainID)
	if err != nil {
		return common.Hash{}, NewError(KindUnsupportedChain, err)
	}

	record := req.Record
	globalIndex, ok := new(big.Int).SetString(record.GlobalIndex, 10)
	if !ok {
		return common.Hash{}, NewError(KindProofUnavailable,
			fmt.Errorf("invalid global index %q", record.GlobalIndex))
	}
	amount, ok := new(big.Int).SetString(record.Amount, 10)
	if !ok {
		return common.Hash{}, NewError(KindProofUnavailable,
			fmt.Errorf("invalid amount %q", record.Amount))
	}

	metadata, err := decodeMetadata(record.Metadata)
	if err != nil {
		return common.Hash{}, NewError(KindProofUnavailable, err)
	}

	bridge, err := s.newBridge(dest.BridgeContract, client)
	if err != nil {
		return common.Hash{}, Normalize(err)
	}

	opts, err := client.Transactor(ctx)
	if err != nil {
		return common.Hash{}, Normalize(err)
	}

	s.logger.Info("Submitting claim",
		zap.Uint64("from_chain", req.FromChainID),
		zap.Uint64("to_chain", req.ToChainID),
		zap.Uint64("deposit_count", record.DepositCount))

	tx, err := bridge.ClaimAsset(opts,
		req.Proof.LocalExitProof,
		req.Proof.RollupExitProof,
		globalIndex,
		req.Proof.MainExitRoot,
		req.Proof.RollupExitRoot,
		originNetwork,
		common.HexToAddress(record.TokenAddress),
		dest.BridgeNetworkID,
		common.HexToAddress(record.DestinationAddress),
		amount,
		metadata,
	)
	if err != nil {
		return common.Hash{}, Normalize(err)
	}

	if err := s.awaitSuccess(ctx, client, tx); err != nil {
		return common.Hash{}, err
	}

	s.logger.Info("Claim confirmed", zap.String("tx_hash", tx.Hash().Hex()))
	return tx.Hash(), nil
}

func (s *ExternalSigner) awaitSuccess(ctx context.Context, client chainClient, tx *types.Transaction) error {
	receipt, err := client.WaitMined(ctx, tx)
	if err != nil {
		return Normalize(err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return NewError(KindExecutionReverted,
			fmt.Errorf("transaction %s: receipt status 0", tx.Hash().Hex()))
	}
	return nil
}

// decodeMetadata interprets the indexer's metadata field, which is either
// hex-encoded bytes or a plain string.
func decodeMetadata(metadata string) ([]byte, error) {
	if metadata == "" {
		return nil, nil
	}
	if len(metadata) >= 2 && metadata[:2] == "0x" {
		b, err := hexutil.Decode(metadata)
		if err != nil {
			return nil, fmt.Errorf("invalid metadata hex: %w", err)
		}
		return b, nil
	}
	return []byte(metadata), nil
}
