package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/zero-tech/zchain-bridge/pkg/chains"
	"github.com/zero-tech/zchain-bridge/pkg/config"
)

// Client represents a connection to a single registered chain
type Client struct {
	chain      chains.Chain
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	address    common.Address
	cfg        *config.SignerConfig
	logger     *zap.Logger
}

// NewClient connects to the chain's RPC endpoint. The private key is
// optional; read-only clients pass an empty key and cannot sign.
func NewClient(chain chains.Chain, cfg *config.SignerConfig, logger *zap.Logger) (*Client, error) {
	client, err := ethclient.Dial(chain.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s RPC: %w", chain.Name, err)
	}

	c := &Client{
		chain:  chain,
		client: client,
		cfg:    cfg,
		logger: logger,
	}

	if cfg != nil && cfg.PrivateKey != "" {
		privateKey, err := crypto.HexToECDSA(cfg.PrivateKey)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to load private key: %w", err)
		}
		c.privateKey = privateKey
		c.address = crypto.PubkeyToAddress(privateKey.PublicKey)
	}

	logger.Info("Connected to chain",
		zap.Uint64("chain_id", chain.ID),
		zap.String("name", chain.Name),
		zap.String("bridge_contract", chain.BridgeContract.Hex()))

	return c, nil
}

// Close closes the underlying RPC connection
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Chain returns the chain this client is connected to
func (c *Client) Chain() chains.Chain {
	return c.chain
}

// SignerAddress returns the address derived from the configured key
func (c *Client) SignerAddress() common.Address {
	return c.address
}

// Backend exposes the raw contract backend for read-only binding calls
func (c *Client) Backend() *ethclient.Client {
	return c.client
}

// Transactor returns a transaction signer bound to this chain
func (c *Client) Transactor(ctx context.Context) (*bind.TransactOpts, error) {
	if c.privateKey == nil {
		return nil, fmt.Errorf("no signing key configured for chain %d", c.chain.ID)
	}

	chainID := new(big.Int).SetUint64(c.chain.ID)
	auth, err := bind.NewKeyedTransactorWithChainID(c.privateKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	nonce, err := c.client.PendingNonceAt(ctx, c.address)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	auth.Nonce = new(big.Int).SetUint64(nonce)
	auth.Context = ctx
	if c.cfg != nil {
		auth.GasLimit = c.cfg.GasLimit
	}

	if c.cfg != nil && c.cfg.MaxGasPrice != "" {
		maxGasPrice, ok := new(big.Int).SetString(c.cfg.MaxGasPrice, 10)
		if !ok {
			return nil, fmt.Errorf("invalid max_gas_price %q", c.cfg.MaxGasPrice)
		}

		gasPrice, err := c.client.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to suggest gas price: %w", err)
		}

		if gasPrice.Cmp(maxGasPrice) > 0 {
			c.logger.Warn("Suggested gas price exceeds maximum",
				zap.String("suggested", gasPrice.String()),
				zap.String("max", maxGasPrice.String()))
			auth.GasPrice = maxGasPrice
		} else {
			auth.GasPrice = gasPrice
		}
	}

	return auth, nil
}

// WaitMined blocks until the transaction is mined and returns its receipt.
// The wait is bounded by the configured receipt timeout.
func (c *Client) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	timeout := 5 * time.Minute
	if c.cfg != nil && c.cfg.ReceiptTimeout > 0 {
		timeout = c.cfg.ReceiptTimeout
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, c.client, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for receipt of %s: %w", tx.Hash().Hex(), err)
	}
	return receipt, nil
}

// NativeBalance returns the native asset balance of an address
func (c *Client) NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	balance, err := c.client.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get native balance: %w", err)
	}
	return balance, nil
}

// CodeAt returns the contract code at an address, used to distinguish
// contracts from externally-owned accounts
func (c *Client) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	return c.client.CodeAt(ctx, addr, nil)
}
