package tokens

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/zero-tech/zchain-bridge/pkg/ethereum"
	"github.com/zero-tech/zchain-bridge/pkg/ethereum/contracts"
)

// RPCReader implements Reader over the per-chain client pool
type RPCReader struct {
	pool *ethereum.Pool
}

// NewRPCReader wraps a client pool as a token reader
func NewRPCReader(pool *ethereum.Pool) *RPCReader {
	return &RPCReader{pool: pool}
}

func (r *RPCReader) NativeBalance(ctx context.Context, chainID uint64, owner common.Address) (*big.Int, error) {
	client, err := r.pool.Client(chainID)
	if err != nil {
		return nil, err
	}
	return client.NativeBalance(ctx, owner)
}

func (r *RPCReader) TokenBalance(ctx context.Context, chainID uint64, token, owner common.Address) (*big.Int, error) {
	erc20, err := r.erc20(chainID, token)
	if err != nil {
		return nil, err
	}
	return erc20.BalanceOf(&bind.CallOpts{Context: ctx}, owner)
}

func (r *RPCReader) TokenMetadata(ctx context.Context, chainID uint64, token common.Address) (Token, error) {
	erc20, err := r.erc20(chainID, token)
	if err != nil {
		return Token{}, err
	}

	opts := &bind.CallOpts{Context: ctx}
	name, err := erc20.Name(opts)
	if err != nil {
		return Token{}, fmt.Errorf("reading name of %s: %w", token.Hex(), err)
	}
	symbol, err := erc20.Symbol(opts)
	if err != nil {
		return Token{}, fmt.Errorf("reading symbol of %s: %w", token.Hex(), err)
	}
	decimals, err := erc20.Decimals(opts)
	if err != nil {
		return Token{}, fmt.Errorf("reading decimals of %s: %w", token.Hex(), err)
	}

	return Token{Address: token, Name: name, Symbol: symbol, Decimals: decimals}, nil
}

func (r *RPCReader) HasCode(ctx context.Context, chainID uint64, addr common.Address) (bool, error) {
	client, err := r.pool.Client(chainID)
	if err != nil {
		return false, err
	}
	code, err := client.CodeAt(ctx, addr)
	if err != nil {
		return false, err
	}
	return len(code) > 0, nil
}

func (r *RPCReader) erc20(chainID uint64, token common.Address) (*contracts.ERC20, error) {
	client, err := r.pool.Client(chainID)
	if err != nil {
		return nil, err
	}
	return contracts.NewERC20(token, client.Backend())
}
