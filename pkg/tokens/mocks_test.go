package tokens

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type mockReader struct {
	NativeBalanceFunc func(ctx context.Context, chainID uint64, owner common.Address) (*big.Int, error)
	TokenBalanceFunc  func(ctx context.Context, chainID uint64, token, owner common.Address) (*big.Int, error)
	TokenMetadataFunc func(ctx context.Context, chainID uint64, token common.Address) (Token, error)
	HasCodeFunc       func(ctx context.Context, chainID uint64, addr common.Address) (bool, error)
}

func (m *mockReader) NativeBalance(ctx context.Context, chainID uint64, owner common.Address) (*big.Int, error) {
	return m.NativeBalanceFunc(ctx, chainID, owner)
}

func (m *mockReader) TokenBalance(ctx context.Context, chainID uint64, token, owner common.Address) (*big.Int, error) {
	return m.TokenBalanceFunc(ctx, chainID, token, owner)
}

func (m *mockReader) TokenMetadata(ctx context.Context, chainID uint64, token common.Address) (Token, error) {
	return m.TokenMetadataFunc(ctx, chainID, token)
}

func (m *mockReader) HasCode(ctx context.Context, chainID uint64, addr common.Address) (bool, error) {
	return m.HasCodeFunc(ctx, chainID, addr)
}

type mockTokenStore struct {
	ListCustomTokensFunc func(ctx context.Context, chainID uint64) ([]Token, error)
	SaveCustomTokenFunc  func(ctx context.Context, chainID uint64, token Token) error
}

func (m *mockTokenStore) ListCustomTokens(ctx context.Context, chainID uint64) ([]Token, error) {
	if m.ListCustomTokensFunc == nil {
		return nil, nil
	}
	return m.ListCustomTokensFunc(ctx, chainID)
}

func (m *mockTokenStore) SaveCustomToken(ctx context.Context, chainID uint64, token Token) error {
	if m.SaveCustomTokenFunc == nil {
		return nil
	}
	return m.SaveCustomTokenFunc(ctx, chainID, token)
}
