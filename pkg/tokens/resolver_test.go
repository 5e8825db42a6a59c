package tokens

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/zero-tech/zchain-bridge/pkg/chains"
)

var (
	testWallet = common.HexToAddress("0x1111111111111111111111111111111111111111")
	meowAddr   = common.HexToAddress("0x0eC78ED49C2D27b315D462d43B5BAB94d2C79bf8")
	customAddr = common.HexToAddress("0x9999999999999999999999999999999999999999")
)

func TestListTokenBalances(t *testing.T) {
	reader := &mockReader{
		NativeBalanceFunc: func(ctx context.Context, chainID uint64, owner common.Address) (*big.Int, error) {
			return big.NewInt(1000), nil
		},
		TokenBalanceFunc: func(ctx context.Context, chainID uint64, token, owner common.Address) (*big.Int, error) {
			return big.NewInt(42), nil
		},
	}
	store := &mockTokenStore{
		ListCustomTokensFunc: func(ctx context.Context, chainID uint64) ([]Token, error) {
			return []Token{{Address: customAddr, Symbol: "CSTM", Name: "Custom", Decimals: 6}}, nil
		},
	}

	r := NewResolver(reader, store, zap.NewNop())
	balances, err := r.ListTokenBalances(context.Background(), chains.Ethereum, testWallet)
	if err != nil {
		t.Fatalf("ListTokenBalances: %v", err)
	}

	want := len(CuratedTokens(chains.Ethereum)) + 1
	if len(balances) != want {
		t.Fatalf("got %d balances, want %d", len(balances), want)
	}

	if !balances[0].Native || balances[0].Balance.Cmp(big.NewInt(1000)) != 0 {
		t.Errorf("native entry = %+v", balances[0])
	}
	last := balances[len(balances)-1]
	if last.Symbol != "CSTM" || last.Balance.Cmp(big.NewInt(42)) != 0 {
		t.Errorf("custom entry = %+v", last)
	}
}

func TestListTokenBalances_DegradesOnReadFailure(t *testing.T) {
	reader := &mockReader{
		NativeBalanceFunc: func(ctx context.Context, chainID uint64, owner common.Address) (*big.Int, error) {
			return big.NewInt(7), nil
		},
		TokenBalanceFunc: func(ctx context.Context, chainID uint64, token, owner common.Address) (*big.Int, error) {
			return nil, errors.New("rpc down")
		},
	}

	r := NewResolver(reader, &mockTokenStore{}, zap.NewNop())
	balances, err := r.ListTokenBalances(context.Background(), chains.Ethereum, testWallet)
	if err != nil {
		t.Fatalf("a single failing token must not fail the list: %v", err)
	}

	for _, bal := range balances {
		if bal.Native {
			continue
		}
		if bal.Balance.Sign() != 0 {
			t.Errorf("failed read should degrade to zero, got %s for %s", bal.Balance, bal.Symbol)
		}
	}
}

func TestListTokenBalances_CustomDuplicateSkipped(t *testing.T) {
	reader := &mockReader{
		NativeBalanceFunc: func(ctx context.Context, chainID uint64, owner common.Address) (*big.Int, error) {
			return big.NewInt(0), nil
		},
		TokenBalanceFunc: func(ctx context.Context, chainID uint64, token, owner common.Address) (*big.Int, error) {
			return big.NewInt(0), nil
		},
	}
	store := &mockTokenStore{
		ListCustomTokensFunc: func(ctx context.Context, chainID uint64) ([]Token, error) {
			return []Token{{Address: meowAddr, Symbol: "MEOW", Name: "MEOW", Decimals: 18}}, nil
		},
	}

	r := NewResolver(reader, store, zap.NewNop())
	balances, err := r.ListTokenBalances(context.Background(), chains.Ethereum, testWallet)
	if err != nil {
		t.Fatalf("ListTokenBalances: %v", err)
	}

	if len(balances) != len(CuratedTokens(chains.Ethereum)) {
		t.Errorf("custom token duplicating a curated entry must be skipped, got %d entries", len(balances))
	}
}

func TestResolveTokenMetadata(t *testing.T) {
	reader := &mockReader{
		HasCodeFunc: func(ctx context.Context, chainID uint64, addr common.Address) (bool, error) {
			return true, nil
		},
		TokenMetadataFunc: func(ctx context.Context, chainID uint64, token common.Address) (Token, error) {
			return Token{Name: "Some Token", Symbol: "SOME", Decimals: 8}, nil
		},
	}

	r := NewResolver(reader, &mockTokenStore{}, zap.NewNop())
	tok, err := r.ResolveTokenMetadata(context.Background(), chains.Ethereum, customAddr)
	if err != nil {
		t.Fatalf("ResolveTokenMetadata: %v", err)
	}
	if tok.Symbol != "SOME" || tok.Decimals != 8 || tok.Address != customAddr {
		t.Errorf("token = %+v", tok)
	}
}

func TestResolveTokenMetadata_NoContract(t *testing.T) {
	reader := &mockReader{
		HasCodeFunc: func(ctx context.Context, chainID uint64, addr common.Address) (bool, error) {
			return false, nil
		},
	}

	r := NewResolver(reader, &mockTokenStore{}, zap.NewNop())
	_, err := r.ResolveTokenMetadata(context.Background(), chains.Ethereum, customAddr)
	if !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("want ErrTokenNotFound, got %v", err)
	}
}

func TestResolveTokenMetadata_ReadFailure(t *testing.T) {
	reader := &mockReader{
		HasCodeFunc: func(ctx context.Context, chainID uint64, addr common.Address) (bool, error) {
			return true, nil
		},
		TokenMetadataFunc: func(ctx context.Context, chainID uint64, token common.Address) (Token, error) {
			return Token{}, errors.New("connection reset")
		},
	}

	r := NewResolver(reader, &mockTokenStore{}, zap.NewNop())
	_, err := r.ResolveTokenMetadata(context.Background(), chains.Ethereum, customAddr)
	if !errors.Is(err, ErrMetadataFetch) {
		t.Errorf("want ErrMetadataFetch, got %v", err)
	}
}

func newSearchResolver(t *testing.T) *Resolver {
	t.Helper()
	reader := &mockReader{
		NativeBalanceFunc: func(ctx context.Context, chainID uint64, owner common.Address) (*big.Int, error) {
			return big.NewInt(0), nil
		},
		TokenBalanceFunc: func(ctx context.Context, chainID uint64, token, owner common.Address) (*big.Int, error) {
			return big.NewInt(0), nil
		},
		HasCodeFunc: func(ctx context.Context, chainID uint64, addr common.Address) (bool, error) {
			return addr == customAddr, nil
		},
		TokenMetadataFunc: func(ctx context.Context, chainID uint64, token common.Address) (Token, error) {
			return Token{Name: "Fresh", Symbol: "FRSH", Decimals: 18}, nil
		},
	}
	return NewResolver(reader, &mockTokenStore{}, zap.NewNop())
}

func TestSearchTokens_BySymbol(t *testing.T) {
	r := newSearchResolver(t)
	res, err := r.SearchTokens(context.Background(), chains.Ethereum, testWallet, "meow")
	if err != nil {
		t.Fatalf("SearchTokens: %v", err)
	}
	if len(res.Tokens) != 1 || res.Tokens[0].Symbol != "MEOW" {
		t.Errorf("result = %+v", res.Tokens)
	}
}

func TestSearchTokens_ByKnownAddress(t *testing.T) {
	r := newSearchResolver(t)
	res, err := r.SearchTokens(context.Background(), chains.Ethereum, testWallet, meowAddr.Hex())
	if err != nil {
		t.Fatalf("SearchTokens: %v", err)
	}
	if len(res.Tokens) != 1 || res.Tokens[0].Address != meowAddr {
		t.Errorf("address query should filter to the known token, got %+v", res.Tokens)
	}
	if res.Resolved != nil {
		t.Error("known address should not trigger on-chain resolution")
	}
}

func TestSearchTokens_ByUnknownAddress(t *testing.T) {
	r := newSearchResolver(t)
	res, err := r.SearchTokens(context.Background(), chains.Ethereum, testWallet, customAddr.Hex())
	if err != nil {
		t.Fatalf("SearchTokens: %v", err)
	}
	if len(res.Tokens) != 0 {
		t.Errorf("unknown address query should not match list entries, got %+v", res.Tokens)
	}
	if res.Resolved == nil || res.Resolved.Symbol != "FRSH" {
		t.Errorf("resolved = %+v", res.Resolved)
	}
}

func TestSearchTokens_AddressWithoutContract(t *testing.T) {
	r := newSearchResolver(t)
	res, err := r.SearchTokens(context.Background(), chains.Ethereum, testWallet,
		"0x00000000000000000000000000000000000000aa")
	if err != nil {
		t.Fatalf("SearchTokens: %v", err)
	}
	if len(res.Tokens) != 0 || res.Resolved != nil {
		t.Errorf("dead address should yield an empty result, got %+v", res)
	}
}

func TestAddCustomToken(t *testing.T) {
	var saved *Token
	reader := &mockReader{
		HasCodeFunc: func(ctx context.Context, chainID uint64, addr common.Address) (bool, error) {
			return true, nil
		},
		TokenMetadataFunc: func(ctx context.Context, chainID uint64, token common.Address) (Token, error) {
			return Token{Name: "Fresh", Symbol: "FRSH", Decimals: 18}, nil
		},
	}
	store := &mockTokenStore{
		SaveCustomTokenFunc: func(ctx context.Context, chainID uint64, token Token) error {
			saved = &token
			return nil
		},
	}

	r := NewResolver(reader, store, zap.NewNop())
	tok, err := r.AddCustomToken(context.Background(), chains.Ethereum, customAddr)
	if err != nil {
		t.Fatalf("AddCustomToken: %v", err)
	}
	if tok.Address != customAddr {
		t.Errorf("resolved address = %s", tok.Address.Hex())
	}
	if saved == nil || saved.Symbol != "FRSH" {
		t.Errorf("token was not persisted, saved = %+v", saved)
	}
}

func TestCounterpart(t *testing.T) {
	r := newSearchResolver(t)

	tok, ok, err := r.Counterpart(context.Background(), chains.ZChain, Token{Symbol: "Z"})
	if err != nil || !ok {
		t.Fatalf("Counterpart: ok=%v err=%v", ok, err)
	}
	if tok.Symbol != "Z" {
		t.Errorf("counterpart = %+v", tok)
	}

	_, ok, err = r.Counterpart(context.Background(), chains.ZChain, Token{Symbol: "NOPE"})
	if err != nil {
		t.Fatalf("Counterpart: %v", err)
	}
	if ok {
		t.Error("symbol with no match on the destination chain must report no counterpart")
	}
}
