package tokens

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

var (
	// ErrTokenNotFound means the address has no ERC20 contract behind it
	ErrTokenNotFound = errors.New("token not found")

	// ErrMetadataFetch means the chain could not be read
	ErrMetadataFetch = errors.New("token metadata fetch failed")
)

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// Reader reads token state from a chain
type Reader interface {
	NativeBalance(ctx context.Context, chainID uint64, owner common.Address) (*big.Int, error)
	TokenBalance(ctx context.Context, chainID uint64, token, owner common.Address) (*big.Int, error)
	TokenMetadata(ctx context.Context, chainID uint64, token common.Address) (Token, error)
	HasCode(ctx context.Context, chainID uint64, addr common.Address) (bool, error)
}

// CustomTokenStore persists user-added tokens, namespaced by chain id
type CustomTokenStore interface {
	ListCustomTokens(ctx context.Context, chainID uint64) ([]Token, error)
	SaveCustomToken(ctx context.Context, chainID uint64, token Token) error
}

// Resolver combines the curated token list, the custom token store and
// on-chain reads into one lookup surface
type Resolver struct {
	reader Reader
	store  CustomTokenStore
	logger *zap.Logger
}

// NewResolver creates a token resolver
func NewResolver(reader Reader, store CustomTokenStore, logger *zap.Logger) *Resolver {
	return &Resolver{reader: reader, store: store, logger: logger}
}

// knownTokens returns curated plus custom tokens for a chain
func (r *Resolver) knownTokens(ctx context.Context, chainID uint64) ([]Token, error) {
	list := CuratedTokens(chainID)

	custom, err := r.store.ListCustomTokens(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("listing custom tokens for chain %d: %w", chainID, err)
	}

	for _, tok := range custom {
		duplicate := false
		for _, known := range list {
			if !known.Native && known.Address == tok.Address {
				duplicate = true
				break
			}
		}
		if !duplicate {
			list = append(list, tok)
		}
	}

	return list, nil
}

// ListTokenBalances returns the known tokens for a chain with the wallet's
// balances. A balance read failure degrades that entry to zero rather than
// failing the whole list.
func (r *Resolver) ListTokenBalances(ctx context.Context, chainID uint64, wallet common.Address) ([]Balance, error) {
	list, err := r.knownTokens(ctx, chainID)
	if err != nil {
		return nil, err
	}

	balances := make([]Balance, 0, len(list))
	for _, tok := range list {
		bal, err := r.Balance(ctx, chainID, wallet, tok)
		if err != nil {
			r.logger.Warn("Failed to fetch token balance",
				zap.Uint64("chain_id", chainID),
				zap.String("symbol", tok.Symbol),
				zap.Error(err))
			bal = big.NewInt(0)
		}
		balances = append(balances, Balance{Token: tok, ChainID: chainID, Balance: bal})
	}

	return balances, nil
}

// Balance reads one token balance, dispatching on native vs ERC20
func (r *Resolver) Balance(ctx context.Context, chainID uint64, wallet common.Address, tok Token) (*big.Int, error) {
	if tok.Native {
		return r.reader.NativeBalance(ctx, chainID, wallet)
	}
	return r.reader.TokenBalance(ctx, chainID, tok.Address, wallet)
}

// ResolveToken returns the token description for an address, preferring
// the known lists and falling back to on-chain metadata
func (r *Resolver) ResolveToken(ctx context.Context, chainID uint64, addr common.Address) (Token, error) {
	list, err := r.knownTokens(ctx, chainID)
	if err != nil {
		return Token{}, err
	}
	for _, tok := range list {
		if tok.Native && addr == (common.Address{}) {
			return tok, nil
		}
		if !tok.Native && tok.Address == addr {
			return tok, nil
		}
	}
	return r.ResolveTokenMetadata(ctx, chainID, addr)
}

// ResolveTokenMetadata reads name, symbol and decimals from the chain.
// Addresses with no contract code resolve to ErrTokenNotFound; read
// failures resolve to ErrMetadataFetch.
func (r *Resolver) ResolveTokenMetadata(ctx context.Context, chainID uint64, addr common.Address) (Token, error) {
	hasCode, err := r.reader.HasCode(ctx, chainID, addr)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrMetadataFetch, err)
	}
	if !hasCode {
		return Token{}, fmt.Errorf("%w: no contract at %s on chain %d", ErrTokenNotFound, addr.Hex(), chainID)
	}

	tok, err := r.reader.TokenMetadata(ctx, chainID, addr)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrMetadataFetch, err)
	}
	tok.Address = addr
	return tok, nil
}

// SearchResult is the outcome of a token search
type SearchResult struct {
	Tokens []Balance `json:"tokens"`
	// Resolved is set when the query was an address not already in the
	// list and the chain returned metadata for it
	Resolved *Token `json:"resolved,omitempty"`
}

// SearchTokens filters the wallet's token list by a free-text query. A
// query that parses as an address and is not already known triggers an
// on-chain metadata lookup instead of a substring match.
func (r *Resolver) SearchTokens(ctx context.Context, chainID uint64, wallet common.Address, query string) (*SearchResult, error) {
	list, err := r.ListTokenBalances(ctx, chainID, wallet)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return &SearchResult{Tokens: list}, nil
	}

	if addressPattern.MatchString(trimmed) {
		addr := common.HexToAddress(trimmed)
		for _, bal := range list {
			if !bal.Native && bal.Address == addr {
				return &SearchResult{Tokens: []Balance{bal}}, nil
			}
		}

		tok, err := r.ResolveTokenMetadata(ctx, chainID, addr)
		if err != nil {
			if errors.Is(err, ErrTokenNotFound) {
				return &SearchResult{Tokens: []Balance{}}, nil
			}
			return nil, err
		}
		return &SearchResult{Tokens: []Balance{}, Resolved: &tok}, nil
	}

	lowered := strings.ToLower(trimmed)
	matched := make([]Balance, 0, len(list))
	for _, bal := range list {
		if strings.Contains(strings.ToLower(bal.Symbol), lowered) ||
			strings.Contains(strings.ToLower(bal.Name), lowered) ||
			strings.Contains(strings.ToLower(bal.Address.Hex()), lowered) {
			matched = append(matched, bal)
		}
	}
	return &SearchResult{Tokens: matched}, nil
}

// AddCustomToken resolves an address on-chain and persists it for reuse
func (r *Resolver) AddCustomToken(ctx context.Context, chainID uint64, addr common.Address) (Token, error) {
	tok, err := r.ResolveTokenMetadata(ctx, chainID, addr)
	if err != nil {
		return Token{}, err
	}

	if err := r.store.SaveCustomToken(ctx, chainID, tok); err != nil {
		return Token{}, fmt.Errorf("persisting custom token %s: %w", addr.Hex(), err)
	}

	r.logger.Info("Custom token added",
		zap.Uint64("chain_id", chainID),
		zap.String("address", addr.Hex()),
		zap.String("symbol", tok.Symbol))
	return tok, nil
}

// Counterpart finds the destination-chain token matching a source token by
// exact symbol. Returns false when the curated list has no match; there is
// no on-chain wrapped-token lookup behind this.
func (r *Resolver) Counterpart(ctx context.Context, destChainID uint64, source Token) (Token, bool, error) {
	list, err := r.knownTokens(ctx, destChainID)
	if err != nil {
		return Token{}, false, err
	}
	for _, tok := range list {
		if tok.Symbol == source.Symbol {
			return tok, true, nil
		}
	}
	return Token{}, false, nil
}
