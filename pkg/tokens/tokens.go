package tokens

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/zero-tech/zchain-bridge/pkg/chains"
)

// Token describes an asset on a single chain. A zero Address with Native
// set means the chain's gas asset.
type Token struct {
	Address  common.Address `json:"tokenAddress"`
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
	Decimals uint8          `json:"decimals"`
	Native   bool           `json:"native"`
}

// Balance is a token annotated with the owning chain and the wallet's
// base-unit balance
type Balance struct {
	Token
	ChainID uint64   `json:"chainId"`
	Balance *big.Int `json:"balance"`
}

// curatedTokens is the static per-chain token list. User-added tokens are
// layered on top from the custom token store.
var curatedTokens = map[uint64][]Token{
	chains.Ethereum: {
		{Symbol: "ETH", Name: "Ether", Decimals: 18, Native: true},
		{
			Address:  common.HexToAddress("0x0eC78ED49C2D27b315D462d43B5BAB94d2C79bf8"),
			Symbol:   "MEOW",
			Name:     "MEOW",
			Decimals: 18,
		},
		{
			Address:  common.HexToAddress("0x2a3bFF78B79A009976EeA096a51A948a3dC00e34"),
			Symbol:   "WILD",
			Name:     "Wilder World",
			Decimals: 18,
		},
	},
	chains.Sepolia: {
		{Symbol: "ETH", Name: "Sepolia Ether", Decimals: 18, Native: true},
	},
	chains.ZChain: {
		{Symbol: "Z", Name: "Z Chain", Decimals: 18, Native: true},
	},
	chains.Zephyr: {
		{Symbol: "Z", Name: "Zephyr", Decimals: 18, Native: true},
	},
}

// CuratedTokens returns the static token list for a chain
func CuratedTokens(chainID uint64) []Token {
	list := curatedTokens[chainID]
	out := make([]Token, len(list))
	copy(out, list)
	return out
}
