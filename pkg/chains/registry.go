// Package chains holds the static registry of bridgeable chains and the
// fixed L1/L2 pairing between them.
package chains

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Supported chain ids.
const (
	Ethereum uint64 = 1
	Sepolia  uint64 = 11155111
	ZChain   uint64 = 9369
	Zephyr   uint64 = 1417429182
)

// ErrUnsupportedChain is returned for chain ids not present in the registry.
var ErrUnsupportedChain = errors.New("unsupported chain")

// Chain describes a single registered chain.
type Chain struct {
	ID              uint64
	Name            string
	RPCURL          string
	BridgeContract  common.Address
	BridgeNetworkID uint32
	ExplorerBaseURL string
	L2              bool
}

var defaultChains = []Chain{
	{
		ID:              Ethereum,
		Name:            "Ethereum",
		RPCURL:          "https://rpc.eu-central-1.gateway.fm/v4/ethereum/non-archival/mainnet",
		BridgeContract:  common.HexToAddress("0x2a3DD3EB832aF982ec71669E178424b10Dca2EDe"),
		BridgeNetworkID: 0,
		ExplorerBaseURL: "https://etherscan.io",
	},
	{
		ID:              ZChain,
		Name:            "Z Chain",
		RPCURL:          "https://rpc.zchain.org",
		BridgeContract:  common.HexToAddress("0x2a3DD3EB832aF982ec71669E178424b10Dca2EDe"),
		BridgeNetworkID: 14,
		ExplorerBaseURL: "https://zscan.live",
		L2:              true,
	},
	{
		ID:              Sepolia,
		Name:            "Sepolia",
		RPCURL:          "https://rpc.eu-central-1.gateway.fm/v4/ethereum/non-archival/sepolia",
		BridgeContract:  common.HexToAddress("0x528e26b25a34a4A5d0dbDa1d57D318153d2ED582"),
		BridgeNetworkID: 0,
		ExplorerBaseURL: "https://sepolia.etherscan.io",
	},
	{
		ID:              Zephyr,
		Name:            "Zephyr",
		RPCURL:          "https://zephyr-rpc.eu-north-2.gateway.fm",
		BridgeContract:  common.HexToAddress("0x528e26b25a34a4A5d0dbDa1d57D318153d2ED582"),
		BridgeNetworkID: 1,
		ExplorerBaseURL: "https://zephyr-blockscout.eu-north-2.gateway.fm",
		L2:              true,
	},
}

// pairs defines the fixed L1<->L2 pairing. The mapping is involutive:
// destinationFor(destinationFor(id)) == id for every registered chain.
var pairs = map[uint64]uint64{
	Ethereum: ZChain,
	ZChain:   Ethereum,
	Sepolia:  Zephyr,
	Zephyr:   Sepolia,
}

// originNetworks is the single authoritative table of origin network ids used
// when constructing destination-chain claims, keyed by the chain the deposit
// originated on. Mainnet withdrawals claim with origin network 0
// (bridge.zchain.org reports orig_net: 0); Zephyr withdrawals claim with its
// bridge network id.
var originNetworks = map[uint64]uint32{
	Ethereum: 0,
	Sepolia:  0,
	ZChain:   0,
	Zephyr:   1,
}

// Registry is a pure lookup table over the registered chains.
type Registry struct {
	chains map[uint64]Chain
}

// Option customizes a Registry.
type Option func(*Registry)

// WithRPCURL overrides the RPC endpoint of a registered chain.
func WithRPCURL(chainID uint64, rpcURL string) Option {
	return func(r *Registry) {
		if c, ok := r.chains[chainID]; ok && rpcURL != "" {
			c.RPCURL = rpcURL
			r.chains[chainID] = c
		}
	}
}

// NewRegistry creates a registry with the default chain set.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{chains: make(map[uint64]Chain, len(defaultChains))}
	for _, c := range defaultChains {
		r.chains[c.ID] = c
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Info returns the chain record for the given id.
func (r *Registry) Info(chainID uint64) (Chain, error) {
	c, ok := r.chains[chainID]
	if !ok {
		return Chain{}, fmt.Errorf("chain %d: %w", chainID, ErrUnsupportedChain)
	}
	return c, nil
}

// Supported reports whether the chain id is registered.
func (r *Registry) Supported(chainID uint64) bool {
	_, ok := r.chains[chainID]
	return ok
}

// DestinationFor returns the fixed counterpart chain for a bridge transfer
// originating on chainID.
func (r *Registry) DestinationFor(chainID uint64) (uint64, error) {
	dest, ok := pairs[chainID]
	if !ok {
		return 0, fmt.Errorf("chain %d: %w", chainID, ErrUnsupportedChain)
	}
	return dest, nil
}

// OriginNetworkID returns the origin network id to use when claiming a
// deposit that originated on chainID.
func (r *Registry) OriginNetworkID(chainID uint64) (uint32, error) {
	id, ok := originNetworks[chainID]
	if !ok {
		return 0, fmt.Errorf("chain %d: %w", chainID, ErrUnsupportedChain)
	}
	return id, nil
}

// IsL1 reports whether chainID is a registered L1 chain.
func (r *Registry) IsL1(chainID uint64) bool {
	c, ok := r.chains[chainID]
	return ok && !c.L2
}

// IsL2 reports whether chainID is a registered L2 chain.
func (r *Registry) IsL2(chainID uint64) bool {
	c, ok := r.chains[chainID]
	return ok && c.L2
}

// RequiresFinalization reports whether a transfer from fromChainID to
// toChainID needs a destination-chain claim transaction. Only L2 -> L1
// withdrawals do; deposits onto an L2 complete from the indexer status alone.
func (r *Registry) RequiresFinalization(fromChainID, toChainID uint64) bool {
	return r.IsL2(fromChainID) && r.IsL1(toChainID)
}

// ExplorerTxURL returns the block-explorer URL for a transaction hash.
func (r *Registry) ExplorerTxURL(chainID uint64, txHash string) string {
	c, ok := r.chains[chainID]
	if !ok || c.ExplorerBaseURL == "" {
		return ""
	}
	return c.ExplorerBaseURL + "/tx/" + txHash
}

// ExplorerAddressURL returns the block-explorer URL for an address.
func (r *Registry) ExplorerAddressURL(chainID uint64, address string) string {
	c, ok := r.chains[chainID]
	if !ok || c.ExplorerBaseURL == "" {
		return ""
	}
	return c.ExplorerBaseURL + "/address/" + address
}

// All returns every registered chain.
func (r *Registry) All() []Chain {
	out := make([]Chain, 0, len(r.chains))
	for _, c := range r.chains {
		out = append(out, c)
	}
	return out
}
