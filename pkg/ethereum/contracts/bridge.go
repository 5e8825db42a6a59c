package contracts

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const bridgeABI = `[
	{"inputs":[
		{"name":"destinationNetwork","type":"uint32"},
		{"name":"destinationAddress","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"token","type":"address"},
		{"name":"forceUpdateGlobalExitRoot","type":"bool"},
		{"name":"permitData","type":"bytes"}
	],"name":"bridgeAsset","outputs":[],"stateMutability":"payable","type":"function"},
	{"inputs":[
		{"name":"smtProofLocalExitRoot","type":"bytes32[32]"},
		{"name":"smtProofRollupExitRoot","type":"bytes32[32]"},
		{"name":"globalIndex","type":"uint256"},
		{"name":"mainnetExitRoot","type":"bytes32"},
		{"name":"rollupExitRoot","type":"bytes32"},
		{"name":"originNetwork","type":"uint32"},
		{"name":"originTokenAddress","type":"address"},
		{"name":"destinationNetwork","type":"uint32"},
		{"name":"destinationAddress","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"metadata","type":"bytes"}
	],"name":"claimAsset","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// Bridge wraps the unified L1/L2 bridge contract
type Bridge struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewBridge binds the bridge contract at the given address
func NewBridge(address common.Address, backend bind.ContractBackend) (*Bridge, error) {
	parsed, err := abi.JSON(strings.NewReader(bridgeABI))
	if err != nil {
		return nil, err
	}
	return &Bridge{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// Address returns the bridge contract address
func (b *Bridge) Address() common.Address {
	return b.address
}

// BridgeAsset deposits amount of token toward destinationNetwork. The native
// asset is bridged by setting opts.Value to the amount and passing the zero
// token address.
func (b *Bridge) BridgeAsset(
	opts *bind.TransactOpts,
	destinationNetwork uint32,
	destinationAddress common.Address,
	amount *big.Int,
	token common.Address,
	forceUpdateGlobalExitRoot bool,
	permitData []byte,
) (*types.Transaction, error) {
	return b.contract.Transact(opts, "bridgeAsset",
		destinationNetwork, destinationAddress, amount, token,
		forceUpdateGlobalExitRoot, permitData)
}

// ClaimAsset finalizes a deposit on the destination chain using the merkle
// inclusion proofs fetched from the indexer.
func (b *Bridge) ClaimAsset(
	opts *bind.TransactOpts,
	smtProofLocalExitRoot [32][32]byte,
	smtProofRollupExitRoot [32][32]byte,
	globalIndex *big.Int,
	mainnetExitRoot [32]byte,
	rollupExitRoot [32]byte,
	originNetwork uint32,
	originTokenAddress common.Address,
	destinationNetwork uint32,
	destinationAddress common.Address,
	amount *big.Int,
	metadata []byte,
) (*types.Transaction, error) {
	return b.contract.Transact(opts, "claimAsset",
		smtProofLocalExitRoot, smtProofRollupExitRoot, globalIndex,
		mainnetExitRoot, rollupExitRoot, originNetwork, originTokenAddress,
		destinationNetwork, destinationAddress, amount, metadata)
}
