// Package proofs fetches and shapes the merkle inclusion proofs required to
// claim a bridge deposit on its destination chain.
package proofs

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/zero-tech/zchain-bridge/pkg/indexer"
)

// ProofDepth is the fixed depth of the bridge's sparse merkle tree. Claim
// calls take exactly this many siblings per proof.
const ProofDepth = 32

// ErrProofUnavailable is returned when the proof cannot be fetched or is
// malformed. The caller may retry without resubmitting the transfer.
var ErrProofUnavailable = errors.New("merkle proof unavailable")

// Bundle is the proof material for one claim, padded and parsed into the
// shapes the claim call needs. Immutable once fetched.
type Bundle struct {
	LocalExitProof  [ProofDepth][32]byte
	RollupExitProof [ProofDepth][32]byte
	MainExitRoot    [32]byte
	RollupExitRoot  [32]byte

	// Raw holds the unpadded indexer response, used for custodial claims
	// where the backend does its own shaping.
	Raw indexer.ProofData
}

// ProofSource is the subset of the indexer client the fetcher needs
type ProofSource interface {
	MerkleProof(ctx context.Context, wallet string, depositCount uint64, netID uint32, fromChainID uint64) (*indexer.ProofData, error)
}

// Fetcher retrieves claim proofs from the indexer
type Fetcher struct {
	source ProofSource
	logger *zap.Logger
}

// NewFetcher creates a proof fetcher
func NewFetcher(source ProofSource, logger *zap.Logger) *Fetcher {
	return &Fetcher{source: source, logger: logger}
}

// Fetch retrieves and pads the proof bundle for a claimable deposit
func (f *Fetcher) Fetch(ctx context.Context, wallet string, depositCount uint64, netID uint32, fromChainID uint64) (*Bundle, error) {
	data, err := f.source.MerkleProof(ctx, wallet, depositCount, netID, fromChainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProofUnavailable, err)
	}

	bundle := &Bundle{Raw: *data}

	bundle.LocalExitProof, err = PadProof(data.MerkleProof)
	if err != nil {
		return nil, fmt.Errorf("%w: local exit proof: %v", ErrProofUnavailable, err)
	}
	bundle.RollupExitProof, err = PadProof(data.RollupMerkleProof)
	if err != nil {
		return nil, fmt.Errorf("%w: rollup exit proof: %v", ErrProofUnavailable, err)
	}

	bundle.MainExitRoot = common.HexToHash(data.MainExitRoot)
	bundle.RollupExitRoot = common.HexToHash(data.RollupExitRoot)

	f.logger.Debug("Fetched merkle proof",
		zap.String("wallet", wallet),
		zap.Uint64("deposit_count", depositCount),
		zap.Int("proof_len", len(data.MerkleProof)))

	return bundle, nil
}

// PadProof converts a hex-encoded sibling list into the fixed-depth array the
// claim call expects. Shorter proofs are right-padded with the zero hash; the
// input order is preserved.
func PadProof(proof []string) ([ProofDepth][32]byte, error) {
	var padded [ProofDepth][32]byte
	if len(proof) > ProofDepth {
		return padded, fmt.Errorf("proof has %d siblings, maximum is %d", len(proof), ProofDepth)
	}
	for i, h := range proof {
		padded[i] = common.HexToHash(h)
	}
	return padded, nil
}
