package signer

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/zero-tech/zchain-bridge/pkg/chains"
	"github.com/zero-tech/zchain-bridge/pkg/indexer"
	"github.com/zero-tech/zchain-bridge/pkg/proofs"
)

func TestCustodialSigner_SubmitTransfer(t *testing.T) {
	var gotWallet string
	var gotPayload *indexer.BridgeTokenPayload

	backend := &mockBackend{
		SubmitBridgeTokenFunc: func(ctx context.Context, wallet string, payload *indexer.BridgeTokenPayload) (*indexer.TransactionResponse, error) {
			gotWallet = wallet
			gotPayload = payload
			return &indexer.TransactionResponse{TransactionHash: "0xaaaa"}, nil
		},
	}

	s := NewCustodialSigner(backend, zap.NewNop())
	hash, err := s.SubmitTransfer(context.Background(), &TransferRequest{
		FromChainID: chains.Ethereum,
		ToChainID:   chains.ZChain,
		Token:       common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Amount:      big.NewInt(1500000),
		From:        common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Destination: common.HexToAddress("0x3333333333333333333333333333333333333333"),
	})
	if err != nil {
		t.Fatalf("SubmitTransfer: %v", err)
	}
	if hash != common.HexToHash("0xaaaa") {
		t.Errorf("unexpected hash %s", hash.Hex())
	}

	if gotWallet != "0x2222222222222222222222222222222222222222" {
		t.Errorf("wallet = %s, want source address", gotWallet)
	}
	if gotPayload.Amount != "1500000" {
		t.Errorf("amount must be a base-unit string, got %q", gotPayload.Amount)
	}
	if gotPayload.FromChainID != chains.Ethereum || gotPayload.ToChainID != chains.ZChain {
		t.Errorf("chain ids = %d -> %d", gotPayload.FromChainID, gotPayload.ToChainID)
	}
	if gotPayload.To != "0x3333333333333333333333333333333333333333" {
		t.Errorf("destination = %s", gotPayload.To)
	}
}

func TestCustodialSigner_SubmitTransferBackendError(t *testing.T) {
	backend := &mockBackend{
		SubmitBridgeTokenFunc: func(ctx context.Context, wallet string, payload *indexer.BridgeTokenPayload) (*indexer.TransactionResponse, error) {
			return nil, &indexer.APIError{StatusCode: 502, Body: "bad gateway"}
		},
	}

	s := NewCustodialSigner(backend, zap.NewNop())
	_, err := s.SubmitTransfer(context.Background(), &TransferRequest{Amount: big.NewInt(1)})
	if KindOf(err) != KindNetwork {
		t.Errorf("backend 5xx should surface as a network error, got %v", err)
	}
}

func TestCustodialSigner_SubmitTransferEmptyHash(t *testing.T) {
	backend := &mockBackend{
		SubmitBridgeTokenFunc: func(ctx context.Context, wallet string, payload *indexer.BridgeTokenPayload) (*indexer.TransactionResponse, error) {
			return &indexer.TransactionResponse{}, nil
		},
	}

	s := NewCustodialSigner(backend, zap.NewNop())
	_, err := s.SubmitTransfer(context.Background(), &TransferRequest{Amount: big.NewInt(1)})
	if KindOf(err) != KindNetwork {
		t.Errorf("empty transaction hash should be a network error, got %v", err)
	}
}

func TestCustodialSigner_SubmitClaim(t *testing.T) {
	var gotPayload *indexer.FinalizeBridgePayload

	backend := &mockBackend{
		FinalizeBridgeFunc: func(ctx context.Context, wallet string, payload *indexer.FinalizeBridgePayload) (*indexer.TransactionResponse, error) {
			gotPayload = payload
			return &indexer.TransactionResponse{TransactionHash: "0xbbbb"}, nil
		},
	}

	raw := indexer.ProofData{
		MerkleProof:       []string{"0x01", "0x02"},
		RollupMerkleProof: []string{"0x03"},
		MainExitRoot:      "0x04",
		RollupExitRoot:    "0x05",
	}

	s := NewCustodialSigner(backend, zap.NewNop())
	hash, err := s.SubmitClaim(context.Background(), &ClaimRequest{
		FromChainID: chains.ZChain,
		ToChainID:   chains.Ethereum,
		Record: &indexer.StatusRecord{
			DepositCount:       42,
			Amount:             "1000000000000000000",
			TokenAddress:       "0x1111111111111111111111111111111111111111",
			DestinationAddress: "0x2222222222222222222222222222222222222222",
		},
		Proof: &proofs.Bundle{Raw: raw},
	})
	if err != nil {
		t.Fatalf("SubmitClaim: %v", err)
	}
	if hash != common.HexToHash("0xbbbb") {
		t.Errorf("unexpected hash %s", hash.Hex())
	}

	if gotPayload.DepositCount != 42 {
		t.Errorf("deposit count = %d", gotPayload.DepositCount)
	}
	if len(gotPayload.MerkleProof) != 2 || gotPayload.MerkleProof[0] != "0x01" {
		t.Errorf("claim must carry the unpadded proof, got %v", gotPayload.MerkleProof)
	}
	if gotPayload.ChainID != chains.Ethereum {
		t.Errorf("claim chain = %d, want destination chain", gotPayload.ChainID)
	}
	if gotPayload.Amount != "1000000000000000000" {
		t.Errorf("amount = %q", gotPayload.Amount)
	}
}

func TestCustodialSigner_SubmitClaimBackendError(t *testing.T) {
	backend := &mockBackend{
		FinalizeBridgeFunc: func(ctx context.Context, wallet string, payload *indexer.FinalizeBridgePayload) (*indexer.TransactionResponse, error) {
			return nil, errors.New("connection refused")
		},
	}

	s := NewCustodialSigner(backend, zap.NewNop())
	_, err := s.SubmitClaim(context.Background(), &ClaimRequest{
		Record: &indexer.StatusRecord{},
		Proof:  &proofs.Bundle{},
	})
	if KindOf(err) != KindNetwork {
		t.Errorf("want network error, got %v", err)
	}
}

func TestTransferRequest_Native(t *testing.T) {
	native := &TransferRequest{Amount: big.NewInt(1)}
	if !native.Native() {
		t.Error("zero token address should be treated as the native asset")
	}

	erc20 := &TransferRequest{Token: common.HexToAddress("0x1111111111111111111111111111111111111111")}
	if erc20.Native() {
		t.Error("non-zero token address is not native")
	}
}
