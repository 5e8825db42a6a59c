// Package store persists the bridge's server-side state: the submission
// audit trail and user-added custom tokens.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/zero-tech/zchain-bridge/pkg/flow"
	"github.com/zero-tech/zchain-bridge/pkg/tokens"
)

var ErrTransferNotFound = errors.New("transfer not found")

// Store is the postgres implementation of the flow audit log and the
// custom token store
type Store struct {
	db *bun.DB
}

// New creates a store over an established connection
func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// RecordSubmission appends a submitted transfer to the audit trail
func (s *Store) RecordSubmission(ctx context.Context, sub *flow.Submission) error {
	dao := &TransferDao{
		FlowID:             sub.FlowID.String(),
		SourceChainID:      int64(sub.Request.SourceChainID),
		DestinationChainID: int64(sub.Request.DestinationChainID),
		TokenAddress:       sub.Request.TokenAddress.Hex(),
		Amount:             sub.Request.Amount,
		SourceWallet:       sub.Request.SourceWallet.Hex(),
		DestinationWallet:  sub.Request.DestinationWallet.Hex(),
		TxHash:             sub.TxHash,
		Strategy:           sub.Strategy,
		SubmittedAt:        sub.SubmittedAt,
	}

	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}

// RecordOutcome marks the latest submission of a flow with its terminal
// outcome
func (s *Store) RecordOutcome(ctx context.Context, flowID uuid.UUID, outcome string, claimTxHash string) error {
	now := time.Now().UTC()
	q := s.db.NewUpdate().
		Model((*TransferDao)(nil)).
		Set("outcome = ?", outcome).
		Set("resolved_at = ?", now).
		Where("flow_id = ?", flowID.String()).
		Where("outcome IS NULL")
	if claimTxHash != "" {
		q = q.Set("claim_tx_hash = ?", claimTxHash)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTransferNotFound
	}
	return nil
}

// GetTransferByHash returns the audit record for a submission hash
func (s *Store) GetTransferByHash(ctx context.Context, txHash string) (*TransferDao, error) {
	dao := new(TransferDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("tx_hash = ?", txHash).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return dao, nil
}

// ListTransfers returns a wallet's submissions, newest first
func (s *Store) ListTransfers(ctx context.Context, sourceWallet string, limit, offset int) ([]TransferDao, error) {
	var daos []TransferDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("source_wallet = ?", sourceWallet).
		Order("submitted_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return daos, nil
}

// ListCustomTokens returns the user-added tokens for a chain
func (s *Store) ListCustomTokens(ctx context.Context, chainID uint64) ([]tokens.Token, error) {
	var daos []CustomTokenDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("chain_id = ?", int64(chainID)).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom tokens: %w", err)
	}

	out := make([]tokens.Token, 0, len(daos))
	for i := range daos {
		out = append(out, toToken(&daos[i]))
	}
	return out, nil
}

// SaveCustomToken persists a resolved token. Saving the same address
// twice refreshes its metadata.
func (s *Store) SaveCustomToken(ctx context.Context, chainID uint64, tok tokens.Token) error {
	dao := toCustomTokenDao(chainID, tok)

	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (chain_id, address) DO UPDATE").
		Set("symbol = EXCLUDED.symbol").
		Set("name = EXCLUDED.name").
		Set("decimals = EXCLUDED.decimals").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save custom token: %w", err)
	}
	return nil
}
