package store

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/uptrace/bun"

	"github.com/zero-tech/zchain-bridge/pkg/tokens"
)

// TransferDao maps to the 'transfers' table, the audit trail of bridge
// submissions made through this service
type TransferDao struct {
	bun.BaseModel `bun:"table:transfers,alias:t"`

	ID                 int64      `bun:"id,pk,autoincrement"`
	FlowID             string     `bun:"flow_id,notnull,type:varchar(36)"`
	SourceChainID      int64      `bun:"source_chain_id,notnull"`
	DestinationChainID int64      `bun:"destination_chain_id,notnull"`
	TokenAddress       string     `bun:"token_address,notnull,type:varchar(42)"`
	Amount             string     `bun:"amount,notnull,type:varchar(78)"`
	SourceWallet       string     `bun:"source_wallet,notnull,type:varchar(42)"`
	DestinationWallet  string     `bun:"destination_wallet,notnull,type:varchar(42)"`
	TxHash             string     `bun:"tx_hash,notnull,type:varchar(66)"`
	Strategy           string     `bun:"strategy,notnull,type:varchar(16)"`
	Outcome            *string    `bun:"outcome,type:varchar(32)"`
	ClaimTxHash        *string    `bun:"claim_tx_hash,type:varchar(66)"`
	SubmittedAt        time.Time  `bun:"submitted_at,notnull"`
	ResolvedAt         *time.Time `bun:"resolved_at"`
}

// CustomTokenDao maps to the 'custom_tokens' table, user-added tokens
// namespaced by chain id
type CustomTokenDao struct {
	bun.BaseModel `bun:"table:custom_tokens,alias:ct"`

	ID        int64     `bun:"id,pk,autoincrement"`
	ChainID   int64     `bun:"chain_id,notnull"`
	Address   string    `bun:"address,notnull,type:varchar(42)"`
	Symbol    string    `bun:"symbol,notnull,type:varchar(32)"`
	Name      string    `bun:"name,notnull,type:varchar(128)"`
	Decimals  uint8     `bun:"decimals,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

// toToken converts a CustomTokenDao to a tokens.Token
func toToken(dao *CustomTokenDao) tokens.Token {
	return tokens.Token{
		Address:  common.HexToAddress(dao.Address),
		Symbol:   dao.Symbol,
		Name:     dao.Name,
		Decimals: dao.Decimals,
	}
}

// toCustomTokenDao converts a tokens.Token to its DAO
func toCustomTokenDao(chainID uint64, tok tokens.Token) *CustomTokenDao {
	return &CustomTokenDao{
		ChainID:  int64(chainID),
		Address:  tok.Address.Hex(),
		Symbol:   tok.Symbol,
		Name:     tok.Name,
		Decimals: tok.Decimals,
	}
}
