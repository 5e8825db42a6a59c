package indexer

// Status is the indexer-reported state of a bridge deposit
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusOnHold     Status = "on-hold"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status is final and will not change on
// subsequent polls
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// StatusRecord is the indexer's view of a single bridge deposit.
// It is never mutated locally; refreshing means re-querying.
type StatusRecord struct {
	TransactionHash    string `json:"transactionHash"`
	Status             Status `json:"status"`
	FromChain          string `json:"fromChain"`
	ToChain            string `json:"toChain"`
	Amount             string `json:"amount"`
	TokenAddress       string `json:"tokenAddress"`
	ExplorerURL        string `json:"explorerUrl"`
	DepositCount       uint64 `json:"depositCount"`
	ReadyForClaim      bool   `json:"readyForClaim"`
	ClaimTxHash        string `json:"claimTxHash,omitempty"`
	GlobalIndex        string `json:"globalIndex"`
	Metadata           string `json:"metadata"`
	DestinationAddress string `json:"destinationAddress"`
}

// ActivityPage is one page of a wallet's bridge history
type ActivityPage struct {
	Deposits   []StatusRecord `json:"deposits"`
	TotalCount int            `json:"totalCount"`
}

// ProofData carries the raw merkle proof material for a claim
type ProofData struct {
	MerkleProof       []string `json:"merkleProof"`
	RollupMerkleProof []string `json:"rollupMerkleProof"`
	MainExitRoot      string   `json:"mainExitRoot"`
	RollupExitRoot    string   `json:"rollupExitRoot"`
}

// BridgeTokenPayload is the request body for a custodial bridge submission
type BridgeTokenPayload struct {
	TokenAddress string `json:"tokenAddress"`
	Amount       string `json:"amount"`
	To           string `json:"to"`
	FromChainID  uint64 `json:"fromChainId"`
	ToChainID    uint64 `json:"toChainId"`
}

// FinalizeBridgePayload is the request body for a custodial claim
type FinalizeBridgePayload struct {
	DepositCount       uint64   `json:"depositCount"`
	MerkleProof        []string `json:"merkleProof"`
	RollupMerkleProof  []string `json:"rollupMerkleProof"`
	MainExitRoot       string   `json:"mainExitRoot"`
	RollupExitRoot     string   `json:"rollupExitRoot"`
	DestinationAddress string   `json:"destinationAddress"`
	Amount             string   `json:"amount"`
	TokenAddress       string   `json:"tokenAddress"`
	ChainID            uint64   `json:"chainId,omitempty"`
}

// TransactionResponse is returned from custodial submission endpoints
type TransactionResponse struct {
	TransactionHash string `json:"transactionHash"`
}
