// Package flow drives the bridge transfer state machine: wallet connect,
// amount selection, review, submission, status polling and the optional
// destination-chain finalization step.
package flow

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zero-tech/zchain-bridge/internal/metrics"
	"github.com/zero-tech/zchain-bridge/pkg/chains"
	"github.com/zero-tech/zchain-bridge/pkg/indexer"
	"github.com/zero-tech/zchain-bridge/pkg/poller"
	"github.com/zero-tech/zchain-bridge/pkg/proofs"
	"github.com/zero-tech/zchain-bridge/pkg/signer"
	"github.com/zero-tech/zchain-bridge/pkg/tokens"
)

// Step is the current position in the bridge flow
type Step string

const (
	StepConnect    Step = "connect"
	StepAmount     Step = "amount"
	StepReview     Step = "review"
	StepProcessing Step = "processing"
	StepSuccess    Step = "success"
	StepError      Step = "error"
	StepActivity   Step = "activity"
)

// WalletContext identifies the session's wallets. The EOA signs on L1 and
// claims; the custodial wallet holds funds on L2. A zero EOA address means
// no wallet is connected.
type WalletContext struct {
	EOAAddress       common.Address
	CustodialAddress common.Address
	ChainID          uint64
}

// Connected reports whether a wallet is attached to the session
func (w WalletContext) Connected() bool {
	return w.EOAAddress != (common.Address{})
}

// TransferRequest captures a confirmed amount/token selection. Immutable
// once submitted.
type TransferRequest struct {
	SourceChainID      uint64         `json:"sourceChainId"`
	DestinationChainID uint64         `json:"destinationChainId"`
	TokenAddress       common.Address `json:"tokenAddress"`
	Amount             string         `json:"amount"`
	SourceWallet       common.Address `json:"sourceWalletAddress"`
	DestinationWallet  common.Address `json:"destinationWalletAddress"`
}

// State is the externally visible flow snapshot
type State struct {
	Step             Step                  `json:"step"`
	LastError        string                `json:"lastError,omitempty"`
	ActiveRequest    *TransferRequest      `json:"activeRequest,omitempty"`
	ActiveTxHash     string                `json:"activeTransactionHash,omitempty"`
	ClaimTxHash      string                `json:"claimTransactionHash,omitempty"`
	FinalizeReady    bool                  `json:"finalizeReady"`
	LatestStatus     *indexer.StatusRecord `json:"latestStatus,omitempty"`
	UnsupportedChain bool                  `json:"unsupportedChain"`
}

// TokenSource resolves tokens and balances for validation
type TokenSource interface {
	ResolveToken(ctx context.Context, chainID uint64, addr common.Address) (tokens.Token, error)
	Counterpart(ctx context.Context, destChainID uint64, source tokens.Token) (tokens.Token, bool, error)
	Balance(ctx context.Context, chainID uint64, wallet common.Address, tok tokens.Token) (*big.Int, error)
}

// ActivitySource lists a wallet's bridge history
type ActivitySource interface {
	BridgeActivity(ctx context.Context, wallet string, opts indexer.ActivityOptions) (*indexer.ActivityPage, error)
}

// ProofSource fetches claim proofs for ready deposits
type ProofSource interface {
	Fetch(ctx context.Context, wallet string, depositCount uint64, netID uint32, fromChainID uint64) (*proofs.Bundle, error)
}

// Submission is the audit record written when a transfer is submitted
type Submission struct {
	FlowID      uuid.UUID
	Request     TransferRequest
	TxHash      string
	Strategy    string
	SubmittedAt time.Time
}

// TransferAudit persists the flow's submission trail. Implementations may
// be absent; the flow skips auditing when nil.
type TransferAudit interface {
	RecordSubmission(ctx context.Context, sub *Submission) error
	RecordOutcome(ctx context.Context, flowID uuid.UUID, outcome string, claimTxHash string) error
}

// Deps wires the flow's collaborators
type Deps struct {
	Registry  *chains.Registry
	Tokens    TokenSource
	External  signer.Strategy
	Custodial signer.Strategy
	Status    poller.StatusSource
	Activity  ActivitySource
	Proofs    ProofSource
	Audit     TransferAudit
	Logger    *zap.Logger

	PollInterval     time.Duration
	ActivityPageSize int
}

// Flow is one bridge transfer session. All mutation goes through its
// methods; the zero value is not usable.
type Flow struct {
	id   uuid.UUID
	deps Deps

	mu         sync.Mutex
	wallet     WalletContext
	state      State
	token      tokens.Token
	amount     *big.Int
	strategy   signer.Strategy
	stratTag   string
	proof      *proofs.Bundle
	submitting bool

	trackCancel context.CancelFunc
	trackDone   chan struct{}
}

// New creates a flow for a wallet session, starting at Connect
func New(deps Deps, wallet WalletContext) *Flow {
	if deps.PollInterval <= 0 {
		deps.PollInterval = poller.DefaultInterval
	}
	if deps.ActivityPageSize <= 0 {
		deps.ActivityPageSize = 50
	}

	f := &Flow{
		id:     uuid.New(),
		deps:   deps,
		wallet: wallet,
		state:  State{Step: StepConnect},
	}
	return f
}

// ID returns the flow's session id
func (f *Flow) ID() uuid.UUID {
	return f.id
}

// State returns a snapshot of the flow
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Wallet returns the flow's wallet context
func (f *Flow) Wallet() WalletContext {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wallet
}

// Open moves Connect to Amount when the connected wallet sits on a
// supported chain. Otherwise the flow stays on Connect with an
// unsupported-network message.
func (f *Flow) Open() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.Step != StepConnect {
		return f.state
	}
	if !f.wallet.Connected() || !f.deps.Registry.Supported(f.wallet.ChainID) {
		f.state.UnsupportedChain = true
		f.state.LastError = signer.KindUnsupportedChain.Message()
		return f.state
	}

	f.state.UnsupportedChain = false
	f.state.LastError = ""
	f.state.Step = StepAmount
	return f.state
}

// PrepareTransfer validates the token/amount selection and, when valid,
// builds the transfer request and moves Amount to Review. Validation
// failures keep the flow on Amount with the violation's message.
func (f *Flow) PrepareTransfer(ctx context.Context, tokenAddr common.Address, amount string) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.Step != StepAmount {
		return f.state, fmt.Errorf("cannot prepare a transfer from step %s", f.state.Step)
	}

	req, tok, amountBase, err := f.buildRequest(ctx, tokenAddr, amount)
	if err != nil {
		if verr, ok := err.(*ValidationError); ok {
			f.state.LastError = verr.Error()
			return f.state, verr
		}
		return f.state, err
	}

	f.token = tok
	f.amount = amountBase
	f.state.ActiveRequest = req
	f.state.LastError = ""
	f.state.Step = StepReview
	return f.state, nil
}

// buildRequest resolves tokens, validates the amount in base units and
// assembles the request. Caller holds the lock.
func (f *Flow) buildRequest(ctx context.Context, tokenAddr common.Address, amount string) (*TransferRequest, tokens.Token, *big.Int, error) {
	fromChain := f.wallet.ChainID
	toChain, err := f.deps.Registry.DestinationFor(fromChain)
	if err != nil {
		return nil, tokens.Token{}, nil, newValidationError(CodeNoToToken)
	}
	if toChain == fromChain {
		return nil, tokens.Token{}, nil, newValidationError(CodeSameChain)
	}

	tok, err := f.deps.Tokens.ResolveToken(ctx, fromChain, tokenAddr)
	if err != nil {
		return nil, tokens.Token{}, nil, newValidationError(CodeNoFromToken)
	}
	if !tok.Native && tok.Address == (common.Address{}) {
		return nil, tokens.Token{}, nil, newValidationError(CodeNoTokenAddress)
	}

	// Counterpart resolution is an exact symbol match against the
	// destination chain's known list. No match means the flow cannot
	// proceed with this token.
	if _, ok, err := f.deps.Tokens.Counterpart(ctx, toChain, tok); err != nil || !ok {
		return nil, tokens.Token{}, nil, newValidationError(CodeNoToToken)
	}

	amountBase, err := ParseAmount(amount, tok.Decimals)
	if err != nil {
		if verr, ok := err.(*ValidationError); ok {
			return nil, tokens.Token{}, nil, verr
		}
		return nil, tokens.Token{}, nil, newValidationError(CodeInvalidAmount)
	}

	sourceWallet := f.walletFor(fromChain)
	balance, err := f.deps.Tokens.Balance(ctx, fromChain, sourceWallet, tok)
	if err != nil {
		return nil, tokens.Token{}, nil, fmt.Errorf("fetching balance: %w", err)
	}
	if err := validateAmount(amountBase, balance); err != nil {
		return nil, tokens.Token{}, nil, err.(*ValidationError)
	}

	req := &TransferRequest{
		SourceChainID:      fromChain,
		DestinationChainID: toChain,
		TokenAddress:       tok.Address,
		Amount:             amount,
		SourceWallet:       sourceWallet,
		DestinationWallet:  f.walletFor(toChain),
	}
	return req, tok, amountBase, nil
}

// walletFor picks which wallet owns funds on a chain: the EOA on L1, the
// custodial wallet on L2
func (f *Flow) walletFor(chainID uint64) common.Address {
	if f.deps.Registry.IsL2(chainID) && f.wallet.CustodialAddress != (common.Address{}) {
		return f.wallet.CustodialAddress
	}
	return f.wallet.EOAAddress
}

// Submit sends the reviewed transfer through the custody strategy owning
// the source funds and, on success, moves to Processing and starts status
// tracking. A submission failure is normalized and lands on Error.
func (f *Flow) Submit(ctx context.Context) (State, error) {
	f.mu.Lock()

	if f.state.Step != StepReview || f.state.ActiveRequest == nil {
		st := f.state
		f.mu.Unlock()
		return st, fmt.Errorf("cannot submit from step %s", st.Step)
	}
	if f.submitting {
		st := f.state
		f.mu.Unlock()
		return st, fmt.Errorf("a submission is already in flight")
	}

	req := f.state.ActiveRequest
	strategy, tag, err := f.selectStrategy(req.SourceWallet)
	if err != nil {
		f.state.Step = StepError
		f.state.LastError = err.Error()
		st := f.state
		f.mu.Unlock()
		return st, err
	}
	f.strategy = strategy
	f.stratTag = tag

	sreq := &signer.TransferRequest{
		FromChainID: req.SourceChainID,
		ToChainID:   req.DestinationChainID,
		Token:       req.TokenAddress,
		Amount:      new(big.Int).Set(f.amount),
		From:        req.SourceWallet,
		Destination: req.DestinationWallet,
	}
	f.submitting = true
	f.mu.Unlock()

	start := time.Now()
	hash, err := strategy.SubmitTransfer(ctx, sreq)
	metrics.SubmissionDuration.WithLabelValues(tag).Observe(time.Since(start).Seconds())

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false

	// A reset or wallet change may have cleared the transfer while the
	// submission awaited its receipt. The flow no longer owns it; keep the
	// audit trail as the record of what went on chain.
	if f.state.Step != StepReview || f.state.ActiveRequest != req {
		if err == nil {
			metrics.SubmissionsTotal.WithLabelValues(tag, "submitted").Inc()
			f.deps.Logger.Warn("Flow left review during submission, abandoning result",
				zap.String("flow_id", f.id.String()),
				zap.String("tx_hash", hash.Hex()))
			f.auditSubmissionLocked(context.WithoutCancel(ctx), req, hash.Hex(), tag)
		}
		return f.state, fmt.Errorf("flow is no longer awaiting this submission")
	}

	if err != nil {
		norm := signer.Normalize(err)
		metrics.SubmissionsTotal.WithLabelValues(tag, "failed").Inc()
		metrics.ErrorsTotal.WithLabelValues("flow", norm.Kind.String()).Inc()
		f.state.Step = StepError
		f.state.LastError = norm.Error()
		f.deps.Logger.Error("Bridge submission failed",
			zap.String("flow_id", f.id.String()),
			zap.String("strategy", tag),
			zap.Error(err))
		return f.state, norm
	}

	metrics.SubmissionsTotal.WithLabelValues(tag, "submitted").Inc()
	f.state.ActiveTxHash = hash.Hex()
	f.state.Step = StepProcessing
	f.state.LastError = ""

	f.deps.Logger.Info("Bridge transfer submitted",
		zap.String("flow_id", f.id.String()),
		zap.String("tx_hash", hash.Hex()),
		zap.String("strategy", tag))

	f.auditSubmissionLocked(context.WithoutCancel(ctx), req, hash.Hex(), tag)

	f.startTrackingLocked(hash.Hex(), 0)
	return f.state, nil
}

// auditSubmissionLocked writes the submission record. Caller holds the lock.
func (f *Flow) auditSubmissionLocked(ctx context.Context, req *TransferRequest, txHash, tag string) {
	if f.deps.Audit == nil {
		return
	}
	sub := &Submission{
		FlowID:      f.id,
		Request:     *req,
		TxHash:      txHash,
		Strategy:    tag,
		SubmittedAt: time.Now().UTC(),
	}
	if err := f.deps.Audit.RecordSubmission(ctx, sub); err != nil {
		f.deps.Logger.Warn("Failed to record submission", zap.Error(err))
	}
}

// selectStrategy picks the custody strategy once per transfer by matching
// the request's source wallet. Claims never go through this; they always
// use the external signer.
func (f *Flow) selectStrategy(source common.Address) (signer.Strategy, string, error) {
	switch source {
	case f.wallet.EOAAddress:
		return f.deps.External, "external", nil
	case f.wallet.CustodialAddress:
		return f.deps.Custodial, "custodial", nil
	default:
		return nil, "", signer.NewError(signer.KindWalletMismatch,
			fmt.Errorf("source wallet %s matches neither session wallet", source.Hex()))
	}
}

// startTrackingLocked launches the status tracking goroutine. When
// depositCount is zero it is first resolved from the activity list by
// transaction hash. Caller holds the lock.
func (f *Flow) startTrackingLocked(txHash string, depositCount uint64) {
	f.stopTrackingLocked()

	req := f.state.ActiveRequest
	statusWallet := f.statusWalletLocked()
	fromChain := req.SourceChainID

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	f.trackCancel = cancel
	f.trackDone = done

	p := poller.New(f.deps.Status, f.deps.PollInterval, f.deps.Logger)

	go func() {
		defer close(done)

		dc := depositCount
		if dc == 0 && txHash != "" {
			resolved, ok := f.resolveDepositCount(ctx, statusWallet, txHash, fromChain)
			if !ok {
				return
			}
			dc = resolved
		}

		h := p.Start(ctx, statusWallet, dc, fromChain, func(rec *indexer.StatusRecord) {
			f.onStatus(ctx, rec)
		})
		<-h.Done()
	}()
}

// statusWalletLocked is the wallet address the indexer keys records by:
// the custodial wallet when present, the EOA otherwise
func (f *Flow) statusWalletLocked() string {
	if f.wallet.CustodialAddress != (common.Address{}) {
		return f.wallet.CustodialAddress.Hex()
	}
	return f.wallet.EOAAddress.Hex()
}

// resolveDepositCount finds a fresh submission's deposit sequence number
// by scanning the activity list for its transaction hash, retrying on the
// poll interval while the indexer catches up
func (f *Flow) resolveDepositCount(ctx context.Context, wallet, txHash string, fromChain uint64) (uint64, bool) {
	ticker := time.NewTicker(f.deps.PollInterval)
	defer ticker.Stop()

	for {
		page, err := f.deps.Activity.BridgeActivity(ctx, wallet, indexer.ActivityOptions{
			FromChainID: fromChain,
			Limit:       f.deps.ActivityPageSize,
		})
		if err != nil {
			f.deps.Logger.Warn("Activity lookup failed, retrying",
				zap.String("tx_hash", txHash), zap.Error(err))
		} else {
			for _, dep := range page.Deposits {
				if dep.TransactionHash == txHash {
					return dep.DepositCount, true
				}
			}
		}

		select {
		case <-ctx.Done():
			return 0, false
		case <-ticker.C:
		}
	}
}

// onStatus consumes one polled status record. Runs on the poller's
// goroutine; ctx is the tracker's and is canceled on teardown.
func (f *Flow) onStatus(ctx context.Context, rec *indexer.StatusRecord) {
	metrics.StatusPolls.WithLabelValues(string(rec.Status)).Inc()

	f.mu.Lock()
	if f.state.Step != StepProcessing {
		f.mu.Unlock()
		return
	}

	f.state.LatestStatus = rec
	if rec.ClaimTxHash != "" {
		f.state.ClaimTxHash = rec.ClaimTxHash
	}

	switch rec.Status {
	case indexer.StatusCompleted:
		f.state.Step = StepSuccess
		f.recordOutcomeLocked(context.WithoutCancel(ctx), "success")
		f.mu.Unlock()
		return
	case indexer.StatusFailed:
		f.state.Step = StepError
		f.state.LastError = "Bridge transfer failed"
		f.recordOutcomeLocked(context.WithoutCancel(ctx), "failed")
		f.mu.Unlock()
		return
	}

	req := f.state.ActiveRequest
	claimable := req != nil &&
		f.deps.Registry.RequiresFinalization(req.SourceChainID, req.DestinationChainID) &&
		rec.ReadyForClaim && rec.ClaimTxHash == "" && f.state.ClaimTxHash == ""

	if !claimable || f.proof != nil {
		f.state.FinalizeReady = claimable && f.proof != nil
		f.mu.Unlock()
		return
	}

	wallet := f.statusWalletLocked()
	toChain := req.DestinationChainID
	fromChain := req.SourceChainID
	f.mu.Unlock()

	dest, err := f.deps.Registry.Info(toChain)
	if err != nil {
		return
	}

	bundle, err := f.deps.Proofs.Fetch(ctx, wallet, rec.DepositCount, dest.BridgeNetworkID, fromChain)
	if err != nil {
		metrics.ProofFetches.WithLabelValues("failed").Inc()
		f.deps.Logger.Warn("Merkle proof fetch failed, will retry on next poll",
			zap.Uint64("deposit_count", rec.DepositCount), zap.Error(err))
		return
	}
	metrics.ProofFetches.WithLabelValues("fetched").Inc()

	f.mu.Lock()
	f.proof = bundle
	f.state.FinalizeReady = f.state.Step == StepProcessing && f.state.ClaimTxHash == ""
	f.mu.Unlock()
}

// Finalize submits the destination-chain claim for a ready deposit. Claims
// always go through the external signer, even when the deposit itself used
// the custodial path.
func (f *Flow) Finalize(ctx context.Context) (State, error) {
	f.mu.Lock()

	if f.state.Step != StepProcessing || !f.state.FinalizeReady || f.proof == nil || f.state.LatestStatus == nil {
		st := f.state
		f.mu.Unlock()
		return st, fmt.Errorf("no claim is ready to finalize")
	}

	req := f.state.ActiveRequest
	claim := &signer.ClaimRequest{
		FromChainID: req.SourceChainID,
		ToChainID:   req.DestinationChainID,
		Record:      f.state.LatestStatus,
		Proof:       f.proof,
	}
	toChain := strconv.FormatUint(req.DestinationChainID, 10)
	f.state.FinalizeReady = false
	f.mu.Unlock()

	hash, err := f.deps.External.SubmitClaim(ctx, claim)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		norm := signer.Normalize(err)
		metrics.ClaimsTotal.WithLabelValues(toChain, "failed").Inc()
		metrics.ErrorsTotal.WithLabelValues("flow", norm.Kind.String()).Inc()
		f.state.Step = StepError
		f.state.LastError = norm.Error()
		f.recordOutcomeLocked(context.WithoutCancel(ctx), "claim_failed")
		return f.state, norm
	}

	metrics.ClaimsTotal.WithLabelValues(toChain, "submitted").Inc()
	f.state.ClaimTxHash = hash.Hex()
	f.deps.Logger.Info("Claim submitted, awaiting completed status",
		zap.String("flow_id", f.id.String()),
		zap.String("claim_tx_hash", hash.Hex()))

	// Completion stays poll-driven: the flow reaches Success when the
	// indexer reports the transfer completed.
	return f.state, nil
}

// Reset clears the active transfer and returns to Amount, or to Connect
// when no supported wallet remains
func (f *Flow) Reset() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopTrackingLocked()
	f.clearTransferLocked()

	if f.wallet.Connected() && f.deps.Registry.Supported(f.wallet.ChainID) {
		f.state.Step = StepAmount
	} else {
		f.state.Step = StepConnect
	}
	return f.state
}

// UpdateWallet applies a wallet or chain change. Any change forces the
// flow back to Connect and clears the active transfer.
func (f *Flow) UpdateWallet(wallet WalletContext) State {
	f.mu.Lock()
	defer f.mu.Unlock()

	if wallet == f.wallet {
		return f.state
	}

	f.stopTrackingLocked()
	f.clearTransferLocked()
	f.wallet = wallet
	f.state.Step = StepConnect
	return f.state
}

// Disconnect detaches the wallet and resets to Connect
func (f *Flow) Disconnect() State {
	return f.UpdateWallet(WalletContext{})
}

// OpenActivity lists the wallet's bridge history and moves to the
// Activity step. Only reachable outside an active transfer.
func (f *Flow) OpenActivity(ctx context.Context, offset int) (*indexer.ActivityPage, State, error) {
	f.mu.Lock()
	switch f.state.Step {
	case StepConnect, StepAmount, StepActivity, StepSuccess, StepError:
	default:
		st := f.state
		f.mu.Unlock()
		return nil, st, fmt.Errorf("cannot open activity from step %s", st.Step)
	}
	wallet := f.statusWalletLocked()
	fromChain := f.wallet.ChainID
	limit := f.deps.ActivityPageSize
	f.mu.Unlock()

	page, err := f.deps.Activity.BridgeActivity(ctx, wallet, indexer.ActivityOptions{
		FromChainID: fromChain,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return nil, f.State(), fmt.Errorf("listing bridge activity: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Step = StepActivity
	return page, f.state, nil
}

// Resume re-enters Processing (or Error, for failed transfers) for a
// previously submitted transfer picked from the activity list
func (f *Flow) Resume(ctx context.Context, rec *indexer.StatusRecord) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.Step != StepActivity {
		return f.state, fmt.Errorf("cannot resume from step %s", f.state.Step)
	}

	fromChain, toChain, err := f.chainsFromRecord(rec)
	if err != nil {
		return f.state, err
	}

	f.clearTransferLocked()
	f.state.ActiveRequest = &TransferRequest{
		SourceChainID:      fromChain,
		DestinationChainID: toChain,
		TokenAddress:       common.HexToAddress(rec.TokenAddress),
		Amount:             rec.Amount,
		DestinationWallet:  common.HexToAddress(rec.DestinationAddress),
	}
	f.state.ActiveTxHash = rec.TransactionHash
	f.state.LatestStatus = rec
	f.state.ClaimTxHash = rec.ClaimTxHash

	if rec.Status == indexer.StatusFailed {
		f.state.Step = StepError
		f.state.LastError = "Bridge transfer failed"
		return f.state, nil
	}
	if rec.Status == indexer.StatusCompleted {
		f.state.Step = StepSuccess
		return f.state, nil
	}

	f.state.Step = StepProcessing
	f.startTrackingLocked(rec.TransactionHash, rec.DepositCount)
	return f.state, nil
}

// chainsFromRecord maps the record's chain names back to chain ids
func (f *Flow) chainsFromRecord(rec *indexer.StatusRecord) (uint64, uint64, error) {
	var fromChain uint64
	for _, c := range f.deps.Registry.All() {
		if c.Name == rec.FromChain {
			fromChain = c.ID
			break
		}
	}
	if fromChain == 0 {
		return 0, 0, fmt.Errorf("unknown source chain %q in record %s", rec.FromChain, rec.TransactionHash)
	}
	toChain, err := f.deps.Registry.DestinationFor(fromChain)
	if err != nil {
		return 0, 0, err
	}
	return fromChain, toChain, nil
}

// Close stops status tracking. In-flight submissions are left to resolve;
// their outcome is visible through the activity list.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopTrackingLocked()
}

// stopTrackingLocked cancels the tracking goroutine and waits for it to
// exit. Caller holds the lock; the tracker never takes the lock while
// shutting down, so this cannot deadlock with onStatus already returned.
func (f *Flow) stopTrackingLocked() {
	if f.trackCancel == nil {
		return
	}
	cancel := f.trackCancel
	done := f.trackDone
	f.trackCancel = nil
	f.trackDone = nil

	cancel()
	f.mu.Unlock()
	<-done
	f.mu.Lock()
}

// clearTransferLocked drops all per-transfer state. Caller holds the lock.
func (f *Flow) clearTransferLocked() {
	f.state.ActiveRequest = nil
	f.state.ActiveTxHash = ""
	f.state.ClaimTxHash = ""
	f.state.LastError = ""
	f.state.LatestStatus = nil
	f.state.FinalizeReady = false
	f.token = tokens.Token{}
	f.amount = nil
	f.strategy = nil
	f.stratTag = ""
	f.proof = nil
}

// recordOutcomeLocked writes the terminal outcome to the audit log. Callers
// pass a non-cancelable context; a terminal outcome must reach the audit
// trail even when the flow is mid-teardown. Caller holds the lock.
func (f *Flow) recordOutcomeLocked(ctx context.Context, outcome string) {
	if req := f.state.ActiveRequest; req != nil {
		metrics.FlowsCompleted.WithLabelValues(
			strconv.FormatUint(req.SourceChainID, 10), outcome).Inc()
	}
	if f.deps.Audit == nil {
		return
	}
	if err := f.deps.Audit.RecordOutcome(ctx, f.id, outcome, f.state.ClaimTxHash); err != nil {
		f.deps.Logger.Warn("Failed to record flow outcome", zap.Error(err))
	}
}
