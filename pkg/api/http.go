// Package api exposes the bridge orchestrator over HTTP: flow lifecycle,
// token lookups and the transfer audit trail.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/zero-tech/zchain-bridge/pkg/app/errors"
	apphttp "github.com/zero-tech/zchain-bridge/pkg/app/http"
	"github.com/zero-tech/zchain-bridge/pkg/chains"
	"github.com/zero-tech/zchain-bridge/pkg/flow"
	"github.com/zero-tech/zchain-bridge/pkg/indexer"
	"github.com/zero-tech/zchain-bridge/pkg/signer"
	"github.com/zero-tech/zchain-bridge/pkg/store"
	"github.com/zero-tech/zchain-bridge/pkg/tokens"
)

// TokenDirectory is the token lookup surface the API exposes
type TokenDirectory interface {
	ListTokenBalances(ctx context.Context, chainID uint64, wallet common.Address) ([]tokens.Balance, error)
	SearchTokens(ctx context.Context, chainID uint64, wallet common.Address, query string) (*tokens.SearchResult, error)
	AddCustomToken(ctx context.Context, chainID uint64, addr common.Address) (tokens.Token, error)
}

// TransferLister reads the submission audit trail
type TransferLister interface {
	ListTransfers(ctx context.Context, sourceWallet string, limit, offset int) ([]store.TransferDao, error)
}

// HTTP wraps the flow manager and token resolver with HTTP endpoints
type HTTP struct {
	manager   *flow.Manager
	registry  *chains.Registry
	tokens    TokenDirectory
	transfers TransferLister
	validate  *validator.Validate
	logger    *zap.Logger
}

// RegisterRoutes registers the bridge endpoints on the given chi router
func RegisterRoutes(r chi.Router, manager *flow.Manager, registry *chains.Registry, dir TokenDirectory, transfers TransferLister, logger *zap.Logger) {
	h := &HTTP{
		manager:   manager,
		registry:  registry,
		tokens:    dir,
		transfers: transfers,
		validate:  validator.New(),
		logger:    logger,
	}

	r.Route("/flows", func(r chi.Router) {
		r.Post("/", apphttp.HandleError(h.createFlow))
		r.Route("/{flowID}", func(r chi.Router) {
			r.Get("/", apphttp.HandleError(h.getFlow))
			r.Delete("/", apphttp.HandleError(h.deleteFlow))
			r.Post("/transfer", apphttp.HandleError(h.prepareTransfer))
			r.Post("/submit", apphttp.HandleError(h.submit))
			r.Post("/finalize", apphttp.HandleError(h.finalize))
			r.Post("/reset", apphttp.HandleError(h.reset))
			r.Put("/wallet", apphttp.HandleError(h.updateWallet))
			r.Get("/activity", apphttp.HandleError(h.activity))
			r.Post("/resume", apphttp.HandleError(h.resume))
		})
	})

	r.Get("/chains", apphttp.HandleError(h.listChains))
	r.Route("/tokens", func(r chi.Router) {
		r.Get("/", apphttp.HandleError(h.listTokens))
		r.Get("/search", apphttp.HandleError(h.searchTokens))
		r.Post("/custom", apphttp.HandleError(h.addCustomToken))
	})
	r.Get("/transfers", apphttp.HandleError(h.listTransfers))
}

type walletRequest struct {
	EOAAddress       string `json:"eoaAddress" validate:"omitempty,eth_addr"`
	CustodialAddress string `json:"custodialAddress" validate:"omitempty,eth_addr"`
	ChainID          uint64 `json:"chainId"`
}

func (req *walletRequest) context() flow.WalletContext {
	return flow.WalletContext{
		EOAAddress:       common.HexToAddress(req.EOAAddress),
		CustodialAddress: common.HexToAddress(req.CustodialAddress),
		ChainID:          req.ChainID,
	}
}

type flowResponse struct {
	ID    string     `json:"id"`
	State flow.State `json:"state"`
}

func (h *HTTP) createFlow(w http.ResponseWriter, r *http.Request) error {
	var req walletRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}

	f := h.manager.Create(req.context())
	state := f.Open()

	h.writeJSON(w, http.StatusCreated, &flowResponse{ID: f.ID().String(), State: state})
	return nil
}

func (h *HTTP) getFlow(w http.ResponseWriter, r *http.Request) error {
	f, err := h.flowFromPath(r)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, &flowResponse{ID: f.ID().String(), State: f.State()})
	return nil
}

func (h *HTTP) deleteFlow(w http.ResponseWriter, r *http.Request) error {
	f, err := h.flowFromPath(r)
	if err != nil {
		return err
	}

	h.manager.Remove(f.ID())
	w.WriteHeader(http.StatusNoContent)
	return nil
}

type prepareRequest struct {
	TokenAddress string `json:"tokenAddress" validate:"omitempty,eth_addr"`
	Amount       string `json:"amount" validate:"required"`
}

func (h *HTTP) prepareTransfer(w http.ResponseWriter, r *http.Request) error {
	f, err := h.flowFromPath(r)
	if err != nil {
		return err
	}

	var req prepareRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}

	state, err := f.PrepareTransfer(r.Context(), common.HexToAddress(req.TokenAddress), req.Amount)
	if err != nil {
		var verr *flow.ValidationError
		if errors.As(err, &verr) {
			return apperrors.BadRequestError(err, verr.Error())
		}
		return apperrors.ConflictError(err, err.Error())
	}

	h.writeJSON(w, http.StatusOK, &flowResponse{ID: f.ID().String(), State: state})
	return nil
}

func (h *HTTP) submit(w http.ResponseWriter, r *http.Request) error {
	f, err := h.flowFromPath(r)
	if err != nil {
		return err
	}

	state, err := f.Submit(r.Context())
	if err != nil {
		// Submission failures are part of the flow: the state carries the
		// normalized message and the Error step. Step mismatches are the
		// caller's fault.
		var serr *signer.Error
		if !errors.As(err, &serr) {
			return apperrors.ConflictError(err, err.Error())
		}
	}

	h.writeJSON(w, http.StatusOK, &flowResponse{ID: f.ID().String(), State: state})
	return nil
}

func (h *HTTP) finalize(w http.ResponseWriter, r *http.Request) error {
	f, err := h.flowFromPath(r)
	if err != nil {
		return err
	}

	state, err := f.Finalize(r.Context())
	if err != nil {
		var serr *signer.Error
		if !errors.As(err, &serr) {
			return apperrors.ConflictError(err, err.Error())
		}
	}

	h.writeJSON(w, http.StatusOK, &flowResponse{ID: f.ID().String(), State: state})
	return nil
}

func (h *HTTP) reset(w http.ResponseWriter, r *http.Request) error {
	f, err := h.flowFromPath(r)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, &flowResponse{ID: f.ID().String(), State: f.Reset()})
	return nil
}

func (h *HTTP) updateWallet(w http.ResponseWriter, r *http.Request) error {
	f, err := h.flowFromPath(r)
	if err != nil {
		return err
	}

	var req walletRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, &flowResponse{ID: f.ID().String(), State: f.UpdateWallet(req.context())})
	return nil
}

func (h *HTTP) activity(w http.ResponseWriter, r *http.Request) error {
	f, err := h.flowFromPath(r)
	if err != nil {
		return err
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	page, state, err := f.OpenActivity(r.Context(), offset)
	if err != nil {
		return apperrors.DependencyError(err, "failed to list bridge activity")
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"deposits":   page.Deposits,
		"totalCount": page.TotalCount,
		"state":      state,
	})
	return nil
}

func (h *HTTP) resume(w http.ResponseWriter, r *http.Request) error {
	f, err := h.flowFromPath(r)
	if err != nil {
		return err
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}

	var rec indexer.StatusRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	if rec.TransactionHash == "" {
		return apperrors.BadRequestError(nil, "transactionHash is required")
	}

	state, err := f.Resume(r.Context(), &rec)
	if err != nil {
		return apperrors.ConflictError(err, err.Error())
	}

	h.writeJSON(w, http.StatusOK, &flowResponse{ID: f.ID().String(), State: state})
	return nil
}

func (h *HTTP) listChains(w http.ResponseWriter, r *http.Request) error {
	type chainInfo struct {
		ChainID         uint64 `json:"chainId"`
		Name            string `json:"name"`
		BridgeNetworkID uint32 `json:"bridgeNetworkId"`
		L2              bool   `json:"l2"`
		DestinationID   uint64 `json:"destinationChainId"`
	}

	all := h.registry.All()
	out := make([]chainInfo, 0, len(all))
	for _, c := range all {
		dest, err := h.registry.DestinationFor(c.ID)
		if err != nil {
			continue
		}
		out = append(out, chainInfo{
			ChainID:         c.ID,
			Name:            c.Name,
			BridgeNetworkID: c.BridgeNetworkID,
			L2:              c.L2,
			DestinationID:   dest,
		})
	}

	h.writeJSON(w, http.StatusOK, out)
	return nil
}

type tokenBalance struct {
	TokenAddress string `json:"tokenAddress"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Decimals     uint8  `json:"decimals"`
	Native       bool   `json:"native"`
	ChainID      uint64 `json:"chainId"`
	Balance      string `json:"balance"`
}

func toTokenBalance(bal tokens.Balance) tokenBalance {
	return tokenBalance{
		TokenAddress: bal.Address.Hex(),
		Symbol:       bal.Symbol,
		Name:         bal.Name,
		Decimals:     bal.Decimals,
		Native:       bal.Native,
		ChainID:      bal.ChainID,
		Balance:      bal.Balance.String(),
	}
}

func (h *HTTP) listTokens(w http.ResponseWriter, r *http.Request) error {
	chainID, wallet, err := h.chainAndWallet(r)
	if err != nil {
		return err
	}

	list, err := h.tokens.ListTokenBalances(r.Context(), chainID, wallet)
	if err != nil {
		return apperrors.DependencyError(err, "failed to list token balances")
	}

	out := make([]tokenBalance, 0, len(list))
	for _, bal := range list {
		out = append(out, toTokenBalance(bal))
	}
	h.writeJSON(w, http.StatusOK, out)
	return nil
}

func (h *HTTP) searchTokens(w http.ResponseWriter, r *http.Request) error {
	chainID, wallet, err := h.chainAndWallet(r)
	if err != nil {
		return err
	}

	res, err := h.tokens.SearchTokens(r.Context(), chainID, wallet, r.URL.Query().Get("query"))
	if err != nil {
		if errors.Is(err, tokens.ErrMetadataFetch) {
			return apperrors.DependencyError(err, "failed to read token metadata")
		}
		return apperrors.DependencyError(err, "token search failed")
	}

	out := struct {
		Tokens   []tokenBalance `json:"tokens"`
		Resolved *tokens.Token  `json:"resolved,omitempty"`
	}{Tokens: make([]tokenBalance, 0, len(res.Tokens)), Resolved: res.Resolved}
	for _, bal := range res.Tokens {
		out.Tokens = append(out.Tokens, toTokenBalance(bal))
	}

	h.writeJSON(w, http.StatusOK, out)
	return nil
}

type customTokenRequest struct {
	ChainID uint64 `json:"chainId" validate:"required"`
	Address string `json:"address" validate:"required,eth_addr"`
}

func (h *HTTP) addCustomToken(w http.ResponseWriter, r *http.Request) error {
	var req customTokenRequest
	if err := h.decode(r, &req); err != nil {
		return err
	}

	tok, err := h.tokens.AddCustomToken(r.Context(), req.ChainID, common.HexToAddress(req.Address))
	if err != nil {
		if errors.Is(err, tokens.ErrTokenNotFound) {
			return apperrors.ResourceNotFoundError(err, "no token contract at that address")
		}
		return apperrors.DependencyError(err, "failed to resolve token")
	}

	h.writeJSON(w, http.StatusCreated, tok)
	return nil
}

func (h *HTTP) listTransfers(w http.ResponseWriter, r *http.Request) error {
	wallet := r.URL.Query().Get("wallet")
	if !common.IsHexAddress(wallet) {
		return apperrors.BadRequestError(nil, "wallet query parameter is required")
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	list, err := h.transfers.ListTransfers(r.Context(), common.HexToAddress(wallet).Hex(), limit, offset)
	if err != nil {
		return apperrors.GeneralError(err)
	}

	h.writeJSON(w, http.StatusOK, list)
	return nil
}

// flowFromPath resolves the {flowID} path parameter to a live flow
func (h *HTTP) flowFromPath(r *http.Request) (*flow.Flow, error) {
	id, err := uuid.Parse(chi.URLParam(r, "flowID"))
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid flow id")
	}

	f, err := h.manager.Get(id)
	if err != nil {
		return nil, apperrors.ResourceNotFoundError(err, "flow not found")
	}
	return f, nil
}

// chainAndWallet reads the chainId and wallet query parameters
func (h *HTTP) chainAndWallet(r *http.Request) (uint64, common.Address, error) {
	chainID, err := strconv.ParseUint(r.URL.Query().Get("chainId"), 10, 64)
	if err != nil || !h.registry.Supported(chainID) {
		return 0, common.Address{}, apperrors.BadRequestError(err, "unsupported chainId")
	}

	wallet := r.URL.Query().Get("wallet")
	if !common.IsHexAddress(wallet) {
		return 0, common.Address{}, apperrors.BadRequestError(nil, "wallet query parameter is required")
	}
	return chainID, common.HexToAddress(wallet), nil
}

// decode reads and validates a JSON request body
func (h *HTTP) decode(r *http.Request, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	if err := h.validate.Struct(out); err != nil {
		return apperrors.BadRequestError(err, "invalid request: "+err.Error())
	}
	return nil
}

func (h *HTTP) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
