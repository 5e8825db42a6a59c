// Package indexer implements the REST client for the bridge indexing
// service: deposit status, activity history, merkle proofs, and the
// custodial-wallet submission endpoints.
package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zero-tech/zchain-bridge/pkg/config"
)

// APIError is returned when the indexer responds with a non-2xx status
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("indexer returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the bridge indexer REST API
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *zap.Logger
}

// New creates a new indexer client
func New(cfg *config.IndexerConfig, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid indexer base URL: %w", err)
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// BridgeStatus fetches the status record for a deposit.
// GET /wallet/{address}/bridge-status/{depositCount}?fromChainId=
func (c *Client) BridgeStatus(ctx context.Context, wallet string, depositCount uint64, fromChainID uint64) (*StatusRecord, error) {
	path := fmt.Sprintf("/wallet/%s/bridge-status/%d", wallet, depositCount)
	query := url.Values{}
	if fromChainID != 0 {
		query.Set("fromChainId", strconv.FormatUint(fromChainID, 10))
	}

	var record StatusRecord
	if err := c.get(ctx, path, query, &record); err != nil {
		return nil, fmt.Errorf("bridge status: %w", err)
	}
	return &record, nil
}

// ActivityOptions controls activity list pagination
type ActivityOptions struct {
	FromChainID uint64
	Limit       int
	Offset      int
}

// BridgeActivity fetches a page of the wallet's bridge history.
// GET /wallet/{address}/bridge-activity?fromChainId=&limit=&offset=
func (c *Client) BridgeActivity(ctx context.Context, wallet string, opts ActivityOptions) (*ActivityPage, error) {
	path := fmt.Sprintf("/wallet/%s/bridge-activity", wallet)
	query := url.Values{}
	if opts.FromChainID != 0 {
		query.Set("fromChainId", strconv.FormatUint(opts.FromChainID, 10))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}

	var page ActivityPage
	if err := c.get(ctx, path, query, &page); err != nil {
		return nil, fmt.Errorf("bridge activity: %w", err)
	}
	return &page, nil
}

// MerkleProof fetches the inclusion proof material for a claimable deposit.
// GET /wallet/{address}/merkle-proof/{depositCount}?netId=&fromChainId=
func (c *Client) MerkleProof(ctx context.Context, wallet string, depositCount uint64, netID uint32, fromChainID uint64) (*ProofData, error) {
	path := fmt.Sprintf("/wallet/%s/merkle-proof/%d", wallet, depositCount)
	query := url.Values{}
	query.Set("netId", strconv.FormatUint(uint64(netID), 10))
	if fromChainID != 0 {
		query.Set("fromChainId", strconv.FormatUint(fromChainID, 10))
	}

	var proof ProofData
	if err := c.get(ctx, path, query, &proof); err != nil {
		return nil, fmt.Errorf("merkle proof: %w", err)
	}
	return &proof, nil
}

// SubmitBridgeToken submits a transfer through the custodial wallet backend.
// POST /wallet/{address}/transactions/bridge-token
func (c *Client) SubmitBridgeToken(ctx context.Context, wallet string, payload *BridgeTokenPayload) (*TransactionResponse, error) {
	path := fmt.Sprintf("/wallet/%s/transactions/bridge-token", wallet)

	var resp TransactionResponse
	if err := c.post(ctx, path, payload, &resp); err != nil {
		return nil, fmt.Errorf("bridge token: %w", err)
	}
	return &resp, nil
}

// FinalizeBridge submits a claim through the custodial wallet backend.
// POST /wallet/{address}/transactions/finalize-bridge
func (c *Client) FinalizeBridge(ctx context.Context, wallet string, payload *FinalizeBridgePayload) (*TransactionResponse, error) {
	path := fmt.Sprintf("/wallet/%s/transactions/finalize-bridge", wallet)

	var resp TransactionResponse
	if err := c.post(ctx, path, payload, &resp); err != nil {
		return nil, fmt.Errorf("finalize bridge: %w", err)
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := *c.baseURL
	u.Path += path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	u := *c.baseURL
	u.Path += path

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("Indexer request failed",
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
