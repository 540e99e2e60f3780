// Package chainrpc is the HTTP adapter for the ledger-network RPC service.
// It implements the transfer, operation, and holder-listing gateways the
// treasury modules depend on. Every call carries its own timeout so a stuck
// RPC node cannot stall a batch.
package chainrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	distributionports "seneschal/contexts/treasury-core/distribution-engine/ports"
	treasuryports "seneschal/contexts/treasury-core/treasury-service/ports"

	"github.com/shopspring/decimal"
)

type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("chain rpc base url is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

type transferPayload struct {
	SourceKey   string `json:"source_key"`
	Destination string `json:"destination"`
	AssetID     string `json:"asset_id,omitempty"`
	Amount      string `json:"amount"`
}

type signatureResponse struct {
	Signature string `json:"signature"`
}

func (c *Client) Transfer(ctx context.Context, req distributionports.TransferRequest) (string, error) {
	var out signatureResponse
	err := c.postJSON(ctx, "/v1/transfer", transferPayload{
		SourceKey:   req.SourceKey,
		Destination: req.Destination,
		AssetID:     req.AssetID,
		Amount:      req.Amount.String(),
	}, &out)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Signature) == "" {
		return "", errors.New("rpc returned empty signature")
	}
	return out.Signature, nil
}

type deployPayload struct {
	CreatorKey  string `json:"creator_key"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	MetadataURI string `json:"metadata_uri,omitempty"`
}

type deployResponse struct {
	AssetID   string `json:"asset_id"`
	Signature string `json:"signature"`
}

func (c *Client) Deploy(ctx context.Context, req treasuryports.DeployRequest) (treasuryports.DeployResult, error) {
	var out deployResponse
	err := c.postJSON(ctx, "/v1/deploy", deployPayload{
		CreatorKey:  req.CreatorKey,
		Name:        req.Name,
		Symbol:      req.Symbol,
		MetadataURI: req.MetadataURI,
	}, &out)
	if err != nil {
		return treasuryports.DeployResult{}, err
	}
	if strings.TrimSpace(out.AssetID) == "" {
		return treasuryports.DeployResult{}, errors.New("rpc returned no asset id for deployment")
	}
	return treasuryports.DeployResult{
		AssetID:   out.AssetID,
		Signature: out.Signature,
	}, nil
}

type burnPayload struct {
	OwnerKey string `json:"owner_key"`
	AssetID  string `json:"asset_id"`
	Amount   string `json:"amount"`
}

func (c *Client) Burn(ctx context.Context, req treasuryports.BurnRequest) (string, error) {
	var out signatureResponse
	err := c.postJSON(ctx, "/v1/burn", burnPayload{
		OwnerKey: req.OwnerKey,
		AssetID:  req.AssetID,
		Amount:   req.Amount.String(),
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Signature, nil
}

type buyPayload struct {
	BuyerKey     string `json:"buyer_key"`
	AssetID      string `json:"asset_id"`
	NativeAmount string `json:"native_amount"`
}

func (c *Client) Buy(ctx context.Context, req treasuryports.BuyRequest) (string, error) {
	var out signatureResponse
	err := c.postJSON(ctx, "/v1/buy", buyPayload{
		BuyerKey:     req.BuyerKey,
		AssetID:      req.AssetID,
		NativeAmount: req.NativeAmount.String(),
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Signature, nil
}

type claimPayload struct {
	OwnerKey string `json:"owner_key"`
	AssetID  string `json:"asset_id"`
}

func (c *Client) Claim(ctx context.Context, req treasuryports.ClaimRequest) (string, error) {
	var out signatureResponse
	err := c.postJSON(ctx, "/v1/claim", claimPayload{
		OwnerKey: req.OwnerKey,
		AssetID:  req.AssetID,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Signature, nil
}

type balanceResponse struct {
	Balance string `json:"balance"`
}

// GetBalance reads one wallet balance. An empty assetID means the native
// settlement currency.
func (c *Client) GetBalance(ctx context.Context, address string, assetID string) (decimal.Decimal, error) {
	query := url.Values{"address": {address}}
	if strings.TrimSpace(assetID) != "" {
		query.Set("asset_id", assetID)
	}
	var out balanceResponse
	if err := c.getJSON(ctx, "/v1/balance?"+query.Encode(), &out); err != nil {
		return decimal.Zero, err
	}
	balance, err := decimal.NewFromString(strings.TrimSpace(out.Balance))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance %q: %w", out.Balance, err)
	}
	return balance, nil
}

type holderRow struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

type holdersResponse struct {
	Holders []holderRow `json:"holders"`
}

func (c *Client) ListHolders(ctx context.Context, assetID string) ([]distributionports.Holder, error) {
	query := url.Values{"asset_id": {assetID}}
	var out holdersResponse
	if err := c.getJSON(ctx, "/v1/holders?"+query.Encode(), &out); err != nil {
		return nil, err
	}
	holders := make([]distributionports.Holder, 0, len(out.Holders))
	for _, row := range out.Holders {
		balance, err := decimal.NewFromString(strings.TrimSpace(row.Balance))
		if err != nil {
			return nil, fmt.Errorf("parse holder balance %q: %w", row.Balance, err)
		}
		holders = append(holders, distributionports.Holder{
			Address: row.Address,
			Balance: balance,
		})
	}
	return holders, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if c.logger != nil {
			c.logger.Warn("rpc request failed",
				"event", "chainrpc_request_failed",
				"module", "internal/platform/chainrpc",
				"layer", "platform",
				"path", req.URL.Path,
				"status", resp.StatusCode,
			)
		}
		return fmt.Errorf("rpc request failed: %s %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ distributionports.TransferGateway = (*Client)(nil)
var _ distributionports.HolderSource = (*Client)(nil)
var _ treasuryports.OperationGateway = (*Client)(nil)
