package chainrpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	distributionports "seneschal/contexts/treasury-core/distribution-engine/ports"

	"github.com/shopspring/decimal"
)

// Advisor reads the next recommended treasury action from the advisory
// service. The response is advisory only; validation and execution stay in
// the treasury modules.
type Advisor struct {
	client *Client
}

func NewAdvisor(baseURL string, timeout time.Duration, logger *slog.Logger) (*Advisor, error) {
	client, err := NewClient(baseURL, timeout, logger)
	if err != nil {
		return nil, errors.New("advisor base url is required")
	}
	return &Advisor{client: client}, nil
}

type recommendationResponse struct {
	Action    string `json:"action"`
	Amount    string `json:"amount"`
	Rationale string `json:"rationale"`
}

func (a *Advisor) NextAction(ctx context.Context, assetID string) (distributionports.Recommendation, error) {
	query := url.Values{}
	if strings.TrimSpace(assetID) != "" {
		query.Set("asset_id", assetID)
	}
	path := "/v1/recommendation"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out recommendationResponse
	if err := a.client.getJSON(ctx, path, &out); err != nil {
		return distributionports.Recommendation{}, err
	}
	if strings.TrimSpace(out.Action) == "" {
		return distributionports.Recommendation{}, errors.New("advisor returned no action")
	}

	amount := decimal.Zero
	if raw := strings.TrimSpace(out.Amount); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return distributionports.Recommendation{}, fmt.Errorf("parse recommendation amount %q: %w", out.Amount, err)
		}
		amount = parsed
	}
	return distributionports.Recommendation{
		Action:    strings.TrimSpace(out.Action),
		Amount:    amount,
		Rationale: strings.TrimSpace(out.Rationale),
	}, nil
}

var _ distributionports.Advisor = (*Advisor)(nil)
