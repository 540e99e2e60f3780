package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	distributionengine "seneschal/contexts/treasury-core/distribution-engine"
	distributionports "seneschal/contexts/treasury-core/distribution-engine/ports"
	operationledger "seneschal/contexts/treasury-core/operation-ledger"
	treasuryservice "seneschal/contexts/treasury-core/treasury-service"
	treasuryports "seneschal/contexts/treasury-core/treasury-service/ports"

	"github.com/shopspring/decimal"
)

// testGateway serves both the single-call operation gateway and the batch
// transfer gateway. Addresses listed in failing fail their transfer.
type testGateway struct {
	failing map[string]string
}

func (g *testGateway) Deploy(_ context.Context, _ treasuryports.DeployRequest) (treasuryports.DeployResult, error) {
	return treasuryports.DeployResult{AssetID: "asset-new", Signature: "sig-deploy"}, nil
}

func (g *testGateway) Burn(_ context.Context, _ treasuryports.BurnRequest) (string, error) {
	return "sig-burn", nil
}

func (g *testGateway) Buy(_ context.Context, _ treasuryports.BuyRequest) (string, error) {
	return "sig-buy", nil
}

func (g *testGateway) Claim(_ context.Context, _ treasuryports.ClaimRequest) (string, error) {
	return "sig-claim", nil
}

func (g *testGateway) GetBalance(_ context.Context, _ string, assetID string) (decimal.Decimal, error) {
	if assetID == "" {
		return decimal.RequireFromString("1000"), nil
	}
	return decimal.RequireFromString("50000"), nil
}

func (g *testGateway) Transfer(_ context.Context, req distributionports.TransferRequest) (string, error) {
	if reason, ok := g.failing[req.Destination]; ok {
		return "", errors.New(reason)
	}
	return "sig-" + req.Destination, nil
}

type testHolders struct{}

func (testHolders) ListHolders(_ context.Context, _ string) ([]distributionports.Holder, error) {
	return []distributionports.Holder{
		{Address: "addr-a", Balance: decimal.RequireFromString("60")},
		{Address: "addr-b", Balance: decimal.RequireFromString("40")},
	}, nil
}

func newTestServer() *Server {
	return newTestServerWithGateway(&testGateway{})
}

func newTestServerWithGateway(gateway *testGateway) *Server {
	identity := distributionports.TreasuryIdentity{
		WalletKey:     "treasury-key",
		WalletAddress: "treasury-addr",
		AssetID:       "asset-1",
	}
	ledger := operationledger.NewInMemoryModule("seneschal-test", nil)
	distribution := distributionengine.NewInMemoryModule(
		ledger.Service, gateway, testHolders{}, identity, nil,
	)
	treasury := treasuryservice.NewInMemoryModule(
		ledger.Service, gateway,
		treasuryports.TreasuryIdentity{
			WalletKey:     identity.WalletKey,
			WalletAddress: identity.WalletAddress,
			AssetID:       identity.AssetID,
		},
		nil,
	)
	return New(ledger, distribution, treasury, nil, ":0")
}

func TestBurnEndpointReturnsResolvedOutcome(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/operation/burn",
		strings.NewReader(`{"amount":"250","reason":"supply reduction"}`))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var resp struct {
		RecordID  string `json:"record_id"`
		Success   bool   `json:"success"`
		Signature string `json:"settlement_signature"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Signature != "sig-burn" {
		t.Fatalf("expected successful burn with signature, got %s", rr.Body.String())
	}

	getReq := httptest.NewRequest(http.MethodGet, "/operations/"+resp.RecordID, nil)
	getRR := httptest.NewRecorder()
	server.mux.ServeHTTP(getRR, getReq)
	if getRR.Code != http.StatusOK {
		t.Fatalf("expected record readable after burn, got %d", getRR.Code)
	}
}

func TestBurnEndpointRejectsMalformedAmount(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/operation/burn",
		strings.NewReader(`{"amount":"not-a-number"}`))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestDistributeEndpointReportsPartialBatch(t *testing.T) {
	server := newTestServerWithGateway(&testGateway{
		failing: map[string]string{"addr-b": "destination account frozen"},
	})

	req := httptest.NewRequest(http.MethodPost, "/operation/distribute",
		strings.NewReader(`{"kind":"native","recipients":[{"address":"addr-a","amount":"3"},{"address":"addr-b","amount":"7"}]}`))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Status       string `json:"status"`
		SuccessCount int    `json:"success_count"`
		FailCount    int    `json:"fail_count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "partial" || resp.SuccessCount != 1 || resp.FailCount != 1 {
		t.Fatalf("expected partial 1/1, got %s", rr.Body.String())
	}
}

func TestDistributeEndpointRejectsUnknownKind(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/operation/distribute",
		strings.NewReader(`{"kind":"wire","recipients":[{"address":"addr-a","amount":"1"}]}`))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSnapshotCaptureAndDistributeFlow(t *testing.T) {
	server := newTestServer()

	captureReq := httptest.NewRequest(http.MethodPost, "/snapshots/asset-1", nil)
	captureRR := httptest.NewRecorder()
	server.mux.ServeHTTP(captureRR, captureReq)
	if captureRR.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", captureRR.Code, captureRR.Body.String())
	}

	var snapshot struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(captureRR.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}

	distReq := httptest.NewRequest(http.MethodPost, "/operation/distribute",
		strings.NewReader(`{"kind":"managed","snapshot_id":"`+snapshot.ID+`","total_amount":"10"}`))
	distReq.Header.Set("Content-Type", "application/json")
	distRR := httptest.NewRecorder()
	server.mux.ServeHTTP(distRR, distReq)
	if distRR.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", distRR.Code, distRR.Body.String())
	}

	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(distRR.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "completed" {
		t.Fatalf("expected completed distribution, got %s", distRR.Body.String())
	}
}

func TestGetOperationReturns404ForUnknownRecord(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/operations/missing", nil)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestBalancesRequireRefresh(t *testing.T) {
	server := newTestServer()

	getReq := httptest.NewRequest(http.MethodGet, "/treasury/balances", nil)
	getRR := httptest.NewRecorder()
	server.mux.ServeHTTP(getRR, getReq)
	if getRR.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before first refresh, got %d", getRR.Code)
	}

	refreshReq := httptest.NewRequest(http.MethodPost, "/treasury/balances/refresh", nil)
	refreshRR := httptest.NewRecorder()
	server.mux.ServeHTTP(refreshRR, refreshReq)
	if refreshRR.Code != http.StatusOK {
		t.Fatalf("expected 200 on refresh, got %d body=%s", refreshRR.Code, refreshRR.Body.String())
	}

	againRR := httptest.NewRecorder()
	server.mux.ServeHTTP(againRR, httptest.NewRequest(http.MethodGet, "/treasury/balances", nil))
	if againRR.Code != http.StatusOK {
		t.Fatalf("expected 200 after refresh, got %d", againRR.Code)
	}
}
