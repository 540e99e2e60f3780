package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	ledgermemory "seneschal/contexts/treasury-core/operation-ledger/adapters/memory"
	ledgerapp "seneschal/contexts/treasury-core/operation-ledger/application"
	ledgerentities "seneschal/contexts/treasury-core/operation-ledger/domain/entities"
	ledgerports "seneschal/contexts/treasury-core/operation-ledger/ports"
	"seneschal/contexts/treasury-core/treasury-service/adapters/memory"
	domainerrors "seneschal/contexts/treasury-core/treasury-service/domain/errors"
	"seneschal/contexts/treasury-core/treasury-service/ports"

	"github.com/shopspring/decimal"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type sequenceIDGen struct {
	next int
}

func (g *sequenceIDGen) NewID(_ context.Context) (string, error) {
	g.next++
	return fmt.Sprintf("id-%d", g.next), nil
}

// stubGateway returns scripted results per method and records the requests
// it saw.
type stubGateway struct {
	deployResult  ports.DeployResult
	deployErr     error
	burnErr       error
	buyErr        error
	claimErr      error
	balances      map[string]string
	balanceErr    error
	burnRequests  []ports.BurnRequest
	claimRequests []ports.ClaimRequest
}

func (g *stubGateway) Deploy(_ context.Context, _ ports.DeployRequest) (ports.DeployResult, error) {
	return g.deployResult, g.deployErr
}

func (g *stubGateway) Burn(_ context.Context, req ports.BurnRequest) (string, error) {
	g.burnRequests = append(g.burnRequests, req)
	if g.burnErr != nil {
		return "", g.burnErr
	}
	return "sig-burn", nil
}

func (g *stubGateway) Buy(_ context.Context, _ ports.BuyRequest) (string, error) {
	if g.buyErr != nil {
		return "", g.buyErr
	}
	return "sig-buy", nil
}

func (g *stubGateway) Claim(_ context.Context, req ports.ClaimRequest) (string, error) {
	g.claimRequests = append(g.claimRequests, req)
	if g.claimErr != nil {
		return "", g.claimErr
	}
	return "sig-claim", nil
}

func (g *stubGateway) GetBalance(_ context.Context, _ string, assetID string) (decimal.Decimal, error) {
	if g.balanceErr != nil {
		return decimal.Zero, g.balanceErr
	}
	raw, ok := g.balances[assetID]
	if !ok {
		return decimal.Zero, nil
	}
	return decimal.RequireFromString(raw), nil
}

func newTestService(gateway *stubGateway) (Service, *ledgermemory.Store) {
	store := ledgermemory.NewStore(nil)
	ledger := ledgerapp.Service{
		Repo:        store,
		Audit:       store,
		Outbox:      store,
		Clock:       fixedClock{now: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)},
		IDGen:       &sequenceIDGen{},
		ServiceName: "seneschal-test",
	}
	return Service{
		Ledger:  ledger,
		Gateway: gateway,
		Cache:   memory.NewCache(),
		Identity: ports.TreasuryIdentity{
			WalletKey:     "treasury-key",
			WalletAddress: "treasury-addr",
			AssetID:       "asset-1",
		},
		Clock: fixedClock{now: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)},
	}, store
}

func TestBurnSuccessClosesRecordWithSignature(t *testing.T) {
	gateway := &stubGateway{}
	service, store := newTestService(gateway)

	outcome, err := service.Burn(context.Background(), ports.BurnInput{
		Amount: decimal.RequireFromString("500"),
		Reason: "supply reduction",
	})
	if err != nil {
		t.Fatalf("burn failed: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("expected successful outcome, got error %q", outcome.Error)
	}
	if outcome.Signature != "sig-burn" {
		t.Fatalf("expected settlement signature, got %q", outcome.Signature)
	}
	if gateway.burnRequests[0].AssetID != "asset-1" {
		t.Fatalf("expected configured asset id on gateway call, got %q", gateway.burnRequests[0].AssetID)
	}

	record, err := store.GetOperation(context.Background(), outcome.RecordID)
	if err != nil {
		t.Fatalf("ledger record missing: %v", err)
	}
	if record.Status != ledgerentities.StatusSuccess {
		t.Fatalf("expected success status, got %q", record.Status)
	}

	entry, err := store.GetAuditEntryByOperation(context.Background(), outcome.RecordID)
	if err != nil {
		t.Fatalf("paired audit entry missing: %v", err)
	}
	if entry.Status != ledgerentities.StatusSuccess {
		t.Fatalf("expected resolved audit entry, got %q", entry.Status)
	}
}

func TestBurnGatewayFailureYieldsFailedOutcome(t *testing.T) {
	gateway := &stubGateway{burnErr: errors.New("insufficient treasury funds")}
	service, store := newTestService(gateway)

	outcome, err := service.Burn(context.Background(), ports.BurnInput{
		Amount: decimal.RequireFromString("500"),
	})
	if err != nil {
		t.Fatalf("gateway failure must not surface as a call error: %v", err)
	}
	if outcome.Success {
		t.Fatalf("expected failed outcome")
	}
	if outcome.Error != "insufficient treasury funds" {
		t.Fatalf("expected gateway error on outcome, got %q", outcome.Error)
	}

	record, err := store.GetOperation(context.Background(), outcome.RecordID)
	if err != nil {
		t.Fatalf("ledger record missing: %v", err)
	}
	if record.Status != ledgerentities.StatusFailed {
		t.Fatalf("expected failed status, got %q", record.Status)
	}
	if record.CompletedAt == nil {
		t.Fatalf("failed records still get a completion time")
	}
}

func TestBurnRejectsNonPositiveAmount(t *testing.T) {
	service, store := newTestService(&stubGateway{})

	_, err := service.Burn(context.Background(), ports.BurnInput{Amount: decimal.Zero})
	if !errors.Is(err, domainerrors.ErrInvalidTreasuryInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
	records, err := store.ListOperations(context.Background(), ledgerports.OperationFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("rejected input must not open a record, found %d", len(records))
	}
}

func TestDeployCarriesGatewayAssetIDOntoRecord(t *testing.T) {
	gateway := &stubGateway{deployResult: ports.DeployResult{
		AssetID:   "asset-new",
		Signature: "sig-deploy",
	}}
	service, store := newTestService(gateway)

	outcome, err := service.Deploy(context.Background(), ports.DeployInput{
		Name:   "Seneschal Token",
		Symbol: "SNL",
	})
	if err != nil {
		t.Fatalf("deploy failed: %v", err)
	}
	if outcome.AssetID != "asset-new" {
		t.Fatalf("expected gateway asset id on outcome, got %q", outcome.AssetID)
	}

	record, err := store.GetOperation(context.Background(), outcome.RecordID)
	if err != nil {
		t.Fatalf("ledger record missing: %v", err)
	}
	if record.AssetID != "asset-new" {
		t.Fatalf("expected asset id rewritten on close, got %q", record.AssetID)
	}
}

func TestDeployRequiresNameAndSymbol(t *testing.T) {
	service, _ := newTestService(&stubGateway{})

	_, err := service.Deploy(context.Background(), ports.DeployInput{Name: "Token"})
	if !errors.Is(err, domainerrors.ErrInvalidTreasuryInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestClaimUsesDefaultAssetAndZeroQuantity(t *testing.T) {
	gateway := &stubGateway{}
	service, store := newTestService(gateway)

	outcome, err := service.ClaimRewards(context.Background(), ports.ClaimInput{Reason: "weekly sweep"})
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if gateway.claimRequests[0].AssetID != "asset-1" {
		t.Fatalf("expected configured asset id, got %q", gateway.claimRequests[0].AssetID)
	}
	record, err := store.GetOperation(context.Background(), outcome.RecordID)
	if err != nil {
		t.Fatalf("ledger record missing: %v", err)
	}
	if !record.Quantity.IsZero() {
		t.Fatalf("claim quantity is unknown until settlement, got %s", record.Quantity)
	}
}

func TestBalancesRequireRefreshFirst(t *testing.T) {
	gateway := &stubGateway{balances: map[string]string{
		"":        "1200.5",
		"asset-1": "90000",
	}}
	service, _ := newTestService(gateway)

	if _, err := service.Balances(context.Background()); !errors.Is(err, domainerrors.ErrBalancesNotCached) {
		t.Fatalf("expected cache miss before first refresh, got %v", err)
	}

	refreshed, err := service.RefreshBalances(context.Background())
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if !refreshed.NativeQuantity.Equal(decimal.RequireFromString("1200.5")) {
		t.Fatalf("expected native balance 1200.5, got %s", refreshed.NativeQuantity)
	}
	if !refreshed.AssetQuantity.Equal(decimal.RequireFromString("90000")) {
		t.Fatalf("expected asset balance 90000, got %s", refreshed.AssetQuantity)
	}

	cached, err := service.Balances(context.Background())
	if err != nil {
		t.Fatalf("cached read failed: %v", err)
	}
	if !cached.NativeQuantity.Equal(refreshed.NativeQuantity) || cached.RefreshedAt.IsZero() {
		t.Fatalf("cached balances do not match refresh result")
	}
}

func TestRefreshBalancesPropagatesGatewayError(t *testing.T) {
	gateway := &stubGateway{balanceErr: errors.New("rpc unreachable")}
	service, _ := newTestService(gateway)

	if _, err := service.RefreshBalances(context.Background()); err == nil {
		t.Fatalf("expected gateway error to propagate")
	}
	if _, err := service.Balances(context.Background()); !errors.Is(err, domainerrors.ErrBalancesNotCached) {
		t.Fatalf("failed refresh must not populate the cache, got %v", err)
	}
}
